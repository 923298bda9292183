package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	poolUsecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	escrowUsecases "github.com/orris-inc/satsgate/internal/application/escrow/usecases"
	"github.com/orris-inc/satsgate/internal/application/health"
	"github.com/orris-inc/satsgate/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/satsgate/internal/shared/errors"
)

type mockReplenishUC struct {
	result *poolUsecases.ReplenishResult
	err    error
}

func (m *mockReplenishUC) Execute(ctx context.Context) (*poolUsecases.ReplenishResult, error) {
	return m.result, m.err
}

type mockRefundUC struct {
	result *escrowUsecases.RefundResult
	err    error
	cmd    escrowUsecases.ProcessRefundCommand
}

func (m *mockRefundUC) Execute(ctx context.Context, cmd escrowUsecases.ProcessRefundCommand) (*escrowUsecases.RefundResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockHealthChecker struct {
	report *health.Report
}

func (m *mockHealthChecker) Check(ctx context.Context) *health.Report {
	return m.report
}

func newTestOperationsHandler(replenish replenishPoolUseCase, refund processRefundUseCase, hc healthChecker) *OperationsHandler {
	return NewOperationsHandler(replenish, refund, hc, testutil.NewMockLogger())
}

func TestOperationsHandler_ReplenishAddresses(t *testing.T) {
	uc := &mockReplenishUC{result: &poolUsecases.ReplenishResult{Generated: 20, PoolSize: 30}}
	handler := newTestOperationsHandler(uc, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/replenish-addresses", nil)
	handler.ReplenishAddresses(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var data poolUsecases.ReplenishResult
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 20, data.Generated)
	assert.EqualValues(t, 30, data.PoolSize)
}

func TestOperationsHandler_ReplenishAddresses_Error(t *testing.T) {
	uc := &mockReplenishUC{err: errors.NewDerivationError("bad key")}
	handler := newTestOperationsHandler(uc, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/replenish-addresses", nil)
	handler.ReplenishAddresses(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestOperationsHandler_ProcessRefund_Success(t *testing.T) {
	uc := &mockRefundUC{result: &escrowUsecases.RefundResult{
		EscrowID:   "esc_1",
		Status:     "refunded",
		RefundedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	handler := newTestOperationsHandler(nil, uc, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/process-refund", ProcessRefundRequest{
		EscrowID: "esc_1",
		Reason:   "customer request",
	})
	handler.ProcessRefund(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "esc_1", uc.cmd.EscrowID)
	assert.Equal(t, "customer request", uc.cmd.Reason)
}

func TestOperationsHandler_ProcessRefund_NotHeld(t *testing.T) {
	uc := &mockRefundUC{err: errors.NewInvalidStateTransitionError("escrow is not held")}
	handler := newTestOperationsHandler(nil, uc, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/process-refund", ProcessRefundRequest{EscrowID: "esc_1"})
	handler.ProcessRefund(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, errors.CodeInvalidStateTransition, resp.Error.Code)
}

func TestOperationsHandler_ProcessRefund_UnknownEscrow(t *testing.T) {
	uc := &mockRefundUC{err: errors.NewNotFoundError("escrow not found")}
	handler := newTestOperationsHandler(nil, uc, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/process-refund", ProcessRefundRequest{EscrowID: "esc_x"})
	handler.ProcessRefund(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOperationsHandler_SystemHealth(t *testing.T) {
	tests := []struct {
		name        string
		status      health.Status
		wantCode    int
		wantSuccess bool
	}{
		{"healthy", health.StatusHealthy, http.StatusOK, true},
		{"degraded", health.StatusDegraded, http.StatusMultiStatus, true},
		{"unhealthy", health.StatusUnhealthy, http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := &mockHealthChecker{report: &health.Report{
				Status: tt.status,
				Checks: map[string]*health.CheckResult{
					"database": {Status: tt.status},
				},
			}}
			handler := newTestOperationsHandler(nil, nil, hc)

			c, w := testutil.NewTestContext(http.MethodGet, "/system-health", nil)
			handler.SystemHealth(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.Equal(t, tt.wantSuccess, resp.Success)

			var report health.Report
			require.NoError(t, json.Unmarshal(resp.Data, &report))
			assert.Equal(t, tt.status, report.Status)
			assert.Contains(t, report.Checks, "database")
		})
	}
}
