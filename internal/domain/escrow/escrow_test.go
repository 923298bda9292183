package escrow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func TestEscrow_RefundFromHeld(t *testing.T) {
	e, err := NewEscrow("esc_1", "order-1", decimal.RequireFromString("0.0015"), "BTC", testNow)
	require.NoError(t, err)

	require.NoError(t, e.Refund("customer request", "n/a", testNow))
	assert.Equal(t, StatusRefunded, e.Status())
	assert.Equal(t, "customer request", e.RefundReason())
	require.NotNil(t, e.RefundedAt())
}

func TestEscrow_RefundRejectedOutsideHeld(t *testing.T) {
	tests := []struct {
		name   string
		status Status
	}{
		{"released", StatusReleased},
		{"refunded", StatusRefunded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ReconstructEscrow(1, "esc_1", "order-1", decimal.NewFromInt(1), "BTC", tt.status, "", "", nil, nil, 1, testNow, testNow)
			err := e.Refund("again", "", testNow)
			assert.ErrorIs(t, err, ErrInvalidStateTransition)
			assert.Equal(t, tt.status, e.Status())
		})
	}
}

func TestNewEscrow_RejectsNonPositiveAmount(t *testing.T) {
	_, err := NewEscrow("esc_1", "order-1", decimal.Zero, "BTC", testNow)
	assert.Error(t, err)
}

func TestOrder_MarkPaid(t *testing.T) {
	o, err := NewOrder("order-1", "a@example.com", decimal.NewFromInt(10), "USD", testNow)
	require.NoError(t, err)

	require.NoError(t, o.MarkPaid(testNow))
	assert.Equal(t, OrderStatusPaid, o.Status())
	require.NoError(t, o.MarkPaid(testNow))

	o.MarkRefunded(testNow)
	assert.ErrorIs(t, o.MarkPaid(testNow), ErrInvalidStateTransition)
}

func TestEscrow_ReleaseFromHeld(t *testing.T) {
	e, err := NewEscrow("esc_1", "order-1", decimal.RequireFromString("0.0015"), "BTC", testNow)
	require.NoError(t, err)

	require.NoError(t, e.Release(testNow))
	assert.Equal(t, StatusReleased, e.Status())
	require.NotNil(t, e.ReleasedAt())

	assert.ErrorIs(t, e.Release(testNow), ErrInvalidStateTransition)
	assert.ErrorIs(t, e.Refund("late", "", testNow), ErrInvalidStateTransition)
}

func TestOrder_MarkFulfilled(t *testing.T) {
	o, err := NewOrder("order-1", "a@example.com", decimal.NewFromInt(10), "USD", testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, o.MarkFulfilled(testNow), ErrInvalidStateTransition)

	require.NoError(t, o.MarkPaid(testNow))
	require.NoError(t, o.MarkFulfilled(testNow))
	assert.Equal(t, OrderStatusFulfilled, o.Status())
	require.NoError(t, o.MarkFulfilled(testNow))
}
