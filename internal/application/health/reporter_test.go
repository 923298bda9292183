package health

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/domain/webhook"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// The stubs embed the repository interfaces and implement only what the
// reporter reads.

type keyStub struct {
	addresspool.ExtendedKeyRepository
	active bool
}

func (s keyStub) GetActive(context.Context) (*addresspool.ExtendedKey, error) {
	if !s.active {
		return nil, addresspool.ErrNoActiveKey
	}
	return addresspool.ReconstructExtendedKey(1, "xk_1", "zpub", vo.NetworkMainnet, "", true, 0, testNow, testNow), nil
}

type poolStub struct {
	addresspool.PoolRepository
	free int64
}

func (s poolStub) CountFree(context.Context, time.Time) (int64, error) { return s.free, nil }

type paymentStub struct {
	payment.PaymentRepository
	stale int64
}

func (s paymentStub) CountPendingOlderThan(context.Context, time.Time) (int64, error) {
	return s.stale, nil
}

type deliveryStub struct {
	webhook.DeliveryRepository
	failed int64
}

func (s deliveryStub) CountFailedSince(context.Context, time.Time) (int64, error) {
	return s.failed, nil
}

type chainStub struct {
	height int64
	err    error
}

func (s chainStub) TipHeight(context.Context) (int64, error) { return s.height, s.err }

type replenishStub struct {
	run *addresspool.ReplenishRun
	err error
}

func (s replenishStub) LastRun(context.Context) (*addresspool.ReplenishRun, error) { return s.run, s.err }

func okPing(context.Context) error { return nil }

func healthyDeps() Dependencies {
	return Dependencies{
		Database:     PingFunc(okPing),
		Redis:        PingFunc(okPing),
		Chain:        chainStub{height: 880000},
		KeyRepo:      keyStub{active: true},
		PoolRepo:     poolStub{free: 40},
		PaymentRepo:  paymentStub{},
		DeliveryRepo: deliveryStub{},

		Replenishment: replenishStub{run: &addresspool.ReplenishRun{
			At:        testNow.Add(-time.Minute),
			Generated: 5,
		}},
	}
}

func runChecks(deps Dependencies) *Report {
	r := NewReporter(deps, Config{SoftFloor: 10, HardFloor: 3}, biztime.NewManualClock(testNow), logger.NewNop())
	return r.Check(context.Background())
}

func TestReporter_Healthy(t *testing.T) {
	report := runChecks(healthyDeps())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, http.StatusOK, report.Status.HTTPStatus())
	assert.Len(t, report.Checks, 8)
	assert.Equal(t, int64(880000), report.Checks["blockchain_api"].Details["tipHeight"])
	assert.Equal(t, testNow, report.Timestamp)
}

func TestReporter_Verdicts(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *Dependencies)
		want      Status
		httpCode  int
		failCheck string
	}{
		{
			name:      "pool below soft floor",
			mutate:    func(d *Dependencies) { d.PoolRepo = poolStub{free: 5} },
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "address_pool",
		},
		{
			name:      "pool below hard floor with key is only degraded",
			mutate:    func(d *Dependencies) { d.PoolRepo = poolStub{free: 1} },
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "address_pool",
		},
		{
			name: "pool below hard floor without key",
			mutate: func(d *Dependencies) {
				d.PoolRepo = poolStub{free: 2}
				d.KeyRepo = keyStub{}
			},
			want:      StatusUnhealthy,
			httpCode:  http.StatusServiceUnavailable,
			failCheck: "address_pool",
		},
		{
			name:      "database down",
			mutate:    func(d *Dependencies) { d.Database = PingFunc(func(context.Context) error { return errors.New("refused") }) },
			want:      StatusUnhealthy,
			httpCode:  http.StatusServiceUnavailable,
			failCheck: "database",
		},
		{
			name:      "redis down",
			mutate:    func(d *Dependencies) { d.Redis = PingFunc(func(context.Context) error { return errors.New("refused") }) },
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "redis",
		},
		{
			name:      "indexer unreachable",
			mutate:    func(d *Dependencies) { d.Chain = chainStub{err: errors.New("timeout")} },
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "blockchain_api",
		},
		{
			name:      "stale pending payments",
			mutate:    func(d *Dependencies) { d.PaymentRepo = paymentStub{stale: 4} },
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "pending_payments",
		},
		{
			name: "last replenishment failed",
			mutate: func(d *Dependencies) {
				d.Replenishment = replenishStub{run: &addresspool.ReplenishRun{
					At:                  testNow.Add(-time.Minute),
					Error:               "derived 0 of 20 addresses",
					ConsecutiveFailures: 3,
				}}
			},
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "replenishment",
		},
		{
			name:      "replenishment status unreadable",
			mutate:    func(d *Dependencies) { d.Replenishment = replenishStub{err: errors.New("redis refused")} },
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "replenishment",
		},
		{
			name:      "failed webhook deliveries",
			mutate:    func(d *Dependencies) { d.DeliveryRepo = deliveryStub{failed: 1} },
			want:      StatusDegraded,
			httpCode:  http.StatusMultiStatus,
			failCheck: "webhook_deliveries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := healthyDeps()
			tt.mutate(&deps)

			report := runChecks(deps)

			assert.Equal(t, tt.want, report.Status)
			assert.Equal(t, tt.httpCode, report.Status.HTTPStatus())
			assert.NotEqual(t, StatusHealthy, report.Checks[tt.failCheck].Status)
			assert.NotEmpty(t, report.Checks[tt.failCheck].Message)
		})
	}
}

func TestReporter_OptionalChecksSkipped(t *testing.T) {
	deps := healthyDeps()
	deps.Redis = nil
	deps.Chain = nil
	deps.Replenishment = nil

	report := runChecks(deps)

	assert.Equal(t, StatusHealthy, report.Status)
	assert.NotContains(t, report.Checks, "redis")
	assert.NotContains(t, report.Checks, "blockchain_api")
	assert.NotContains(t, report.Checks, "replenishment")
}

func TestReporter_ReplenishmentNeverRan(t *testing.T) {
	deps := healthyDeps()
	deps.Replenishment = replenishStub{}

	report := runChecks(deps)

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Checks["replenishment"].Status)
}

func TestReporter_SlowCheckTimesOut(t *testing.T) {
	deps := healthyDeps()
	deps.Database = PingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	r := NewReporter(deps, Config{CheckTimeout: 20 * time.Millisecond}, biztime.NewManualClock(testNow), logger.NewNop())
	report := r.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Contains(t, report.Checks["database"].Message, "deadline")
}
