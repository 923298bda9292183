// Package health aggregates point-in-time checks of the payment subsystem into
// one verdict. Checks only read.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orris-inc/satsgate/internal/application/payment/blockchain"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/domain/webhook"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// HTTPStatus maps the verdict to 200, 207 or 503.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusUnhealthy:
		return http.StatusServiceUnavailable
	case StatusDegraded:
		return http.StatusMultiStatus
	default:
		return http.StatusOK
	}
}

type CheckResult struct {
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	LatencyMs int64          `json:"latencyMs"`
}

type Report struct {
	Status    Status                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Checks    map[string]*CheckResult `json:"checks"`
}

// Pinger reports storage reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// ReplenishmentStatus reports the last replenishment pass, nil if none ran yet.
type ReplenishmentStatus interface {
	LastRun(ctx context.Context) (*addresspool.ReplenishRun, error)
}

type Config struct {
	SoftFloor         int
	HardFloor         int
	StalePendingAfter time.Duration
	FailedWindow      time.Duration
	CheckTimeout      time.Duration
}

// Dependencies lists what the reporter reads. Redis, Chain and Replenishment
// may be nil.
type Dependencies struct {
	Database      Pinger
	Redis         Pinger
	Chain         blockchain.ChainInfo
	Replenishment ReplenishmentStatus
	KeyRepo       addresspool.ExtendedKeyRepository
	PoolRepo      addresspool.PoolRepository
	PaymentRepo   payment.PaymentRepository
	DeliveryRepo  webhook.DeliveryRepository
}

type Reporter struct {
	deps   Dependencies
	cfg    Config
	clock  biztime.Clock
	logger logger.Interface
}

func NewReporter(deps Dependencies, cfg Config, clock biztime.Clock, logger logger.Interface) *Reporter {
	if cfg.SoftFloor <= 0 {
		cfg.SoftFloor = 10
	}
	if cfg.HardFloor <= 0 {
		cfg.HardFloor = 3
	}
	if cfg.StalePendingAfter <= 0 {
		cfg.StalePendingAfter = 2 * time.Hour
	}
	if cfg.FailedWindow <= 0 {
		cfg.FailedWindow = 24 * time.Hour
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 3 * time.Second
	}
	return &Reporter{deps: deps, cfg: cfg, clock: clock, logger: logger}
}

type check struct {
	name string
	run  func(ctx context.Context, now time.Time) *CheckResult
}

// Check runs all checks concurrently, each under its own timeout.
func (r *Reporter) Check(ctx context.Context) *Report {
	now := r.clock.Now()
	checks := []check{
		{"database", r.checkDatabase},
		{"address_pool", r.checkPool},
		{"active_key", r.checkActiveKey},
		{"pending_payments", r.checkPendingPayments},
		{"webhook_deliveries", r.checkDeliveries},
	}
	if r.deps.Redis != nil {
		checks = append(checks, check{"redis", r.checkRedis})
	}
	if r.deps.Chain != nil {
		checks = append(checks, check{"blockchain_api", r.checkChain})
	}
	if r.deps.Replenishment != nil {
		checks = append(checks, check{"replenishment", r.checkReplenishment})
	}

	report := &Report{
		Status:    StatusHealthy,
		Timestamp: now,
		Checks:    make(map[string]*CheckResult, len(checks)),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, r.cfg.CheckTimeout)
			defer cancel()

			start := time.Now()
			res := c.run(cctx, now)
			res.LatencyMs = time.Since(start).Milliseconds()

			mu.Lock()
			report.Checks[c.name] = res
			if res.Status.rank() > report.Status.rank() {
				report.Status = res.Status
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if report.Status != StatusHealthy {
		r.logger.Warnw("system health degraded", "status", report.Status)
	}
	return report
}

func (r *Reporter) checkDatabase(ctx context.Context, _ time.Time) *CheckResult {
	if err := r.deps.Database.PingContext(ctx); err != nil {
		return &CheckResult{Status: StatusUnhealthy, Message: err.Error()}
	}
	return &CheckResult{Status: StatusHealthy}
}

// Redis only backs alert dedup and rate limiting, so an outage degrades.
func (r *Reporter) checkRedis(ctx context.Context, _ time.Time) *CheckResult {
	if err := r.deps.Redis.PingContext(ctx); err != nil {
		return &CheckResult{Status: StatusDegraded, Message: err.Error()}
	}
	return &CheckResult{Status: StatusHealthy}
}

func (r *Reporter) checkChain(ctx context.Context, _ time.Time) *CheckResult {
	height, err := r.deps.Chain.TipHeight(ctx)
	if err != nil {
		return &CheckResult{Status: StatusDegraded, Message: err.Error()}
	}
	return &CheckResult{Status: StatusHealthy, Details: map[string]any{"tipHeight": height}}
}

// checkPool fails below the hard floor only when nothing can refill the pool;
// with an active key addresses are derived on demand.
func (r *Reporter) checkPool(ctx context.Context, now time.Time) *CheckResult {
	free, err := r.deps.PoolRepo.CountFree(ctx, now)
	if err != nil {
		return &CheckResult{Status: StatusUnhealthy, Message: err.Error()}
	}
	hasKey, err := r.hasActiveKey(ctx)
	if err != nil {
		return &CheckResult{Status: StatusUnhealthy, Message: err.Error()}
	}

	res := &CheckResult{
		Status:  StatusHealthy,
		Details: map[string]any{"free": free, "softFloor": r.cfg.SoftFloor, "hardFloor": r.cfg.HardFloor},
	}
	switch {
	case free < int64(r.cfg.HardFloor) && !hasKey:
		res.Status = StatusUnhealthy
		res.Message = fmt.Sprintf("only %d free addresses and no active extended key", free)
	case free < int64(r.cfg.SoftFloor):
		res.Status = StatusDegraded
		res.Message = fmt.Sprintf("%d free addresses, below soft floor", free)
	}
	return res
}

// A failed pass degrades only: allocation keeps serving from the pool and
// derives on demand.
func (r *Reporter) checkReplenishment(ctx context.Context, _ time.Time) *CheckResult {
	run, err := r.deps.Replenishment.LastRun(ctx)
	if err != nil {
		return &CheckResult{Status: StatusDegraded, Message: err.Error()}
	}
	if run == nil {
		return &CheckResult{Status: StatusHealthy, Message: "no replenishment run recorded"}
	}
	res := &CheckResult{
		Status:  StatusHealthy,
		Details: map[string]any{"lastRunAt": run.At, "generated": run.Generated},
	}
	if run.Failed() {
		res.Status = StatusDegraded
		res.Message = fmt.Sprintf("last replenishment failed: %s", run.Error)
		res.Details["consecutiveFailures"] = run.ConsecutiveFailures
	}
	return res
}

func (r *Reporter) checkActiveKey(ctx context.Context, _ time.Time) *CheckResult {
	hasKey, err := r.hasActiveKey(ctx)
	if err != nil {
		return &CheckResult{Status: StatusUnhealthy, Message: err.Error()}
	}
	if !hasKey {
		return &CheckResult{Status: StatusDegraded, Message: "no active extended key, allocation relies on the seeded pool"}
	}
	return &CheckResult{Status: StatusHealthy}
}

func (r *Reporter) checkPendingPayments(ctx context.Context, now time.Time) *CheckResult {
	stale, err := r.deps.PaymentRepo.CountPendingOlderThan(ctx, now.Add(-r.cfg.StalePendingAfter))
	if err != nil {
		return &CheckResult{Status: StatusUnhealthy, Message: err.Error()}
	}
	res := &CheckResult{Status: StatusHealthy, Details: map[string]any{"stale": stale}}
	if stale > 0 {
		res.Status = StatusDegraded
		res.Message = fmt.Sprintf("%d payments pending longer than %s", stale, r.cfg.StalePendingAfter)
	}
	return res
}

func (r *Reporter) checkDeliveries(ctx context.Context, now time.Time) *CheckResult {
	failed, err := r.deps.DeliveryRepo.CountFailedSince(ctx, now.Add(-r.cfg.FailedWindow))
	if err != nil {
		return &CheckResult{Status: StatusUnhealthy, Message: err.Error()}
	}
	res := &CheckResult{Status: StatusHealthy, Details: map[string]any{"failed": failed}}
	if failed > 0 {
		res.Status = StatusDegraded
		res.Message = fmt.Sprintf("%d webhook deliveries failed in the last %s", failed, r.cfg.FailedWindow)
	}
	return res
}

func (r *Reporter) hasActiveKey(ctx context.Context) (bool, error) {
	_, err := r.deps.KeyRepo.GetActive(ctx)
	if errors.Is(err, addresspool.ErrNoActiveKey) {
		return false, nil
	}
	return err == nil, err
}
