// Package scheduler runs the background maintenance jobs using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// Replenisher tops up the address pool.
type Replenisher interface {
	Execute(ctx context.Context) (*usecases.ReplenishResult, error)
}

// Intervals holds the job periods. Zero values fall back to defaults.
type Intervals struct {
	Payments     time.Duration
	Replenish    time.Duration
	WebhookSweep time.Duration
	Outbox       time.Duration
}

const (
	defaultPaymentsInterval  = time.Minute
	defaultReplenishInterval = 5 * time.Minute
	defaultSweepInterval     = time.Minute
	defaultOutboxInterval    = 15 * time.Second
)

func (i Intervals) withDefaults() Intervals {
	if i.Payments <= 0 {
		i.Payments = defaultPaymentsInterval
	}
	if i.Replenish <= 0 {
		i.Replenish = defaultReplenishInterval
	}
	if i.WebhookSweep <= 0 {
		i.WebhookSweep = defaultSweepInterval
	}
	if i.Outbox <= 0 {
		i.Outbox = defaultOutboxInterval
	}
	return i
}

// SchedulerManager owns the single gocron instance every job is registered on.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	intervals Intervals
	logger    logger.Interface

	// Track whether the scheduler has been started
	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(intervals Intervals, log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		intervals: intervals.withDefaults(),
		logger:    log,
	}, nil
}

// ========================================
// Payment Jobs
// ========================================

// RegisterPaymentJobs registers the payment maintenance run:
// - Expire lapsed pending payments and release their addresses
// - Replay stored chain events that never finished processing
// - Re-enqueue confirmation effects missing from the outbox
func (m *SchedulerManager) RegisterPaymentJobs(
	expirePaymentsJob BatchJob,
	replayEventsJob BatchJob,
	reconcileJob BatchJob,
) error {
	interval := m.intervals.Payments
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.processPaymentTasks(ctx, expirePaymentsJob, replayEventsJob, reconcileJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("payment", "expire", "replay", "reconcile"),
		gocron.WithName("payment-maintenance"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered payment jobs", "interval", interval)
	return nil
}

func (m *SchedulerManager) processPaymentTasks(
	ctx context.Context,
	expirePaymentsJob BatchJob,
	replayEventsJob BatchJob,
	reconcileJob BatchJob,
) {
	m.logger.Debugw("processing payment tasks started")

	m.runBatch(ctx, "expired payments", expirePaymentsJob)
	m.runBatch(ctx, "replayed chain events", replayEventsJob)
	if reconcileJob != nil {
		m.runBatch(ctx, "reconciled confirmations", reconcileJob)
	}
}

// ========================================
// Pool Jobs
// ========================================

// RegisterPoolJobs registers periodic pool replenishment.
func (m *SchedulerManager) RegisterPoolJobs(replenisher Replenisher) error {
	interval := m.intervals.Replenish
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			m.replenishPool(ctx, replenisher)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("pool", "replenish"),
		gocron.WithName("pool-replenish"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered pool jobs", "interval", interval)
	return nil
}

func (m *SchedulerManager) replenishPool(ctx context.Context, replenisher Replenisher) {
	startTime := biztime.NowUTC()

	result, err := replenisher.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("failed to replenish address pool",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Generated > 0 || result.AlertRaised {
		m.logger.Infow("address pool replenished",
			"generated", result.Generated,
			"pool_size", result.PoolSize,
			"alert_raised", result.AlertRaised,
			"duration", time.Since(startTime),
		)
	}
}

// ========================================
// Delivery Jobs
// ========================================

// RegisterDeliveryJobs registers the outbox relay and the webhook retry sweep.
func (m *SchedulerManager) RegisterDeliveryJobs(outboxJob BatchJob, webhookSweepJob BatchJob) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.intervals.Outbox),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			m.runBatch(ctx, "outbox messages", outboxJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("outbox"),
		gocron.WithName("outbox-relay"),
	)
	if err != nil {
		return err
	}

	_, err = m.scheduler.NewJob(
		gocron.DurationJob(m.intervals.WebhookSweep),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runBatch(ctx, "webhook deliveries", webhookSweepJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("webhook", "retry"),
		gocron.WithName("webhook-retry-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered delivery jobs",
		"outbox_interval", m.intervals.Outbox,
		"webhook_sweep_interval", m.intervals.WebhookSweep,
	)
	return nil
}

func (m *SchedulerManager) runBatch(ctx context.Context, what string, job BatchJob) {
	startTime := biztime.NowUTC()

	count, err := job.Execute(ctx)
	if err != nil {
		// Don't log error if context was cancelled (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("batch job failed",
			"job", what,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if count > 0 {
		m.logger.Infow("batch job processed items",
			"job", what,
			"count", count,
			"duration", time.Since(startTime),
		)
	}
}

// ========================================
// Scheduler Lifecycle Methods
// ========================================

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
