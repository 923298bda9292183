package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const (
	defaultBatchSize = 50
	defaultLease     = 5 * time.Minute
	defaultRetryBase = 30 * time.Second
	defaultRetryMax  = 30 * time.Minute
)

// Handler performs one side effect. It must be idempotent: a message may be
// handled again after a crash between Handle and the status write.
type Handler interface {
	Handle(ctx context.Context, msg *outbox.Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *outbox.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *outbox.Message) error {
	return f(ctx, msg)
}

type ProcessorConfig struct {
	BatchSize int
	Lease     time.Duration
	RetryBase time.Duration
	RetryMax  time.Duration
}

// ProcessOutboxUseCase dispatches due outbox messages to the handler of their
// effect. Each effect succeeds or retries on its own.
type ProcessOutboxUseCase struct {
	repo     outbox.Repository
	handlers map[outbox.Effect]Handler
	clock    biztime.Clock
	cfg      ProcessorConfig
	logger   logger.Interface
}

func NewProcessOutboxUseCase(
	repo outbox.Repository,
	clock biztime.Clock,
	cfg ProcessorConfig,
	logger logger.Interface,
) *ProcessOutboxUseCase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Lease <= 0 {
		cfg.Lease = defaultLease
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = defaultRetryMax
	}
	return &ProcessOutboxUseCase{
		repo:     repo,
		handlers: make(map[outbox.Effect]Handler),
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register binds the handler for an effect. Call before the first Execute.
func (uc *ProcessOutboxUseCase) Register(effect outbox.Effect, h Handler) {
	uc.handlers[effect] = h
}

// Execute returns the number of messages completed.
func (uc *ProcessOutboxUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	msgs, err := uc.repo.ClaimDue(ctx, now, now.Add(uc.cfg.Lease), uc.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim outbox messages: %w", err)
	}

	done := 0
	for _, m := range msgs {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if uc.dispatch(ctx, m) {
			done++
		}
	}

	if len(msgs) > 0 {
		uc.logger.Debugw("outbox batch processed", "claimed", len(msgs), "done", done)
	}
	return done, nil
}

func (uc *ProcessOutboxUseCase) dispatch(ctx context.Context, m *outbox.Message) bool {
	var err error
	if h, ok := uc.handlers[m.Effect()]; ok {
		err = h.Handle(ctx, m)
	} else {
		err = fmt.Errorf("no handler for effect %q", m.Effect())
	}

	now := uc.clock.Now()
	var markErr error
	if err == nil {
		markErr = m.MarkDone(now)
	} else {
		markErr = m.MarkAttemptFailed(err, uc.retryDelay(m.Attempts()+1), now)
	}
	if markErr != nil {
		// A finished row must not be rewritten; its stored outcome stands.
		uc.logger.Warnw("outbox message already finished, result dropped",
			"dedup_key", m.DedupKey(),
			"status", m.Status(),
			"handler_error", err,
			"error", markErr,
		)
		return m.Status() == outbox.StatusDone
	}

	if saveErr := uc.repo.Save(ctx, m); saveErr != nil {
		uc.logger.Errorw("failed to save outbox message", "dedup_key", m.DedupKey(), "error", saveErr)
		return false
	}

	switch m.Status() {
	case outbox.StatusDone:
		return true
	case outbox.StatusFailed:
		uc.logger.Errorw("outbox message failed permanently",
			"dedup_key", m.DedupKey(),
			"attempts", m.Attempts(),
			"error", err,
		)
	default:
		uc.logger.Warnw("outbox effect failed, will retry",
			"dedup_key", m.DedupKey(),
			"attempt", m.Attempts(),
			"next_attempt_at", m.NextAttemptAt(),
			"error", err,
		)
	}
	return false
}

func (uc *ProcessOutboxUseCase) retryDelay(attempt int) time.Duration {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = uc.cfg.RetryBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = uc.cfg.RetryMax
	bo.Reset()

	delay := bo.NextBackOff()
	for i := 1; i < attempt; i++ {
		delay = bo.NextBackOff()
	}
	return delay
}
