package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const (
	defaultReplayGrace = time.Minute
	defaultReplayBatch = 100
)

// ReplayEventsUseCase re-applies stored chain events whose processing failed
// after they were recorded.
type ReplayEventsUseCase struct {
	eventRepo payment.ChainEventRepository
	processor ChainEventProcessor
	clock     biztime.Clock
	grace     time.Duration
	batchSize int
	logger    logger.Interface
}

func NewReplayEventsUseCase(
	eventRepo payment.ChainEventRepository,
	processor ChainEventProcessor,
	clock biztime.Clock,
	logger logger.Interface,
) *ReplayEventsUseCase {
	return &ReplayEventsUseCase{
		eventRepo: eventRepo,
		processor: processor,
		clock:     clock,
		grace:     defaultReplayGrace,
		batchSize: defaultReplayBatch,
		logger:    logger,
	}
}

// Execute returns the number of events applied. Events younger than the grace
// period are left to the request that recorded them.
func (uc *ReplayEventsUseCase) Execute(ctx context.Context) (int, error) {
	events, err := uc.eventRepo.FindUnprocessed(ctx, uc.clock.Now().Add(-uc.grace), uc.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load unprocessed events: %w", err)
	}

	replayed := 0
	for _, ev := range events {
		if ctx.Err() != nil {
			return replayed, ctx.Err()
		}
		if _, err := uc.processor.Execute(ctx, ev); err != nil {
			uc.logger.Warnw("chain event replay failed",
				"source_event_id", ev.SourceEventID(),
				"error", err,
			)
			continue
		}
		replayed++
	}

	if replayed > 0 {
		uc.logger.Infow("chain events replayed", "count", replayed, "pending", len(events)-replayed)
	}
	return replayed, nil
}
