package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orris-inc/satsgate/internal/domain/webhook"
	vo "github.com/orris-inc/satsgate/internal/domain/webhook/valueobjects"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/goroutine"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const (
	defaultSweepBatch       = 100
	defaultSweepConcurrency = 8
	defaultLease            = 2 * time.Minute
)

type SweepConfig struct {
	BatchSize   int
	Concurrency int
	// Lease must exceed the HTTP timeout so a slow attempt keeps its claim.
	Lease time.Duration
}

// DeliveryAttempter attempts one claimed delivery.
type DeliveryAttempter interface {
	Execute(ctx context.Context, d *webhook.Delivery) error
}

// RetrySweepUseCase claims due deliveries and attempts them in parallel.
type RetrySweepUseCase struct {
	deliveryRepo webhook.DeliveryRepository
	deliverer    DeliveryAttempter
	clock        biztime.Clock
	cfg          SweepConfig
	logger       logger.Interface
}

func NewRetrySweepUseCase(
	deliveryRepo webhook.DeliveryRepository,
	deliverer DeliveryAttempter,
	clock biztime.Clock,
	cfg SweepConfig,
	logger logger.Interface,
) *RetrySweepUseCase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultSweepBatch
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultSweepConcurrency
	}
	if cfg.Lease <= 0 {
		cfg.Lease = defaultLease
	}
	return &RetrySweepUseCase{
		deliveryRepo: deliveryRepo,
		deliverer:    deliverer,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// Execute returns the number of deliveries that succeeded in this sweep.
func (uc *RetrySweepUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	due, err := uc.deliveryRepo.ClaimDue(ctx, now, now.Add(uc.cfg.Lease), uc.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to claim due deliveries: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	var delivered atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)
	for _, d := range due {
		g.Go(func() error {
			defer goroutine.Recover(uc.logger, "webhook-delivery")
			err := uc.deliverer.Execute(gctx, d)
			switch {
			case err == nil:
				if d.Status() == vo.DeliveryStatusDelivered {
					delivered.Add(1)
				}
			case errors.Is(err, webhook.ErrDeliveryFailed):
			default:
				uc.logger.Warnw("webhook attempt errored", "delivery_id", d.DeliveryID(), "error", err)
			}
			// One bad delivery must not cancel its siblings.
			return nil
		})
	}
	_ = g.Wait()

	uc.logger.Infow("webhook sweep finished", "claimed", len(due), "delivered", delivered.Load())
	return int(delivered.Load()), nil
}
