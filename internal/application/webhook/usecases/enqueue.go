package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orris-inc/satsgate/internal/domain/webhook"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// deliveryNamespace scopes deterministic delivery ids.
var deliveryNamespace = uuid.MustParse("6f1c2a4e-8d3b-4f5a-9c7e-2b1d0e9f8a71")

// EnqueueEventUseCase fans an event out to every matching active subscription.
type EnqueueEventUseCase struct {
	subRepo      webhook.SubscriptionRepository
	deliveryRepo webhook.DeliveryRepository
	clock        biztime.Clock
	logger       logger.Interface
}

func NewEnqueueEventUseCase(
	subRepo webhook.SubscriptionRepository,
	deliveryRepo webhook.DeliveryRepository,
	clock biztime.Clock,
	logger logger.Interface,
) *EnqueueEventUseCase {
	return &EnqueueEventUseCase{
		subRepo:      subRepo,
		deliveryRepo: deliveryRepo,
		clock:        clock,
		logger:       logger,
	}
}

// Execute creates one delivery per matching subscription and returns how many
// were created. When idempotencyKey is set the delivery ids are derived from
// it, so enqueueing the same event twice does not duplicate deliveries.
func (uc *EnqueueEventUseCase) Execute(ctx context.Context, eventType string, payload []byte, idempotencyKey string) (int, error) {
	subs, err := uc.subRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list webhook subscriptions: %w", err)
	}

	now := uc.clock.Now()
	deliveries := make([]*webhook.Delivery, 0, len(subs))
	for _, sub := range subs {
		if !sub.Matches(eventType) {
			continue
		}
		d, err := webhook.NewDelivery(deliveryID(idempotencyKey, sub.SID()), sub, eventType, payload, now)
		if err != nil {
			return 0, err
		}
		deliveries = append(deliveries, d)
	}

	if len(deliveries) == 0 {
		uc.logger.Debugw("no webhook subscription matches event", "event_type", eventType)
		return 0, nil
	}
	created, err := uc.deliveryRepo.CreateBatch(ctx, deliveries)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue webhook deliveries: %w", err)
	}

	uc.logger.Infow("webhook deliveries enqueued",
		"event_type", eventType,
		"count", created,
		"skipped", len(deliveries)-created,
	)
	return created, nil
}

func deliveryID(idempotencyKey, subSID string) string {
	if idempotencyKey == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(deliveryNamespace, []byte(idempotencyKey+"|"+subSID)).String()
}
