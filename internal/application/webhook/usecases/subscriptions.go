package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/orris-inc/satsgate/internal/application/webhook/dto"
	"github.com/orris-inc/satsgate/internal/domain/webhook"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/id"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

type CreateSubscriptionCommand struct {
	URL        string
	EventTypes []string
	Secret     string
	MaxRetries int
}

type ManageSubscriptionsUseCase struct {
	subRepo           webhook.SubscriptionRepository
	defaultMaxRetries int
	clock             biztime.Clock
	logger            logger.Interface
}

func NewManageSubscriptionsUseCase(
	subRepo webhook.SubscriptionRepository,
	defaultMaxRetries int,
	clock biztime.Clock,
	logger logger.Interface,
) *ManageSubscriptionsUseCase {
	if defaultMaxRetries < 1 {
		defaultMaxRetries = 3
	}
	return &ManageSubscriptionsUseCase{
		subRepo:           subRepo,
		defaultMaxRetries: defaultMaxRetries,
		clock:             clock,
		logger:            logger,
	}
}

// Create registers a subscriber. A signing secret is generated when none is
// given and returned once in the response.
func (uc *ManageSubscriptionsUseCase) Create(ctx context.Context, cmd CreateSubscriptionCommand) (*dto.SubscriptionDTO, error) {
	secret := cmd.Secret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
		secret = "whsec_" + hex.EncodeToString(buf)
	}
	maxRetries := cmd.MaxRetries
	if maxRetries <= 0 {
		maxRetries = uc.defaultMaxRetries
	}

	sid, err := id.New(id.PrefixSubscription)
	if err != nil {
		return nil, err
	}
	sub, err := webhook.NewSubscription(sid, cmd.URL, secret, cmd.EventTypes, maxRetries, uc.clock.Now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := uc.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	uc.logger.Infow("webhook subscription created", "subscription_sid", sid, "event_types", cmd.EventTypes)
	out := dto.ToSubscriptionDTO(sub)
	out.Secret = secret
	return out, nil
}

func (uc *ManageSubscriptionsUseCase) List(ctx context.Context) ([]*dto.SubscriptionDTO, error) {
	subs, err := uc.subRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	out := make([]*dto.SubscriptionDTO, 0, len(subs))
	for _, s := range subs {
		out = append(out, dto.ToSubscriptionDTO(s))
	}
	return out, nil
}

// Deactivate stops future fan-out to the subscriber. Pending deliveries run
// out their retries.
func (uc *ManageSubscriptionsUseCase) Deactivate(ctx context.Context, sid string) error {
	sub, err := uc.subRepo.GetBySID(ctx, sid)
	if errors.Is(err, webhook.ErrSubscriptionNotFound) {
		return apperrors.NewNotFoundError("webhook subscription not found", sid)
	}
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if err := uc.subRepo.Deactivate(ctx, sub.ID(), uc.clock.Now()); err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	uc.logger.Infow("webhook subscription deactivated", "subscription_sid", sid)
	return nil
}
