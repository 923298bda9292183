package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	appwebhook "github.com/orris-inc/satsgate/internal/application/webhook"
	"github.com/orris-inc/satsgate/internal/domain/webhook"
	vo "github.com/orris-inc/satsgate/internal/domain/webhook/valueobjects"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const (
	defaultRetryBaseDelay = 30 * time.Second
	defaultRetryMaxDelay  = time.Hour
)

// DeliveryMetrics counts attempt outcomes. Optional.
type DeliveryMetrics interface {
	WebhookAttempt(outcome string)
}

type DeliverConfig struct {
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DeliverWebhookUseCase performs one attempt of a claimed delivery and
// records the outcome.
type DeliverWebhookUseCase struct {
	subRepo      webhook.SubscriptionRepository
	deliveryRepo webhook.DeliveryRepository
	sender       appwebhook.Sender
	clock        biztime.Clock
	cfg          DeliverConfig
	metrics      DeliveryMetrics // Optional
	logger       logger.Interface
}

func NewDeliverWebhookUseCase(
	subRepo webhook.SubscriptionRepository,
	deliveryRepo webhook.DeliveryRepository,
	sender appwebhook.Sender,
	clock biztime.Clock,
	cfg DeliverConfig,
	logger logger.Interface,
) *DeliverWebhookUseCase {
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaultRetryMaxDelay
	}
	return &DeliverWebhookUseCase{
		subRepo:      subRepo,
		deliveryRepo: deliveryRepo,
		sender:       sender,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// SetMetrics sets the metrics sink (optional dependency injection)
func (uc *DeliverWebhookUseCase) SetMetrics(m DeliveryMetrics) {
	uc.metrics = m
}

// Execute attempts d once. The caller must hold the claim on d.
func (uc *DeliverWebhookUseCase) Execute(ctx context.Context, d *webhook.Delivery) error {
	if d.Status().IsFinal() {
		return webhook.ErrDeliveryFinal
	}

	sub, err := uc.subRepo.GetByID(ctx, d.SubscriptionID())
	if err != nil && !errors.Is(err, webhook.ErrSubscriptionNotFound) {
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	var (
		code    int
		sendErr error
	)
	if sub == nil || !sub.IsActive() {
		sendErr = errors.New("subscription is inactive")
	} else {
		code, sendErr = uc.sender.Send(ctx, appwebhook.SendRequest{
			URL:        sub.URL(),
			Secret:     sub.SecretKey(),
			EventType:  d.EventType(),
			DeliveryID: d.DeliveryID(),
			Payload:    d.Payload(),
			Timestamp:  uc.clock.Now(),
		})
	}

	now := uc.clock.Now()
	if sendErr == nil && code >= 200 && code < 300 {
		if err := d.MarkDelivered(code, now); err != nil {
			return err
		}
		if err := uc.deliveryRepo.SaveAttempt(ctx, d); err != nil {
			return fmt.Errorf("failed to save delivery: %w", err)
		}
		if err := uc.subRepo.RecordSuccess(ctx, d.SubscriptionID(), now); err != nil {
			uc.logger.Warnw("failed to reset subscription failures", "subscription_id", d.SubscriptionID(), "error", err)
		}
		uc.record("delivered")
		uc.logger.Debugw("webhook delivered",
			"delivery_id", d.DeliveryID(),
			"event_type", d.EventType(),
			"status_code", code,
		)
		return nil
	}

	var codePtr *int
	errMsg := ""
	if sendErr != nil {
		errMsg = sendErr.Error()
	} else {
		codePtr = &code
		errMsg = fmt.Sprintf("unexpected status %d", code)
	}

	if err := d.MarkAttemptFailed(codePtr, errMsg, uc.retryDelay(d.AttemptNumber()+1), now); err != nil {
		return err
	}
	if err := uc.deliveryRepo.SaveAttempt(ctx, d); err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	if sub != nil {
		if err := uc.subRepo.RecordFailure(ctx, sub.ID(), now); err != nil {
			uc.logger.Warnw("failed to record subscription failure", "subscription_id", sub.ID(), "error", err)
		}
	}

	if d.Status() == vo.DeliveryStatusFailed {
		uc.record("failed")
		uc.logger.Warnw("webhook delivery failed permanently",
			"delivery_id", d.DeliveryID(),
			"subscription_id", d.SubscriptionID(),
			"event_type", d.EventType(),
			"attempts", d.AttemptNumber(),
			"error", errMsg,
		)
		return fmt.Errorf("%w: %s", webhook.ErrDeliveryFailed, errMsg)
	}

	uc.record("retrying")
	uc.logger.Infow("webhook delivery will be retried",
		"delivery_id", d.DeliveryID(),
		"attempt", d.AttemptNumber(),
		"next_attempt_at", d.NextAttemptAt(),
		"error", errMsg,
	)
	return nil
}

// retryDelay is the wait after the given attempt: base * 2^(attempt-1), capped.
func (uc *DeliverWebhookUseCase) retryDelay(attempt int) time.Duration {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = uc.cfg.RetryBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = uc.cfg.RetryMaxDelay
	bo.Reset()

	delay := bo.NextBackOff()
	for i := 1; i < attempt; i++ {
		delay = bo.NextBackOff()
	}
	return delay
}

func (uc *DeliverWebhookUseCase) record(outcome string) {
	if uc.metrics != nil {
		uc.metrics.WebhookAttempt(outcome)
	}
}
