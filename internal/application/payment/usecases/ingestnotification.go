package usecases

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// NotificationPayload is the body posted by the blockchain indexing service.
type NotificationPayload struct {
	ID            string `json:"id"`
	Event         string `json:"event"`
	Address       string `json:"address"`
	Hash          string `json:"hash,omitempty"`
	Confirmations *int   `json:"confirmations,omitempty"`
	Value         *int64 `json:"value,omitempty"`
}

type IngestResult struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Deferred  bool   `json:"deferred,omitempty"`
	Matched   bool   `json:"matched,omitempty"`
	Paid      bool   `json:"paid,omitempty"`
	Underpaid bool   `json:"underpaid,omitempty"`
	PaymentID string `json:"paymentId,omitempty"`
}

// IngestMetrics counts notifications by outcome. Optional.
type IngestMetrics interface {
	NotificationIngested(outcome string)
}

// ChainEventProcessor applies a stored event.
type ChainEventProcessor interface {
	Execute(ctx context.Context, ev *payment.ChainEvent) (*ProcessOutcome, error)
}

// IngestNotificationUseCase records an inbound notification and applies it.
// Once the event is stored the caller gets a success answer even when applying
// it fails; the replay sweep picks it up later.
type IngestNotificationUseCase struct {
	eventRepo payment.ChainEventRepository
	processor ChainEventProcessor
	secret    []byte
	clock     biztime.Clock
	metrics   IngestMetrics // Optional
	logger    logger.Interface
}

func NewIngestNotificationUseCase(
	eventRepo payment.ChainEventRepository,
	processor ChainEventProcessor,
	secret string,
	clock biztime.Clock,
	logger logger.Interface,
) *IngestNotificationUseCase {
	return &IngestNotificationUseCase{
		eventRepo: eventRepo,
		processor: processor,
		secret:    []byte(secret),
		clock:     clock,
		logger:    logger,
	}
}

// SetMetrics sets the metrics sink (optional dependency injection)
func (uc *IngestNotificationUseCase) SetMetrics(m IngestMetrics) {
	uc.metrics = m
}

// Execute verifies, stores and processes one notification. signature is the
// hex HMAC-SHA256 of body; it is only checked when a secret is configured.
func (uc *IngestNotificationUseCase) Execute(ctx context.Context, body []byte, signature string) (*IngestResult, error) {
	if err := uc.verify(body, signature); err != nil {
		uc.record("rejected")
		return nil, err
	}

	var in NotificationPayload
	if err := json.Unmarshal(body, &in); err != nil {
		uc.record("invalid")
		return nil, apperrors.NewValidationError("invalid notification payload", err.Error())
	}

	params := payment.ChainEventParams{
		SourceEventID: strings.TrimSpace(in.ID),
		EventType:     in.Event,
		Address:       strings.TrimSpace(in.Address),
		TxHash:        in.Hash,
		ValueSats:     in.Value,
		RawPayload:    body,
	}
	if in.Confirmations != nil {
		params.Confirmations = *in.Confirmations
	}
	ev, err := payment.NewChainEvent(params, uc.clock.Now())
	if err != nil {
		uc.record("invalid")
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.eventRepo.Record(ctx, ev); err != nil {
		if errors.Is(err, payment.ErrDuplicateNotification) {
			uc.logger.Debugw("duplicate chain notification ignored", "source_event_id", ev.SourceEventID())
			uc.record("duplicate")
			return &IngestResult{Received: true, Duplicate: true}, nil
		}
		uc.record("error")
		return nil, fmt.Errorf("failed to record notification: %w", err)
	}

	result := &IngestResult{Received: true}
	outcome, err := uc.processor.Execute(ctx, ev)
	if err != nil {
		uc.logger.Errorw("failed to process chain notification, deferred to replay",
			"source_event_id", ev.SourceEventID(),
			"address", ev.Address(),
			"error", err,
		)
		uc.record("deferred")
		result.Deferred = true
		return result, nil
	}

	result.Matched = outcome.Matched
	result.Paid = outcome.Paid
	result.Underpaid = outcome.Underpaid
	result.PaymentID = outcome.PaymentSID
	uc.record("processed")
	return result, nil
}

func (uc *IngestNotificationUseCase) verify(body []byte, signature string) error {
	if len(uc.secret) == 0 {
		return nil
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return apperrors.NewUnauthorizedError("missing or malformed notification signature")
	}
	mac := hmac.New(sha256.New, uc.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return apperrors.NewUnauthorizedError("invalid notification signature")
	}
	return nil
}

func (uc *IngestNotificationUseCase) record(outcome string) {
	if uc.metrics != nil {
		uc.metrics.NotificationIngested(outcome)
	}
}
