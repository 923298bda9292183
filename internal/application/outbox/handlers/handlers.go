// Package handlers binds outbox effects to the use cases that carry them out.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// EventEnqueuer fans an event out to webhook subscribers.
type EventEnqueuer interface {
	Execute(ctx context.Context, eventType string, payload []byte, idempotencyKey string) (int, error)
}

// Notifier sends customer emails.
type Notifier interface {
	SendPaymentConfirmed(ctx context.Context, to string, ev payment.ConfirmedEvent) error
	SendRefundIssued(ctx context.Context, to string, ev escrow.RefundedEvent) error
}

// FundsHolder opens the escrow of a confirmed payment.
type FundsHolder interface {
	Execute(ctx context.Context, ev payment.ConfirmedEvent) error
}

// WebhookFanout enqueues deliveries keyed by the message's dedup key, so a
// re-handled message produces no extra deliveries.
type WebhookFanout struct {
	enqueuer EventEnqueuer
}

func NewWebhookFanout(enqueuer EventEnqueuer) *WebhookFanout {
	return &WebhookFanout{enqueuer: enqueuer}
}

func (h *WebhookFanout) Handle(ctx context.Context, msg *outbox.Message) error {
	_, err := h.enqueuer.Execute(ctx, msg.EventType(), msg.Payload(), msg.DedupKey())
	return err
}

// EmailNotify sends the customer email belonging to an event. Events without
// a known recipient complete without sending.
type EmailNotify struct {
	notifier  Notifier
	orderRepo escrow.OrderRepository
	logger    logger.Interface
}

func NewEmailNotify(notifier Notifier, orderRepo escrow.OrderRepository, logger logger.Interface) *EmailNotify {
	return &EmailNotify{notifier: notifier, orderRepo: orderRepo, logger: logger}
}

func (h *EmailNotify) Handle(ctx context.Context, msg *outbox.Message) error {
	switch msg.EventType() {
	case payment.EventPaymentConfirmed:
		var ev payment.ConfirmedEvent
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType(), err)
		}
		to, err := h.recipient(ctx, ev.OrderID)
		if err != nil || to == "" {
			return err
		}
		return h.notifier.SendPaymentConfirmed(ctx, to, ev)

	case escrow.EventEscrowRefunded:
		var ev escrow.RefundedEvent
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType(), err)
		}
		to := ev.CustomerEmail
		if to == "" {
			var err error
			if to, err = h.recipient(ctx, ev.OrderID); err != nil || to == "" {
				return err
			}
		}
		return h.notifier.SendRefundIssued(ctx, to, ev)

	default:
		h.logger.Debugw("no email for event", "event_type", msg.EventType())
		return nil
	}
}

func (h *EmailNotify) recipient(ctx context.Context, orderID string) (string, error) {
	order, err := h.orderRepo.GetByOrderNo(ctx, orderID)
	if errors.Is(err, escrow.ErrOrderNotFound) {
		h.logger.Debugw("no order contact, email skipped", "order_id", orderID)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return order.CustomerEmail(), nil
}

// EscrowHold opens the escrow after a payment confirmation.
type EscrowHold struct {
	holder FundsHolder
}

func NewEscrowHold(holder FundsHolder) *EscrowHold {
	return &EscrowHold{holder: holder}
}

func (h *EscrowHold) Handle(ctx context.Context, msg *outbox.Message) error {
	if msg.EventType() != payment.EventPaymentConfirmed {
		return nil
	}
	var ev payment.ConfirmedEvent
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType(), err)
	}
	return h.holder.Execute(ctx, ev)
}
