package payment

import (
	"context"
	"time"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	// Update writes p if its version is unchanged in storage, otherwise
	// ErrConcurrentModification.
	Update(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	GetBySID(ctx context.Context, sid string) (*Payment, error)
	GetPendingByAddress(ctx context.Context, address string) (*Payment, error)
	GetPendingByOrderID(ctx context.Context, orderID string) (*Payment, error)
	GetPaidByOrderID(ctx context.Context, orderID string) (*Payment, error)
	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Payment, error)
	CountPendingOlderThan(ctx context.Context, before time.Time) (int64, error)
	// FindPaidWithoutOutbox lists paid payments that have no outbox record for
	// the confirmation event, which happens when a crash hit between the state
	// change and the outbox write.
	FindPaidWithoutOutbox(ctx context.Context, eventType string, limit int) ([]*Payment, error)
}

type ChainEventRepository interface {
	// Record stores the event. A source event id seen before yields
	// ErrDuplicateNotification.
	Record(ctx context.Context, e *ChainEvent) error
	MarkProcessed(ctx context.Context, id uint, now time.Time) error
	FindUnprocessed(ctx context.Context, receivedBefore time.Time, limit int) ([]*ChainEvent, error)
}
