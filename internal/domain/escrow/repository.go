package escrow

import "context"

type EscrowRepository interface {
	// Create stores a new escrow. A second escrow for the same order yields
	// ErrEscrowAlreadyExists.
	Create(ctx context.Context, e *Escrow) error
	GetBySID(ctx context.Context, sid string) (*Escrow, error)
	GetByOrderID(ctx context.Context, orderID string) (*Escrow, error)
	// Update applies e only if the stored row still has e's version and the
	// status it was loaded with. Otherwise ErrConcurrentModification.
	Update(ctx context.Context, e *Escrow, expected Status) error
}

type OrderRepository interface {
	// Upsert creates the order or refreshes its contact and total while it is
	// still pending.
	Upsert(ctx context.Context, o *Order) error
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	UpdateStatus(ctx context.Context, o *Order) error
}

type LedgerRepository interface {
	Append(ctx context.Context, t *LedgerTransaction) error
	ListByOrder(ctx context.Context, orderID string) ([]*LedgerTransaction, error)
}
