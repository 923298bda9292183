// Package escrow holds funds of paid orders until they are released to the
// merchant or refunded to the customer.
package escrow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Escrow struct {
	id           uint
	sid          string
	orderID      string
	amount       decimal.Decimal
	currency     string
	status       Status
	refundReason string
	refundNotes  string
	refundedAt   *time.Time
	releasedAt   *time.Time
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// NewEscrow opens a held escrow for a paid order.
func NewEscrow(sid, orderID string, amount decimal.Decimal, currency string, now time.Time) (*Escrow, error) {
	if sid == "" || orderID == "" {
		return nil, fmt.Errorf("sid and order id are required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("escrow amount must be positive")
	}
	if currency == "" {
		currency = "BTC"
	}
	return &Escrow{
		sid:       sid,
		orderID:   orderID,
		amount:    amount,
		currency:  currency,
		status:    StatusHeld,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructEscrow(
	id uint,
	sid, orderID string,
	amount decimal.Decimal,
	currency string,
	status Status,
	refundReason, refundNotes string,
	refundedAt, releasedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *Escrow {
	return &Escrow{
		id:           id,
		sid:          sid,
		orderID:      orderID,
		amount:       amount,
		currency:     currency,
		status:       status,
		refundReason: refundReason,
		refundNotes:  refundNotes,
		refundedAt:   refundedAt,
		releasedAt:   releasedAt,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// Refund moves a held escrow to refunded. Any other state is rejected with
// ErrInvalidStateTransition.
func (e *Escrow) Refund(reason, notes string, now time.Time) error {
	if e.status != StatusHeld {
		return fmt.Errorf("%w: cannot refund escrow in status %s", ErrInvalidStateTransition, e.status)
	}
	e.status = StatusRefunded
	e.refundReason = reason
	e.refundNotes = notes
	e.refundedAt = &now
	e.updatedAt = now
	return nil
}

// Release hands held funds to the merchant. Only a held escrow can be released.
func (e *Escrow) Release(now time.Time) error {
	if e.status != StatusHeld {
		return fmt.Errorf("%w: cannot release escrow in status %s", ErrInvalidStateTransition, e.status)
	}
	e.status = StatusReleased
	e.releasedAt = &now
	e.updatedAt = now
	return nil
}

func (e *Escrow) SetID(id uint) {
	e.id = id
}

func (e *Escrow) SetVersion(v int) {
	e.version = v
}

func (e *Escrow) ID() uint                { return e.id }
func (e *Escrow) SID() string             { return e.sid }
func (e *Escrow) OrderID() string         { return e.orderID }
func (e *Escrow) Amount() decimal.Decimal { return e.amount }
func (e *Escrow) Currency() string        { return e.currency }
func (e *Escrow) Status() Status          { return e.status }
func (e *Escrow) RefundReason() string    { return e.refundReason }
func (e *Escrow) RefundNotes() string     { return e.refundNotes }
func (e *Escrow) RefundedAt() *time.Time  { return e.refundedAt }
func (e *Escrow) ReleasedAt() *time.Time  { return e.releasedAt }
func (e *Escrow) Version() int            { return e.version }
func (e *Escrow) CreatedAt() time.Time    { return e.createdAt }
func (e *Escrow) UpdatedAt() time.Time    { return e.updatedAt }
