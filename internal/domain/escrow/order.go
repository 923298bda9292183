package escrow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the local mirror of a storefront order. Only the fields needed for
// payment and refund bookkeeping live here.
type Order struct {
	id            uint
	orderNo       string
	customerEmail string
	status        OrderStatus
	total         decimal.Decimal
	currency      string
	createdAt     time.Time
	updatedAt     time.Time
}

func NewOrder(orderNo, customerEmail string, total decimal.Decimal, currency string, now time.Time) (*Order, error) {
	if orderNo == "" {
		return nil, fmt.Errorf("order number is required")
	}
	return &Order{
		orderNo:       orderNo,
		customerEmail: customerEmail,
		status:        OrderStatusPending,
		total:         total,
		currency:      currency,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructOrder(id uint, orderNo, customerEmail string, status OrderStatus, total decimal.Decimal, currency string, createdAt, updatedAt time.Time) *Order {
	return &Order{
		id:            id,
		orderNo:       orderNo,
		customerEmail: customerEmail,
		status:        status,
		total:         total,
		currency:      currency,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (o *Order) MarkPaid(now time.Time) error {
	switch o.status {
	case OrderStatusPaid, OrderStatusFulfilled:
		return nil
	case OrderStatusPending:
		o.status = OrderStatusPaid
		o.updatedAt = now
		return nil
	default:
		return fmt.Errorf("%w: cannot mark order %s as paid", ErrInvalidStateTransition, o.status)
	}
}

// MarkFulfilled closes a paid order once its funds are released.
func (o *Order) MarkFulfilled(now time.Time) error {
	switch o.status {
	case OrderStatusFulfilled:
		return nil
	case OrderStatusPaid:
		o.status = OrderStatusFulfilled
		o.updatedAt = now
		return nil
	default:
		return fmt.Errorf("%w: cannot fulfil order %s", ErrInvalidStateTransition, o.status)
	}
}

func (o *Order) MarkRefunded(now time.Time) {
	o.status = OrderStatusRefunded
	o.updatedAt = now
}

func (o *Order) SetID(id uint) {
	o.id = id
}

func (o *Order) ID() uint               { return o.id }
func (o *Order) OrderNo() string        { return o.orderNo }
func (o *Order) CustomerEmail() string  { return o.customerEmail }
func (o *Order) Status() OrderStatus    { return o.status }
func (o *Order) Total() decimal.Decimal { return o.total }
func (o *Order) Currency() string       { return o.currency }
func (o *Order) CreatedAt() time.Time   { return o.createdAt }
func (o *Order) UpdatedAt() time.Time   { return o.updatedAt }
