package escrow

type Status string

const (
	StatusHeld     Status = "held"
	StatusReleased Status = "released"
	StatusRefunded Status = "refunded"
)

func (s Status) String() string { return string(s) }

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type LedgerType string

const (
	LedgerTypePayment LedgerType = "payment"
	LedgerTypeRefund  LedgerType = "refund"
	LedgerTypeRelease LedgerType = "release"
)
