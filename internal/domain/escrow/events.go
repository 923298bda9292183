package escrow

import "time"

const (
	EventEscrowRefunded = "escrow.refunded"
	EventEscrowReleased = "escrow.released"
)

// RefundedEvent is the payload published after a refund commits.
type RefundedEvent struct {
	EscrowID      string    `json:"escrowId"`
	OrderID       string    `json:"orderId"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Reason        string    `json:"reason"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	RefundedAt    time.Time `json:"refundedAt"`
}

// ReleasedEvent is the payload published once held funds go to the merchant.
type ReleasedEvent struct {
	EscrowID   string    `json:"escrowId"`
	OrderID    string    `json:"orderId"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	ReleasedAt time.Time `json:"releasedAt"`
}
