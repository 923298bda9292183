package payment

import "time"

// Event names published through the outbox.
const (
	EventPaymentConfirmed = "payment.confirmed"
	EventPaymentExpired   = "payment.expired"
)

// ConfirmedEvent is the payload emitted once a payment reaches its threshold.
// Consumers deduplicate on PaymentID.
type ConfirmedEvent struct {
	PaymentID     string    `json:"payment_id"`
	OrderID       string    `json:"order_id"`
	WalletID      string    `json:"wallet_id,omitempty"`
	Address       string    `json:"address"`
	AmountBTC     string    `json:"amount_btc"`
	AmountFiat    string    `json:"amount_fiat,omitempty"`
	FiatCurrency  string    `json:"fiat_currency,omitempty"`
	TxID          string    `json:"txid"`
	Confirmations int       `json:"confirmations"`
	PaidAt        time.Time `json:"paid_at"`
}

func NewConfirmedEvent(p *Payment) ConfirmedEvent {
	ev := ConfirmedEvent{
		PaymentID:     p.SID(),
		OrderID:       p.OrderID(),
		WalletID:      p.WalletID(),
		Address:       p.Address(),
		AmountBTC:     p.AmountBTCString(),
		Confirmations: p.Confirmations(),
	}
	if p.AmountFiat() != nil {
		ev.AmountFiat = p.AmountFiat().StringFixed(2)
		ev.FiatCurrency = p.FiatCurrency()
	}
	if p.TxID() != nil {
		ev.TxID = *p.TxID()
	}
	if p.PaidAt() != nil {
		ev.PaidAt = *p.PaidAt()
	}
	return ev
}
