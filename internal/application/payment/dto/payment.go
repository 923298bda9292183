package dto

import (
	"time"

	"github.com/orris-inc/satsgate/internal/domain/payment"
)

type PaymentDTO struct {
	ID            string                 `json:"id"`
	OrderID       string                 `json:"orderId"`
	WalletID      string                 `json:"walletId,omitempty"`
	Address       string                 `json:"address"`
	AmountBTC     string                 `json:"amountBtc"`
	AmountFiat    string                 `json:"amountFiat,omitempty"`
	FiatCurrency  string                 `json:"fiatCurrency,omitempty"`
	Status        string                 `json:"status"`
	Confirmations int                    `json:"confirmations"`
	TxID          string                 `json:"txid,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	ExpiresAt     time.Time              `json:"expiresAt"`
	PaidAt        *time.Time             `json:"paidAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

func ToPaymentDTO(p *payment.Payment) *PaymentDTO {
	d := &PaymentDTO{
		ID:            p.SID(),
		OrderID:       p.OrderID(),
		WalletID:      p.WalletID(),
		Address:       p.Address(),
		AmountBTC:     p.AmountBTCString(),
		FiatCurrency:  p.FiatCurrency(),
		Status:        p.Status().String(),
		Confirmations: p.Confirmations(),
		Metadata:      p.Metadata(),
		ExpiresAt:     p.ExpiresAt(),
		PaidAt:        p.PaidAt(),
		CreatedAt:     p.CreatedAt(),
	}
	if p.AmountFiat() != nil {
		d.AmountFiat = p.AmountFiat().StringFixed(2)
	}
	if p.TxID() != nil {
		d.TxID = *p.TxID()
	}
	return d
}
