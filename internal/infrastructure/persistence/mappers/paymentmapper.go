package mappers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/satsgate/internal/domain/payment"
	vo "github.com/orris-inc/satsgate/internal/domain/payment/valueobjects"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/mapper"
)

func PaymentToModel(p *payment.Payment) *models.PaymentModel {
	model := &models.PaymentModel{
		ID:             p.ID(),
		SID:            p.SID(),
		OrderID:        p.OrderID(),
		WalletID:       p.WalletID(),
		Address:        p.Address(),
		AmountExpected: p.AmountExpected(),
		FiatCurrency:   p.FiatCurrency(),
		PaymentStatus:  p.Status().String(),
		Confirmations:  p.Confirmations(),
		TxID:           p.TxID(),
		ExpiresAt:      p.ExpiresAt(),
		PaidAt:         p.PaidAt(),
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}

	if p.Status() == vo.PaymentStatusPending {
		orderID := p.OrderID()
		model.OpenOrderID = &orderID
	}
	if fiat := p.AmountFiat(); fiat != nil {
		model.AmountFiat = decimal.NewNullDecimal(*fiat)
	}
	if len(p.Metadata()) > 0 {
		model.Metadata = p.Metadata()
	}

	return model
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	status := vo.PaymentStatus(model.PaymentStatus)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.PaymentStatus)
	}

	var fiat *decimal.Decimal
	if model.AmountFiat.Valid {
		d := model.AmountFiat.Decimal
		fiat = &d
	}

	return payment.ReconstructPayment(
		model.ID, model.SID, model.OrderID, model.WalletID, model.Address,
		model.AmountExpected, fiat, model.FiatCurrency, status, model.Confirmations,
		model.TxID, model.Metadata, model.ExpiresAt, model.PaidAt, model.Version,
		model.CreatedAt, model.UpdatedAt,
	), nil
}

func PaymentsToDomain(list []models.PaymentModel) ([]*payment.Payment, error) {
	return mapper.MapSliceErr(list, func(m models.PaymentModel) (*payment.Payment, error) {
		return PaymentToDomain(&m)
	})
}

func ChainEventToModel(e *payment.ChainEvent) *models.ChainEventModel {
	return &models.ChainEventModel{
		ID:            e.ID(),
		SourceEventID: e.SourceEventID(),
		EventType:     e.EventType(),
		Address:       e.Address(),
		TxHash:        e.TxHash(),
		Confirmations: e.Confirmations(),
		ValueSats:     e.ValueSats(),
		RawPayload:    e.RawPayload(),
		Processed:     e.IsProcessed(),
		ProcessedAt:   e.ProcessedAt(),
		ReceivedAt:    e.ReceivedAt(),
	}
}

func ChainEventToDomain(model *models.ChainEventModel) *payment.ChainEvent {
	return payment.ReconstructChainEvent(
		model.ID, model.SourceEventID, model.EventType, model.Address, model.TxHash,
		model.Confirmations, model.ValueSats, model.RawPayload, model.Processed,
		model.ProcessedAt, model.ReceivedAt,
	)
}
