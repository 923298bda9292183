package mappers

import (
	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
)

func EscrowToModel(e *escrow.Escrow) *models.EscrowModel {
	return &models.EscrowModel{
		ID:           e.ID(),
		SID:          e.SID(),
		OrderID:      e.OrderID(),
		Amount:       e.Amount(),
		Currency:     e.Currency(),
		Status:       e.Status().String(),
		RefundReason: e.RefundReason(),
		RefundNotes:  e.RefundNotes(),
		RefundedAt:   e.RefundedAt(),
		ReleasedAt:   e.ReleasedAt(),
		Version:      e.Version(),
		CreatedAt:    e.CreatedAt(),
		UpdatedAt:    e.UpdatedAt(),
	}
}

func EscrowToDomain(model *models.EscrowModel) *escrow.Escrow {
	return escrow.ReconstructEscrow(
		model.ID, model.SID, model.OrderID, model.Amount, model.Currency,
		escrow.Status(model.Status), model.RefundReason, model.RefundNotes,
		model.RefundedAt, model.ReleasedAt, model.Version, model.CreatedAt, model.UpdatedAt,
	)
}

func OrderToModel(o *escrow.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:            o.ID(),
		OrderNo:       o.OrderNo(),
		CustomerEmail: o.CustomerEmail(),
		Status:        string(o.Status()),
		Total:         o.Total(),
		Currency:      o.Currency(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
	}
}

func OrderToDomain(model *models.OrderModel) *escrow.Order {
	return escrow.ReconstructOrder(
		model.ID, model.OrderNo, model.CustomerEmail, escrow.OrderStatus(model.Status),
		model.Total, model.Currency, model.CreatedAt, model.UpdatedAt,
	)
}

func LedgerTransactionToModel(t *escrow.LedgerTransaction) *models.LedgerTransactionModel {
	return &models.LedgerTransactionModel{
		ID:        t.ID(),
		SID:       t.SID(),
		EscrowID:  t.EscrowID(),
		OrderID:   t.OrderID(),
		Type:      string(t.Type()),
		Amount:    t.Amount(),
		Currency:  t.Currency(),
		Reference: t.Reference(),
		CreatedAt: t.CreatedAt(),
	}
}

func LedgerTransactionToDomain(model *models.LedgerTransactionModel) *escrow.LedgerTransaction {
	return escrow.ReconstructLedgerTransaction(
		model.ID, model.SID, model.EscrowID, model.OrderID, escrow.LedgerType(model.Type),
		model.Amount, model.Currency, model.Reference, model.CreatedAt,
	)
}
