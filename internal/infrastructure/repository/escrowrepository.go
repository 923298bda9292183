package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/db"
)

type EscrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

func (r *EscrowRepository) Create(ctx context.Context, e *escrow.Escrow) error {
	model := mappers.EscrowToModel(e)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return escrow.ErrEscrowAlreadyExists
		}
		return fmt.Errorf("failed to create escrow: %w", err)
	}

	e.SetID(model.ID)
	return nil
}

func (r *EscrowRepository) GetBySID(ctx context.Context, sid string) (*escrow.Escrow, error) {
	return r.first(ctx, "sid = ?", sid)
}

func (r *EscrowRepository) GetByOrderID(ctx context.Context, orderID string) (*escrow.Escrow, error) {
	return r.first(ctx, "order_id = ?", orderID)
}

// Update is a compare-and-swap on (version, status); two concurrent refunds
// cannot both succeed.
func (r *EscrowRepository) Update(ctx context.Context, e *escrow.Escrow, expected escrow.Status) error {
	model := mappers.EscrowToModel(e)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.EscrowModel{}).
		Where("id = ? AND version = ? AND status = ?", model.ID, model.Version, expected.String()).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"refund_reason": model.RefundReason,
			"refund_notes":  model.RefundNotes,
			"refunded_at":   model.RefundedAt,
			"released_at":   model.ReleasedAt,
			"version":       model.Version + 1,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update escrow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return escrow.ErrConcurrentModification
	}

	e.SetVersion(model.Version + 1)
	return nil
}

func (r *EscrowRepository) first(ctx context.Context, query string, args ...interface{}) (*escrow.Escrow, error) {
	var model models.EscrowModel

	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, escrow.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("failed to get escrow: %w", err)
	}

	return mappers.EscrowToDomain(&model), nil
}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Upsert(ctx context.Context, o *escrow.Order) error {
	tx := db.GetTxFromContext(ctx, r.db)

	var existing models.OrderModel
	err := tx.Where("order_no = ?", o.OrderNo()).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		model := mappers.OrderToModel(o)
		if err := tx.Create(model).Error; err != nil {
			if !isDuplicate(err) {
				return fmt.Errorf("failed to create order: %w", err)
			}
			// Lost the insert race; the winner's row is good enough.
			if err := tx.Where("order_no = ?", o.OrderNo()).First(&existing).Error; err != nil {
				return fmt.Errorf("failed to reload order: %w", err)
			}
			o.SetID(existing.ID)
			return nil
		}
		o.SetID(model.ID)
		return nil
	case err != nil:
		return fmt.Errorf("failed to get order: %w", err)
	}

	o.SetID(existing.ID)
	if existing.Status != string(escrow.OrderStatusPending) {
		return nil
	}

	values := map[string]interface{}{
		"total":      o.Total(),
		"currency":   o.Currency(),
		"updated_at": o.UpdatedAt(),
	}
	if o.CustomerEmail() != "" {
		values["customer_email"] = o.CustomerEmail()
	}
	if err := tx.Model(&models.OrderModel{}).Where("id = ?", existing.ID).Updates(values).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*escrow.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).Where("order_no = ?", orderNo).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, escrow.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return mappers.OrderToDomain(&model), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, o *escrow.Order) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("order_no = ?", o.OrderNo()).
		Updates(map[string]interface{}{
			"status":     string(o.Status()),
			"updated_at": o.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return escrow.ErrOrderNotFound
	}
	return nil
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Append(ctx context.Context, t *escrow.LedgerTransaction) error {
	model := mappers.LedgerTransactionToModel(t)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append ledger transaction: %w", err)
	}

	t.SetID(model.ID)
	return nil
}

func (r *LedgerRepository) ListByOrder(ctx context.Context, orderID string) ([]*escrow.LedgerTransaction, error) {
	var list []models.LedgerTransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}

	out := make([]*escrow.LedgerTransaction, 0, len(list))
	for i := range list {
		out = append(out, mappers.LedgerTransactionToDomain(&list[i]))
	}
	return out, nil
}
