package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/satsgate/internal/domain/payment"
	vo "github.com/orris-inc/satsgate/internal/domain/payment/valueobjects"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/constants"
	"github.com/orris-inc/satsgate/internal/shared/db"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	p.SetID(model.ID)

	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatus,
			"open_order_id":  model.OpenOrderID,
			"confirmations":  model.Confirmations,
			"txid":           model.TxID,
			"paid_at":        model.PaidAt,
			"metadata":       model.Metadata,
			"version":        model.Version + 1,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrConcurrentModification
	}

	p.SetVersion(model.Version + 1)
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	return r.first(ctx, "failed to get payment", "id = ?", id)
}

func (r *PaymentRepository) GetBySID(ctx context.Context, sid string) (*payment.Payment, error) {
	return r.first(ctx, "failed to get payment by sid", "sid = ?", sid)
}

func (r *PaymentRepository) GetPendingByAddress(ctx context.Context, address string) (*payment.Payment, error) {
	return r.first(ctx, "failed to get pending payment by address",
		"address = ? AND payment_status = ?", address, vo.PaymentStatusPending)
}

func (r *PaymentRepository) GetPendingByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.first(ctx, "failed to get pending payment by order",
		"order_id = ? AND payment_status = ?", orderID, vo.PaymentStatusPending)
}

func (r *PaymentRepository) GetPaidByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.first(ctx, "failed to get paid payment by order",
		"order_id = ? AND payment_status = ?", orderID, vo.PaymentStatusPaid)
}

func (r *PaymentRepository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	var list []models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("payment_status = ? AND expires_at < ?", vo.PaymentStatusPending, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to get expired payments: %w", err)
	}

	return mappers.PaymentsToDomain(list)
}

func (r *PaymentRepository) CountPendingOlderThan(ctx context.Context, before time.Time) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("payment_status = ? AND created_at < ?", vo.PaymentStatusPending, before).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count stale pending payments: %w", err)
	}

	return count, nil
}

func (r *PaymentRepository) FindPaidWithoutOutbox(ctx context.Context, eventType string, limit int) ([]*payment.Payment, error) {
	var list []models.PaymentModel

	notExists := fmt.Sprintf(
		"NOT EXISTS (SELECT 1 FROM %s o WHERE o.event_type = ? AND o.aggregate_id = %s.sid)",
		constants.TableOutboxMessages, constants.TablePayments,
	)

	if err := db.GetTxFromContext(ctx, r.db).
		Where("payment_status = ?", vo.PaymentStatusPaid).
		Where(notExists, eventType).
		Order("paid_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to find paid payments without outbox: %w", err)
	}

	return mappers.PaymentsToDomain(list)
}

func (r *PaymentRepository) first(ctx context.Context, failMsg string, query string, args ...interface{}) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where(query, args...).
		Order("id DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%s: %w", failMsg, err)
	}

	return mappers.PaymentToDomain(&model)
}

type ChainEventRepository struct {
	db *gorm.DB
}

func NewChainEventRepository(db *gorm.DB) *ChainEventRepository {
	return &ChainEventRepository{db: db}
}

func (r *ChainEventRepository) Record(ctx context.Context, e *payment.ChainEvent) error {
	model := mappers.ChainEventToModel(e)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return payment.ErrDuplicateNotification
		}
		return fmt.Errorf("failed to record blockchain event: %w", err)
	}

	e.SetID(model.ID)
	return nil
}

func (r *ChainEventRepository) MarkProcessed(ctx context.Context, id uint, now time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ChainEventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"processed": true, "processed_at": now})
	if result.Error != nil {
		return fmt.Errorf("failed to mark event processed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrEventNotFound
	}
	return nil
}

func (r *ChainEventRepository) FindUnprocessed(ctx context.Context, receivedBefore time.Time, limit int) ([]*payment.ChainEvent, error) {
	var list []models.ChainEventModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("processed = ? AND received_at < ?", false, receivedBefore).
		Order("received_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to find unprocessed events: %w", err)
	}

	events := make([]*payment.ChainEvent, 0, len(list))
	for i := range list {
		events = append(events, mappers.ChainEventToDomain(&list[i]))
	}
	return events, nil
}
