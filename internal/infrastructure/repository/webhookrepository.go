package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/satsgate/internal/domain/webhook"
	vo "github.com/orris-inc/satsgate/internal/domain/webhook/valueobjects"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/db"
)

type WebhookSubscriptionRepository struct {
	db *gorm.DB
}

func NewWebhookSubscriptionRepository(db *gorm.DB) *WebhookSubscriptionRepository {
	return &WebhookSubscriptionRepository{db: db}
}

func (r *WebhookSubscriptionRepository) Create(ctx context.Context, s *webhook.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create webhook subscription: %w", err)
	}

	s.SetID(model.ID)
	return nil
}

func (r *WebhookSubscriptionRepository) GetByID(ctx context.Context, id uint) (*webhook.Subscription, error) {
	var model models.WebhookSubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, webhook.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get webhook subscription: %w", err)
	}

	return mappers.SubscriptionToDomain(&model), nil
}

func (r *WebhookSubscriptionRepository) GetBySID(ctx context.Context, sid string) (*webhook.Subscription, error) {
	var model models.WebhookSubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, webhook.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get webhook subscription by sid: %w", err)
	}

	return mappers.SubscriptionToDomain(&model), nil
}

func (r *WebhookSubscriptionRepository) List(ctx context.Context) ([]*webhook.Subscription, error) {
	var list []models.WebhookSubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list webhook subscriptions: %w", err)
	}

	return mappers.SubscriptionsToDomain(list), nil
}

func (r *WebhookSubscriptionRepository) ListActive(ctx context.Context) ([]*webhook.Subscription, error) {
	var list []models.WebhookSubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list active webhook subscriptions: %w", err)
	}

	return mappers.SubscriptionsToDomain(list), nil
}

func (r *WebhookSubscriptionRepository) Deactivate(ctx context.Context, id uint, now time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"is_active": false, "updated_at": now})
}

func (r *WebhookSubscriptionRepository) RecordSuccess(ctx context.Context, id uint, now time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"consecutive_failures": 0,
		"last_success_at":      now,
		"updated_at":           now,
	})
}

func (r *WebhookSubscriptionRepository) RecordFailure(ctx context.Context, id uint, now time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"consecutive_failures": gorm.Expr("consecutive_failures + 1"),
		"last_failure_at":      now,
		"updated_at":           now,
	})
}

func (r *WebhookSubscriptionRepository) update(ctx context.Context, id uint, values map[string]interface{}) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookSubscriptionModel{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update webhook subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return webhook.ErrSubscriptionNotFound
	}
	return nil
}

type WebhookDeliveryRepository struct {
	db *gorm.DB
}

func NewWebhookDeliveryRepository(db *gorm.DB) *WebhookDeliveryRepository {
	return &WebhookDeliveryRepository{db: db}
}

func (r *WebhookDeliveryRepository) CreateBatch(ctx context.Context, deliveries []*webhook.Delivery) (int, error) {
	if len(deliveries) == 0 {
		return 0, nil
	}

	list := make([]*models.WebhookDeliveryModel, 0, len(deliveries))
	for _, d := range deliveries {
		list = append(list, mappers.DeliveryToModel(d))
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "delivery_id"}}, DoNothing: true}).
		Create(&list)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create webhook deliveries: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

func (r *WebhookDeliveryRepository) GetByDeliveryID(ctx context.Context, deliveryID string) (*webhook.Delivery, error) {
	var model models.WebhookDeliveryModel

	if err := db.GetTxFromContext(ctx, r.db).Where("delivery_id = ?", deliveryID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, webhook.ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("failed to get webhook delivery: %w", err)
	}

	return mappers.DeliveryToDomain(&model)
}

func (r *WebhookDeliveryRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*webhook.Delivery, error) {
	var claimed []models.WebhookDeliveryModel

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var candidates []models.WebhookDeliveryModel
		if err := tx.Scopes(db.LockForClaim(), db.DueBefore("locked_until", now)).
			Where("status IN ? AND next_attempt_at <= ?",
				[]string{vo.DeliveryStatusPending.String(), vo.DeliveryStatusRetrying.String()}, now).
			Order("next_attempt_at ASC").
			Limit(limit).
			Find(&candidates).Error; err != nil {
			return err
		}

		for i := range candidates {
			result := tx.Model(&models.WebhookDeliveryModel{}).
				Scopes(db.DueBefore("locked_until", now)).
				Where("id = ?", candidates[i].ID).
				Update("locked_until", leaseUntil)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				claimed = append(claimed, candidates[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim due deliveries: %w", err)
	}

	out := make([]*webhook.Delivery, 0, len(claimed))
	for i := range claimed {
		d, err := mappers.DeliveryToDomain(&claimed[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *WebhookDeliveryRepository) SaveAttempt(ctx context.Context, d *webhook.Delivery) error {
	model := mappers.DeliveryToModel(d)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookDeliveryModel{}).
		Where("id = ? AND attempt_number = ?", model.ID, model.AttemptNumber-1).
		Updates(map[string]interface{}{
			"attempt_number":  model.AttemptNumber,
			"status":          model.Status,
			"response_code":   model.ResponseCode,
			"last_error":      model.LastError,
			"next_attempt_at": model.NextAttemptAt,
			"delivered_at":    model.DeliveredAt,
			"locked_until":    nil,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save delivery attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s attempt %d", webhook.ErrAttemptConflict, model.DeliveryID, model.AttemptNumber)
	}
	return nil
}

func (r *WebhookDeliveryRepository) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookDeliveryModel{}).
		Where("status = ? AND updated_at >= ?", vo.DeliveryStatusFailed, since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count failed deliveries: %w", err)
	}

	return count, nil
}

func (r *WebhookDeliveryRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookDeliveryModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count deliveries by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
