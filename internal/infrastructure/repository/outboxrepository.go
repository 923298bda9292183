package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/db"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Add relies on the unique dedup_key: a message that was written before is
// skipped, which makes replays and reconciliation idempotent.
func (r *OutboxRepository) Add(ctx context.Context, msgs ...*outbox.Message) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	list := make([]*models.OutboxMessageModel, 0, len(msgs))
	for _, m := range msgs {
		list = append(list, mappers.OutboxMessageToModel(m))
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedup_key"}}, DoNothing: true}).
		Create(&list)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to add outbox messages: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

func (r *OutboxRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*outbox.Message, error) {
	var claimed []models.OutboxMessageModel

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var candidates []models.OutboxMessageModel
		if err := tx.Scopes(db.LockForClaim(), db.DueBefore("locked_until", now)).
			Where("status = ? AND next_attempt_at <= ?", outbox.StatusPending, now).
			Order("next_attempt_at ASC, id ASC").
			Limit(limit).
			Find(&candidates).Error; err != nil {
			return err
		}

		for i := range candidates {
			result := tx.Model(&models.OutboxMessageModel{}).
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
		return nil, fmt.Errorf("failed to claim outbox messages: %w", err)
	}

	out := make([]*outbox.Message, 0, len(claimed))
	for i := range claimed {
		out = append(out, mappers.OutboxMessageToDomain(&claimed[i]))
	}
	return out, nil
}

func (r *OutboxRepository) Save(ctx context.Context, m *outbox.Message) error {
	model := mappers.OutboxMessageToModel(m)

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OutboxMessageModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"attempts":        model.Attempts,
			"next_attempt_at": model.NextAttemptAt,
			"last_error":      model.LastError,
			"processed_at":    model.ProcessedAt,
			"locked_until":    nil,
			"updated_at":      model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to save outbox message: %w", err)
	}
	return nil
}

func (r *OutboxRepository) CountByStatus(ctx context.Context) (map[outbox.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OutboxMessageModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count outbox messages: %w", err)
	}

	counts := make(map[outbox.Status]int64, len(rows))
	for _, row := range rows {
		counts[outbox.Status(row.Status)] = row.Count
	}
	return counts, nil
}
