package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/db"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// freeCondition matches entries that can be handed out at a given time. A
// lapsed reservation is free even though is_reserved is still set.
const freeCondition = "payment_confirmed = ? AND (is_reserved = ? OR reservation_expires_at < ?)"

type PoolRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPoolRepository(db *gorm.DB, logger logger.Interface) *PoolRepository {
	return &PoolRepository{db: db, logger: logger}
}

func (r *PoolRepository) Insert(ctx context.Context, entry *addresspool.PoolEntry) error {
	model := mappers.PoolEntryToModel(entry)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s already pooled", addresspool.ErrReservationConflict, entry.Address())
		}
		return fmt.Errorf("failed to insert pool entry: %w", err)
	}

	entry.SetID(model.ID)
	return nil
}

func (r *PoolRepository) InsertBatch(ctx context.Context, entries []*addresspool.PoolEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	list := make([]*models.PoolEntryModel, 0, len(entries))
	for _, e := range entries {
		list = append(list, mappers.PoolEntryToModel(e))
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&list)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to insert pool entries: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// claimWindow is how many free rows one claim considers. Losing the version
// race on one candidate moves on to the next instead of failing the caller.
const claimWindow = 8

func (r *PoolRepository) ClaimFree(ctx context.Context, orderID string, now time.Time, ttl time.Duration) (*addresspool.PoolEntry, error) {
	var claimed *models.PoolEntryModel

	err := db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var candidates []models.PoolEntryModel
		if err := tx.Scopes(db.LockForClaim()).
			Where(freeCondition, false, false, now).
			Order("id ASC").
			Limit(claimWindow).
			Find(&candidates).Error; err != nil {
			return fmt.Errorf("failed to select free address: %w", err)
		}
		if len(candidates) == 0 {
			return addresspool.ErrPoolExhausted
		}

		for i := range candidates {
			model := &candidates[i]
			entry, err := mappers.PoolEntryToDomain(model)
			if err != nil {
				return err
			}
			if err := entry.Reserve(orderID, now, ttl); err != nil {
				continue
			}

			// The version guard keeps the claim exclusive on dialects without row locks.
			result := tx.Model(&models.PoolEntryModel{}).
				Where("id = ? AND version = ?", model.ID, model.Version).
				Updates(map[string]interface{}{
					"is_reserved":            true,
					"reserved_to_order":      orderID,
					"reserved_at":            entry.ReservedAt(),
					"reservation_expires_at": entry.ReservationExpiresAt(),
					"version":                model.Version + 1,
					"updated_at":             now,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to claim address: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				continue
			}

			model.IsReserved = true
			model.ReservedToOrder = entry.ReservedToOrder()
			model.ReservedAt = entry.ReservedAt()
			model.ReservationExpiresAt = entry.ReservationExpiresAt()
			model.Version++
			model.UpdatedAt = now
			claimed = model
			return nil
		}
		return addresspool.ErrReservationConflict
	})
	if err != nil {
		return nil, err
	}

	return mappers.PoolEntryToDomain(claimed)
}

func (r *PoolRepository) FindLiveReservation(ctx context.Context, orderID string, now time.Time) (*addresspool.PoolEntry, error) {
	var model models.PoolEntryModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("reserved_to_order = ? AND is_reserved = ? AND payment_confirmed = ? AND reservation_expires_at >= ?",
			orderID, true, false, now).
		Order("id DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, addresspool.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return mappers.PoolEntryToDomain(&model)
}

func (r *PoolRepository) GetByAddress(ctx context.Context, address string) (*addresspool.PoolEntry, error) {
	var model models.PoolEntryModel

	if err := db.GetTxFromContext(ctx, r.db).Where("address = ?", address).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, addresspool.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get pool entry: %w", err)
	}

	return mappers.PoolEntryToDomain(&model)
}

func (r *PoolRepository) CountFree(ctx context.Context, now time.Time) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PoolEntryModel{}).
		Where(freeCondition, false, false, now).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count free addresses: %w", err)
	}

	return count, nil
}

func (r *PoolRepository) Retire(ctx context.Context, address string, now time.Time) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.PoolEntryModel{}).
		Where("address = ? AND payment_confirmed = ?", address, false).
		Updates(map[string]interface{}{
			"payment_confirmed": true,
			"is_reserved":       true,
			"confirmed_at":      now,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to retire address: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Nothing changed: either unknown or retired already.
	if _, err := r.GetByAddress(ctx, address); err != nil {
		return err
	}
	return nil
}

func (r *PoolRepository) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PoolEntryModel{}).
		Where("is_reserved = ? AND payment_confirmed = ? AND reservation_expires_at < ?", true, false, now).
		Updates(releasedColumns(now))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to release expired reservations: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Infow("released expired address reservations", "count", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

func (r *PoolRepository) ReleaseForOrder(ctx context.Context, address, orderID string, now time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PoolEntryModel{}).
		Where("address = ? AND reserved_to_order = ? AND payment_confirmed = ?", address, orderID, false).
		Updates(releasedColumns(now))
	if result.Error != nil {
		return fmt.Errorf("failed to release address: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	entry, err := r.GetByAddress(ctx, address)
	if err != nil {
		return err
	}
	if entry.PaymentConfirmed() {
		return addresspool.ErrEntryRetired
	}
	// Already released or handed to another order.
	return nil
}

func (r *PoolRepository) Stats(ctx context.Context, now time.Time) (*addresspool.PoolStats, error) {
	var row struct {
		Total    int64
		Free     int64
		Reserved int64
		Expired  int64
		Retired  int64
	}

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PoolEntryModel{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN payment_confirmed = ? AND (is_reserved = ? OR reservation_expires_at < ?) THEN 1 ELSE 0 END), 0) AS free,
			COALESCE(SUM(CASE WHEN payment_confirmed = ? AND is_reserved = ? AND reservation_expires_at >= ? THEN 1 ELSE 0 END), 0) AS reserved,
			COALESCE(SUM(CASE WHEN payment_confirmed = ? AND is_reserved = ? AND reservation_expires_at < ? THEN 1 ELSE 0 END), 0) AS expired,
			COALESCE(SUM(CASE WHEN payment_confirmed = ? THEN 1 ELSE 0 END), 0) AS retired`,
			false, false, now,
			false, true, now,
			false, true, now,
			true,
		).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute pool stats: %w", err)
	}

	return &addresspool.PoolStats{
		Total:    row.Total,
		Free:     row.Free,
		Reserved: row.Reserved,
		Expired:  row.Expired,
		Retired:  row.Retired,
	}, nil
}

func releasedColumns(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"is_reserved":            false,
		"reserved_to_order":      nil,
		"reserved_at":            nil,
		"reservation_expires_at": nil,
		"version":                gorm.Expr("version + 1"),
		"updated_at":             now,
	}
}
