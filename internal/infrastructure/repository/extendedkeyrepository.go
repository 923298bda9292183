package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// maxChildIndex is the first hardened index; BIP84 receive addresses stay below it.
const maxChildIndex = math.MaxInt32 + 1

type ExtendedKeyRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewExtendedKeyRepository(db *gorm.DB, logger logger.Interface) *ExtendedKeyRepository {
	return &ExtendedKeyRepository{db: db, logger: logger}
}

func (r *ExtendedKeyRepository) Create(ctx context.Context, key *addresspool.ExtendedKey) error {
	model := mappers.ExtendedKeyToModel(key)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create extended key: %w", err)
	}

	key.SetID(model.ID)
	return nil
}

func (r *ExtendedKeyRepository) GetByID(ctx context.Context, id uint) (*addresspool.ExtendedKey, error) {
	var model models.ExtendedKeyModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, addresspool.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get extended key: %w", err)
	}

	return mappers.ExtendedKeyToDomain(&model)
}

func (r *ExtendedKeyRepository) GetBySID(ctx context.Context, sid string) (*addresspool.ExtendedKey, error) {
	var model models.ExtendedKeyModel

	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, addresspool.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get extended key by sid: %w", err)
	}

	return mappers.ExtendedKeyToDomain(&model)
}

func (r *ExtendedKeyRepository) GetActive(ctx context.Context) (*addresspool.ExtendedKey, error) {
	var model models.ExtendedKeyModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("id DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, addresspool.ErrNoActiveKey
		}
		return nil, fmt.Errorf("failed to get active extended key: %w", err)
	}

	return mappers.ExtendedKeyToDomain(&model)
}

func (r *ExtendedKeyRepository) List(ctx context.Context) ([]*addresspool.ExtendedKey, error) {
	var list []models.ExtendedKeyModel

	if err := db.GetTxFromContext(ctx, r.db).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list extended keys: %w", err)
	}

	keys := make([]*addresspool.ExtendedKey, 0, len(list))
	for i := range list {
		k, err := mappers.ExtendedKeyToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (r *ExtendedKeyRepository) Activate(ctx context.Context, id uint) error {
	now := biztime.NowUTC()

	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ExtendedKeyModel{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"is_active": true, "updated_at": now})
		if result.Error != nil {
			return fmt.Errorf("failed to activate extended key: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return addresspool.ErrKeyNotFound
		}

		if err := tx.Model(&models.ExtendedKeyModel{}).
			Where("id <> ? AND is_active = ?", id, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to deactivate previous keys: %w", err)
		}

		r.logger.Infow("extended key activated", "key_id", id)
		return nil
	})
}

func (r *ExtendedKeyRepository) Deactivate(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ExtendedKeyModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": biztime.NowUTC()})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate extended key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return addresspool.ErrKeyNotFound
	}
	return nil
}

func (r *ExtendedKeyRepository) ReserveIndexes(ctx context.Context, keyID uint, n uint32) (uint32, error) {
	if n == 0 {
		return 0, fmt.Errorf("index count must be positive")
	}

	tx := db.GetTxFromContext(ctx, r.db)

	var model models.ExtendedKeyModel
	if err := tx.Select("id", "next_index").First(&model, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, addresspool.ErrKeyNotFound
		}
		return 0, fmt.Errorf("failed to read index counter: %w", err)
	}

	start := model.NextIndex
	if uint64(start)+uint64(n) > maxChildIndex {
		return 0, addresspool.ErrIndexOutOfRange
	}

	result := tx.Model(&models.ExtendedKeyModel{}).
		Where("id = ? AND next_index = ?", keyID, start).
		Updates(map[string]interface{}{
			"next_index": start + n,
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to advance index counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, addresspool.ErrReservationConflict
	}

	return start, nil
}
