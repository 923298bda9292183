package models

import (
	"time"

	"github.com/orris-inc/satsgate/internal/shared/constants"
)

// PoolEntryModel is one receiving address. The (key_id, derivation_index) pair
// is unique so two allocators can never persist the same child twice.
type PoolEntryModel struct {
	ID                   uint    `gorm:"primaryKey"`
	Address              string  `gorm:"size:90;not null;uniqueIndex"`
	Source               string  `gorm:"size:10;not null"`
	KeyID                *uint   `gorm:"uniqueIndex:uk_key_derivation_index"`
	DerivationIndex      *uint32 `gorm:"uniqueIndex:uk_key_derivation_index"`
	DerivationPath       string  `gorm:"size:64"`
	IsReserved           bool    `gorm:"not null;default:false;index:idx_pool_free"`
	ReservedToOrder      *string `gorm:"size:64;index"`
	ReservedAt           *time.Time
	ReservationExpiresAt *time.Time `gorm:"index:idx_pool_free"`
	PaymentConfirmed     bool       `gorm:"not null;default:false;index:idx_pool_free"`
	ConfirmedAt          *time.Time
	Version              int `gorm:"not null;default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (PoolEntryModel) TableName() string {
	return constants.TableAddressPool
}
