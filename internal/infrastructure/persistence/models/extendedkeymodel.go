package models

import (
	"time"

	"github.com/orris-inc/satsgate/internal/shared/constants"
)

// ExtendedKeyModel stores account-level public keys. NextIndex is the derivation
// counter advanced by compare-and-swap.
type ExtendedKeyModel struct {
	ID          uint   `gorm:"primaryKey"`
	SID         string `gorm:"column:sid;size:40;not null;uniqueIndex"`
	KeyMaterial string `gorm:"size:200;not null;uniqueIndex"`
	Network     string `gorm:"size:10;not null"`
	Label       string `gorm:"size:100"`
	IsActive    bool   `gorm:"not null;default:false;index"`
	NextIndex   uint32 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ExtendedKeyModel) TableName() string {
	return constants.TableExtendedKeys
}
