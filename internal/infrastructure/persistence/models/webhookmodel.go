package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/satsgate/internal/shared/constants"
)

type WebhookSubscriptionModel struct {
	ID                  uint                        `gorm:"primaryKey"`
	SID                 string                      `gorm:"column:sid;size:40;not null;uniqueIndex"`
	URL                 string                      `gorm:"size:500;not null"`
	SecretKey           string                      `gorm:"size:128;not null"`
	EventTypes          datatypes.JSONSlice[string] `gorm:"type:json"`
	MaxRetries          int                         `gorm:"not null;default:3"`
	IsActive            bool                        `gorm:"not null;default:true;index"`
	ConsecutiveFailures int                         `gorm:"not null;default:0"`
	LastFailureAt       *time.Time
	LastSuccessAt       *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (WebhookSubscriptionModel) TableName() string {
	return constants.TableWebhookSubs
}

// WebhookDeliveryModel holds one event for one subscription. LockedUntil is
// the sweep lease.
type WebhookDeliveryModel struct {
	ID             uint   `gorm:"primaryKey"`
	DeliveryID     string `gorm:"size:40;not null;uniqueIndex"`
	SubscriptionID uint   `gorm:"not null;index"`
	EventType      string `gorm:"size:64;not null"`
	Payload        []byte `gorm:"type:blob;not null"`
	AttemptNumber  int    `gorm:"not null;default:0"`
	MaxRetries     int    `gorm:"not null"`
	Status         string `gorm:"size:20;not null;index:idx_delivery_due"`
	ResponseCode   *int
	LastError      string     `gorm:"type:text"`
	NextAttemptAt  *time.Time `gorm:"index:idx_delivery_due"`
	LockedUntil    *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

func (WebhookDeliveryModel) TableName() string {
	return constants.TableWebhookDeliveries
}
