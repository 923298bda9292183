package models

import (
	"time"

	"github.com/orris-inc/satsgate/internal/shared/constants"
)

type OutboxMessageModel struct {
	ID            uint      `gorm:"primaryKey"`
	DedupKey      string    `gorm:"size:191;not null;uniqueIndex"`
	EventType     string    `gorm:"size:64;not null;index:idx_outbox_aggregate"`
	AggregateID   string    `gorm:"size:64;not null;index:idx_outbox_aggregate"`
	Effect        string    `gorm:"size:32;not null"`
	Payload       []byte    `gorm:"type:blob;not null"`
	Status        string    `gorm:"size:20;not null;index:idx_outbox_due"`
	Attempts      int       `gorm:"not null;default:0"`
	MaxAttempts   int       `gorm:"not null"`
	NextAttemptAt time.Time `gorm:"not null;index:idx_outbox_due"`
	LockedUntil   *time.Time
	LastError     string `gorm:"type:text"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OutboxMessageModel) TableName() string {
	return constants.TableOutboxMessages
}
