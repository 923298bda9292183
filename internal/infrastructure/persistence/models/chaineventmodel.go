package models

import (
	"time"

	"github.com/orris-inc/satsgate/internal/shared/constants"
)

// ChainEventModel is the dedup log for blockchain notifications.
type ChainEventModel struct {
	ID            uint   `gorm:"primaryKey"`
	SourceEventID string `gorm:"size:128;not null;uniqueIndex"`
	EventType     string `gorm:"size:40"`
	Address       string `gorm:"size:90;not null;index"`
	TxHash        string `gorm:"size:64"`
	Confirmations int    `gorm:"not null;default:0"`
	ValueSats     *int64
	RawPayload    []byte `gorm:"type:blob"`
	Processed     bool   `gorm:"not null;default:false;index:idx_event_unprocessed"`
	ProcessedAt   *time.Time
	ReceivedAt    time.Time `gorm:"not null;index:idx_event_unprocessed"`
}

func (ChainEventModel) TableName() string {
	return constants.TableBlockchainEvents
}
