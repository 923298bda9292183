package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/satsgate/internal/shared/constants"
)

type OrderModel struct {
	ID            uint            `gorm:"primaryKey"`
	OrderNo       string          `gorm:"size:64;not null;uniqueIndex"`
	CustomerEmail string          `gorm:"size:255"`
	Status        string          `gorm:"size:20;not null;index"`
	Total         decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	Currency      string          `gorm:"size:10;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string {
	return constants.TableOrders
}

// EscrowModel allows one escrow per order.
type EscrowModel struct {
	ID           uint            `gorm:"primaryKey"`
	SID          string          `gorm:"column:sid;size:40;not null;uniqueIndex"`
	OrderID      string          `gorm:"size:64;not null;uniqueIndex"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	Currency     string          `gorm:"size:10;not null"`
	Status       string          `gorm:"size:20;not null;index"`
	RefundReason string          `gorm:"size:255"`
	RefundNotes  string          `gorm:"type:text"`
	RefundedAt   *time.Time
	ReleasedAt   *time.Time
	Version      int `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (EscrowModel) TableName() string {
	return constants.TableEscrows
}

type LedgerTransactionModel struct {
	ID        uint            `gorm:"primaryKey"`
	SID       string          `gorm:"column:sid;size:40;not null;uniqueIndex"`
	EscrowID  *uint           `gorm:"index"`
	OrderID   string          `gorm:"size:64;not null;index"`
	Type      string          `gorm:"size:20;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	Currency  string          `gorm:"size:10;not null"`
	Reference string          `gorm:"size:128"`
	CreatedAt time.Time
}

func (LedgerTransactionModel) TableName() string {
	return constants.TableLedgerTransactions
}
