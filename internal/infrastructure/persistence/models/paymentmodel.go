package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/satsgate/internal/shared/constants"
)

type PaymentModel struct {
	ID             uint                `gorm:"primaryKey"`
	SID            string              `gorm:"column:sid;size:40;not null;uniqueIndex"`
	OrderID        string              `gorm:"size:64;not null;index"`
	// OpenOrderID equals OrderID while the payment is pending and is NULL
	// otherwise, so the unique index allows one open payment per order.
	OpenOrderID    *string             `gorm:"size:64;uniqueIndex"`
	WalletID       string              `gorm:"size:64"`
	Address        string              `gorm:"size:90;not null;index"`
	AmountExpected decimal.Decimal     `gorm:"type:decimal(16,8);not null"`
	AmountFiat     decimal.NullDecimal `gorm:"type:decimal(18,2)"`
	FiatCurrency   string              `gorm:"size:10"`
	PaymentStatus  string              `gorm:"size:20;not null;index"`
	Confirmations  int                 `gorm:"not null;default:0"`
	TxID           *string             `gorm:"column:txid;size:64"`
	Metadata       JSONB               `gorm:"type:json"`
	ExpiresAt      time.Time           `gorm:"not null;index"`
	PaidAt         *time.Time
	Version        int `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}
