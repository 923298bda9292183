package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/orris-inc/satsgate/internal/domain/payment/valueobjects"
)

// Payment is one payment intent for an order-address pairing.
type Payment struct {
	id             uint
	sid            string
	orderID        string
	walletID       string
	address        string
	amountExpected decimal.Decimal
	amountFiat     *decimal.Decimal
	fiatCurrency   string
	status         vo.PaymentStatus
	confirmations  int
	txid           *string
	metadata       map[string]interface{}
	expiresAt      time.Time
	paidAt         *time.Time
	version        int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewPaymentParams groups the inputs of NewPayment.
type NewPaymentParams struct {
	SID          string
	OrderID      string
	WalletID     string
	Address      string
	AmountBTC    decimal.Decimal
	AmountFiat   *decimal.Decimal
	FiatCurrency string
	Metadata     map[string]interface{}
}

func NewPayment(p NewPaymentParams, now time.Time, ttl time.Duration) (*Payment, error) {
	if p.SID == "" {
		return nil, fmt.Errorf("sid is required")
	}
	if p.OrderID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	if p.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if err := vo.ValidateBTC(p.AmountBTC); err != nil {
		return nil, err
	}
	if p.AmountFiat != nil && p.AmountFiat.IsNegative() {
		return nil, fmt.Errorf("fiat amount must not be negative")
	}

	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Payment{
		sid:            p.SID,
		orderID:        p.OrderID,
		walletID:       p.WalletID,
		address:        p.Address,
		amountExpected: p.AmountBTC,
		amountFiat:     p.AmountFiat,
		fiatCurrency:   p.FiatCurrency,
		status:         vo.PaymentStatusPending,
		metadata:       metadata,
		expiresAt:      now.Add(ttl),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ApplyConfirmations records the latest confirmation count seen for the payment's
// transaction. Counts never go backwards. It returns true when this call moved
// the payment to paid.
func (p *Payment) ApplyConfirmations(confirmations int, txid string, threshold int, now time.Time) (bool, error) {
	if threshold < 1 {
		threshold = 1
	}
	if p.status != vo.PaymentStatusPending {
		return false, fmt.Errorf("cannot confirm payment with status %s", p.status)
	}

	if confirmations > p.confirmations {
		p.confirmations = confirmations
	}
	if txid != "" && p.txid == nil {
		p.txid = &txid
	}
	p.updatedAt = now

	if p.confirmations < threshold {
		return false, nil
	}
	if p.txid == nil {
		return false, fmt.Errorf("cannot mark payment as paid without txid")
	}

	p.status = vo.PaymentStatusPaid
	p.paidAt = &now
	return true, nil
}

// MetadataUnderpayment is the metadata key holding the last short transaction.
const MetadataUnderpayment = "underpayment"

// RecordUnderpayment compares a transaction's value with the expected amount.
// When it falls short the shortfall is kept in metadata and returned; the
// payment stays pending. A covering transaction returns zero and changes nothing.
func (p *Payment) RecordUnderpayment(received decimal.Decimal, txid string, now time.Time) decimal.Decimal {
	shortfall := p.amountExpected.Sub(received)
	if !shortfall.IsPositive() {
		return decimal.Zero
	}
	if p.metadata == nil {
		p.metadata = make(map[string]interface{})
	}
	p.metadata[MetadataUnderpayment] = map[string]interface{}{
		"txid":         txid,
		"receivedBtc":  vo.FormatBTC(received),
		"shortfallBtc": vo.FormatBTC(shortfall),
	}
	p.updatedAt = now
	return shortfall
}

// MarkAsExpired moves a pending payment to expired. Other states are left alone.
func (p *Payment) MarkAsExpired(now time.Time) bool {
	if p.status != vo.PaymentStatusPending {
		return false
	}
	p.status = vo.PaymentStatusExpired
	p.updatedAt = now
	return true
}

// MarkAsRefunded moves a paid payment to refunded.
func (p *Payment) MarkAsRefunded(now time.Time) error {
	if p.status == vo.PaymentStatusRefunded {
		return nil
	}
	if p.status != vo.PaymentStatusPaid {
		return fmt.Errorf("cannot refund payment with status %s", p.status)
	}
	p.status = vo.PaymentStatusRefunded
	p.updatedAt = now
	return nil
}

func (p *Payment) IsExpired(now time.Time) bool {
	return p.status == vo.PaymentStatusPending && now.After(p.expiresAt)
}

// BitcoinURI renders the BIP21 URI shown to the payer.
func (p *Payment) BitcoinURI() string {
	return "bitcoin:" + p.address + "?amount=" + p.AmountBTCString()
}

func (p *Payment) AmountBTCString() string {
	return vo.FormatBTC(p.amountExpected)
}

func (p *Payment) SetID(id uint) {
	p.id = id
}

// SetVersion is called by the repository after a successful optimistic update.
func (p *Payment) SetVersion(v int) {
	p.version = v
}

func (p *Payment) ID() uint                         { return p.id }
func (p *Payment) SID() string                      { return p.sid }
func (p *Payment) OrderID() string                  { return p.orderID }
func (p *Payment) WalletID() string                 { return p.walletID }
func (p *Payment) Address() string                  { return p.address }
func (p *Payment) AmountExpected() decimal.Decimal  { return p.amountExpected }
func (p *Payment) AmountFiat() *decimal.Decimal     { return p.amountFiat }
func (p *Payment) FiatCurrency() string             { return p.fiatCurrency }
func (p *Payment) Status() vo.PaymentStatus         { return p.status }
func (p *Payment) Confirmations() int               { return p.confirmations }
func (p *Payment) TxID() *string                    { return p.txid }
func (p *Payment) Metadata() map[string]interface{} { return p.metadata }
func (p *Payment) ExpiresAt() time.Time             { return p.expiresAt }
func (p *Payment) PaidAt() *time.Time               { return p.paidAt }
func (p *Payment) Version() int                     { return p.version }
func (p *Payment) CreatedAt() time.Time             { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time             { return p.updatedAt }

func ReconstructPayment(
	id uint,
	sid, orderID, walletID, address string,
	amountExpected decimal.Decimal,
	amountFiat *decimal.Decimal,
	fiatCurrency string,
	status vo.PaymentStatus,
	confirmations int,
	txid *string,
	metadata map[string]interface{},
	expiresAt time.Time,
	paidAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *Payment {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &Payment{
		id:             id,
		sid:            sid,
		orderID:        orderID,
		walletID:       walletID,
		address:        address,
		amountExpected: amountExpected,
		amountFiat:     amountFiat,
		fiatCurrency:   fiatCurrency,
		status:         status,
		confirmations:  confirmations,
		txid:           txid,
		metadata:       metadata,
		expiresAt:      expiresAt,
		paidAt:         paidAt,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}
