package escrow

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction is an append-only money movement record.
type LedgerTransaction struct {
	id        uint
	sid       string
	escrowID  *uint
	orderID   string
	txType    LedgerType
	amount    decimal.Decimal
	currency  string
	reference string
	createdAt time.Time
}

func NewLedgerTransaction(sid string, escrowID *uint, orderID string, txType LedgerType, amount decimal.Decimal, currency, reference string, now time.Time) *LedgerTransaction {
	return &LedgerTransaction{
		sid:       sid,
		escrowID:  escrowID,
		orderID:   orderID,
		txType:    txType,
		amount:    amount,
		currency:  currency,
		reference: reference,
		createdAt: now,
	}
}

func ReconstructLedgerTransaction(id uint, sid string, escrowID *uint, orderID string, txType LedgerType, amount decimal.Decimal, currency, reference string, createdAt time.Time) *LedgerTransaction {
	t := NewLedgerTransaction(sid, escrowID, orderID, txType, amount, currency, reference, createdAt)
	t.id = id
	return t
}

func (t *LedgerTransaction) SetID(id uint) {
	t.id = id
}

func (t *LedgerTransaction) ID() uint                { return t.id }
func (t *LedgerTransaction) SID() string             { return t.sid }
func (t *LedgerTransaction) EscrowID() *uint         { return t.escrowID }
func (t *LedgerTransaction) OrderID() string         { return t.orderID }
func (t *LedgerTransaction) Type() LedgerType        { return t.txType }
func (t *LedgerTransaction) Amount() decimal.Decimal { return t.amount }
func (t *LedgerTransaction) Currency() string        { return t.currency }
func (t *LedgerTransaction) Reference() string       { return t.reference }
func (t *LedgerTransaction) CreatedAt() time.Time    { return t.createdAt }
