package payment

import (
	"fmt"
	"time"
)

// ChainEvent is a raw notification from the blockchain indexing service,
// stored before any processing so redeliveries can be recognised.
type ChainEvent struct {
	id            uint
	sourceEventID string
	eventType     string
	address       string
	txHash        string
	confirmations int
	valueSats     *int64
	rawPayload    []byte
	processed     bool
	processedAt   *time.Time
	receivedAt    time.Time
}

// ChainEventParams is the parsed notification body.
type ChainEventParams struct {
	SourceEventID string
	EventType     string
	Address       string
	TxHash        string
	Confirmations int
	ValueSats     *int64
	RawPayload    []byte
}

func NewChainEvent(p ChainEventParams, now time.Time) (*ChainEvent, error) {
	if p.SourceEventID == "" {
		return nil, fmt.Errorf("source event id is required")
	}
	if p.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if p.Confirmations < 0 {
		return nil, fmt.Errorf("confirmations must not be negative")
	}
	return &ChainEvent{
		sourceEventID: p.SourceEventID,
		eventType:     p.EventType,
		address:       p.Address,
		txHash:        p.TxHash,
		confirmations: p.Confirmations,
		valueSats:     p.ValueSats,
		rawPayload:    p.RawPayload,
		receivedAt:    now,
	}, nil
}

func ReconstructChainEvent(
	id uint,
	sourceEventID, eventType, address, txHash string,
	confirmations int,
	valueSats *int64,
	rawPayload []byte,
	processed bool,
	processedAt *time.Time,
	receivedAt time.Time,
) *ChainEvent {
	return &ChainEvent{
		id:            id,
		sourceEventID: sourceEventID,
		eventType:     eventType,
		address:       address,
		txHash:        txHash,
		confirmations: confirmations,
		valueSats:     valueSats,
		rawPayload:    rawPayload,
		processed:     processed,
		processedAt:   processedAt,
		receivedAt:    receivedAt,
	}
}

func (e *ChainEvent) MarkProcessed(now time.Time) {
	e.processed = true
	e.processedAt = &now
}

func (e *ChainEvent) SetID(id uint) {
	e.id = id
}

func (e *ChainEvent) ID() uint                { return e.id }
func (e *ChainEvent) SourceEventID() string   { return e.sourceEventID }
func (e *ChainEvent) EventType() string       { return e.eventType }
func (e *ChainEvent) Address() string         { return e.address }
func (e *ChainEvent) TxHash() string          { return e.txHash }
func (e *ChainEvent) Confirmations() int      { return e.confirmations }
func (e *ChainEvent) ValueSats() *int64       { return e.valueSats }
func (e *ChainEvent) RawPayload() []byte      { return e.rawPayload }
func (e *ChainEvent) IsProcessed() bool       { return e.processed }
func (e *ChainEvent) ProcessedAt() *time.Time { return e.processedAt }
func (e *ChainEvent) ReceivedAt() time.Time   { return e.receivedAt }
