// Package outbox models durable intents to run side effects after a state
// change has committed. Each message names one effect so effects are retried
// independently of each other.
package outbox

import (
	"errors"
	"fmt"
	"time"
)

// Effect names a downstream consumer of an event.
type Effect string

const (
	EffectWebhookFanout Effect = "webhook_fanout"
	EffectEmailNotify   Effect = "email_notify"
	EffectEscrowHold    Effect = "escrow_hold"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

var ErrMessageFinal = errors.New("outbox message already finished")

// DedupKey is unique per event, aggregate and effect.
func DedupKey(eventType, aggregateID string, effect Effect) string {
	return fmt.Sprintf("%s:%s:%s", eventType, aggregateID, effect)
}

type Message struct {
	id            uint
	dedupKey      string
	eventType     string
	aggregateID   string
	effect        Effect
	payload       []byte
	status        Status
	attempts      int
	maxAttempts   int
	nextAttemptAt time.Time
	lastError     string
	processedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewMessage(eventType, aggregateID string, effect Effect, payload []byte, maxAttempts int, now time.Time) (*Message, error) {
	if eventType == "" || aggregateID == "" || effect == "" {
		return nil, fmt.Errorf("event type, aggregate id and effect are required")
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Message{
		dedupKey:      DedupKey(eventType, aggregateID, effect),
		eventType:     eventType,
		aggregateID:   aggregateID,
		effect:        effect,
		payload:       payload,
		status:        StatusPending,
		maxAttempts:   maxAttempts,
		nextAttemptAt: now,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// NewMessages builds one message per effect for the same event.
func NewMessages(eventType, aggregateID string, payload []byte, maxAttempts int, now time.Time, effects ...Effect) ([]*Message, error) {
	out := make([]*Message, 0, len(effects))
	for _, effect := range effects {
		m, err := NewMessage(eventType, aggregateID, effect, payload, maxAttempts, now)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func ReconstructMessage(
	id uint,
	dedupKey, eventType, aggregateID string,
	effect Effect,
	payload []byte,
	status Status,
	attempts, maxAttempts int,
	nextAttemptAt time.Time,
	lastError string,
	processedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Message {
	return &Message{
		id:            id,
		dedupKey:      dedupKey,
		eventType:     eventType,
		aggregateID:   aggregateID,
		effect:        effect,
		payload:       payload,
		status:        status,
		attempts:      attempts,
		maxAttempts:   maxAttempts,
		nextAttemptAt: nextAttemptAt,
		lastError:     lastError,
		processedAt:   processedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (m *Message) MarkDone(now time.Time) error {
	if m.status != StatusPending {
		return ErrMessageFinal
	}
	m.attempts++
	m.status = StatusDone
	m.lastError = ""
	m.processedAt = &now
	m.updatedAt = now
	return nil
}

// MarkAttemptFailed schedules another attempt, or fails the message once
// maxAttempts is reached.
func (m *Message) MarkAttemptFailed(cause error, retryIn time.Duration, now time.Time) error {
	if m.status != StatusPending {
		return ErrMessageFinal
	}
	m.attempts++
	if cause != nil {
		m.lastError = cause.Error()
	}
	m.updatedAt = now
	if m.attempts >= m.maxAttempts {
		m.status = StatusFailed
		return nil
	}
	m.nextAttemptAt = now.Add(retryIn)
	return nil
}

func (m *Message) SetID(id uint) {
	m.id = id
}

func (m *Message) ID() uint                 { return m.id }
func (m *Message) DedupKey() string         { return m.dedupKey }
func (m *Message) EventType() string        { return m.eventType }
func (m *Message) AggregateID() string      { return m.aggregateID }
func (m *Message) Effect() Effect           { return m.effect }
func (m *Message) Payload() []byte          { return m.payload }
func (m *Message) Status() Status           { return m.status }
func (m *Message) Attempts() int            { return m.attempts }
func (m *Message) MaxAttempts() int         { return m.maxAttempts }
func (m *Message) NextAttemptAt() time.Time { return m.nextAttemptAt }
func (m *Message) LastError() string        { return m.lastError }
func (m *Message) ProcessedAt() *time.Time  { return m.processedAt }
func (m *Message) CreatedAt() time.Time     { return m.createdAt }
func (m *Message) UpdatedAt() time.Time     { return m.updatedAt }
