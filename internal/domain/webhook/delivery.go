package webhook

import (
	"fmt"
	"time"

	vo "github.com/orris-inc/satsgate/internal/domain/webhook/valueobjects"
)

// Delivery is one event addressed to one subscription. Attempts are numbered
// from 1 and a delivery is tried at most maxRetries times.
type Delivery struct {
	id             uint
	deliveryID     string
	subscriptionID uint
	eventType      string
	payload        []byte
	attemptNumber  int
	maxRetries     int
	status         vo.DeliveryStatus
	responseCode   *int
	lastError      string
	nextAttemptAt  *time.Time
	deliveredAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

// NewDelivery snapshots the subscription's retry budget at enqueue time.
func NewDelivery(deliveryID string, sub *Subscription, eventType string, payload []byte, now time.Time) (*Delivery, error) {
	if deliveryID == "" {
		return nil, fmt.Errorf("delivery id is required")
	}
	if sub == nil || sub.ID() == 0 {
		return nil, fmt.Errorf("persisted subscription is required")
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("payload is required")
	}
	return &Delivery{
		deliveryID:     deliveryID,
		subscriptionID: sub.ID(),
		eventType:      eventType,
		payload:        payload,
		maxRetries:     sub.MaxRetries(),
		status:         vo.DeliveryStatusPending,
		nextAttemptAt:  &now,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructDelivery(
	id uint,
	deliveryID string,
	subscriptionID uint,
	eventType string,
	payload []byte,
	attemptNumber, maxRetries int,
	status vo.DeliveryStatus,
	responseCode *int,
	lastError string,
	nextAttemptAt, deliveredAt *time.Time,
	createdAt, updatedAt time.Time,
) *Delivery {
	return &Delivery{
		id:             id,
		deliveryID:     deliveryID,
		subscriptionID: subscriptionID,
		eventType:      eventType,
		payload:        payload,
		attemptNumber:  attemptNumber,
		maxRetries:     maxRetries,
		status:         status,
		responseCode:   responseCode,
		lastError:      lastError,
		nextAttemptAt:  nextAttemptAt,
		deliveredAt:    deliveredAt,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// MarkDelivered records a 2xx response.
func (d *Delivery) MarkDelivered(code int, now time.Time) error {
	if d.status.IsFinal() {
		return ErrDeliveryFinal
	}
	d.attemptNumber++
	d.status = vo.DeliveryStatusDelivered
	d.responseCode = &code
	d.lastError = ""
	d.deliveredAt = &now
	d.nextAttemptAt = nil
	d.updatedAt = now
	return nil
}

// MarkAttemptFailed records a non-2xx response or transport error. When the
// attempt budget is spent the delivery becomes failed, otherwise it is
// scheduled again after retryIn.
func (d *Delivery) MarkAttemptFailed(code *int, errMsg string, retryIn time.Duration, now time.Time) error {
	if d.status.IsFinal() {
		return ErrDeliveryFinal
	}
	d.attemptNumber++
	d.responseCode = code
	d.lastError = errMsg
	d.updatedAt = now

	if d.attemptNumber >= d.maxRetries {
		d.status = vo.DeliveryStatusFailed
		d.nextAttemptAt = nil
		return nil
	}

	next := now.Add(retryIn)
	d.status = vo.DeliveryStatusRetrying
	d.nextAttemptAt = &next
	return nil
}

func (d *Delivery) SetID(id uint) {
	d.id = id
}

func (d *Delivery) ID() uint                  { return d.id }
func (d *Delivery) DeliveryID() string        { return d.deliveryID }
func (d *Delivery) SubscriptionID() uint      { return d.subscriptionID }
func (d *Delivery) EventType() string         { return d.eventType }
func (d *Delivery) Payload() []byte           { return d.payload }
func (d *Delivery) AttemptNumber() int        { return d.attemptNumber }
func (d *Delivery) MaxRetries() int           { return d.maxRetries }
func (d *Delivery) Status() vo.DeliveryStatus { return d.status }
func (d *Delivery) ResponseCode() *int        { return d.responseCode }
func (d *Delivery) LastError() string         { return d.lastError }
func (d *Delivery) NextAttemptAt() *time.Time { return d.nextAttemptAt }
func (d *Delivery) DeliveredAt() *time.Time   { return d.deliveredAt }
func (d *Delivery) CreatedAt() time.Time      { return d.createdAt }
func (d *Delivery) UpdatedAt() time.Time      { return d.updatedAt }
