package webhook

import (
	"context"
	"time"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetBySID(ctx context.Context, sid string) (*Subscription, error)
	List(ctx context.Context) ([]*Subscription, error)
	ListActive(ctx context.Context) ([]*Subscription, error)
	Deactivate(ctx context.Context, id uint, now time.Time) error
	// RecordSuccess resets the consecutive failure counter.
	RecordSuccess(ctx context.Context, id uint, now time.Time) error
	RecordFailure(ctx context.Context, id uint, now time.Time) error
}

type DeliveryRepository interface {
	// CreateBatch inserts deliveries, skipping delivery ids that already exist,
	// and returns the number of new rows.
	CreateBatch(ctx context.Context, deliveries []*Delivery) (int, error)
	GetByDeliveryID(ctx context.Context, deliveryID string) (*Delivery, error)
	// ClaimDue leases up to limit pending or retrying deliveries whose next
	// attempt is due. A leased row is invisible to other claimers until
	// leaseUntil, so one delivery is never attempted concurrently.
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*Delivery, error)
	// SaveAttempt persists the outcome of an attempt and drops the lease. It
	// only applies while the stored attempt number is one less than d's.
	SaveAttempt(ctx context.Context, d *Delivery) error
	CountFailedSince(ctx context.Context, since time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
