package outbox

import (
	"context"
	"time"
)

type Repository interface {
	// Add inserts messages, silently skipping dedup keys that already exist,
	// and returns the number of new rows.
	Add(ctx context.Context, msgs ...*Message) (int, error)
	// ClaimDue leases due pending messages until leaseUntil.
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*Message, error)
	// Save persists an attempt outcome and releases the lease.
	Save(ctx context.Context, m *Message) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
