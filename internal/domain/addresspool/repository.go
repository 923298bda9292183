package addresspool

import (
	"context"
	"time"
)

type ExtendedKeyRepository interface {
	Create(ctx context.Context, key *ExtendedKey) error
	GetByID(ctx context.Context, id uint) (*ExtendedKey, error)
	GetBySID(ctx context.Context, sid string) (*ExtendedKey, error)
	// GetActive returns ErrNoActiveKey when no key is active.
	GetActive(ctx context.Context) (*ExtendedKey, error)
	List(ctx context.Context) ([]*ExtendedKey, error)
	// Activate makes id the only active key.
	Activate(ctx context.Context, id uint) error
	Deactivate(ctx context.Context, id uint) error
	// ReserveIndexes advances the key's counter by n with a single conditional
	// update and returns the first reserved index. A lost race yields
	// ErrReservationConflict; the caller retries.
	ReserveIndexes(ctx context.Context, keyID uint, n uint32) (uint32, error)
}

type PoolRepository interface {
	// Insert stores a new entry. A duplicate address yields ErrReservationConflict.
	Insert(ctx context.Context, entry *PoolEntry) error
	// InsertBatch stores entries, skipping addresses already present, and
	// returns how many rows were written.
	InsertBatch(ctx context.Context, entries []*PoolEntry) (int, error)
	// ClaimFree atomically reserves the oldest free entry for orderID. Lapsed
	// reservations count as free. Returns ErrPoolExhausted when none is left.
	ClaimFree(ctx context.Context, orderID string, now time.Time, ttl time.Duration) (*PoolEntry, error)
	// FindLiveReservation returns the unexpired reservation held by orderID, if any.
	FindLiveReservation(ctx context.Context, orderID string, now time.Time) (*PoolEntry, error)
	GetByAddress(ctx context.Context, address string) (*PoolEntry, error)
	CountFree(ctx context.Context, now time.Time) (int64, error)
	// Retire marks address as paid; retired entries are never released.
	Retire(ctx context.Context, address string, now time.Time) error
	// ReleaseExpired clears lapsed, unconfirmed reservations.
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)
	// ReleaseForOrder clears the reservation of one order unless it was paid.
	ReleaseForOrder(ctx context.Context, address, orderID string, now time.Time) error
	Stats(ctx context.Context, now time.Time) (*PoolStats, error)
}

// PoolStats is a point-in-time summary of the pool.
type PoolStats struct {
	Total    int64 `json:"total"`
	Free     int64 `json:"free"`
	Reserved int64 `json:"reserved"`
	Expired  int64 `json:"expired"`
	Retired  int64 `json:"retired"`
}
