package addresspool

import (
	"fmt"
	"time"

	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
)

// PoolEntry is one receiving address and its reservation state.
//
// Invariants: an unreserved entry has no order; a confirmed entry is retired and
// can never be reserved or released again.
type PoolEntry struct {
	id                   uint
	address              string
	source               vo.EntrySource
	keyID                *uint
	derivationIndex      *uint32
	derivationPath       string
	isReserved           bool
	reservedToOrder      *string
	reservedAt           *time.Time
	reservationExpiresAt *time.Time
	paymentConfirmed     bool
	confirmedAt          *time.Time
	version              int
	createdAt            time.Time
	updatedAt            time.Time
}

// NewDerivedEntry creates an unreserved entry for a freshly derived address.
func NewDerivedEntry(d DerivedAddress, now time.Time) (*PoolEntry, error) {
	if d.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	keyID := d.KeyID
	index := d.Index
	return &PoolEntry{
		address:         d.Address,
		source:          vo.EntrySourceDerived,
		keyID:           &keyID,
		derivationIndex: &index,
		derivationPath:  d.Path,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// NewSeededEntry creates an unreserved entry for an operator-loaded address.
func NewSeededEntry(address string, now time.Time) (*PoolEntry, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	return &PoolEntry{
		address:   address,
		source:    vo.EntrySourceSeeded,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructPoolEntry(
	id uint,
	address string,
	source vo.EntrySource,
	keyID *uint,
	derivationIndex *uint32,
	derivationPath string,
	isReserved bool,
	reservedToOrder *string,
	reservedAt, reservationExpiresAt *time.Time,
	paymentConfirmed bool,
	confirmedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *PoolEntry {
	return &PoolEntry{
		id:                   id,
		address:              address,
		source:               source,
		keyID:                keyID,
		derivationIndex:      derivationIndex,
		derivationPath:       derivationPath,
		isReserved:           isReserved,
		reservedToOrder:      reservedToOrder,
		reservedAt:           reservedAt,
		reservationExpiresAt: reservationExpiresAt,
		paymentConfirmed:     paymentConfirmed,
		confirmedAt:          confirmedAt,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// IsReservationExpired reports whether a reservation exists and has lapsed.
func (e *PoolEntry) IsReservationExpired(now time.Time) bool {
	return e.isReserved && e.reservationExpiresAt != nil && e.reservationExpiresAt.Before(now)
}

// IsFree reports whether the entry may be handed to a new order. Expiry is
// evaluated lazily here; no timer clears lapsed reservations.
func (e *PoolEntry) IsFree(now time.Time) bool {
	if e.paymentConfirmed {
		return false
	}
	return !e.isReserved || e.IsReservationExpired(now)
}

// Reserve claims the entry for orderID until now+ttl.
func (e *PoolEntry) Reserve(orderID string, now time.Time, ttl time.Duration) error {
	if orderID == "" {
		return fmt.Errorf("order id is required")
	}
	if e.paymentConfirmed {
		return ErrEntryRetired
	}
	if !e.IsFree(now) {
		return ErrEntryReserved
	}

	expires := now.Add(ttl)
	e.isReserved = true
	e.reservedToOrder = &orderID
	e.reservedAt = &now
	e.reservationExpiresAt = &expires
	e.updatedAt = now
	return nil
}

// Release returns a lapsed or abandoned reservation to the pool.
func (e *PoolEntry) Release(now time.Time) error {
	if e.paymentConfirmed {
		return ErrEntryRetired
	}
	if !e.isReserved {
		return nil
	}
	e.isReserved = false
	e.reservedToOrder = nil
	e.reservedAt = nil
	e.reservationExpiresAt = nil
	e.updatedAt = now
	return nil
}

// Retire marks the address as paid. It stays reserved to its order forever.
func (e *PoolEntry) Retire(now time.Time) {
	if e.paymentConfirmed {
		return
	}
	e.paymentConfirmed = true
	e.isReserved = true
	e.confirmedAt = &now
	e.updatedAt = now
}

func (e *PoolEntry) ID() uint                         { return e.id }
func (e *PoolEntry) Address() string                  { return e.address }
func (e *PoolEntry) Source() vo.EntrySource           { return e.source }
func (e *PoolEntry) KeyID() *uint                     { return e.keyID }
func (e *PoolEntry) DerivationIndex() *uint32         { return e.derivationIndex }
func (e *PoolEntry) DerivationPath() string           { return e.derivationPath }
func (e *PoolEntry) IsReserved() bool                 { return e.isReserved }
func (e *PoolEntry) ReservedToOrder() *string         { return e.reservedToOrder }
func (e *PoolEntry) ReservedAt() *time.Time           { return e.reservedAt }
func (e *PoolEntry) ReservationExpiresAt() *time.Time { return e.reservationExpiresAt }
func (e *PoolEntry) PaymentConfirmed() bool           { return e.paymentConfirmed }
func (e *PoolEntry) ConfirmedAt() *time.Time          { return e.confirmedAt }
func (e *PoolEntry) Version() int                     { return e.version }
func (e *PoolEntry) CreatedAt() time.Time             { return e.createdAt }
func (e *PoolEntry) UpdatedAt() time.Time             { return e.updatedAt }

func (e *PoolEntry) SetID(id uint) {
	e.id = id
}
