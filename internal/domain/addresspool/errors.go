package addresspool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolExhausted means no address could be handed out.
	ErrPoolExhausted = errors.New("address pool exhausted")
	// ErrReservationConflict is a lost race on the index counter or a pool row.
	// It is transient and retried by the allocator.
	ErrReservationConflict = errors.New("address reservation conflict")
	// ErrDerivation marks unusable extended key material.
	ErrDerivation = errors.New("address derivation failed")

	ErrEntryRetired    = errors.New("address is retired")
	ErrEntryReserved   = errors.New("address is reserved by another order")
	ErrEntryNotFound   = errors.New("address pool entry not found")
	ErrKeyNotFound     = errors.New("extended key not found")
	ErrNoActiveKey     = errors.New("no active extended key")
	ErrIndexOutOfRange = errors.New("derivation index exhausted")
)

// DerivationError wraps ErrDerivation with the reason the key was rejected.
type DerivationError struct {
	Reason string
	Err    error
}

func (e *DerivationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDerivation, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrDerivation, e.Reason)
}

func (e *DerivationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDerivation, e.Err}
	}
	return []error{ErrDerivation}
}

func NewDerivationError(reason string, err error) *DerivationError {
	return &DerivationError{Reason: reason, Err: err}
}
