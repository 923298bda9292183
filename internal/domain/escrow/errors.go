package escrow

import "errors"

var (
	ErrEscrowNotFound         = errors.New("escrow not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStateTransition = errors.New("invalid escrow state transition")
	ErrConcurrentModification = errors.New("escrow was modified concurrently")
	ErrEscrowAlreadyExists    = errors.New("escrow already exists for order")
)
