package payment

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrConcurrentModification is returned when an optimistic update lost a race.
	ErrConcurrentModification = errors.New("payment was modified concurrently")
	// ErrDuplicateNotification marks a redelivered blockchain notification.
	// It is not a failure; callers acknowledge and stop.
	ErrDuplicateNotification = errors.New("duplicate blockchain notification")
	ErrEventNotFound         = errors.New("blockchain event not found")
)
