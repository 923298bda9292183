package webhook

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("webhook subscription not found")
	ErrDeliveryNotFound     = errors.New("webhook delivery not found")
	// ErrDeliveryFailed marks a delivery that used up its attempts.
	ErrDeliveryFailed = errors.New("webhook delivery failed permanently")
	// ErrDeliveryFinal is returned when recording an attempt on a finished delivery.
	ErrDeliveryFinal = errors.New("webhook delivery already finished")
	ErrInvalidURL    = errors.New("invalid webhook url")
	// ErrAttemptConflict means another worker already recorded this attempt.
	ErrAttemptConflict = errors.New("webhook delivery attempt already recorded")
)
