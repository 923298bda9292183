// Package webhook contains the outbound webhook delivery use cases.
package webhook

import (
	"context"
	"time"
)

// SendRequest is one signed POST to a subscriber.
type SendRequest struct {
	URL        string
	Secret     string
	EventType  string
	DeliveryID string
	Payload    []byte
	Timestamp  time.Time
}

// Sender performs the HTTP call. A non-nil error means no response was
// received; otherwise StatusCode holds the subscriber's answer.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (statusCode int, err error)
}
