package webhook

import (
	"fmt"
	"net/url"
	"slices"
	"time"
)

// WildcardEventType subscribes to every event.
const WildcardEventType = "*"

// Subscription is a third-party endpoint that receives signed event callbacks.
type Subscription struct {
	id                  uint
	sid                 string
	url                 string
	secretKey           string
	eventTypes          []string
	maxRetries          int
	active              bool
	consecutiveFailures int
	lastFailureAt       *time.Time
	lastSuccessAt       *time.Time
	createdAt           time.Time
	updatedAt           time.Time
}

func NewSubscription(sid, rawURL, secretKey string, eventTypes []string, maxRetries int, now time.Time) (*Subscription, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	if len(eventTypes) == 0 {
		return nil, fmt.Errorf("at least one event type is required")
	}
	if secretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}
	if maxRetries < 1 {
		return nil, fmt.Errorf("max retries must be at least 1")
	}

	return &Subscription{
		sid:        sid,
		url:        rawURL,
		secretKey:  secretKey,
		eventTypes: slices.Clone(eventTypes),
		maxRetries: maxRetries,
		active:     true,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructSubscription(
	id uint,
	sid, rawURL, secretKey string,
	eventTypes []string,
	maxRetries int,
	active bool,
	consecutiveFailures int,
	lastFailureAt, lastSuccessAt *time.Time,
	createdAt, updatedAt time.Time,
) *Subscription {
	return &Subscription{
		id:                  id,
		sid:                 sid,
		url:                 rawURL,
		secretKey:           secretKey,
		eventTypes:          eventTypes,
		maxRetries:          maxRetries,
		active:              active,
		consecutiveFailures: consecutiveFailures,
		lastFailureAt:       lastFailureAt,
		lastSuccessAt:       lastSuccessAt,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// Matches reports whether the subscription wants eventType.
func (s *Subscription) Matches(eventType string) bool {
	if !s.active {
		return false
	}
	return slices.Contains(s.eventTypes, eventType) || slices.Contains(s.eventTypes, WildcardEventType)
}

func (s *Subscription) Deactivate(now time.Time) {
	s.active = false
	s.updatedAt = now
}

func (s *Subscription) SetID(id uint) {
	s.id = id
}

func (s *Subscription) ID() uint                  { return s.id }
func (s *Subscription) SID() string               { return s.sid }
func (s *Subscription) URL() string               { return s.url }
func (s *Subscription) SecretKey() string         { return s.secretKey }
func (s *Subscription) EventTypes() []string      { return s.eventTypes }
func (s *Subscription) MaxRetries() int           { return s.maxRetries }
func (s *Subscription) IsActive() bool            { return s.active }
func (s *Subscription) ConsecutiveFailures() int  { return s.consecutiveFailures }
func (s *Subscription) LastFailureAt() *time.Time { return s.lastFailureAt }
func (s *Subscription) LastSuccessAt() *time.Time { return s.lastSuccessAt }
func (s *Subscription) CreatedAt() time.Time      { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time      { return s.updatedAt }
