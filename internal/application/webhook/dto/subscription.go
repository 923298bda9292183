package dto

import (
	"time"

	"github.com/orris-inc/satsgate/internal/domain/webhook"
)

type SubscriptionDTO struct {
	ID                  string     `json:"id"`
	URL                 string     `json:"url"`
	EventTypes          []string   `json:"eventTypes"`
	MaxRetries          int        `json:"maxRetries"`
	Active              bool       `json:"active"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastFailureAt       *time.Time `json:"lastFailureAt,omitempty"`
	LastSuccessAt       *time.Time `json:"lastSuccessAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	// Secret is only populated in the response that created the subscription.
	Secret string `json:"secret,omitempty"`
}

func ToSubscriptionDTO(s *webhook.Subscription) *SubscriptionDTO {
	return &SubscriptionDTO{
		ID:                  s.SID(),
		URL:                 s.URL(),
		EventTypes:          s.EventTypes(),
		MaxRetries:          s.MaxRetries(),
		Active:              s.IsActive(),
		ConsecutiveFailures: s.ConsecutiveFailures(),
		LastFailureAt:       s.LastFailureAt(),
		LastSuccessAt:       s.LastSuccessAt(),
		CreatedAt:           s.CreatedAt(),
	}
}
