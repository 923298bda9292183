package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// alertKeyPrefix is the prefix for all alert deduplication keys
	alertKeyPrefix = "satsgate:alert:"
	// DefaultAlertCooldown applies when callers pass a non-positive ttl.
	DefaultAlertCooldown = 30 * time.Minute
)

// AlertType represents different alert types for deduplication
type AlertType string

const AlertTypePoolCritical AlertType = "pool_critical"

// AlertDeduplicator suppresses repeated operator alerts across instances.
type AlertDeduplicator struct {
	client *redis.Client
}

func NewAlertDeduplicator(client *redis.Client) *AlertDeduplicator {
	return &AlertDeduplicator{client: client}
}

// Format: satsgate:alert:{type}:{resource}
func (d *AlertDeduplicator) buildKey(alertType AlertType, resource string) string {
	return fmt.Sprintf("%s%s:%s", alertKeyPrefix, alertType, resource)
}

// TryAcquireAlertLock atomically checks and acquires an alert lock using SetNX.
// Returns true if the alert should be sent, false if it is still in cooldown.
func (d *AlertDeduplicator) TryAcquireAlertLock(ctx context.Context, alertType AlertType, resource string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultAlertCooldown
	}

	acquired, err := d.client.SetNX(ctx, d.buildKey(alertType, resource), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire alert lock: %w", err)
	}

	return acquired, nil
}

// GetRemainingCooldown returns 0 when the alert is not in cooldown.
func (d *AlertDeduplicator) GetRemainingCooldown(ctx context.Context, alertType AlertType, resource string) (time.Duration, error) {
	ttl, err := d.client.TTL(ctx, d.buildKey(alertType, resource)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get cooldown: %w", err)
	}

	// TTL returns -2 if key doesn't exist, -1 if no TTL set
	if ttl < 0 {
		return 0, nil
	}

	return ttl, nil
}
