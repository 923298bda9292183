package ratelimit

import (
	"context"
	"time"
)

// RateLimitConfig sets per-window request caps. A zero limit disables that window.
type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
	RequestsPerDay    int
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error)
	GetRemaining(ctx context.Context, key string, window time.Duration, limit int) (int64, error)
	Reset(ctx context.Context, key string) error
}
