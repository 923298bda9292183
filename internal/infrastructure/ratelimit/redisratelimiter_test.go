package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/satsgate/internal/shared/biztime"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRateLimiter_Allow_PerMinute(t *testing.T) {
	ctx := context.Background()
	clock := biztime.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewRedisRateLimiter(setupTestRedis(t), clock)

	config := RateLimitConfig{RequestsPerMinute: 5}
	key := "ip:203.0.113.7"

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, key, config)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, key, config)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be denied")

	clock.Advance(61 * time.Second)
	allowed, err = limiter.Allow(ctx, key, config)
	require.NoError(t, err)
	assert.True(t, allowed, "window should have slid past the earlier requests")
}

func TestRedisRateLimiter_Allow_PerHour(t *testing.T) {
	ctx := context.Background()
	clock := biztime.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewRedisRateLimiter(setupTestRedis(t), clock)

	config := RateLimitConfig{RequestsPerHour: 3}
	key := "ip:198.51.100.1"

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, key, config)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
		clock.Advance(5 * time.Minute)
	}

	allowed, err := limiter.Allow(ctx, key, config)
	require.NoError(t, err)
	assert.False(t, allowed, "4th request should be denied")
}

func TestRedisRateLimiter_RemainingAndReset(t *testing.T) {
	ctx := context.Background()
	clock := biztime.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewRedisRateLimiter(setupTestRedis(t), clock)

	config := RateLimitConfig{RequestsPerMinute: 10}
	key := "ip:192.0.2.44"

	for i := 0; i < 4; i++ {
		_, err := limiter.Allow(ctx, key, config)
		require.NoError(t, err)
	}

	remaining, err := limiter.GetRemaining(ctx, key, time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(6), remaining)

	require.NoError(t, limiter.Reset(ctx, key))
	remaining, err = limiter.GetRemaining(ctx, key, time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), remaining)
}
