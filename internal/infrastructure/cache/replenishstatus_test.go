package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
)

func TestReplenishStatusStore_TracksFailureStreak(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewReplenishStatusStore(client)
	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	run, err := s.LastRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, run)

	require.NoError(t, s.RecordRun(ctx, addresspool.ReplenishRun{At: at, Error: "derivation failed"}))
	require.NoError(t, s.RecordRun(ctx, addresspool.ReplenishRun{At: at.Add(time.Minute), Error: "derivation failed"}))

	run, err = s.LastRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.True(t, run.Failed())
	assert.Equal(t, 2, run.ConsecutiveFailures)
	assert.Equal(t, at.Add(time.Minute), run.At)

	require.NoError(t, s.RecordRun(ctx, addresspool.ReplenishRun{At: at.Add(2 * time.Minute), Generated: 20}))

	run, err = s.LastRun(ctx)
	require.NoError(t, err)
	assert.False(t, run.Failed())
	assert.Zero(t, run.ConsecutiveFailures)
	assert.Equal(t, 20, run.Generated)
}

func TestReplenishStatusStore_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	s := NewReplenishStatusStore(client)
	assert.Error(t, s.RecordRun(context.Background(), addresspool.ReplenishRun{At: time.Now()}))
	_, err := s.LastRun(context.Background())
	assert.Error(t, err)
}
