package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
)

const replenishStatusKey = "satsgate:replenish:last_run"

// ReplenishStatusStore keeps the last replenishment outcome in redis so the
// API server can report on runs made by the worker.
type ReplenishStatusStore struct {
	client *redis.Client
}

func NewReplenishStatusStore(client *redis.Client) *ReplenishStatusStore {
	return &ReplenishStatusStore{client: client}
}

// RecordRun overwrites the stored outcome. The failure counter is kept in the
// same hash and bumped atomically with the rest of the write.
func (s *ReplenishStatusStore) RecordRun(ctx context.Context, run addresspool.ReplenishRun) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, replenishStatusKey,
		"at", run.At.UTC().Format(time.RFC3339Nano),
		"generated", run.Generated,
		"error", run.Error,
	)
	if run.Failed() {
		pipe.HIncrBy(ctx, replenishStatusKey, "failures", 1)
	} else {
		pipe.HSet(ctx, replenishStatusKey, "failures", 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record replenishment run: %w", err)
	}
	return nil
}

// LastRun returns nil when no run has been recorded.
func (s *ReplenishStatusStore) LastRun(ctx context.Context) (*addresspool.ReplenishRun, error) {
	vals, err := s.client.HGetAll(ctx, replenishStatusKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read replenishment status: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	at, err := time.Parse(time.RFC3339Nano, vals["at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt replenishment timestamp %q: %w", vals["at"], err)
	}
	run := &addresspool.ReplenishRun{At: at, Error: vals["error"]}
	if run.Generated, err = strconv.Atoi(vals["generated"]); err != nil {
		return nil, fmt.Errorf("corrupt replenishment count: %w", err)
	}
	if run.ConsecutiveFailures, err = strconv.Atoi(vals["failures"]); err != nil {
		return nil, fmt.Errorf("corrupt replenishment failure count: %w", err)
	}
	return run, nil
}
