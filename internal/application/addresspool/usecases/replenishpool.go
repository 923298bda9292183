package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orris-inc/satsgate/internal/application/addresspool/derivation"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const (
	defaultTargetSize        = 50
	defaultBatchSize         = 20
	defaultCriticalThreshold = 3
)

// PoolAlerter notifies operators that the pool is about to run dry and
// nothing can refill it.
type PoolAlerter interface {
	PoolCritical(ctx context.Context, free int64, threshold int) error
}

// PoolSizeObserver receives the free count after each run. Optional.
type PoolSizeObserver interface {
	SetPoolFree(free int64)
	AddressesGenerated(n int)
}

// RunRecorder stores the outcome of each pass for the health report. Optional.
type RunRecorder interface {
	RecordRun(ctx context.Context, run addresspool.ReplenishRun) error
}

type ReplenishConfig struct {
	TargetSize        int
	BatchSize         int
	CriticalThreshold int
}

// ReplenishResult is returned by manual and scheduled runs.
type ReplenishResult struct {
	Generated   int   `json:"generated"`
	PoolSize    int64 `json:"poolSize"`
	AlertRaised bool  `json:"alertRaised,omitempty"`
}

// ReplenishPoolUseCase keeps enough unreserved derived addresses in the pool
// so that allocations can fall back to it.
type ReplenishPoolUseCase struct {
	keyRepo  addresspool.ExtendedKeyRepository
	poolRepo addresspool.PoolRepository
	deriver  derivation.Deriver
	alerter  PoolAlerter
	observer PoolSizeObserver // Optional
	recorder RunRecorder      // Optional
	clock    biztime.Clock
	cfg      ReplenishConfig
	logger   logger.Interface
}

func NewReplenishPoolUseCase(
	keyRepo addresspool.ExtendedKeyRepository,
	poolRepo addresspool.PoolRepository,
	deriver derivation.Deriver,
	alerter PoolAlerter,
	clock biztime.Clock,
	cfg ReplenishConfig,
	logger logger.Interface,
) *ReplenishPoolUseCase {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = defaultTargetSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.CriticalThreshold <= 0 {
		cfg.CriticalThreshold = defaultCriticalThreshold
	}
	return &ReplenishPoolUseCase{
		keyRepo:  keyRepo,
		poolRepo: poolRepo,
		deriver:  deriver,
		alerter:  alerter,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetObserver sets the pool size observer (optional dependency injection)
func (uc *ReplenishPoolUseCase) SetObserver(o PoolSizeObserver) {
	uc.observer = o
}

// SetRecorder sets where run outcomes are recorded.
func (uc *ReplenishPoolUseCase) SetRecorder(r RunRecorder) {
	uc.recorder = r
}

// Execute tops the pool up by at most one batch. Running it repeatedly is
// safe; a lost race on the index counter simply generates nothing this round.
func (uc *ReplenishPoolUseCase) Execute(ctx context.Context) (*ReplenishResult, error) {
	now := uc.clock.Now()
	result, err := uc.replenish(ctx, now)
	uc.record(ctx, now, result, err)
	return result, err
}

func (uc *ReplenishPoolUseCase) replenish(ctx context.Context, now time.Time) (*ReplenishResult, error) {
	free, err := uc.poolRepo.CountFree(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count free addresses: %w", err)
	}
	result := &ReplenishResult{PoolSize: free}
	defer uc.observe(result)

	key, err := uc.keyRepo.GetActive(ctx)
	if errors.Is(err, addresspool.ErrNoActiveKey) {
		if free < int64(uc.cfg.CriticalThreshold) {
			uc.logger.Errorw("address pool critically low and no active extended key",
				"free", free,
				"threshold", uc.cfg.CriticalThreshold,
			)
			result.AlertRaised = true
			if uc.alerter != nil {
				if err := uc.alerter.PoolCritical(ctx, free, uc.cfg.CriticalThreshold); err != nil {
					uc.logger.Warnw("failed to send pool alert", "error", err)
				}
			}
		}
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active key: %w", err)
	}

	if free >= int64(uc.cfg.TargetSize) {
		return result, nil
	}

	n := uc.cfg.TargetSize - int(free)
	if n > uc.cfg.BatchSize {
		n = uc.cfg.BatchSize
	}

	first, err := uc.keyRepo.ReserveIndexes(ctx, key.ID(), uint32(n))
	if errors.Is(err, addresspool.ErrReservationConflict) {
		uc.logger.Infow("index range taken by a concurrent run, skipping", "key_id", key.ID())
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve index range: %w", err)
	}

	entries := make([]*addresspool.PoolEntry, 0, n)
	for i := 0; i < n; i++ {
		derived, err := uc.deriver.Derive(key.KeyMaterial(), first+uint32(i), key.Network())
		if err != nil {
			uc.logger.Errorw("address derivation failed during replenishment",
				"key_id", key.ID(),
				"index", first+uint32(i),
				"error", err,
			)
			break
		}
		derived.KeyID = key.ID()
		entry, err := addresspool.NewDerivedEntry(derived, now)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		inserted, err := uc.poolRepo.InsertBatch(ctx, entries)
		if err != nil {
			return nil, fmt.Errorf("failed to insert derived addresses: %w", err)
		}
		result.Generated = inserted
		result.PoolSize = free + int64(inserted)
	}

	if len(entries) < n {
		return result, fmt.Errorf("derived %d of %d addresses: %w", len(entries), n, addresspool.ErrDerivation)
	}

	uc.logger.Infow("address pool replenished",
		"generated", result.Generated,
		"pool_size", result.PoolSize,
		"key_id", key.ID(),
	)
	return result, nil
}

func (uc *ReplenishPoolUseCase) record(ctx context.Context, now time.Time, result *ReplenishResult, runErr error) {
	if uc.recorder == nil {
		return
	}
	run := addresspool.ReplenishRun{At: now}
	if result != nil {
		run.Generated = result.Generated
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := uc.recorder.RecordRun(ctx, run); err != nil {
		uc.logger.Warnw("failed to record replenishment outcome", "error", err)
	}
}

func (uc *ReplenishPoolUseCase) observe(r *ReplenishResult) {
	if uc.observer == nil {
		return
	}
	uc.observer.SetPoolFree(r.PoolSize)
	if r.Generated > 0 {
		uc.observer.AddressesGenerated(r.Generated)
	}
}
