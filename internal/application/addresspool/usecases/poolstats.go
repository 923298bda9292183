package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
)

type PoolStatsResult struct {
	addresspool.PoolStats
	ActiveKey *KeyView `json:"activeKey,omitempty"`
}

type GetPoolStatsUseCase struct {
	keyRepo  addresspool.ExtendedKeyRepository
	poolRepo addresspool.PoolRepository
	clock    biztime.Clock
}

func NewGetPoolStatsUseCase(
	keyRepo addresspool.ExtendedKeyRepository,
	poolRepo addresspool.PoolRepository,
	clock biztime.Clock,
) *GetPoolStatsUseCase {
	return &GetPoolStatsUseCase{keyRepo: keyRepo, poolRepo: poolRepo, clock: clock}
}

func (uc *GetPoolStatsUseCase) Execute(ctx context.Context) (*PoolStatsResult, error) {
	stats, err := uc.poolRepo.Stats(ctx, uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load pool stats: %w", err)
	}
	result := &PoolStatsResult{PoolStats: *stats}

	key, err := uc.keyRepo.GetActive(ctx)
	switch {
	case errors.Is(err, addresspool.ErrNoActiveKey):
	case err != nil:
		return nil, fmt.Errorf("failed to load active key: %w", err)
	default:
		result.ActiveKey = ToKeyView(key)
	}
	return result, nil
}
