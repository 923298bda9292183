package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/satsgate/internal/application/addresspool/derivation"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const maxSeedBatch = 1000

type SeedResult struct {
	Inserted  int      `json:"inserted"`
	Duplicate int      `json:"duplicate"`
	Invalid   []string `json:"invalid,omitempty"`
}

// SeedAddressesUseCase loads operator-provided addresses into the pool. They
// back allocations while no extended key is active.
type SeedAddressesUseCase struct {
	poolRepo addresspool.PoolRepository
	deriver  derivation.Deriver
	network  vo.Network
	clock    biztime.Clock
	logger   logger.Interface
}

func NewSeedAddressesUseCase(
	poolRepo addresspool.PoolRepository,
	deriver derivation.Deriver,
	network vo.Network,
	clock biztime.Clock,
	logger logger.Interface,
) *SeedAddressesUseCase {
	return &SeedAddressesUseCase{
		poolRepo: poolRepo,
		deriver:  deriver,
		network:  network,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *SeedAddressesUseCase) Execute(ctx context.Context, addresses []string) (*SeedResult, error) {
	if len(addresses) == 0 {
		return nil, apperrors.NewValidationError("addresses are required")
	}
	if len(addresses) > maxSeedBatch {
		return nil, apperrors.NewValidationError(fmt.Sprintf("at most %d addresses per request", maxSeedBatch))
	}

	now := uc.clock.Now()
	result := &SeedResult{}
	seen := make(map[string]struct{}, len(addresses))
	entries := make([]*addresspool.PoolEntry, 0, len(addresses))

	for _, raw := range addresses {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := uc.deriver.ValidateAddress(raw, uc.network)
		if err != nil {
			result.Invalid = append(result.Invalid, raw)
			continue
		}
		if _, dup := seen[addr]; dup {
			result.Duplicate++
			continue
		}
		seen[addr] = struct{}{}

		entry, err := addresspool.NewSeededEntry(addr, now)
		if err != nil {
			result.Invalid = append(result.Invalid, raw)
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		inserted, err := uc.poolRepo.InsertBatch(ctx, entries)
		if err != nil {
			return nil, fmt.Errorf("failed to seed addresses: %w", err)
		}
		result.Inserted = inserted
		result.Duplicate += len(entries) - inserted
	}

	uc.logger.Infow("address pool seeded",
		"inserted", result.Inserted,
		"duplicate", result.Duplicate,
		"invalid", len(result.Invalid),
	)
	return result, nil
}
