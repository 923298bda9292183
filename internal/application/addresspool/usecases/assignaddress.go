package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/orris-inc/satsgate/internal/application/addresspool/derivation"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const (
	defaultReservationTTL = 30 * time.Minute
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = time.Second
	defaultRetryJitter    = 0.25
)

// Allocation sources reported in results and metrics.
const (
	SourceDerived = "derived"
	SourceSeeded  = "seeded"
	SourceReused  = "reused"
)

// AllocationMetrics receives allocator outcomes. Optional.
type AllocationMetrics interface {
	AddressAssigned(source string)
	AddressAssignFailed(code string)
	AddressAssignRetried()
}

// Sleeper waits between retries. Tests replace it to avoid real delays.
type Sleeper func(ctx context.Context, d time.Duration) error

// AllocatorConfig holds allocator tuning.
type AllocatorConfig struct {
	ReservationTTL time.Duration
	// MaxRetries counts retries after the first attempt.
	MaxRetries     int
	RetryBaseDelay time.Duration
	// RetryJitter spreads each delay by up to this fraction so callers that
	// lost the same race do not collide again on the next attempt.
	RetryJitter    float64
}

// AllocationResult describes the address handed to an order.
type AllocationResult struct {
	Address         string    `json:"address"`
	ExpiresAt       time.Time `json:"expiresAt"`
	DerivationIndex *uint32   `json:"derivationIndex,omitempty"`
	Source          string    `json:"-"`
	Attempts        int       `json:"-"`
}

// AssignAddressUseCase hands out a receiving address to an order. It derives
// a fresh address from the active extended key, or claims one from the seeded
// pool when no key is active.
type AssignAddressUseCase struct {
	keyRepo  addresspool.ExtendedKeyRepository
	poolRepo addresspool.PoolRepository
	deriver  derivation.Deriver
	txMgr    *db.TransactionManager
	clock    biztime.Clock
	cfg      AllocatorConfig
	sleep    Sleeper
	metrics  AllocationMetrics // Optional
	logger   logger.Interface
}

func NewAssignAddressUseCase(
	keyRepo addresspool.ExtendedKeyRepository,
	poolRepo addresspool.PoolRepository,
	deriver derivation.Deriver,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	cfg AllocatorConfig,
	logger logger.Interface,
) *AssignAddressUseCase {
	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = defaultReservationTTL
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.RetryJitter <= 0 || cfg.RetryJitter >= 1 {
		cfg.RetryJitter = defaultRetryJitter
	}
	return &AssignAddressUseCase{
		keyRepo:  keyRepo,
		poolRepo: poolRepo,
		deriver:  deriver,
		txMgr:    txMgr,
		clock:    clock,
		cfg:      cfg,
		sleep:    sleepContext,
		logger:   logger,
	}
}

// SetSleeper replaces the wait between retries.
func (uc *AssignAddressUseCase) SetSleeper(s Sleeper) {
	uc.sleep = s
}

// SetMetrics sets the metrics sink (optional dependency injection)
func (uc *AssignAddressUseCase) SetMetrics(m AllocationMetrics) {
	uc.metrics = m
}

// Execute assigns an address to orderID. A live reservation already held by
// the order is returned unchanged so storefront retries are idempotent.
//
// Reservation conflicts are retried with jittered exponential backoff (about
// 1s, 2s, 4s by default). Pool exhaustion and derivation failures are never retried.
func (uc *AssignAddressUseCase) Execute(ctx context.Context, orderID string) (*AllocationResult, error) {
	if orderID == "" {
		return nil, apperrors.NewValidationError("orderId is required")
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = uc.cfg.RetryBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = uc.cfg.RetryJitter
	bo.MaxInterval = uc.cfg.RetryBaseDelay << uc.cfg.MaxRetries
	bo.Reset()

	var lastErr error
	for attempt := 1; attempt <= uc.cfg.MaxRetries+1; attempt++ {
		result, err := uc.attempt(ctx, orderID)
		if err == nil {
			result.Attempts = attempt
			uc.recordAssigned(result.Source)
			uc.logger.Infow("address assigned",
				"order_id", orderID,
				"address", result.Address,
				"source", result.Source,
				"attempts", attempt,
			)
			return result, nil
		}

		if !isRetryable(err) {
			return nil, uc.mapError(orderID, err)
		}

		lastErr = err
		if attempt > uc.cfg.MaxRetries {
			break
		}

		delay := bo.NextBackOff()
		uc.logger.Warnw("address reservation conflict, retrying",
			"order_id", orderID,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		if uc.metrics != nil {
			uc.metrics.AddressAssignRetried()
		}
		if err := uc.sleep(ctx, delay); err != nil {
			return nil, apperrors.NewReservationFailedError("address reservation interrupted", err.Error()).WithCause(err)
		}
	}

	uc.logger.Errorw("address reservation retries exhausted",
		"order_id", orderID,
		"attempts", uc.cfg.MaxRetries+1,
		"error", lastErr,
	)
	uc.recordFailed(apperrors.CodeMaxRetriesExceeded)
	return nil, apperrors.NewMaxRetriesExceededError("could not reserve an address, please retry").WithCause(lastErr)
}

func (uc *AssignAddressUseCase) attempt(ctx context.Context, orderID string) (*AllocationResult, error) {
	now := uc.clock.Now()

	live, err := uc.poolRepo.FindLiveReservation(ctx, orderID, now)
	if err != nil && !errors.Is(err, addresspool.ErrEntryNotFound) {
		return nil, err
	}
	if live != nil {
		return resultFromEntry(live, SourceReused), nil
	}

	key, err := uc.keyRepo.GetActive(ctx)
	if errors.Is(err, addresspool.ErrNoActiveKey) {
		entry, err := uc.poolRepo.ClaimFree(ctx, orderID, now, uc.cfg.ReservationTTL)
		if err != nil {
			return nil, err
		}
		return resultFromEntry(entry, SourceSeeded), nil
	}
	if err != nil {
		return nil, err
	}

	var entry *addresspool.PoolEntry
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		index, err := uc.keyRepo.ReserveIndexes(txCtx, key.ID(), 1)
		if err != nil {
			return err
		}

		derived, err := uc.deriver.Derive(key.KeyMaterial(), index, key.Network())
		if err != nil {
			return err
		}
		derived.KeyID = key.ID()

		entry, err = addresspool.NewDerivedEntry(derived, now)
		if err != nil {
			return err
		}
		if err := entry.Reserve(orderID, now, uc.cfg.ReservationTTL); err != nil {
			return err
		}
		return uc.poolRepo.Insert(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return resultFromEntry(entry, SourceDerived), nil
}

func (uc *AssignAddressUseCase) mapError(orderID string, err error) error {
	switch {
	case errors.Is(err, addresspool.ErrPoolExhausted):
		uc.logger.Warnw("address pool exhausted", "order_id", orderID)
		uc.recordFailed(apperrors.CodeAddressPoolEmpty)
		return apperrors.NewPoolExhaustedError("no receiving address available").WithCause(err)
	case errors.Is(err, addresspool.ErrDerivation):
		uc.logger.Errorw("address derivation failed, check the active extended key",
			"order_id", orderID,
			"error", err,
		)
		uc.recordFailed(apperrors.CodeDerivationFailed)
		return apperrors.NewDerivationError("address derivation failed").WithCause(err)
	default:
		uc.logger.Errorw("address reservation failed", "order_id", orderID, "error", err)
		uc.recordFailed(apperrors.CodeReservationFailed)
		return apperrors.NewReservationFailedError("failed to reserve address").WithCause(err)
	}
}

func (uc *AssignAddressUseCase) recordAssigned(source string) {
	if uc.metrics != nil {
		uc.metrics.AddressAssigned(source)
	}
}

func (uc *AssignAddressUseCase) recordFailed(code string) {
	if uc.metrics != nil {
		uc.metrics.AddressAssignFailed(code)
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, addresspool.ErrReservationConflict) || apperrors.IsDuplicateError(err)
}

func resultFromEntry(e *addresspool.PoolEntry, source string) *AllocationResult {
	r := &AllocationResult{
		Address:         e.Address(),
		DerivationIndex: e.DerivationIndex(),
		Source:          source,
	}
	if exp := e.ReservationExpiresAt(); exp != nil {
		r.ExpiresAt = *exp
	}
	return r
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
