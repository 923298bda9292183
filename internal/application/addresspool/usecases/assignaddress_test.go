package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const seededAddr = "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"

type allocatorFixture struct {
	keys    *mockKeyRepo
	pool    *mockPoolRepo
	metrics *mockAllocationMetrics
	sleeper *recordingSleeper
	uc      *AssignAddressUseCase
}

func newAllocatorFixture(t *testing.T) *allocatorFixture {
	t.Helper()
	f := &allocatorFixture{
		keys:    new(mockKeyRepo),
		pool:    new(mockPoolRepo),
		metrics: new(mockAllocationMetrics),
		sleeper: &recordingSleeper{},
	}
	f.uc = NewAssignAddressUseCase(f.keys, f.pool, new(mockDeriver), nil,
		biztime.NewManualClock(testNow),
		AllocatorConfig{MaxRetries: 3},
		logger.NewNop(),
	)
	f.uc.SetSleeper(f.sleeper.sleep)
	f.uc.SetMetrics(f.metrics)
	return f
}

func reservedSeededEntry(t *testing.T, orderID string) *addresspool.PoolEntry {
	t.Helper()
	e, err := addresspool.NewSeededEntry(seededAddr, testNow)
	require.NoError(t, err)
	require.NoError(t, e.Reserve(orderID, testNow, defaultReservationTTL))
	return e
}

func (f *allocatorFixture) noLiveReservationAndNoKey() {
	f.pool.On("FindLiveReservation", mock.Anything, "order-1", testNow).Return(nil, addresspool.ErrEntryNotFound)
	f.keys.On("GetActive", mock.Anything).Return(nil, addresspool.ErrNoActiveKey)
}

func TestAssignAddress_RetriesConflictWithBackoff(t *testing.T) {
	f := newAllocatorFixture(t)
	f.noLiveReservationAndNoKey()
	f.pool.On("ClaimFree", mock.Anything, "order-1", testNow, defaultReservationTTL).
		Return(nil, addresspool.ErrReservationConflict).Twice()
	f.pool.On("ClaimFree", mock.Anything, "order-1", testNow, defaultReservationTTL).
		Return(reservedSeededEntry(t, "order-1"), nil).Once()
	f.metrics.On("AddressAssignRetried").Return().Twice()
	f.metrics.On("AddressAssigned", SourceSeeded).Return().Once()

	result, err := f.uc.Execute(context.Background(), "order-1")

	require.NoError(t, err)
	assert.Equal(t, seededAddr, result.Address)
	assert.Equal(t, SourceSeeded, result.Source)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, testNow.Add(defaultReservationTTL), result.ExpiresAt)
	assertJitteredDelays(t, []time.Duration{time.Second, 2 * time.Second}, f.sleeper.delays)
	f.pool.AssertNumberOfCalls(t, "ClaimFree", 3)
	f.metrics.AssertExpectations(t)
}

func TestAssignAddress_GivesUpAfterMaxRetries(t *testing.T) {
	f := newAllocatorFixture(t)
	f.noLiveReservationAndNoKey()
	f.pool.On("ClaimFree", mock.Anything, "order-1", testNow, defaultReservationTTL).
		Return(nil, addresspool.ErrReservationConflict)
	f.metrics.On("AddressAssignRetried").Return()
	f.metrics.On("AddressAssignFailed", apperrors.CodeMaxRetriesExceeded).Return().Once()

	result, err := f.uc.Execute(context.Background(), "order-1")

	assert.Nil(t, result)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMaxRetriesExceeded))
	assert.True(t, errors.Is(err, addresspool.ErrReservationConflict))
	assertJitteredDelays(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, f.sleeper.delays)
	f.pool.AssertNumberOfCalls(t, "ClaimFree", 4)
	f.metrics.AssertNumberOfCalls(t, "AddressAssignRetried", 3)
	f.metrics.AssertExpectations(t)
}

func TestAssignAddress_PoolExhaustedIsNotRetried(t *testing.T) {
	f := newAllocatorFixture(t)
	f.noLiveReservationAndNoKey()
	f.pool.On("ClaimFree", mock.Anything, "order-1", testNow, defaultReservationTTL).
		Return(nil, addresspool.ErrPoolExhausted).Once()
	f.metrics.On("AddressAssignFailed", apperrors.CodeAddressPoolEmpty).Return().Once()

	_, err := f.uc.Execute(context.Background(), "order-1")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeAddressPoolEmpty))
	assert.Empty(t, f.sleeper.delays)
	f.pool.AssertNumberOfCalls(t, "ClaimFree", 1)
	f.metrics.AssertExpectations(t)
}

func TestAssignAddress_ReturnsLiveReservation(t *testing.T) {
	f := newAllocatorFixture(t)
	f.pool.On("FindLiveReservation", mock.Anything, "order-1", testNow).
		Return(reservedSeededEntry(t, "order-1"), nil)
	f.metrics.On("AddressAssigned", SourceReused).Return().Once()

	result, err := f.uc.Execute(context.Background(), "order-1")

	require.NoError(t, err)
	assert.Equal(t, SourceReused, result.Source)
	assert.Equal(t, seededAddr, result.Address)
	f.keys.AssertNotCalled(t, "GetActive", mock.Anything)
	f.pool.AssertNotCalled(t, "ClaimFree", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignAddress_RequiresOrderID(t *testing.T) {
	f := newAllocatorFixture(t)

	_, err := f.uc.Execute(context.Background(), "")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	f.pool.AssertNotCalled(t, "FindLiveReservation", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignAddress_InterruptedBackoff(t *testing.T) {
	f := newAllocatorFixture(t)
	f.noLiveReservationAndNoKey()
	f.pool.On("ClaimFree", mock.Anything, "order-1", testNow, defaultReservationTTL).
		Return(nil, addresspool.ErrReservationConflict)
	f.metrics.On("AddressAssignRetried").Return()
	f.uc.SetSleeper(func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	})

	_, err := f.uc.Execute(context.Background(), "order-1")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeReservationFailed))
	f.pool.AssertNumberOfCalls(t, "ClaimFree", 1)
}

func TestAssignAddress_UnexpectedErrorIsReservationFailure(t *testing.T) {
	f := newAllocatorFixture(t)
	f.pool.On("FindLiveReservation", mock.Anything, "order-1", testNow).
		Return(nil, errors.New("connection reset"))
	f.metrics.On("AddressAssignFailed", apperrors.CodeReservationFailed).Return().Once()

	_, err := f.uc.Execute(context.Background(), "order-1")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeReservationFailed))
	assert.Empty(t, f.sleeper.delays)
	f.metrics.AssertExpectations(t)
}

func assertJitteredDelays(t *testing.T, nominal, got []time.Duration) {
	t.Helper()
	require.Len(t, got, len(nominal))
	for i, want := range nominal {
		spread := time.Duration(float64(want) * defaultRetryJitter)
		assert.GreaterOrEqual(t, got[i], want-spread, "delay %d", i)
		assert.LessOrEqual(t, got[i], want+spread, "delay %d", i)
	}
}
