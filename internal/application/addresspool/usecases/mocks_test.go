package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
)

type mockKeyRepo struct {
	mock.Mock
}

func (m *mockKeyRepo) Create(ctx context.Context, key *addresspool.ExtendedKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockKeyRepo) GetByID(ctx context.Context, id uint) (*addresspool.ExtendedKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addresspool.ExtendedKey), args.Error(1)
}

func (m *mockKeyRepo) GetBySID(ctx context.Context, sid string) (*addresspool.ExtendedKey, error) {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addresspool.ExtendedKey), args.Error(1)
}

func (m *mockKeyRepo) GetActive(ctx context.Context) (*addresspool.ExtendedKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addresspool.ExtendedKey), args.Error(1)
}

func (m *mockKeyRepo) List(ctx context.Context) ([]*addresspool.ExtendedKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*addresspool.ExtendedKey), args.Error(1)
}

func (m *mockKeyRepo) Activate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockKeyRepo) Deactivate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockKeyRepo) ReserveIndexes(ctx context.Context, keyID uint, n uint32) (uint32, error) {
	args := m.Called(ctx, keyID, n)
	return args.Get(0).(uint32), args.Error(1)
}

type mockPoolRepo struct {
	mock.Mock
}

func (m *mockPoolRepo) Insert(ctx context.Context, entry *addresspool.PoolEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockPoolRepo) InsertBatch(ctx context.Context, entries []*addresspool.PoolEntry) (int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Error(1)
}

func (m *mockPoolRepo) ClaimFree(ctx context.Context, orderID string, now time.Time, ttl time.Duration) (*addresspool.PoolEntry, error) {
	args := m.Called(ctx, orderID, now, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addresspool.PoolEntry), args.Error(1)
}

func (m *mockPoolRepo) FindLiveReservation(ctx context.Context, orderID string, now time.Time) (*addresspool.PoolEntry, error) {
	args := m.Called(ctx, orderID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addresspool.PoolEntry), args.Error(1)
}

func (m *mockPoolRepo) GetByAddress(ctx context.Context, address string) (*addresspool.PoolEntry, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addresspool.PoolEntry), args.Error(1)
}

func (m *mockPoolRepo) CountFree(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPoolRepo) Retire(ctx context.Context, address string, now time.Time) error {
	args := m.Called(ctx, address, now)
	return args.Error(0)
}

func (m *mockPoolRepo) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPoolRepo) ReleaseForOrder(ctx context.Context, address, orderID string, now time.Time) error {
	args := m.Called(ctx, address, orderID, now)
	return args.Error(0)
}

func (m *mockPoolRepo) Stats(ctx context.Context, now time.Time) (*addresspool.PoolStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*addresspool.PoolStats), args.Error(1)
}

type mockDeriver struct {
	mock.Mock
}

func (m *mockDeriver) Derive(keyMaterial string, index uint32, network vo.Network) (addresspool.DerivedAddress, error) {
	args := m.Called(keyMaterial, index, network)
	return args.Get(0).(addresspool.DerivedAddress), args.Error(1)
}

func (m *mockDeriver) ValidateKey(keyMaterial string, network vo.Network) error {
	args := m.Called(keyMaterial, network)
	return args.Error(0)
}

func (m *mockDeriver) ValidateAddress(address string, network vo.Network) (string, error) {
	args := m.Called(address, network)
	return args.String(0), args.Error(1)
}

type mockAlerter struct {
	mock.Mock
}

func (m *mockAlerter) PoolCritical(ctx context.Context, free int64, threshold int) error {
	args := m.Called(ctx, free, threshold)
	return args.Error(0)
}

type mockAllocationMetrics struct {
	mock.Mock
}

func (m *mockAllocationMetrics) AddressAssigned(source string)  { m.Called(source) }
func (m *mockAllocationMetrics) AddressAssignFailed(code string) { m.Called(code) }
func (m *mockAllocationMetrics) AddressAssignRetried()           { m.Called() }

// recordingSleeper captures the delays requested between retries.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}
