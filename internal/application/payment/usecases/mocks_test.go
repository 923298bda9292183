package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	poolUsecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/db"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTxManager backs RunInTransaction with an empty sqlite database; the
// repositories in these tests are mocks and ignore the transaction.
func newTxManager(t *testing.T) *db.TransactionManager {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db.NewTransactionManager(gdb)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) paymentOrErr(args mock.Arguments) (*payment.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	return m.paymentOrErr(m.Called(ctx, id))
}

func (m *mockPaymentRepo) GetBySID(ctx context.Context, sid string) (*payment.Payment, error) {
	return m.paymentOrErr(m.Called(ctx, sid))
}

func (m *mockPaymentRepo) GetPendingByAddress(ctx context.Context, address string) (*payment.Payment, error) {
	return m.paymentOrErr(m.Called(ctx, address))
}

func (m *mockPaymentRepo) GetPendingByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return m.paymentOrErr(m.Called(ctx, orderID))
}

func (m *mockPaymentRepo) GetPaidByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return m.paymentOrErr(m.Called(ctx, orderID))
}

func (m *mockPaymentRepo) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepo) CountPendingOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPaymentRepo) FindPaidWithoutOutbox(ctx context.Context, eventType string, limit int) ([]*payment.Payment, error) {
	args := m.Called(ctx, eventType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) Record(ctx context.Context, e *payment.ChainEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventRepo) MarkProcessed(ctx context.Context, id uint, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *mockEventRepo) FindUnprocessed(ctx context.Context, receivedBefore time.Time, limit int) ([]*payment.ChainEvent, error) {
	args := m.Called(ctx, receivedBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.ChainEvent), args.Error(1)
}

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Execute(ctx context.Context, ev *payment.ChainEvent) (*ProcessOutcome, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProcessOutcome), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Upsert(ctx context.Context, o *escrow.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) GetByOrderNo(ctx context.Context, orderNo string) (*escrow.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, o *escrow.Order) error {
	return m.Called(ctx, o).Error(0)
}

type mockAssigner struct {
	mock.Mock
}

func (m *mockAssigner) Execute(ctx context.Context, orderID string) (*poolUsecases.AllocationResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*poolUsecases.AllocationResult), args.Error(1)
}

type mockPrices struct {
	mock.Mock
}

func (m *mockPrices) BTCPrice(ctx context.Context, currency string) (decimal.Decimal, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockIngestMetrics struct {
	mock.Mock
}

func (m *mockIngestMetrics) NotificationIngested(outcome string) { m.Called(outcome) }
