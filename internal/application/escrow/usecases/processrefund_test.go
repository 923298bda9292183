package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mockEscrowRepo struct{ mock.Mock }

func (m *mockEscrowRepo) Create(ctx context.Context, e *escrow.Escrow) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEscrowRepo) GetBySID(ctx context.Context, sid string) (*escrow.Escrow, error) {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Escrow), args.Error(1)
}

func (m *mockEscrowRepo) GetByOrderID(ctx context.Context, orderID string) (*escrow.Escrow, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Escrow), args.Error(1)
}

func (m *mockEscrowRepo) Update(ctx context.Context, e *escrow.Escrow, expected escrow.Status) error {
	return m.Called(ctx, e, expected).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

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

type mockLedgerRepo struct{ mock.Mock }

func (m *mockLedgerRepo) Append(ctx context.Context, t *escrow.LedgerTransaction) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockLedgerRepo) ListByOrder(ctx context.Context, orderID string) ([]*escrow.LedgerTransaction, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*escrow.LedgerTransaction), args.Error(1)
}

// paymentLookup implements only the calls a refund makes; the rest panic
// through the embedded nil interface.
type paymentLookup struct {
	payment.PaymentRepository
	mock.Mock
}

func (m *paymentLookup) GetPaidByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *paymentLookup) Update(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

type mockOutbox struct{ mock.Mock }

func (m *mockOutbox) Add(ctx context.Context, msgs ...*outbox.Message) (int, error) {
	args := m.Called(ctx, msgs)
	return args.Int(0), args.Error(1)
}

func (m *mockOutbox) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, now, leaseUntil, limit)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutbox) Save(ctx context.Context, msg *outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutbox) CountByStatus(ctx context.Context) (map[outbox.Status]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[outbox.Status]int64), args.Error(1)
}

type refundFixture struct {
	escrows  *mockEscrowRepo
	orders   *mockOrderRepo
	ledger   *mockLedgerRepo
	payments *paymentLookup
	outbox   *mockOutbox
	gdb      *gorm.DB
	uc       *ProcessRefundUseCase
}

func newRefundFixture(t *testing.T) *refundFixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	f := &refundFixture{
		escrows:  new(mockEscrowRepo),
		orders:   new(mockOrderRepo),
		ledger:   new(mockLedgerRepo),
		payments: new(paymentLookup),
		outbox:   new(mockOutbox),
		gdb:      gdb,
	}
	f.uc = NewProcessRefundUseCase(f.escrows, f.orders, f.ledger, f.payments, f.outbox,
		db.NewTransactionManager(gdb), biztime.NewManualClock(testNow), 5, logger.NewNop())
	return f
}

func escrowIn(status escrow.Status) *escrow.Escrow {
	return escrow.ReconstructEscrow(3, "esc_1", "order-1", decimal.RequireFromString("100"), "USD",
		status, "", "", nil, nil, 2, testNow, testNow)
}

func TestProcessRefund_WritesLedgerAndNotificationIntent(t *testing.T) {
	f := newRefundFixture(t)
	order := escrow.ReconstructOrder(9, "order-1", "buyer@example.com", escrow.OrderStatusPaid,
		decimal.RequireFromString("100"), "USD", testNow, testNow)

	f.escrows.On("GetBySID", mock.Anything, "esc_1").Return(escrowIn(escrow.StatusHeld), nil)
	f.escrows.On("Update", mock.Anything, mock.Anything, escrow.StatusHeld).Return(nil).Once()
	f.orders.On("GetByOrderNo", mock.Anything, "order-1").Return(order, nil)
	f.orders.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(o *escrow.Order) bool {
		return o.Status() == escrow.OrderStatusRefunded
	})).Return(nil).Once()
	f.payments.On("GetPaidByOrderID", mock.Anything, "order-1").Return(nil, payment.ErrPaymentNotFound)
	f.ledger.On("Append", mock.Anything, mock.MatchedBy(func(tx *escrow.LedgerTransaction) bool {
		return tx.Type() == escrow.LedgerTypeRefund && tx.Amount().Equal(decimal.NewFromInt(100)) &&
			*tx.EscrowID() == 3 && tx.Reference() == "esc_1"
	})).Return(nil).Once()

	var written []*outbox.Message
	f.outbox.On("Add", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).([]*outbox.Message)
	}).Return(2, nil).Once()

	result, err := f.uc.Execute(context.Background(), ProcessRefundCommand{
		EscrowID: "esc_1",
		Reason:   "customer request",
	})

	require.NoError(t, err)
	assert.Equal(t, "refunded", result.Status)
	assert.Equal(t, "100", result.Amount)
	assert.Equal(t, testNow, result.RefundedAt)
	assert.NotEmpty(t, result.LedgerEntryID)

	require.Len(t, written, len(RefundedEffects))
	var ev escrow.RefundedEvent
	require.NoError(t, json.Unmarshal(written[0].Payload(), &ev))
	assert.Equal(t, "buyer@example.com", ev.CustomerEmail)
	assert.Equal(t, "customer request", ev.Reason)

	f.escrows.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestProcessRefund_RejectsNonHeldEscrow(t *testing.T) {
	for _, status := range []escrow.Status{escrow.StatusRefunded, escrow.StatusReleased} {
		t.Run(status.String(), func(t *testing.T) {
			f := newRefundFixture(t)
			f.escrows.On("GetBySID", mock.Anything, "esc_1").Return(escrowIn(status), nil)

			_, err := f.uc.Execute(context.Background(), ProcessRefundCommand{EscrowID: "esc_1", Reason: "again"})

			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStateTransition))
			assert.ErrorIs(t, err, escrow.ErrInvalidStateTransition)
			f.escrows.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			f.outbox.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessRefund_LostRaceIsInvalidTransition(t *testing.T) {
	f := newRefundFixture(t)
	f.escrows.On("GetBySID", mock.Anything, "esc_1").Return(escrowIn(escrow.StatusHeld), nil)
	f.escrows.On("Update", mock.Anything, mock.Anything, escrow.StatusHeld).Return(escrow.ErrConcurrentModification)

	_, err := f.uc.Execute(context.Background(), ProcessRefundCommand{EscrowID: "esc_1", Reason: "dup"})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStateTransition))
	f.ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestProcessRefund_OutboxFailureAbortsRefund(t *testing.T) {
	f := newRefundFixture(t)
	f.escrows.On("GetBySID", mock.Anything, "esc_1").Return(escrowIn(escrow.StatusHeld), nil)
	f.escrows.On("Update", mock.Anything, mock.Anything, escrow.StatusHeld).Return(nil)
	f.orders.On("GetByOrderNo", mock.Anything, "order-1").Return(nil, escrow.ErrOrderNotFound)
	f.payments.On("GetPaidByOrderID", mock.Anything, "order-1").Return(nil, payment.ErrPaymentNotFound)
	f.ledger.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.outbox.On("Add", mock.Anything, mock.Anything).Return(0, errors.New("table locked"))

	_, err := f.uc.Execute(context.Background(), ProcessRefundCommand{EscrowID: "esc_1", Reason: "r"})

	require.Error(t, err)
	assert.False(t, apperrors.HasCode(err, apperrors.CodeInvalidStateTransition))
}

func TestProcessRefund_Validation(t *testing.T) {
	f := newRefundFixture(t)
	f.escrows.On("GetBySID", mock.Anything, "esc_missing").Return(nil, escrow.ErrEscrowNotFound)

	_, err := f.uc.Execute(context.Background(), ProcessRefundCommand{Reason: "r"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.uc.Execute(context.Background(), ProcessRefundCommand{EscrowID: "esc_1"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.uc.Execute(context.Background(), ProcessRefundCommand{EscrowID: "esc_missing", Reason: "r"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
