package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	vo "github.com/orris-inc/satsgate/internal/domain/payment/valueobjects"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
)

func newTestPayment(t *testing.T, sid, orderID, address string) *payment.Payment {
	t.Helper()
	fiat := decimal.RequireFromString("100.00")
	p, err := payment.NewPayment(payment.NewPaymentParams{
		SID:          sid,
		OrderID:      orderID,
		Address:      address,
		AmountBTC:    decimal.RequireFromString("0.0015"),
		AmountFiat:   &fiat,
		FiatCurrency: "USD",
		Metadata:     map[string]interface{}{"source": "test"},
	}, testNow, 30*time.Minute)
	require.NoError(t, err)
	return p
}

func TestPaymentRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newTestDB(t))

	p := newTestPayment(t, "pay_rt", "order-rt", "bc1qrt")
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID())

	got, err := repo.GetBySID(ctx, "pay_rt")
	require.NoError(t, err)
	assert.True(t, got.AmountExpected().Equal(decimal.RequireFromString("0.0015")))
	require.NotNil(t, got.AmountFiat())
	assert.True(t, got.AmountFiat().Equal(decimal.RequireFromString("100")))
	assert.Equal(t, "test", got.Metadata()["source"])
	assert.Equal(t, vo.PaymentStatusPending, got.Status())

	_, err = repo.GetBySID(ctx, "pay_missing")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestPaymentRepository_UpdateDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newTestDB(t))

	p := newTestPayment(t, "pay_ver", "order-ver", "bc1qver")
	require.NoError(t, repo.Create(ctx, p))

	a, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	b, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)

	paid, err := a.ApplyConfirmations(1, "txid-a", 1, testNow.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, paid)
	require.NoError(t, repo.Update(ctx, a))
	assert.Equal(t, 1, a.Version())

	assert.True(t, b.MarkAsExpired(testNow.Add(time.Hour)))
	assert.ErrorIs(t, repo.Update(ctx, b), payment.ErrConcurrentModification)

	stored, err := repo.GetPaidByOrderID(ctx, "order-ver")
	require.NoError(t, err)
	assert.Equal(t, "txid-a", *stored.TxID())
	assert.Equal(t, 1, stored.Confirmations())
}

func TestPaymentRepository_OnePendingPaymentPerOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newTestDB(t))

	first := newTestPayment(t, "pay_open1", "order-open", "bc1qopen1")
	require.NoError(t, repo.Create(ctx, first))

	second := newTestPayment(t, "pay_open2", "order-open", "bc1qopen2")
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateError(err))

	// Leaving pending frees the slot for a new attempt.
	require.True(t, first.MarkAsExpired(testNow.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	pending, err := repo.GetPendingByOrderID(ctx, "order-open")
	require.NoError(t, err)
	assert.Equal(t, "pay_open2", pending.SID())
}

func TestPaymentRepository_PendingQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository(newTestDB(t))

	p := newTestPayment(t, "pay_pending", "order-pending", "bc1qpending")
	require.NoError(t, repo.Create(ctx, p))

	byAddr, err := repo.GetPendingByAddress(ctx, "bc1qpending")
	require.NoError(t, err)
	assert.Equal(t, "pay_pending", byAddr.SID())

	byOrder, err := repo.GetPendingByOrderID(ctx, "order-pending")
	require.NoError(t, err)
	assert.Equal(t, p.ID(), byOrder.ID())

	expired, err := repo.FindExpiredPending(ctx, testNow.Add(10*time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, expired)
	expired, err = repo.FindExpiredPending(ctx, testNow.Add(31*time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, expired, 1)

	stale, err := repo.CountPendingOlderThan(ctx, testNow.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stale)
}

func TestPaymentRepository_FindPaidWithoutOutbox(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	repo := NewPaymentRepository(gdb)
	outboxRepo := NewOutboxRepository(gdb)

	for _, sid := range []string{"pay_a", "pay_b"} {
		p := newTestPayment(t, sid, "order-"+sid, "bc1q"+sid)
		_, err := p.ApplyConfirmations(1, "tx-"+sid, 1, testNow)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, p))
	}

	msg, err := outbox.NewMessage(payment.EventPaymentConfirmed, "pay_a", outbox.EffectWebhookFanout, []byte(`{}`), 3, testNow)
	require.NoError(t, err)
	_, err = outboxRepo.Add(ctx, msg)
	require.NoError(t, err)

	missing, err := repo.FindPaidWithoutOutbox(ctx, payment.EventPaymentConfirmed, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "pay_b", missing[0].SID())
}

func TestChainEventRepository_DeduplicatesBySourceID(t *testing.T) {
	ctx := context.Background()
	repo := NewChainEventRepository(newTestDB(t))

	newEvent := func() *payment.ChainEvent {
		ev, err := payment.NewChainEvent(payment.ChainEventParams{
			SourceEventID: "evt-1",
			EventType:     "address-transactions",
			Address:       "bc1qevent",
			TxHash:        "abc",
			Confirmations: 1,
			RawPayload:    []byte(`{"id":"evt-1"}`),
		}, testNow)
		require.NoError(t, err)
		return ev
	}

	first := newEvent()
	require.NoError(t, repo.Record(ctx, first))
	assert.ErrorIs(t, repo.Record(ctx, newEvent()), payment.ErrDuplicateNotification)

	pending, err := repo.FindUnprocessed(ctx, testNow.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, []byte(`{"id":"evt-1"}`), pending[0].RawPayload())

	require.NoError(t, repo.MarkProcessed(ctx, first.ID(), testNow))
	pending, err = repo.FindUnprocessed(ctx, testNow.Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, repo.MarkProcessed(ctx, 404, testNow), payment.ErrEventNotFound)
}
