package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	poolusecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	escrowusecases "github.com/orris-inc/satsgate/internal/application/escrow/usecases"
	paymentusecases "github.com/orris-inc/satsgate/internal/application/payment/usecases"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	payvo "github.com/orris-inc/satsgate/internal/domain/payment/valueobjects"
	"github.com/orris-inc/satsgate/internal/infrastructure/bitcoin"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const flowZpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"

type flowFixture struct {
	gdb      *gorm.DB
	clock    *biztime.ManualClock
	keys     *ExtendedKeyRepository
	pool     *PoolRepository
	payments *PaymentRepository
	events   *ChainEventRepository
	outbox   *OutboxRepository
	assign   *poolusecases.AssignAddressUseCase
	ingest   *paymentusecases.IngestNotificationUseCase
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	txMgr := db.NewTransactionManager(gdb)
	clock := biztime.NewManualClock(testNow)

	f := &flowFixture{
		gdb:      gdb,
		clock:    clock,
		keys:     NewExtendedKeyRepository(gdb, log),
		pool:     NewPoolRepository(gdb, log),
		payments: NewPaymentRepository(gdb),
		events:   NewChainEventRepository(gdb),
		outbox:   NewOutboxRepository(gdb),
	}

	f.assign = poolusecases.NewAssignAddressUseCase(f.keys, f.pool, bitcoin.NewDeriver(), txMgr, clock,
		poolusecases.AllocatorConfig{ReservationTTL: 30 * time.Minute, MaxRetries: 3, RetryBaseDelay: time.Second}, log)
	f.assign.SetSleeper(func(context.Context, time.Duration) error { return nil })

	processor := paymentusecases.NewProcessChainEventUseCase(f.payments, f.events, f.pool, f.outbox, txMgr, clock,
		paymentusecases.ConfirmationConfig{Threshold: 1, OutboxMaxAttempts: 3}, log)
	f.ingest = paymentusecases.NewIngestNotificationUseCase(f.events, processor, "", clock, log)
	return f
}

func (f *flowFixture) createPayment(t *testing.T, orderID, address string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(payment.NewPaymentParams{
		SID:       "pay_" + orderID,
		OrderID:   orderID,
		Address:   address,
		AmountBTC: decimal.RequireFromString("0.001"),
	}, f.clock.Now(), 30*time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.payments.Create(context.Background(), p))
	return p
}

func TestFlow_SeededPoolOfTwoServesExactlyTwoOfFiveConcurrentOrders(t *testing.T) {
	f := newFlowFixture(t)
	seedAddresses(t, f.pool, "bc1qseeda", "bc1qseedb")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		addresses []string
		exhausted int
		other     []error
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(order string) {
			defer wg.Done()
			res, err := f.assign.Execute(context.Background(), order)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				addresses = append(addresses, res.Address)
			case apperrors.HasCode(err, apperrors.CodeAddressPoolEmpty):
				exhausted++
			default:
				other = append(other, err)
			}
		}(fmt.Sprintf("order-%d", i))
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Len(t, addresses, 2)
	assert.Equal(t, 3, exhausted)
	assert.ElementsMatch(t, []string{"bc1qseeda", "bc1qseedb"}, addresses)
}

func TestFlow_ConcurrentOrdersAllClaimFromLargeSeededPool(t *testing.T) {
	f := newFlowFixture(t)

	addresses := make([]string, 50)
	for i := range addresses {
		addresses[i] = fmt.Sprintf("bc1qbulk%02d", i)
	}
	seedAddresses(t, f.pool, addresses...)

	// Slow pool reads widen the window between selecting a row and claiming it.
	require.NoError(t, f.gdb.Callback().Query().After("gorm:query").Register("test:slow_pool_reads", func(tx *gorm.DB) {
		if tx.Statement.Table == "address_pool" {
			time.Sleep(20 * time.Millisecond)
		}
	}))

	const orders = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = make(map[string]string)
		failed  []error
	)
	for i := 0; i < orders; i++ {
		wg.Add(1)
		go func(order string) {
			defer wg.Done()
			res, err := f.assign.Execute(context.Background(), order)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			prev, dup := claimed[res.Address]
			assert.False(t, dup, "%s handed to %s and %s", res.Address, prev, order)
			claimed[res.Address] = order
		}(fmt.Sprintf("order-%d", i))
	}
	wg.Wait()

	require.Empty(t, failed)
	assert.Len(t, claimed, orders)

	free, err := f.pool.CountFree(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(50-orders), free)
}

func TestFlow_DerivedAddressesFollowTheKeyIndex(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)

	key, err := addresspool.NewExtendedKey("xk_flow", flowZpub, vo.NetworkMainnet, "flow", testNow)
	require.NoError(t, err)
	require.NoError(t, f.keys.Create(ctx, key))
	require.NoError(t, f.keys.Activate(ctx, key.ID()))

	first, err := f.assign.Execute(ctx, "order-a")
	require.NoError(t, err)
	assert.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", first.Address)
	assert.Equal(t, poolusecases.SourceDerived, first.Source)

	second, err := f.assign.Execute(ctx, "order-b")
	require.NoError(t, err)
	assert.Equal(t, "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g", second.Address)

	again, err := f.assign.Execute(ctx, "order-a")
	require.NoError(t, err)
	assert.Equal(t, first.Address, again.Address)
	assert.Equal(t, poolusecases.SourceReused, again.Source)
}

func TestFlow_ConfirmationRetiresAddressAndEmitsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	seedAddresses(t, f.pool, "bc1qconfirm")

	res, err := f.assign.Execute(ctx, "order-paid")
	require.NoError(t, err)
	p := f.createPayment(t, "order-paid", res.Address)

	body := []byte(`{"id":"evt-42","event":"address-transactions","address":"bc1qconfirm","hash":"txhash42","confirmations":1}`)
	f.clock.Advance(time.Minute)

	first, err := f.ingest.Execute(ctx, body, "")
	require.NoError(t, err)
	assert.True(t, first.Paid)
	assert.Equal(t, p.SID(), first.PaymentID)

	dup, err := f.ingest.Execute(ctx, body, "")
	require.NoError(t, err)
	assert.True(t, dup.Duplicate)
	assert.False(t, dup.Paid)

	stored, err := f.payments.GetBySID(ctx, p.SID())
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusPaid, stored.Status())
	assert.Equal(t, 1, stored.Confirmations())

	counts, err := f.outbox.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(paymentusecases.ConfirmedEffects)), counts[outbox.StatusPending])

	entry, err := f.pool.GetByAddress(ctx, "bc1qconfirm")
	require.NoError(t, err)
	assert.True(t, entry.PaymentConfirmed())

	// Long after the reservation would have lapsed, the address stays out of circulation.
	f.clock.Advance(24 * time.Hour)
	released, err := f.pool.ReleaseExpired(ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, released)

	_, err = f.assign.Execute(ctx, "order-next")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAddressPoolEmpty))
}

func TestFlow_UnderpaidTransactionLeavesPaymentPending(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	seedAddresses(t, f.pool, "bc1qshort")

	res, err := f.assign.Execute(ctx, "order-short")
	require.NoError(t, err)
	p := f.createPayment(t, "order-short", res.Address)
	f.clock.Advance(time.Minute)

	short, err := f.ingest.Execute(ctx,
		[]byte(`{"id":"evt-short","address":"bc1qshort","hash":"txshort","confirmations":1,"value":1}`), "")
	require.NoError(t, err)
	assert.True(t, short.Matched)
	assert.True(t, short.Underpaid)
	assert.False(t, short.Paid)

	stored, err := f.payments.GetBySID(ctx, p.SID())
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusPending, stored.Status())
	assert.Contains(t, stored.Metadata(), payment.MetadataUnderpayment)

	counts, err := f.outbox.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts[outbox.StatusPending])

	entry, err := f.pool.GetByAddress(ctx, "bc1qshort")
	require.NoError(t, err)
	assert.False(t, entry.PaymentConfirmed())

	// 0.001 BTC is exactly 100000 sats.
	full, err := f.ingest.Execute(ctx,
		[]byte(`{"id":"evt-full","address":"bc1qshort","hash":"txfull","confirmations":1,"value":100000}`), "")
	require.NoError(t, err)
	assert.True(t, full.Paid)

	stored, err = f.payments.GetBySID(ctx, p.SID())
	require.NoError(t, err)
	assert.Equal(t, payvo.PaymentStatusPaid, stored.Status())
	require.NotNil(t, stored.TxID())
	assert.Equal(t, "txfull", *stored.TxID())
}

func TestFlow_ConcurrentCreatePaymentKeepsOnePendingPayment(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	seedAddresses(t, f.pool, "bc1qdupa", "bc1qdupb")

	create := paymentusecases.NewCreatePaymentUseCase(f.payments, NewOrderRepository(f.gdb), f.assign, nil,
		db.NewTransactionManager(f.gdb), f.clock, paymentusecases.CreatePaymentConfig{PaymentTTL: 30 * time.Minute},
		logger.NewNop())

	// Both callers pass the pending-payment lookup before either inserts.
	require.NoError(t, f.gdb.Callback().Query().After("gorm:query").Register("test:slow_payment_reads", func(tx *gorm.DB) {
		if tx.Statement.Table == "payments" {
			time.Sleep(30 * time.Millisecond)
		}
	}))

	var (
		wg      sync.WaitGroup
		results [2]*paymentusecases.CreatePaymentResult
		errs    [2]error
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = create.Execute(ctx, paymentusecases.CreatePaymentCommand{
				OrderID:   "order-dup",
				WalletID:  "wallet-1",
				AmountBTC: "0.001",
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0].Payment.ID, results[1].Payment.ID)
	assert.Equal(t, results[0].Payment.Address, results[1].Payment.Address)

	var pending int64
	require.NoError(t, f.gdb.Model(&models.PaymentModel{}).
		Where("order_id = ? AND payment_status = ?", "order-dup", payvo.PaymentStatusPending).
		Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestFlow_RefundHeldEscrowOnce(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	log := logger.NewNop()
	clock := biztime.NewManualClock(testNow)

	escrows := NewEscrowRepository(gdb)
	orders := NewOrderRepository(gdb)
	ledger := NewLedgerRepository(gdb)
	outboxRepo := NewOutboxRepository(gdb)

	order, err := escrow.NewOrder("order-refund", "buyer@example.com", decimal.NewFromInt(100), "USD", testNow)
	require.NoError(t, err)
	require.NoError(t, order.MarkPaid(testNow))
	require.NoError(t, orders.Upsert(ctx, order))
	require.NoError(t, orders.UpdateStatus(ctx, order))

	held, err := escrow.NewEscrow("esc_refund", "order-refund", decimal.NewFromInt(100), "USD", testNow)
	require.NoError(t, err)
	require.NoError(t, escrows.Create(ctx, held))

	uc := escrowusecases.NewProcessRefundUseCase(escrows, orders, ledger, NewPaymentRepository(gdb), outboxRepo,
		db.NewTransactionManager(gdb), clock, 3, log)

	res, err := uc.Execute(ctx, escrowusecases.ProcessRefundCommand{EscrowID: "esc_refund", Reason: "customer_request"})
	require.NoError(t, err)
	assert.Equal(t, "refunded", res.Status)

	stored, err := escrows.GetBySID(ctx, "esc_refund")
	require.NoError(t, err)
	assert.Equal(t, escrow.StatusRefunded, stored.Status())

	gotOrder, err := orders.GetByOrderNo(ctx, "order-refund")
	require.NoError(t, err)
	assert.Equal(t, escrow.OrderStatusRefunded, gotOrder.Status())

	entries, err := ledger.ListByOrder(ctx, "order-refund")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, escrow.LedgerTypeRefund, entries[0].Type())
	assert.True(t, entries[0].Amount().Equal(decimal.NewFromInt(100)))

	_, err = uc.Execute(ctx, escrowusecases.ProcessRefundCommand{EscrowID: "esc_refund", Reason: "again"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStateTransition))

	entries, err = ledger.ListByOrder(ctx, "order-refund")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	counts, err := outboxRepo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(escrowusecases.RefundedEffects)), counts[outbox.StatusPending])
}
