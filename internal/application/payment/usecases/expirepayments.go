package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const defaultExpireBatch = 200

// ExpiredEvent is the payload published when a pending payment lapses.
type ExpiredEvent struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Address   string `json:"address"`
}

// ExpirePaymentsUseCase expires lapsed pending payments, returns their
// addresses to the pool and clears any other lapsed reservations.
type ExpirePaymentsUseCase struct {
	paymentRepo payment.PaymentRepository
	poolRepo    addresspool.PoolRepository
	outboxRepo  outbox.Repository
	txMgr       *db.TransactionManager
	clock       biztime.Clock
	maxAttempts int
	logger      logger.Interface
}

func NewExpirePaymentsUseCase(
	paymentRepo payment.PaymentRepository,
	poolRepo addresspool.PoolRepository,
	outboxRepo outbox.Repository,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	maxAttempts int,
	logger logger.Interface,
) *ExpirePaymentsUseCase {
	if maxAttempts < 1 {
		maxAttempts = defaultOutboxMaxAttempts
	}
	return &ExpirePaymentsUseCase{
		paymentRepo: paymentRepo,
		poolRepo:    poolRepo,
		outboxRepo:  outboxRepo,
		txMgr:       txMgr,
		clock:       clock,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Execute returns the number of payments expired.
func (uc *ExpirePaymentsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	expired, err := uc.paymentRepo.FindExpiredPending(ctx, now, defaultExpireBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired payments: %w", err)
	}

	count := 0
	for _, p := range expired {
		if err := uc.expireOne(ctx, p); err != nil {
			if errors.Is(err, payment.ErrConcurrentModification) {
				// Confirmed or expired by someone else meanwhile.
				continue
			}
			uc.logger.Warnw("failed to expire payment", "payment_sid", p.SID(), "error", err)
			continue
		}
		count++
	}

	released, err := uc.poolRepo.ReleaseExpired(ctx, now)
	if err != nil {
		return count, fmt.Errorf("failed to release lapsed reservations: %w", err)
	}

	if count > 0 || released > 0 {
		uc.logger.Infow("expiry sweep finished", "payments_expired", count, "reservations_released", released)
	}
	return count, nil
}

func (uc *ExpirePaymentsUseCase) expireOne(ctx context.Context, p *payment.Payment) error {
	now := uc.clock.Now()
	return uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if !p.MarkAsExpired(now) {
			return nil
		}
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return err
		}

		err := uc.poolRepo.ReleaseForOrder(txCtx, p.Address(), p.OrderID(), now)
		if err != nil && !errors.Is(err, addresspool.ErrEntryRetired) && !errors.Is(err, addresspool.ErrEntryNotFound) {
			return fmt.Errorf("failed to release address: %w", err)
		}

		payload, err := json.Marshal(ExpiredEvent{PaymentID: p.SID(), OrderID: p.OrderID(), Address: p.Address()})
		if err != nil {
			return err
		}
		msg, err := outbox.NewMessage(payment.EventPaymentExpired, p.SID(), outbox.EffectWebhookFanout, payload, uc.maxAttempts, now)
		if err != nil {
			return err
		}
		_, err = uc.outboxRepo.Add(txCtx, msg)
		return err
	})
}
