package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const defaultReconcileBatch = 100

// ReconcileConfirmedUseCase finds paid payments that never produced their
// confirmation outbox rows and writes them. Consumers are idempotent by dedup
// key, so emitting twice is safe.
type ReconcileConfirmedUseCase struct {
	paymentRepo payment.PaymentRepository
	outboxRepo  outbox.Repository
	clock       biztime.Clock
	maxAttempts int
	logger      logger.Interface
}

func NewReconcileConfirmedUseCase(
	paymentRepo payment.PaymentRepository,
	outboxRepo outbox.Repository,
	clock biztime.Clock,
	maxAttempts int,
	logger logger.Interface,
) *ReconcileConfirmedUseCase {
	if maxAttempts < 1 {
		maxAttempts = defaultOutboxMaxAttempts
	}
	return &ReconcileConfirmedUseCase{
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		clock:       clock,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (uc *ReconcileConfirmedUseCase) Execute(ctx context.Context) (int, error) {
	missing, err := uc.paymentRepo.FindPaidWithoutOutbox(ctx, payment.EventPaymentConfirmed, defaultReconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to find unreconciled payments: %w", err)
	}

	restored := 0
	for _, p := range missing {
		msgs, err := ConfirmedMessages(p, uc.maxAttempts, uc.clock.Now())
		if err != nil {
			return restored, err
		}
		n, err := uc.outboxRepo.Add(ctx, msgs...)
		if err != nil {
			return restored, fmt.Errorf("failed to restore outbox for %s: %w", p.SID(), err)
		}
		if n > 0 {
			restored++
			uc.logger.Warnw("restored missing confirmation outbox", "payment_sid", p.SID(), "messages", n)
		}
	}
	return restored, nil
}
