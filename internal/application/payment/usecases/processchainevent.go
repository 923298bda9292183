package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	payvo "github.com/orris-inc/satsgate/internal/domain/payment/valueobjects"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const defaultOutboxMaxAttempts = 8

// ConfirmedEffects are the downstream consumers of payment.confirmed.
var ConfirmedEffects = []outbox.Effect{
	outbox.EffectWebhookFanout,
	outbox.EffectEmailNotify,
	outbox.EffectEscrowHold,
}

// ConfirmationMetrics receives confirmation outcomes. Optional.
type ConfirmationMetrics interface {
	PaymentConfirmed()
}

type ConfirmationConfig struct {
	Threshold         int
	OutboxMaxAttempts int
}

// ProcessOutcome reports what a stored chain event changed.
type ProcessOutcome struct {
	Matched       bool
	PaymentSID    string
	Confirmations int
	Paid          bool
	Underpaid     bool
}

// ProcessChainEventUseCase applies a recorded chain event to its payment. It
// is shared by live ingestion and the replay sweep.
type ProcessChainEventUseCase struct {
	paymentRepo payment.PaymentRepository
	eventRepo   payment.ChainEventRepository
	poolRepo    addresspool.PoolRepository
	outboxRepo  outbox.Repository
	txMgr       *db.TransactionManager
	clock       biztime.Clock
	cfg         ConfirmationConfig
	metrics     ConfirmationMetrics // Optional
	logger      logger.Interface
}

func NewProcessChainEventUseCase(
	paymentRepo payment.PaymentRepository,
	eventRepo payment.ChainEventRepository,
	poolRepo addresspool.PoolRepository,
	outboxRepo outbox.Repository,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	cfg ConfirmationConfig,
	logger logger.Interface,
) *ProcessChainEventUseCase {
	if cfg.Threshold < 1 {
		cfg.Threshold = 1
	}
	if cfg.OutboxMaxAttempts < 1 {
		cfg.OutboxMaxAttempts = defaultOutboxMaxAttempts
	}
	return &ProcessChainEventUseCase{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		poolRepo:    poolRepo,
		outboxRepo:  outboxRepo,
		txMgr:       txMgr,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// SetMetrics sets the metrics sink (optional dependency injection)
func (uc *ProcessChainEventUseCase) SetMetrics(m ConfirmationMetrics) {
	uc.metrics = m
}

// Execute runs in one transaction: payment update, address retirement, outbox
// rows and the processed flag commit together or not at all.
func (uc *ProcessChainEventUseCase) Execute(ctx context.Context, ev *payment.ChainEvent) (*ProcessOutcome, error) {
	outcome := &ProcessOutcome{}
	now := uc.clock.Now()

	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := uc.paymentRepo.GetPendingByAddress(txCtx, ev.Address())
		if errors.Is(err, payment.ErrPaymentNotFound) {
			uc.logger.Infow("chain event for unknown or settled address",
				"source_event_id", ev.SourceEventID(),
				"address", ev.Address(),
			)
			return uc.eventRepo.MarkProcessed(txCtx, ev.ID(), now)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve payment: %w", err)
		}

		outcome.Matched = true
		outcome.PaymentSID = p.SID()

		// Notifications without a value are settled on confirmations alone.
		if sats := ev.ValueSats(); sats != nil {
			received := payvo.SatsToBTC(*sats)
			if shortfall := p.RecordUnderpayment(received, ev.TxHash(), now); shortfall.IsPositive() {
				outcome.Underpaid = true
				outcome.Confirmations = p.Confirmations()
				uc.logger.Warnw("transaction underpays payment, left pending",
					"payment_sid", p.SID(),
					"source_event_id", ev.SourceEventID(),
					"txid", ev.TxHash(),
					"expected_btc", p.AmountBTCString(),
					"received_btc", payvo.FormatBTC(received),
					"shortfall_btc", payvo.FormatBTC(shortfall),
				)
				if err := uc.paymentRepo.Update(txCtx, p); err != nil {
					return fmt.Errorf("failed to record underpayment: %w", err)
				}
				return uc.eventRepo.MarkProcessed(txCtx, ev.ID(), now)
			}
		}

		paid, applyErr := p.ApplyConfirmations(ev.Confirmations(), ev.TxHash(), uc.cfg.Threshold, now)
		if applyErr != nil {
			uc.logger.Warnw("chain event could not settle payment",
				"payment_sid", p.SID(),
				"source_event_id", ev.SourceEventID(),
				"error", applyErr,
			)
		}
		outcome.Confirmations = p.Confirmations()

		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		if paid {
			outcome.Paid = true
			if err := uc.poolRepo.Retire(txCtx, p.Address(), now); err != nil && !errors.Is(err, addresspool.ErrEntryNotFound) {
				return fmt.Errorf("failed to retire address: %w", err)
			}
			if err := uc.emitConfirmed(txCtx, p); err != nil {
				return err
			}
		}

		return uc.eventRepo.MarkProcessed(txCtx, ev.ID(), now)
	})
	if err != nil {
		return nil, err
	}

	if outcome.Paid {
		if uc.metrics != nil {
			uc.metrics.PaymentConfirmed()
		}
		uc.logger.Infow("payment confirmed",
			"payment_sid", outcome.PaymentSID,
			"confirmations", outcome.Confirmations,
			"txid", ev.TxHash(),
		)
	}
	return outcome, nil
}

func (uc *ProcessChainEventUseCase) emitConfirmed(ctx context.Context, p *payment.Payment) error {
	msgs, err := ConfirmedMessages(p, uc.cfg.OutboxMaxAttempts, uc.clock.Now())
	if err != nil {
		return err
	}
	if _, err := uc.outboxRepo.Add(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write outbox: %w", err)
	}
	return nil
}

// ConfirmedMessages builds the outbox rows for a paid payment. Their dedup keys
// depend only on the payment, so re-emitting is harmless.
func ConfirmedMessages(p *payment.Payment, maxAttempts int, now time.Time) ([]*outbox.Message, error) {
	payload, err := json.Marshal(payment.NewConfirmedEvent(p))
	if err != nil {
		return nil, fmt.Errorf("failed to encode confirmation event: %w", err)
	}
	return outbox.NewMessages(payment.EventPaymentConfirmed, p.SID(), payload, maxAttempts, now, ConfirmedEffects...)
}
