package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/id"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const defaultOutboxMaxAttempts = 8

// RefundedEffects are the downstream consumers of escrow.refunded.
var RefundedEffects = []outbox.Effect{
	outbox.EffectEmailNotify,
	outbox.EffectWebhookFanout,
}

type ProcessRefundCommand struct {
	EscrowID string
	Reason   string
	Notes    string
}

type RefundResult struct {
	EscrowID      string    `json:"escrowId"`
	Status        string    `json:"status"`
	OrderID       string    `json:"orderId"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	LedgerEntryID string    `json:"ledgerEntryId"`
	RefundedAt    time.Time `json:"refundedAt"`
}

// ProcessRefundUseCase refunds a held escrow. Escrow, order, payment, ledger
// and the notification intent are written in one transaction; the notification
// itself is sent later from the outbox and cannot undo the refund.
type ProcessRefundUseCase struct {
	escrowRepo  escrow.EscrowRepository
	orderRepo   escrow.OrderRepository
	ledgerRepo  escrow.LedgerRepository
	paymentRepo payment.PaymentRepository
	outboxRepo  outbox.Repository
	txMgr       *db.TransactionManager
	clock       biztime.Clock
	maxAttempts int
	logger      logger.Interface
}

func NewProcessRefundUseCase(
	escrowRepo escrow.EscrowRepository,
	orderRepo escrow.OrderRepository,
	ledgerRepo escrow.LedgerRepository,
	paymentRepo payment.PaymentRepository,
	outboxRepo outbox.Repository,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	maxAttempts int,
	logger logger.Interface,
) *ProcessRefundUseCase {
	if maxAttempts < 1 {
		maxAttempts = defaultOutboxMaxAttempts
	}
	return &ProcessRefundUseCase{
		escrowRepo:  escrowRepo,
		orderRepo:   orderRepo,
		ledgerRepo:  ledgerRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		txMgr:       txMgr,
		clock:       clock,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (uc *ProcessRefundUseCase) Execute(ctx context.Context, cmd ProcessRefundCommand) (*RefundResult, error) {
	if strings.TrimSpace(cmd.EscrowID) == "" {
		return nil, apperrors.NewValidationError("escrowId is required")
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, apperrors.NewValidationError("reason is required")
	}

	e, err := uc.escrowRepo.GetBySID(ctx, cmd.EscrowID)
	if errors.Is(err, escrow.ErrEscrowNotFound) {
		return nil, apperrors.NewNotFoundError("escrow not found", cmd.EscrowID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}

	now := uc.clock.Now()
	if err := e.Refund(cmd.Reason, cmd.Notes, now); err != nil {
		return nil, uc.rejectTransition(e, err)
	}

	ledgerSID, err := id.New(id.PrefixLedger)
	if err != nil {
		return nil, err
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.escrowRepo.Update(txCtx, e, escrow.StatusHeld); err != nil {
			return err
		}

		customerEmail := ""
		order, err := uc.orderRepo.GetByOrderNo(txCtx, e.OrderID())
		switch {
		case errors.Is(err, escrow.ErrOrderNotFound):
			uc.logger.Warnw("refunded escrow has no local order", "escrow_sid", e.SID(), "order_id", e.OrderID())
		case err != nil:
			return fmt.Errorf("failed to load order: %w", err)
		default:
			customerEmail = order.CustomerEmail()
			order.MarkRefunded(now)
			if err := uc.orderRepo.UpdateStatus(txCtx, order); err != nil {
				return fmt.Errorf("failed to update order: %w", err)
			}
		}

		p, err := uc.paymentRepo.GetPaidByOrderID(txCtx, e.OrderID())
		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
		case err != nil:
			return fmt.Errorf("failed to load payment: %w", err)
		default:
			if err := p.MarkAsRefunded(now); err != nil {
				return err
			}
			if err := uc.paymentRepo.Update(txCtx, p); err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
		}

		escrowID := e.ID()
		entry := escrow.NewLedgerTransaction(ledgerSID, &escrowID, e.OrderID(), escrow.LedgerTypeRefund,
			e.Amount(), e.Currency(), e.SID(), now)
		if err := uc.ledgerRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}

		payload, err := json.Marshal(escrow.RefundedEvent{
			EscrowID:      e.SID(),
			OrderID:       e.OrderID(),
			Amount:        e.Amount().String(),
			Currency:      e.Currency(),
			Reason:        cmd.Reason,
			CustomerEmail: customerEmail,
			RefundedAt:    now,
		})
		if err != nil {
			return err
		}
		msgs, err := outbox.NewMessages(escrow.EventEscrowRefunded, e.SID(), payload, uc.maxAttempts, now, RefundedEffects...)
		if err != nil {
			return err
		}
		_, err = uc.outboxRepo.Add(txCtx, msgs...)
		return err
	})
	if err != nil {
		if errors.Is(err, escrow.ErrConcurrentModification) {
			return nil, uc.rejectTransition(e, err)
		}
		uc.logger.Errorw("refund failed", "escrow_sid", cmd.EscrowID, "error", err)
		return nil, fmt.Errorf("failed to process refund: %w", err)
	}

	uc.logger.Infow("escrow refunded",
		"escrow_sid", e.SID(),
		"order_id", e.OrderID(),
		"amount", e.Amount().String(),
		"currency", e.Currency(),
		"reason", cmd.Reason,
	)
	return &RefundResult{
		EscrowID:      e.SID(),
		Status:        e.Status().String(),
		OrderID:       e.OrderID(),
		Amount:        e.Amount().String(),
		Currency:      e.Currency(),
		LedgerEntryID: ledgerSID,
		RefundedAt:    now,
	}, nil
}

func (uc *ProcessRefundUseCase) rejectTransition(e *escrow.Escrow, cause error) error {
	uc.logger.Warnw("refund rejected", "escrow_sid", e.SID(), "status", e.Status(), "error", cause)
	return apperrors.NewInvalidStateTransitionError(
		"escrow can only be refunded while held",
		fmt.Sprintf("escrow %s is %s", e.SID(), e.Status()),
	).WithCause(escrow.ErrInvalidStateTransition)
}
