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
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/id"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// ReleasedEffects are the downstream consumers of escrow.released.
var ReleasedEffects = []outbox.Effect{
	outbox.EffectWebhookFanout,
}

type ReleaseResult struct {
	EscrowID      string    `json:"escrowId"`
	Status        string    `json:"status"`
	OrderID       string    `json:"orderId"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	LedgerEntryID string    `json:"ledgerEntryId"`
	ReleasedAt    time.Time `json:"releasedAt"`
}

// ReleaseEscrowUseCase pays a held escrow out to the merchant once the order
// is fulfilled. It is the counterpart of ProcessRefundUseCase and shares its
// all-or-nothing write of escrow, order, ledger and outbox rows.
type ReleaseEscrowUseCase struct {
	escrowRepo  escrow.EscrowRepository
	orderRepo   escrow.OrderRepository
	ledgerRepo  escrow.LedgerRepository
	outboxRepo  outbox.Repository
	txMgr       *db.TransactionManager
	clock       biztime.Clock
	maxAttempts int
	logger      logger.Interface
}

func NewReleaseEscrowUseCase(
	escrowRepo escrow.EscrowRepository,
	orderRepo escrow.OrderRepository,
	ledgerRepo escrow.LedgerRepository,
	outboxRepo outbox.Repository,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	maxAttempts int,
	logger logger.Interface,
) *ReleaseEscrowUseCase {
	if maxAttempts < 1 {
		maxAttempts = defaultOutboxMaxAttempts
	}
	return &ReleaseEscrowUseCase{
		escrowRepo:  escrowRepo,
		orderRepo:   orderRepo,
		ledgerRepo:  ledgerRepo,
		outboxRepo:  outboxRepo,
		txMgr:       txMgr,
		clock:       clock,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (uc *ReleaseEscrowUseCase) Execute(ctx context.Context, escrowSID string) (*ReleaseResult, error) {
	if strings.TrimSpace(escrowSID) == "" {
		return nil, apperrors.NewValidationError("escrow id is required")
	}

	e, err := uc.escrowRepo.GetBySID(ctx, escrowSID)
	if errors.Is(err, escrow.ErrEscrowNotFound) {
		return nil, apperrors.NewNotFoundError("escrow not found", escrowSID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}

	now := uc.clock.Now()
	if err := e.Release(now); err != nil {
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

		order, err := uc.orderRepo.GetByOrderNo(txCtx, e.OrderID())
		switch {
		case errors.Is(err, escrow.ErrOrderNotFound):
			uc.logger.Warnw("released escrow has no local order", "escrow_sid", e.SID(), "order_id", e.OrderID())
		case err != nil:
			return fmt.Errorf("failed to load order: %w", err)
		default:
			if err := order.MarkFulfilled(now); err != nil {
				return err
			}
			if err := uc.orderRepo.UpdateStatus(txCtx, order); err != nil {
				return fmt.Errorf("failed to update order: %w", err)
			}
		}

		escrowID := e.ID()
		entry := escrow.NewLedgerTransaction(ledgerSID, &escrowID, e.OrderID(), escrow.LedgerTypeRelease,
			e.Amount(), e.Currency(), e.SID(), now)
		if err := uc.ledgerRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}

		payload, err := json.Marshal(escrow.ReleasedEvent{
			EscrowID:   e.SID(),
			OrderID:    e.OrderID(),
			Amount:     e.Amount().String(),
			Currency:   e.Currency(),
			ReleasedAt: now,
		})
		if err != nil {
			return err
		}
		msgs, err := outbox.NewMessages(escrow.EventEscrowReleased, e.SID(), payload, uc.maxAttempts, now, ReleasedEffects...)
		if err != nil {
			return err
		}
		_, err = uc.outboxRepo.Add(txCtx, msgs...)
		return err
	})
	if err != nil {
		if errors.Is(err, escrow.ErrConcurrentModification) || errors.Is(err, escrow.ErrInvalidStateTransition) {
			return nil, uc.rejectTransition(e, err)
		}
		uc.logger.Errorw("release failed", "escrow_sid", escrowSID, "error", err)
		return nil, fmt.Errorf("failed to release escrow: %w", err)
	}

	uc.logger.Infow("escrow released",
		"escrow_sid", e.SID(),
		"order_id", e.OrderID(),
		"amount", e.Amount().String(),
		"currency", e.Currency(),
	)
	return &ReleaseResult{
		EscrowID:      e.SID(),
		Status:        e.Status().String(),
		OrderID:       e.OrderID(),
		Amount:        e.Amount().String(),
		Currency:      e.Currency(),
		LedgerEntryID: ledgerSID,
		ReleasedAt:    now,
	}, nil
}

func (uc *ReleaseEscrowUseCase) rejectTransition(e *escrow.Escrow, cause error) error {
	uc.logger.Warnw("release rejected", "escrow_sid", e.SID(), "status", e.Status(), "error", cause)
	return apperrors.NewInvalidStateTransitionError(
		"escrow can only be released while held and its order is paid",
		fmt.Sprintf("escrow %s is %s", e.SID(), e.Status()),
	).WithCause(escrow.ErrInvalidStateTransition)
}
