package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	"github.com/orris-inc/satsgate/internal/shared/id"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// HoldFundsUseCase opens the escrow of a confirmed payment, marks the order
// paid and books the incoming payment in the ledger. It runs once per
// payment; repeats find the escrow and stop.
type HoldFundsUseCase struct {
	escrowRepo escrow.EscrowRepository
	orderRepo  escrow.OrderRepository
	ledgerRepo escrow.LedgerRepository
	txMgr      *db.TransactionManager
	clock      biztime.Clock
	logger     logger.Interface
}

func NewHoldFundsUseCase(
	escrowRepo escrow.EscrowRepository,
	orderRepo escrow.OrderRepository,
	ledgerRepo escrow.LedgerRepository,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	logger logger.Interface,
) *HoldFundsUseCase {
	return &HoldFundsUseCase{
		escrowRepo: escrowRepo,
		orderRepo:  orderRepo,
		ledgerRepo: ledgerRepo,
		txMgr:      txMgr,
		clock:      clock,
		logger:     logger,
	}
}

func (uc *HoldFundsUseCase) Execute(ctx context.Context, ev payment.ConfirmedEvent) error {
	amount, currency, err := escrowAmount(ev)
	if err != nil {
		return err
	}
	now := uc.clock.Now()

	return uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.escrowRepo.GetByOrderID(txCtx, ev.OrderID); err == nil {
			return nil
		} else if !errors.Is(err, escrow.ErrEscrowNotFound) {
			return fmt.Errorf("failed to look up escrow: %w", err)
		}

		order, err := uc.orderRepo.GetByOrderNo(txCtx, ev.OrderID)
		if errors.Is(err, escrow.ErrOrderNotFound) {
			order, err = escrow.NewOrder(ev.OrderID, "", amount, currency, now)
			if err == nil {
				err = uc.orderRepo.Upsert(txCtx, order)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}
		if err := order.MarkPaid(now); err != nil {
			uc.logger.Warnw("order not moved to paid", "order_id", ev.OrderID, "status", order.Status(), "error", err)
		} else if err := uc.orderRepo.UpdateStatus(txCtx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		e, err := escrow.NewEscrow(id.MustNew(id.PrefixEscrow), ev.OrderID, amount, currency, now)
		if err != nil {
			return err
		}
		if err := uc.escrowRepo.Create(txCtx, e); err != nil {
			if errors.Is(err, escrow.ErrEscrowAlreadyExists) {
				return nil
			}
			return fmt.Errorf("failed to create escrow: %w", err)
		}

		escrowID := e.ID()
		entry := escrow.NewLedgerTransaction(id.MustNew(id.PrefixLedger), &escrowID, ev.OrderID,
			escrow.LedgerTypePayment, amount, currency, ev.PaymentID, now)
		if err := uc.ledgerRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}

		uc.logger.Infow("funds held in escrow",
			"escrow_sid", e.SID(),
			"order_id", ev.OrderID,
			"amount", amount.String(),
			"currency", currency,
		)
		return nil
	})
}

// escrowAmount uses the fiat amount when the payment was priced in fiat.
func escrowAmount(ev payment.ConfirmedEvent) (decimal.Decimal, string, error) {
	if ev.AmountFiat != "" && ev.FiatCurrency != "" {
		amount, err := decimal.NewFromString(ev.AmountFiat)
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("invalid fiat amount %q: %w", ev.AmountFiat, err)
		}
		return amount, ev.FiatCurrency, nil
	}
	amount, err := decimal.NewFromString(ev.AmountBTC)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid BTC amount %q: %w", ev.AmountBTC, err)
	}
	return amount, "BTC", nil
}
