package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	poolUsecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	"github.com/orris-inc/satsgate/internal/application/payment/dto"
	"github.com/orris-inc/satsgate/internal/application/payment/exchangerate"
	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	vo "github.com/orris-inc/satsgate/internal/domain/payment/valueobjects"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/db"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/id"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

const defaultPaymentTTL = 30 * time.Minute

// AddressAssigner hands a receiving address to an order.
type AddressAssigner interface {
	Execute(ctx context.Context, orderID string) (*poolUsecases.AllocationResult, error)
}

type CreatePaymentCommand struct {
	OrderID       string
	WalletID      string
	AmountBTC     string
	AmountFiat    string
	FiatCurrency  string
	CustomerEmail string
	Metadata      map[string]interface{}
}

type CreatePaymentResult struct {
	Payment    *dto.PaymentDTO `json:"payment"`
	BitcoinURI string          `json:"bitcoinURI"`
}

type CreatePaymentConfig struct {
	PaymentTTL      time.Duration
	DefaultCurrency string
}

type CreatePaymentUseCase struct {
	paymentRepo payment.PaymentRepository
	orderRepo   escrow.OrderRepository
	assigner    AddressAssigner
	prices      exchangerate.PriceProvider // Optional, required only for fiat-denominated requests
	txMgr       *db.TransactionManager
	clock       biztime.Clock
	cfg         CreatePaymentConfig
	logger      logger.Interface
}

func NewCreatePaymentUseCase(
	paymentRepo payment.PaymentRepository,
	orderRepo escrow.OrderRepository,
	assigner AddressAssigner,
	prices exchangerate.PriceProvider,
	txMgr *db.TransactionManager,
	clock biztime.Clock,
	cfg CreatePaymentConfig,
	logger logger.Interface,
) *CreatePaymentUseCase {
	if cfg.PaymentTTL <= 0 {
		cfg.PaymentTTL = defaultPaymentTTL
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	return &CreatePaymentUseCase{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		assigner:    assigner,
		prices:      prices,
		txMgr:       txMgr,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// Execute creates a pending payment for an order. Calling it again for an
// order whose payment is still pending returns the existing payment.
func (uc *CreatePaymentUseCase) Execute(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	if strings.TrimSpace(cmd.OrderID) == "" {
		return nil, apperrors.NewValidationError("orderId is required")
	}
	if strings.TrimSpace(cmd.WalletID) == "" {
		return nil, apperrors.NewValidationError("walletId is required")
	}

	amountFiat, currency, err := uc.parseFiat(cmd)
	if err != nil {
		return nil, err
	}
	amountBTC, err := uc.resolveAmount(ctx, cmd.AmountBTC, amountFiat, currency)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()

	existing, err := uc.paymentRepo.GetPendingByOrderID(ctx, cmd.OrderID)
	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to look up pending payment: %w", err)
	case !existing.IsExpired(now):
		uc.logger.Infow("returning existing pending payment",
			"order_id", cmd.OrderID,
			"payment_sid", existing.SID(),
		)
		return toResult(existing), nil
	default:
		// Past its deadline but the sweep has not run yet.
		existing.MarkAsExpired(now)
		if err := uc.paymentRepo.Update(ctx, existing); err != nil && !errors.Is(err, payment.ErrConcurrentModification) {
			return nil, fmt.Errorf("failed to expire stale payment: %w", err)
		}
	}

	if paid, err := uc.paymentRepo.GetPaidByOrderID(ctx, cmd.OrderID); err == nil && paid != nil {
		return nil, apperrors.NewConflictError("order is already paid", paid.SID())
	} else if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to look up paid payment: %w", err)
	}

	alloc, err := uc.assigner.Execute(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	ttl := uc.cfg.PaymentTTL
	if !alloc.ExpiresAt.IsZero() && alloc.ExpiresAt.After(now) {
		ttl = alloc.ExpiresAt.Sub(now)
	}

	sid, err := id.New(id.PrefixPayment)
	if err != nil {
		return nil, err
	}
	p, err := payment.NewPayment(payment.NewPaymentParams{
		SID:          sid,
		OrderID:      cmd.OrderID,
		WalletID:     cmd.WalletID,
		Address:      alloc.Address,
		AmountBTC:    amountBTC,
		AmountFiat:   amountFiat,
		FiatCurrency: currency,
		Metadata:     cmd.Metadata,
	}, now, ttl)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	total := amountBTC
	totalCurrency := "BTC"
	if amountFiat != nil {
		total = *amountFiat
		totalCurrency = currency
	}
	order, err := escrow.NewOrder(cmd.OrderID, cmd.CustomerEmail, total, totalCurrency, now)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.orderRepo.Upsert(txCtx, order); err != nil {
			return fmt.Errorf("failed to record order: %w", err)
		}
		return uc.paymentRepo.Create(txCtx, p)
	})
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			// A concurrent request for the same order committed first.
			winner, lookupErr := uc.paymentRepo.GetPendingByOrderID(ctx, cmd.OrderID)
			if lookupErr == nil {
				uc.logger.Infow("concurrent create-payment resolved to existing payment",
					"order_id", cmd.OrderID,
					"payment_sid", winner.SID(),
				)
				return toResult(winner), nil
			}
			return nil, apperrors.NewConflictError("a pending payment already exists for this order")
		}
		uc.logger.Errorw("failed to create payment", "order_id", cmd.OrderID, "error", err)
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	uc.logger.Infow("payment created",
		"payment_sid", p.SID(),
		"order_id", p.OrderID(),
		"address", p.Address(),
		"amount_btc", p.AmountBTCString(),
	)
	return toResult(p), nil
}

func (uc *CreatePaymentUseCase) parseFiat(cmd CreatePaymentCommand) (*decimal.Decimal, string, error) {
	currency := strings.ToUpper(strings.TrimSpace(cmd.FiatCurrency))
	if strings.TrimSpace(cmd.AmountFiat) == "" {
		return nil, currency, nil
	}
	if currency == "" {
		currency = uc.cfg.DefaultCurrency
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(cmd.AmountFiat))
	if err != nil || !amount.IsPositive() {
		return nil, "", apperrors.NewValidationError("amountFiat must be a positive decimal")
	}
	amount = amount.Round(2)
	return &amount, currency, nil
}

// resolveAmount prefers an explicit BTC amount and otherwise converts the fiat
// amount at the current spot price.
func (uc *CreatePaymentUseCase) resolveAmount(ctx context.Context, raw string, fiat *decimal.Decimal, currency string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) != "" {
		amount, err := vo.ParseBTC(raw)
		if err != nil {
			return decimal.Zero, apperrors.NewValidationError("invalid amountBtc", err.Error())
		}
		return amount, nil
	}
	if fiat == nil {
		return decimal.Zero, apperrors.NewValidationError("amountBtc or amountFiat is required")
	}
	if uc.prices == nil {
		return decimal.Zero, apperrors.NewPriceUnavailableError("fiat conversion is not configured")
	}

	price, err := uc.prices.BTCPrice(ctx, currency)
	if err != nil {
		uc.logger.Warnw("btc price unavailable", "currency", currency, "error", err)
		return decimal.Zero, apperrors.NewPriceUnavailableError("exchange rate unavailable, retry later").WithCause(err)
	}
	if !price.IsPositive() {
		return decimal.Zero, apperrors.NewPriceUnavailableError("exchange rate unavailable, retry later")
	}

	amount := fiat.DivRound(price, vo.BTCDecimals)
	if err := vo.ValidateBTC(amount); err != nil {
		return decimal.Zero, apperrors.NewValidationError("converted amount is too small", err.Error())
	}
	return amount, nil
}

func toResult(p *payment.Payment) *CreatePaymentResult {
	return &CreatePaymentResult{
		Payment:    dto.ToPaymentDTO(p),
		BitcoinURI: p.BitcoinURI(),
	}
}
