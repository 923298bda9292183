package handlers

import (
	"context"

	poolUsecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	escrowUsecases "github.com/orris-inc/satsgate/internal/application/escrow/usecases"
	"github.com/orris-inc/satsgate/internal/application/health"
	paymentUsecases "github.com/orris-inc/satsgate/internal/application/payment/usecases"
)

// Use case interfaces for the public payment endpoints

type assignAddressUseCase interface {
	Execute(ctx context.Context, orderID string) (*poolUsecases.AllocationResult, error)
}

type replenishPoolUseCase interface {
	Execute(ctx context.Context) (*poolUsecases.ReplenishResult, error)
}

type createPaymentUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.CreatePaymentCommand) (*paymentUsecases.CreatePaymentResult, error)
}

type ingestNotificationUseCase interface {
	Execute(ctx context.Context, body []byte, signature string) (*paymentUsecases.IngestResult, error)
}

type processRefundUseCase interface {
	Execute(ctx context.Context, cmd escrowUsecases.ProcessRefundCommand) (*escrowUsecases.RefundResult, error)
}

type healthChecker interface {
	Check(ctx context.Context) *health.Report
}
