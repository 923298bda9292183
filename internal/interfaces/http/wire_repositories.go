package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	"github.com/orris-inc/satsgate/internal/domain/escrow"
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/domain/payment"
	"github.com/orris-inc/satsgate/internal/domain/webhook"
	"github.com/orris-inc/satsgate/internal/infrastructure/repository"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	keyRepo      addresspool.ExtendedKeyRepository
	poolRepo     addresspool.PoolRepository
	paymentRepo  payment.PaymentRepository
	eventRepo    payment.ChainEventRepository
	subRepo      webhook.SubscriptionRepository
	deliveryRepo webhook.DeliveryRepository
	escrowRepo   escrow.EscrowRepository
	orderRepo    escrow.OrderRepository
	ledgerRepo   escrow.LedgerRepository
	outboxRepo   outbox.Repository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		keyRepo:      repository.NewExtendedKeyRepository(db, log),
		poolRepo:     repository.NewPoolRepository(db, log),
		paymentRepo:  repository.NewPaymentRepository(db),
		eventRepo:    repository.NewChainEventRepository(db),
		subRepo:      repository.NewWebhookSubscriptionRepository(db),
		deliveryRepo: repository.NewWebhookDeliveryRepository(db),
		escrowRepo:   repository.NewEscrowRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		ledgerRepo:   repository.NewLedgerRepository(db),
		outboxRepo:   repository.NewOutboxRepository(db),
	}
}
