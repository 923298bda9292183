package migration

import (
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ExtendedKeyModel{},
		&models.PoolEntryModel{},
		&models.PaymentModel{},
		&models.ChainEventModel{},
		&models.WebhookSubscriptionModel{},
		&models.WebhookDeliveryModel{},
		&models.OutboxMessageModel{},
		&models.OrderModel{},
		&models.EscrowModel{},
		&models.LedgerTransactionModel{},
	}
}
