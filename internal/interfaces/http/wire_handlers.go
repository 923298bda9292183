package http

import (
	"github.com/orris-inc/satsgate/internal/interfaces/http/handlers"
	adminHandlers "github.com/orris-inc/satsgate/internal/interfaces/http/handlers/admin"
	"github.com/orris-inc/satsgate/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	// Public
	paymentHandler    *handlers.PaymentHandler
	operationsHandler *handlers.OperationsHandler

	// Admin
	keyHandler          *adminHandlers.KeyHandler
	poolHandler         *adminHandlers.PoolHandler
	subscriptionHandler *adminHandlers.SubscriptionHandler
	escrowHandler       *adminHandlers.EscrowHandler
}

func (c *Container) initHandlers() {
	ucs := c.ucs
	log := c.log.Named("http")

	c.hdlrs = &allHandlers{
		paymentHandler:      handlers.NewPaymentHandler(ucs.assignAddressUC, ucs.createPaymentUC, ucs.ingestUC, log),
		operationsHandler:   handlers.NewOperationsHandler(ucs.replenishUC, ucs.refundUC, ucs.healthReporter, log),
		keyHandler:          adminHandlers.NewKeyHandler(ucs.manageKeysUC, log),
		poolHandler:         adminHandlers.NewPoolHandler(ucs.seedUC, ucs.poolStatsUC, log),
		subscriptionHandler: adminHandlers.NewSubscriptionHandler(ucs.manageSubsUC, log),
		escrowHandler:       adminHandlers.NewEscrowHandler(ucs.releaseUC, log),
	}

	if c.cfg.Admin.APIKey == "" {
		c.log.Warnw("admin api key not configured, admin endpoints are disabled")
	}
	c.adminAuth = middleware.NewAdminAuthMiddleware(c.cfg.Admin.APIKey, log)
	c.webhookRateLimiter = c.newWebhookRateLimiter()
}
