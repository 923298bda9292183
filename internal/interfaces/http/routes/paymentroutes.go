package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/satsgate/internal/interfaces/http/handlers"
	"github.com/orris-inc/satsgate/internal/interfaces/http/middleware"
)

// PaymentRouteConfig holds dependencies for the public payment routes.
type PaymentRouteConfig struct {
	PaymentHandler     *handlers.PaymentHandler
	OperationsHandler  *handlers.OperationsHandler
	WebhookRateLimiter *middleware.RateLimiter
	AdminAuth          *middleware.AdminAuthMiddleware
}

// SetupPaymentRoutes registers the payment endpoints on group. They are mounted
// both at the root and under /api/v1. Replenishment and refunds move keys and
// money, so they need the operator key.
func SetupPaymentRoutes(group *gin.RouterGroup, cfg *PaymentRouteConfig) {
	group.POST("/assign-address", cfg.PaymentHandler.AssignAddress)
	group.POST("/create-payment", cfg.PaymentHandler.CreatePayment)
	group.POST("/blockchain-webhook", cfg.WebhookRateLimiter.Limit(), cfg.PaymentHandler.BlockchainWebhook)

	group.GET("/system-health", cfg.OperationsHandler.SystemHealth)

	operator := group.Group("", cfg.AdminAuth.RequireAdmin())
	operator.POST("/replenish-addresses", cfg.OperationsHandler.ReplenishAddresses)
	operator.POST("/process-refund", cfg.OperationsHandler.ProcessRefund)
}
