package routes

import (
	"github.com/gin-gonic/gin"

	adminHandlers "github.com/orris-inc/satsgate/internal/interfaces/http/handlers/admin"
	"github.com/orris-inc/satsgate/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for operator routes.
type AdminRouteConfig struct {
	KeyHandler          *adminHandlers.KeyHandler
	PoolHandler         *adminHandlers.PoolHandler
	SubscriptionHandler *adminHandlers.SubscriptionHandler
	EscrowHandler       *adminHandlers.EscrowHandler
	AdminAuth           *middleware.AdminAuthMiddleware
}

// SetupAdminRoutes configures admin-only routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(cfg.AdminAuth.RequireAdmin())

	keys := admin.Group("/extended-keys")
	{
		keys.POST("", cfg.KeyHandler.Register)
		keys.GET("", cfg.KeyHandler.List)
		keys.GET("/:id/addresses", cfg.KeyHandler.Preview)
		keys.POST("/:id/activate", cfg.KeyHandler.Activate)
		keys.POST("/:id/deactivate", cfg.KeyHandler.Deactivate)
	}

	pool := admin.Group("/address-pool")
	{
		pool.POST("/seed", cfg.PoolHandler.Seed)
		pool.GET("/stats", cfg.PoolHandler.Stats)
	}

	subs := admin.Group("/webhook-subscriptions")
	{
		subs.POST("", cfg.SubscriptionHandler.Create)
		subs.GET("", cfg.SubscriptionHandler.List)
		subs.DELETE("/:id", cfg.SubscriptionHandler.Delete)
	}

	admin.POST("/escrows/:id/release", cfg.EscrowHandler.Release)
}
