package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/orris-inc/satsgate/docs"
	"github.com/orris-inc/satsgate/internal/infrastructure/config"
	"github.com/orris-inc/satsgate/internal/interfaces/http/middleware"
	"github.com/orris-inc/satsgate/internal/interfaces/http/routes"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	*Container
}

// NewRouter builds the container backing the API server. It creates its own
// redis client from config.
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) *Router {
	return &Router{Container: NewContainer(db, nil, cfg, log)}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestLogger(r.log.Named("access")))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(r.metrics.GinMiddleware())

	r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	paymentCfg := &routes.PaymentRouteConfig{
		PaymentHandler:     r.hdlrs.paymentHandler,
		OperationsHandler:  r.hdlrs.operationsHandler,
		WebhookRateLimiter: r.webhookRateLimiter,
		AdminAuth:          r.adminAuth,
	}
	routes.SetupPaymentRoutes(&r.engine.RouterGroup, paymentCfg)
	routes.SetupPaymentRoutes(r.engine.Group("/api/v1"), paymentCfg)

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		KeyHandler:          r.hdlrs.keyHandler,
		PoolHandler:         r.hdlrs.poolHandler,
		SubscriptionHandler: r.hdlrs.subscriptionHandler,
		EscrowHandler:       r.hdlrs.escrowHandler,
		AdminAuth:           r.adminAuth,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
