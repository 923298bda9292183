package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	poolUsecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	"github.com/orris-inc/satsgate/internal/infrastructure/config"
	"github.com/orris-inc/satsgate/internal/infrastructure/email"
	"github.com/orris-inc/satsgate/internal/infrastructure/metrics"
	"github.com/orris-inc/satsgate/internal/infrastructure/ratelimit"
	"github.com/orris-inc/satsgate/internal/infrastructure/scheduler"
	"github.com/orris-inc/satsgate/internal/interfaces/http/middleware"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

// Container holds infrastructure components, repositories, use cases and
// handlers. The API server and the worker build the same container and use
// different parts of it.
type Container struct {
	// Core infrastructure
	engine    *gin.Engine
	db        *gorm.DB
	cfg       *config.Config
	log       logger.Interface
	redis     *redis.Client
	ownsRedis bool
	clock     biztime.Clock
	metrics   *metrics.Metrics
	mailer    *email.SMTPEmailService

	// Repositories
	repos *repositories

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	adminAuth          *middleware.AdminAuthMiddleware
	webhookRateLimiter *middleware.RateLimiter

	schedulerManager *scheduler.SchedulerManager
}

// NewContainer wires every component. A nil redisClient builds one from
// config; the caller keeps ownership of a client it passes in.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Container {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
		clock:  biztime.SystemClock(),
	}

	// Section 1: Infrastructure - Redis, Metrics, Repositories
	c.initInfrastructure()

	// Section 2: Use cases - pool, payments, webhooks, escrow, outbox, health
	c.initUseCases()

	// Section 3: Handlers and middlewares
	c.initHandlers()

	return c
}

func (c *Container) initInfrastructure() {
	if c.redis == nil {
		c.ownsRedis = true
		c.redis = redis.NewClient(&redis.Options{
			Addr:     c.cfg.Redis.GetAddr(),
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DB,
		})
		if err := c.redis.Ping(context.Background()).Err(); err != nil {
			// Redis only backs rate limiting and alert dedup; both degrade.
			c.log.Warnw("redis unreachable at startup", "address", c.cfg.Redis.GetAddr(), "error", err)
		}
	}

	c.metrics = metrics.New()
	c.repos = newRepositories(c.db, c.log)
}

func (c *Container) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Metrics returns the prometheus collectors shared by all components.
func (c *Container) Metrics() *metrics.Metrics { return c.metrics }

// ManageKeys exposes extended key management for the CLI.
func (c *Container) ManageKeys() *poolUsecases.ManageKeysUseCase { return c.ucs.manageKeysUC }

// SeedAddresses exposes pool seeding for the CLI.
func (c *Container) SeedAddresses() *poolUsecases.SeedAddressesUseCase { return c.ucs.seedUC }

// ReplenishPool exposes one-off replenishment for the CLI.
func (c *Container) ReplenishPool() *poolUsecases.ReplenishPoolUseCase { return c.ucs.replenishUC }

// PoolStats exposes pool statistics for the CLI.
func (c *Container) PoolStats() *poolUsecases.GetPoolStatsUseCase { return c.ucs.poolStatsUC }

// BuildScheduler registers every background job on a new scheduler. Only
// the worker process calls it, so jobs never run twice per deployment
// unless more workers are started.
func (c *Container) BuildScheduler() (*scheduler.SchedulerManager, error) {
	// Payment maintenance runs on the scheduler default.
	sm, err := scheduler.NewSchedulerManager(scheduler.Intervals{
		Replenish:    c.cfg.Pool.ReplenishInterval,
		WebhookSweep: c.cfg.Webhook.SweepInterval,
		Outbox:       c.cfg.Outbox.PollInterval,
	}, c.log.Named("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := sm.RegisterPaymentJobs(c.ucs.expireUC, c.ucs.replayUC, c.ucs.reconcileUC); err != nil {
		return nil, fmt.Errorf("failed to register payment jobs: %w", err)
	}
	if err := sm.RegisterPoolJobs(c.ucs.replenishUC); err != nil {
		return nil, fmt.Errorf("failed to register pool jobs: %w", err)
	}
	if err := sm.RegisterDeliveryJobs(c.ucs.outboxUC, c.ucs.sweepUC); err != nil {
		return nil, fmt.Errorf("failed to register delivery jobs: %w", err)
	}

	c.schedulerManager = sm
	return sm, nil
}

// Shutdown stops background jobs and closes the redis client it created.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Warnw("failed to stop scheduler", "error", err)
		}
	}
	if c.ownsRedis {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}

func (c *Container) newWebhookRateLimiter() *middleware.RateLimiter {
	return middleware.NewRateLimiter(
		ratelimit.NewRedisRateLimiter(c.redis, c.clock),
		"blockchain-webhook",
		c.cfg.Blockchain.WebhookRateLimit,
		c.log.Named("ratelimit"),
	)
}
