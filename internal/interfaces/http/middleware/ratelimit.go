package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/satsgate/internal/infrastructure/ratelimit"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

const codeRateLimited = "RATE_LIMITED"

// RateLimiter limits requests per client IP through the shared redis limiter,
// so the cap holds across API instances.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	scope   string
	config  ratelimit.RateLimitConfig
	logger  logger.Interface
}

// NewRateLimiter creates a limiter allowing perMinute requests per IP. scope
// keeps counters of different endpoints apart.
func NewRateLimiter(limiter ratelimit.RateLimiter, scope string, perMinute int, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		scope:   scope,
		config:  ratelimit.RateLimitConfig{RequestsPerMinute: perMinute},
		logger:  logger,
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter == nil || rl.config.RequestsPerMinute <= 0 {
			c.Next()
			return
		}

		key := rl.scope + ":" + c.ClientIP()
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.config)
		if err != nil {
			// Redis outages must not drop indexer notifications.
			rl.logger.Warnw("rate limiter unavailable, allowing request", "scope", rl.scope, "error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
