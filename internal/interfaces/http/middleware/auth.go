package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

// AdminAuthMiddleware guards operator endpoints with a static bearer key.
type AdminAuthMiddleware struct {
	apiKey []byte
	logger logger.Interface
}

func NewAdminAuthMiddleware(apiKey string, logger logger.Interface) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		apiKey: []byte(apiKey),
		logger: logger,
	}
}

// RequireAdmin rejects every request when no key is configured.
func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(m.apiKey) == 0 {
			utils.ErrorResponse(c, http.StatusServiceUnavailable, errors.CodeUnauthorized, "admin API is disabled")
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, errors.CodeUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, errors.CodeUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), m.apiKey) != 1 {
			m.logger.Warnw("admin request with invalid key", "client_ip", c.ClientIP(), "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusUnauthorized, errors.CodeUnauthorized, "invalid admin key")
			c.Abort()
			return
		}

		c.Next()
	}
}
