package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/satsgate/internal/infrastructure/ratelimit"
	"github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func doRequest(engine *gin.Engine, method, path, remoteAddr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		header   string
		wantCode int
	}{
		{"disabled without key", "", "Bearer anything", http.StatusServiceUnavailable},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"wrong key", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"valid key", "s3cret", "Bearer s3cret", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/admin/x", NewAdminAuthMiddleware(tt.apiKey, logger.NewNop()).RequireAdmin(), okHandler)

			header := map[string]string{}
			if tt.header != "" {
				header["Authorization"] = tt.header
			}
			w := doRequest(engine, http.MethodGet, "/admin/x", "", header)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func newTestLimiter(t *testing.T, perMinute int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(ratelimit.NewRedisRateLimiter(client, nil), "test", perMinute, logger.NewNop()), mr
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 2)
	engine := gin.New()
	engine.POST("/hook", rl.Limit(), okHandler)

	assert.Equal(t, http.StatusNoContent, doRequest(engine, http.MethodPost, "/hook", "10.0.0.1:5000", nil).Code)
	assert.Equal(t, http.StatusNoContent, doRequest(engine, http.MethodPost, "/hook", "10.0.0.1:5000", nil).Code)

	w := doRequest(engine, http.MethodPost, "/hook", "10.0.0.1:5000", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), codeRateLimited)

	// Another client has its own window.
	assert.Equal(t, http.StatusNoContent, doRequest(engine, http.MethodPost, "/hook", "10.0.0.2:5000", nil).Code)
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	rl, mr := newTestLimiter(t, 1)
	engine := gin.New()
	engine.POST("/hook", rl.Limit(), okHandler)

	mr.SetError("redis unavailable")

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, doRequest(engine, http.MethodPost, "/hook", "10.0.0.1:5000", nil).Code)
	}
}

func TestRateLimiter_DisabledWithoutLimit(t *testing.T) {
	rl := NewRateLimiter(nil, "test", 0, logger.NewNop())
	engine := gin.New()
	engine.POST("/hook", rl.Limit(), okHandler)

	assert.Equal(t, http.StatusNoContent, doRequest(engine, http.MethodPost, "/hook", "", nil).Code)
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery(logger.NewNop()))
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := doRequest(engine, http.MethodGet, "/boom", "", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp utils.APIResponse
	require.NoError(t, parseJSON(w, &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errors.CodeInternal, resp.Error.Code)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestLogger(logger.NewNop()))
	engine.GET("/ok", okHandler)

	assert.Equal(t, http.StatusNoContent, doRequest(engine, http.MethodGet, "/ok", "", nil).Code)
}

func parseJSON(w *httptest.ResponseRecorder, target any) error {
	return json.Unmarshal(w.Body.Bytes(), target)
}
