package http

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
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/satsgate/internal/infrastructure/config"
	"github.com/orris-inc/satsgate/internal/infrastructure/migration"
	"github.com/orris-inc/satsgate/internal/shared/logger"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(migration.AutoMigrateModels()...))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.Admin.APIKey = "router-test-key"

	r := &Router{Container: NewContainer(gdb, client, cfg, logger.NewNop())}
	r.SetupRoutes()
	return r
}

func serve(r *Router, method, path, bearer string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	r.GetEngine().ServeHTTP(w, req)
	return w
}

func TestRouter_ServesAPIDocs(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	for _, path := range []string{"/create-payment", "/process-refund", "/admin/escrows/{id}/release"} {
		assert.Contains(t, doc.Paths, path)
	}

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/swagger/index.html", "").Code)
}

func TestRouter_OperatorRoutesNeedAdminKey(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/process-refund", "/api/v1/replenish-addresses", "/admin/escrows/esc_1/release"} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, path, "").Code, path)
	}

	w := serve(r, http.MethodPost, "/admin/escrows/esc_missing/release", "router-test-key")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_HealthReportsReplenishment(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/system-health", "")

	var resp struct {
		Data struct {
			Checks map[string]json.RawMessage `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data.Checks, "replenishment")
}
