package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	poolusecases "github.com/orris-inc/satsgate/internal/application/addresspool/usecases"
	paymentusecases "github.com/orris-inc/satsgate/internal/application/payment/usecases"
	webhookusecases "github.com/orris-inc/satsgate/internal/application/webhook/usecases"
)

var (
	_ poolusecases.AllocationMetrics      = (*Metrics)(nil)
	_ poolusecases.PoolSizeObserver       = (*Metrics)(nil)
	_ paymentusecases.ConfirmationMetrics = (*Metrics)(nil)
	_ paymentusecases.IngestMetrics       = (*Metrics)(nil)
	_ webhookusecases.DeliveryMetrics     = (*Metrics)(nil)
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.AddressAssigned("derived")
	m.AddressAssigned("derived")
	m.AddressAssignFailed("ADDRESS_POOL_EMPTY")
	m.SetPoolFree(42)
	m.AddressesGenerated(20)
	m.NotificationIngested("duplicate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.addressAssigned.WithLabelValues("derived")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.addressAssignFailed.WithLabelValues("ADDRESS_POOL_EMPTY")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.poolFree))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.addressesGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsIngested.WithLabelValues("duplicate")))
}

func TestMetrics_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/system-health", func(c *gin.Context) { c.Status(http.StatusMultiStatus) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system-health", nil))
	require.Equal(t, http.StatusMultiStatus, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/system-health", "207")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "satsgate_http_requests_total")
}
