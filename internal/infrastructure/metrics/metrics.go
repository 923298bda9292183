// Package metrics exposes Prometheus collectors for the payment subsystem.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "satsgate"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	addressAssigned     *prometheus.CounterVec
	addressAssignFailed *prometheus.CounterVec
	addressAssignRetry  prometheus.Counter
	poolFree            prometheus.Gauge
	addressesGenerated  prometheus.Counter

	paymentsConfirmed     prometheus.Counter
	notificationsIngested *prometheus.CounterVec
	webhookAttempts       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),

		addressAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "addresses_assigned_total",
			Help:      "Addresses handed to orders, by source.",
		}, []string{"source"}),
		addressAssignFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "assign_failures_total",
			Help:      "Failed address assignments, by error code.",
		}, []string{"code"}),
		addressAssignRetry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "assign_retries_total",
			Help:      "Reservation conflicts that were retried.",
		}),
		poolFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "free_addresses",
			Help:      "Unreserved addresses in the pool at the last replenishment run.",
		}),
		addressesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "addresses_generated_total",
			Help:      "Addresses derived by the replenishment monitor.",
		}),

		paymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "confirmed_total",
			Help:      "Payments that reached the confirmation threshold.",
		}),
		notificationsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "notifications_total",
			Help:      "Blockchain notifications received, by outcome.",
		}, []string{"outcome"}),
		webhookAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhooks",
			Name:      "attempts_total",
			Help:      "Outbound webhook delivery attempts, by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.addressAssigned,
		m.addressAssignFailed,
		m.addressAssignRetry,
		m.poolFree,
		m.addressesGenerated,
		m.paymentsConfirmed,
		m.notificationsIngested,
		m.webhookAttempts,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) AddressAssigned(source string)   { m.addressAssigned.WithLabelValues(source).Inc() }
func (m *Metrics) AddressAssignFailed(code string) { m.addressAssignFailed.WithLabelValues(code).Inc() }
func (m *Metrics) AddressAssignRetried()           { m.addressAssignRetry.Inc() }

func (m *Metrics) SetPoolFree(free int64)   { m.poolFree.Set(float64(free)) }
func (m *Metrics) AddressesGenerated(n int) { m.addressesGenerated.Add(float64(n)) }

func (m *Metrics) PaymentConfirmed() { m.paymentsConfirmed.Inc() }

func (m *Metrics) NotificationIngested(outcome string) {
	m.notificationsIngested.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WebhookAttempt(outcome string) {
	m.webhookAttempts.WithLabelValues(outcome).Inc()
}
