package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition results.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

// Metrics holds the Prometheus collectors of the web front end.
type Metrics struct {
	GuardDecisions  *prometheus.CounterVec
	AuthTransitions *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New registers every collector on registry.
func New(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		GuardDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salt_portal_guard_decisions_total",
				Help: "Route guard decisions by outcome and reason",
			},
			[]string{"outcome", "reason"},
		),
		AuthTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salt_portal_auth_transitions_total",
				Help: "Session transitions by kind and result",
			},
			[]string{"transition", "result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "salt_portal_http_requests_total",
				Help: "HTTP requests served by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "salt_portal_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// NewRegistry returns a fresh registry with the metrics registered.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, New(reg)
}

// RecordGuard counts one guard decision. A nil receiver is a no-op so
// callers may run without metrics.
func (m *Metrics) RecordGuard(outcome, reason string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(outcome, reason).Inc()
}

// RecordTransition counts one auth transition with the given result.
func (m *Metrics) RecordTransition(transition, result string) {
	if m == nil {
		return
	}
	m.AuthTransitions.WithLabelValues(transition, result).Inc()
}

// GinMiddleware records request counts and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
