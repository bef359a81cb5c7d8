// Package metrics exposes the Prometheus collectors of the roster API.
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

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	assignments     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		assignments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_shift_assignments_total",
			Help: "Shift sign-up changes by action and result.",
		}, []string{"action", "result"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_notifications_sent_total",
			Help: "Upcoming shift notifications by result.",
		}, []string{"result"}),
	}
}

// Middleware records a request count and latency for every route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveAssignment counts an add or remove attempt on a shift.
func (m *Metrics) ObserveAssignment(action string, err error) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(action, result(err)).Inc()
}

// ObserveNotification counts a notification attempt. Result is one of
// "sent", "failed" or "skipped".
func (m *Metrics) ObserveNotification(res string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(res).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
