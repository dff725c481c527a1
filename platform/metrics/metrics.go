// Package metrics exposes Prometheus instrumentation for the HTTP layer
// and the wizard business counters.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	sessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_sessions_started_total",
			Help: "Total number of wizard sessions started",
		},
		[]string{"flow"},
	)

	stepsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_steps_completed_total",
			Help: "Total number of wizard step transitions",
		},
		[]string{"flow", "step"},
	)

	enrichmentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_requests_total",
			Help: "Total number of house-data enrichment attempts",
		},
		[]string{"outcome"},
	)

	leadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Total number of lead submission attempts",
		},
		[]string{"flow", "outcome"},
	)
)

// SessionStarted records a new wizard session for a flow.
func SessionStarted(flow string) {
	sessionsStarted.WithLabelValues(flow).Inc()
}

// StepCompleted records a forward step transition.
func StepCompleted(flow, step string) {
	stepsCompleted.WithLabelValues(flow, step).Inc()
}

// EnrichmentRequest records an enrichment attempt outcome (found/not_found/error).
func EnrichmentRequest(outcome string) {
	enrichmentRequests.WithLabelValues(outcome).Inc()
}

// LeadSubmitted records a lead submission attempt outcome (ok/error).
func LeadSubmitted(flow, outcome string) {
	leadsSubmitted.WithLabelValues(flow, outcome).Inc()
}

// Middleware instruments Gin requests. Uses the route template
// (c.FullPath) rather than the raw URL to keep label cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
