// Package metrics provides Prometheus metrics for the dashboard server.
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

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postlog_dashboard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postlog_dashboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Backend metrics
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postlog_dashboard_backend_requests_total",
			Help: "Total number of calls to the Postlog backend",
		},
		[]string{"endpoint", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postlog_dashboard_backend_request_duration_seconds",
			Help:    "Postlog backend call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Browser metrics
	browseSessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postlog_dashboard_browse_sessions_open",
			Help: "Number of open file browse sessions",
		},
	)

	treeNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "postlog_dashboard_tree_nodes",
			Help:    "Number of nodes in built file trees",
			Buckets: prometheus.ExponentialBuckets(8, 2, 10),
		},
	)

	// Generation metrics
	collectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postlog_dashboard_collections_total",
			Help: "Collection generation and reset outcomes",
		},
		[]string{"action", "result"},
	)

	// Auth metrics
	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postlog_dashboard_logins_total",
			Help: "OAuth callbacks handled",
		},
		[]string{"result"},
	)
)

// Middleware records request count and latency per route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBackendCall records one backend call. status is the HTTP status or
// 0 when the request failed before a response arrived.
func RecordBackendCall(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendRequestsTotal.WithLabelValues(endpoint, label).Inc()
	backendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetBrowseSessions sets the open browse session gauge
func SetBrowseSessions(n int) {
	browseSessionsOpen.Set(float64(n))
}

// RecordTree records the size of a freshly built tree
func RecordTree(files, dirs int) {
	treeNodes.Observe(float64(files + dirs))
}

// RecordCollection records a generate or reset outcome
func RecordCollection(action string, success bool) {
	collectionsTotal.WithLabelValues(action, result(success)).Inc()
}

// RecordLogin records an OAuth callback outcome
func RecordLogin(success bool) {
	loginsTotal.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
