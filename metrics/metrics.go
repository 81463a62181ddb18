// Package metrics exposes Prometheus instrumentation for the dashboard, the
// loader and the named-query catalog.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StopsInserted counts rows appended to police_stops, by source (form, api, loader)
	StopsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "police_stops_inserted_total",
			Help: "Total number of traffic stops appended to police_stops",
		},
		[]string{"source"},
	)

	// QueryDuration observes named-query and report execution time
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "police_query_duration_seconds",
			Help:    "Duration of dashboard queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// Errors counts failures by component
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "police_errors_total",
			Help: "Total number of failed operations",
		},
		[]string{"component"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "police_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"key"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "police_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"key"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "police_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "police_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "police_sse_clients",
			Help: "Current number of connected event stream clients",
		},
	)
)

// RecordQuery records the duration of one query and counts it as an error
// when err is non-nil
func RecordQuery(query string, duration time.Duration, err error) {
	QueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		Errors.WithLabelValues("query").Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCache counts a cache lookup
func RecordCache(key string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(key).Inc()
		return
	}
	CacheMisses.WithLabelValues(key).Inc()
}
