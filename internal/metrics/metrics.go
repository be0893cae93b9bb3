// Package metrics holds the Prometheus collectors for the occupancy analyzer.
//
// Collectors are registered on the default registry at init via promauto and
// exposed by the web host on the configured metrics path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Loader
	FileLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usercount_file_loads_total",
			Help: "Total number of file loads by format and result code",
		},
		[]string{"format", "code"}, // code is "ok" or a user error code such as VAL004
	)

	FileLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usercount_file_load_duration_seconds",
			Help:    "Duration of parsing one uploaded file",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"format"},
	)

	RowsLoadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usercount_rows_loaded_total",
			Help: "Total number of occupancy rows loaded",
		},
	)

	ActiveLoads = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "usercount_active_loads",
			Help: "Current number of files being parsed",
		},
	)

	// Aggregation
	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "usercount_recompute_duration_seconds",
			Help:    "Duration of one batch recompute",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecomputeFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usercount_recompute_files_total",
			Help: "Files seen by recompute, by outcome",
		},
		[]string{"outcome"}, // "ok", "load_error", "incomplete"
	)

	ResultRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usercount_result_rows_total",
			Help: "Total number of result rows produced by aggregation",
		},
	)

	AggregateCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usercount_aggregate_cache_hits_total",
			Help: "Total number of memoized aggregation hits",
		},
	)

	AggregateCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usercount_aggregate_cache_misses_total",
			Help: "Total number of memoized aggregation misses",
		},
	)

	// Sessions
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "usercount_active_sessions",
			Help: "Current number of browser sessions held in memory",
		},
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usercount_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usercount_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usercount_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"limiter"},
	)
)

// RecordFileLoad records the outcome of parsing one file.
func RecordFileLoad(format, code string, rows int, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	FileLoadsTotal.WithLabelValues(format, code).Inc()
	FileLoadDuration.WithLabelValues(format).Observe(duration.Seconds())
	if rows > 0 {
		RowsLoadedTotal.Add(float64(rows))
	}
}

// TrackActiveLoad tracks files currently being parsed.
func TrackActiveLoad(inc bool) {
	if inc {
		ActiveLoads.Inc()
	} else {
		ActiveLoads.Dec()
	}
}

// RecordRecompute records one batch recompute.
func RecordRecompute(duration time.Duration, ok, loadErrors, incomplete, resultRows int) {
	RecomputeDuration.Observe(duration.Seconds())
	RecomputeFiles.WithLabelValues("ok").Add(float64(ok))
	RecomputeFiles.WithLabelValues("load_error").Add(float64(loadErrors))
	RecomputeFiles.WithLabelValues("incomplete").Add(float64(incomplete))
	ResultRowsTotal.Add(float64(resultRows))
}

// RecordCacheLookup records a memoized aggregation lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		AggregateCacheHits.Inc()
	} else {
		AggregateCacheMisses.Inc()
	}
}

// SetActiveSessions sets the number of live sessions.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRateLimitHit records a rejected request.
func RecordRateLimitHit(limiter string) {
	RateLimitHits.WithLabelValues(limiter).Inc()
}
