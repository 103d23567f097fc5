// Package metrics provides Prometheus metrics for the plumescan pipeline service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the plumescan service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Pipeline Metrics - One sample per end-to-end scan run
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runsFailed    prometheus.Counter
	runDuration   prometheus.Histogram
	walletsRanked prometheus.Gauge

	// Leaderboard Reader Metrics
	pagesFetched     prometheus.Counter
	pageFetchErrors  prometheus.Counter
	pageFetchLatency prometheus.Histogram
	walletsDeduped   prometheus.Counter

	// Delta Fetcher Metrics
	deltaFetches      prometheus.Counter
	deltaFetchErrors  prometheus.Counter
	deltaFetchLatency prometheus.Histogram
	batchLatency      prometheus.Histogram

	// Progress Stream Metrics
	progressEvents prometheus.Counter
	streamDropped  prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "plumescan",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.runsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_started_total",
		Help:      "Total number of pipeline runs started",
	})

	m.runsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_completed_total",
		Help:      "Total number of pipeline runs that reached the completed state",
	})

	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of pipeline runs that terminated with an error event",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of end-to-end pipeline run duration in seconds",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
	})

	m.walletsRanked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "wallets_ranked",
		Help:      "Number of wallets ranked in the most recent pipeline run",
	})

	m.pagesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_pages_fetched_total",
		Help:      "Total number of leaderboard pages fetched from the upstream",
	})

	m.pageFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_page_errors_total",
		Help:      "Total number of leaderboard page fetches that failed",
	})

	m.pageFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_page_latency_milliseconds",
		Help:      "Histogram of leaderboard page fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.walletsDeduped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "wallets_deduplicated_total",
		Help:      "Total number of duplicate wallets suppressed across range fetches",
	})

	m.deltaFetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_fetches_total",
		Help:      "Total number of per-wallet delta fetches issued",
	})

	m.deltaFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_fetch_errors_total",
		Help:      "Total number of per-wallet delta fetches recorded as fail-zero",
	})

	m.deltaFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_fetch_latency_milliseconds",
		Help:      "Histogram of per-wallet delta fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_batch_latency_milliseconds",
		Help:      "Histogram of delta batch completion latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.progressEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "progress_events_total",
		Help:      "Total number of progress events published to streams",
	})

	m.streamDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_events_dropped_total",
		Help:      "Total number of events dropped on a saturated progress stream",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total errors broken down by component and error type",
		},
		[]string{"component", "error_type"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total HTTP errors broken down by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Histogram of garbage collection pause times in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordRunStarted increments the started-runs counter.
func RecordRunStarted() {
	globalManager.runsStarted.Inc()
}

// RecordRunCompleted increments the completed-runs counter and observes duration.
func RecordRunCompleted(duration time.Duration) {
	globalManager.runsCompleted.Inc()
	globalManager.runDuration.Observe(duration.Seconds())
}

// RecordRunFailed increments the failed-runs counter.
func RecordRunFailed() {
	globalManager.runsFailed.Inc()
}

// UpdateWalletsRanked sets the wallet count of the latest run.
func UpdateWalletsRanked(count int) {
	globalManager.walletsRanked.Set(float64(count))
}

// RecordPageFetched increments the fetched-pages counter.
func RecordPageFetched() {
	globalManager.pagesFetched.Inc()
}

// RecordPageFetchError increments the page-errors counter.
func RecordPageFetchError() {
	globalManager.pageFetchErrors.Inc()
}

// RecordPageFetchLatency observes one page fetch latency sample.
func RecordPageFetchLatency(latencyMs float64) {
	globalManager.pageFetchLatency.Observe(latencyMs)
}

// RecordWalletDeduped increments the duplicate-wallet counter.
func RecordWalletDeduped() {
	globalManager.walletsDeduped.Inc()
}

// RecordDeltaFetch increments the delta-fetches counter.
func RecordDeltaFetch() {
	globalManager.deltaFetches.Inc()
}

// RecordDeltaFetchError increments the delta-errors counter.
func RecordDeltaFetchError() {
	globalManager.deltaFetchErrors.Inc()
}

// RecordDeltaFetchLatency observes one delta fetch latency sample.
func RecordDeltaFetchLatency(latencyMs float64) {
	globalManager.deltaFetchLatency.Observe(latencyMs)
}

// RecordBatchLatency observes one delta batch latency sample.
func RecordBatchLatency(latencyMs float64) {
	globalManager.batchLatency.Observe(latencyMs)
}

// RecordProgressEvent increments the published progress-events counter.
func RecordProgressEvent() {
	globalManager.progressEvents.Inc()
}

// RecordStreamDropped increments the dropped-events counter.
func RecordStreamDropped() {
	globalManager.streamDropped.Inc()
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes one HTTP request duration sample.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records one component-level error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records one endpoint-level error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the current memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes one GC pause sample.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
