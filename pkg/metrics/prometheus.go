// Package metrics provides Prometheus metrics for the courtstats service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Player summaries
	summaryLatency  prometheus.Histogram
	summaryRequests *prometheus.CounterVec

	// Rank table
	rankTableBuildDuration prometheus.Histogram
	rankTablePlayers       prometheus.Gauge
	rankCacheHits          prometheus.Counter
	rankCacheMisses        prometheus.Counter

	// Data quality
	integrityViolations *prometheus.CounterVec

	// Store contents and access
	storeRecords           *prometheus.GaugeVec
	repositoryQueryLatency *prometheus.HistogramVec

	// Ingestion
	ingestRuns     *prometheus.CounterVec
	ingestRecords  *prometheus.CounterVec
	ingestSkipped  prometheus.Counter
	ingestDuration prometheus.Histogram

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtstats",
		subsystem:        "api",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.summaryLatency = auto.NewHistogram(
		m.histogramOpts("player_summary_latency_milliseconds", "Time to aggregate and rank one player summary"),
	)
	m.summaryRequests = auto.NewCounterVec(
		m.counterOpts("player_summary_requests_total", "Player summary requests by result"),
		[]string{"result"},
	)

	m.rankTableBuildDuration = auto.NewHistogram(
		m.histogramOpts("rank_table_build_duration_milliseconds", "Rank table rebuild duration in milliseconds"),
	)
	m.rankTablePlayers = auto.NewGauge(
		m.gaugeOpts("rank_table_players", "Number of players in the last built rank table"),
	)
	m.rankCacheHits = auto.NewCounter(
		m.counterOpts("rank_cache_hits_total", "Rank lookups served from the cached table"),
	)
	m.rankCacheMisses = auto.NewCounter(
		m.counterOpts("rank_cache_misses_total", "Rank lookups that required a table rebuild"),
	)

	m.integrityViolations = auto.NewCounterVec(
		m.counterOpts("data_integrity_violations_total", "Events skipped because they contradict their owner or game"),
		[]string{"component"},
	)

	m.storeRecords = auto.NewGaugeVec(
		m.gaugeOpts("store_records", "Rows held by the store by kind"),
		[]string{"kind"},
	)
	m.repositoryQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("repository_query_latency_milliseconds", "Repository query latency in milliseconds"),
		[]string{"driver", "operation"},
	)

	m.ingestRuns = auto.NewCounterVec(
		m.counterOpts("ingest_runs_total", "Data load runs by result"),
		[]string{"result"},
	)
	m.ingestRecords = auto.NewCounterVec(
		m.counterOpts("ingest_records_total", "Records written by data loads by kind"),
		[]string{"kind"},
	)
	m.ingestSkipped = auto.NewCounter(
		m.counterOpts("ingest_skipped_events_total", "Events skipped during data loads"),
	)
	m.ingestDuration = auto.NewHistogram(
		m.histogramOpts("ingest_duration_milliseconds", "Data load duration in milliseconds"),
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	gc := m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds")
	gc.Buckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	m.systemGCPauseTime = auto.NewHistogram(gc)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordSummaryLatency records how long one player summary took in milliseconds.
func RecordSummaryLatency(latencyMs float64) {
	globalManager.summaryLatency.Observe(latencyMs)
}

// RecordSummaryResult counts a summary request by result: ok, not_found or error.
func RecordSummaryResult(result string) {
	globalManager.summaryRequests.WithLabelValues(result).Inc()
}

// RecordRankTableBuild records a rank table rebuild.
func RecordRankTableBuild(players int, durationMs float64) {
	globalManager.rankTableBuildDuration.Observe(durationMs)
	globalManager.rankTablePlayers.Set(float64(players))
}

// RecordRankCacheHit increments the rank cache hit counter.
func RecordRankCacheHit() {
	globalManager.rankCacheHits.Inc()
}

// RecordRankCacheMiss increments the rank cache miss counter.
func RecordRankCacheMiss() {
	globalManager.rankCacheMisses.Inc()
}

// RecordIntegrityViolation counts one skipped inconsistent event.
func RecordIntegrityViolation(component string) {
	globalManager.integrityViolations.WithLabelValues(component).Inc()
}

// UpdateStoreRecords sets the row count for a kind: teams, games, players or events.
func UpdateStoreRecords(kind string, count int64) {
	globalManager.storeRecords.WithLabelValues(kind).Set(float64(count))
}

// RecordRepositoryQueryLatency records repository query latency.
func RecordRepositoryQueryLatency(driver, operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(driver, operation).Observe(latencyMs)
}

// RecordIngestRun counts a data load by result: ok or error.
func RecordIngestRun(result string, durationMs float64) {
	globalManager.ingestRuns.WithLabelValues(result).Inc()
	globalManager.ingestDuration.Observe(durationMs)
}

// RecordIngestRecords adds written records of a kind.
func RecordIngestRecords(kind string, count int) {
	globalManager.ingestRecords.WithLabelValues(kind).Add(float64(count))
}

// RecordIngestSkipped adds skipped events.
func RecordIngestSkipped(count int) {
	globalManager.ingestSkipped.Add(float64(count))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
