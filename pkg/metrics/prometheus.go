// Package metrics provides Prometheus metrics for the ringlens service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ringlens service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ingest
	uploads        *prometheus.CounterVec
	filesParsed    *prometheus.CounterVec
	fileErrors     *prometheus.CounterVec
	rowsIngested   *prometheus.CounterVec
	ingestDuration prometheus.Histogram

	// Language model
	llmRequests  *prometheus.CounterVec
	llmLatency   *prometheus.HistogramVec
	llmFallbacks *prometheus.CounterVec

	// Sessions
	sessionsActive  prometheus.Gauge
	sessionsEvicted prometheus.Counter

	// Rendering
	chartsRendered *prometheus.CounterVec
	exports        prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ringlens",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.uploads = auto.NewCounterVec(m.counterOpts("uploads_total",
		"Total number of upload requests by outcome"), []string{"outcome"})
	m.filesParsed = auto.NewCounterVec(m.counterOpts("files_parsed_total",
		"Total number of CSV files parsed by export kind"), []string{"kind"})
	m.fileErrors = auto.NewCounterVec(m.counterOpts("file_errors_total",
		"Total number of CSV files that failed to parse"), []string{"kind"})
	m.rowsIngested = auto.NewCounterVec(m.counterOpts("rows_ingested_total",
		"Total number of rows ingested by export kind"), []string{"kind"})
	m.ingestDuration = auto.NewHistogram(m.histogramOpts("ingest_duration_milliseconds",
		"Time to parse one upload in milliseconds", m.histogramBuckets))

	m.llmRequests = auto.NewCounterVec(m.counterOpts("llm_requests_total",
		"Total number of language model requests"), []string{"provider", "operation", "outcome"})
	m.llmLatency = auto.NewHistogramVec(m.histogramOpts("llm_latency_milliseconds",
		"Language model request latency in milliseconds", m.histogramBuckets), []string{"provider", "operation"})
	m.llmFallbacks = auto.NewCounterVec(m.counterOpts("llm_fallbacks_total",
		"Total number of static fallback responses served"), []string{"operation"})

	m.sessionsActive = auto.NewGauge(m.gaugeOpts("sessions_active",
		"Number of upload sessions currently held in memory"))
	m.sessionsEvicted = auto.NewCounter(m.counterOpts("sessions_evicted_total",
		"Total number of sessions evicted by capacity or age"))

	m.chartsRendered = auto.NewCounterVec(m.counterOpts("charts_rendered_total",
		"Total number of charts produced by format"), []string{"format"})
	m.exports = auto.NewCounter(m.counterOpts("workbook_exports_total",
		"Total number of spreadsheet exports"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Total number of errors by type"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordUpload counts an upload request by outcome ("ok", "rejected", "error").
func (m *Manager) RecordUpload(outcome string) {
	if m.enabled {
		m.uploads.WithLabelValues(outcome).Inc()
	}
}

// RecordFileParsed counts a parsed file and its rows.
func (m *Manager) RecordFileParsed(kind string, rows int) {
	if !m.enabled {
		return
	}
	m.filesParsed.WithLabelValues(kind).Inc()
	m.rowsIngested.WithLabelValues(kind).Add(float64(rows))
}

// RecordFileError counts a file that failed to parse.
func (m *Manager) RecordFileError(kind string) {
	if m.enabled {
		m.fileErrors.WithLabelValues(kind).Inc()
	}
}

// RecordIngestDuration observes the time taken to parse one upload.
func (m *Manager) RecordIngestDuration(ms float64) {
	if m.enabled {
		m.ingestDuration.Observe(ms)
	}
}

// RecordLLMRequest counts a language model call and its latency.
func (m *Manager) RecordLLMRequest(provider, operation, outcome string, ms float64) {
	if !m.enabled {
		return
	}
	m.llmRequests.WithLabelValues(provider, operation, outcome).Inc()
	m.llmLatency.WithLabelValues(provider, operation).Observe(ms)
}

// RecordLLMFallback counts a static fallback response.
func (m *Manager) RecordLLMFallback(operation string) {
	if m.enabled {
		m.llmFallbacks.WithLabelValues(operation).Inc()
	}
}

// UpdateSessionsActive sets the number of stored sessions.
func (m *Manager) UpdateSessionsActive(n int) {
	if m.enabled {
		m.sessionsActive.Set(float64(n))
	}
}

// RecordSessionEvicted counts an evicted session.
func (m *Manager) RecordSessionEvicted() {
	if m.enabled {
		m.sessionsEvicted.Inc()
	}
}

// RecordChartRendered counts a chart produced in the given format ("spec", "png").
func (m *Manager) RecordChartRendered(format string) {
	if m.enabled {
		m.chartsRendered.WithLabelValues(format).Inc()
	}
}

// RecordExport counts a workbook export.
func (m *Manager) RecordExport() {
	if m.enabled {
		m.exports.Inc()
	}
}

// Package-level helpers delegate to the global manager.

func RecordUpload(outcome string)            { globalManager.RecordUpload(outcome) }
func RecordFileParsed(kind string, rows int) { globalManager.RecordFileParsed(kind, rows) }
func RecordFileError(kind string)            { globalManager.RecordFileError(kind) }
func RecordIngestDuration(ms float64)        { globalManager.RecordIngestDuration(ms) }
func RecordLLMFallback(operation string)     { globalManager.RecordLLMFallback(operation) }
func UpdateSessionsActive(n int)             { globalManager.UpdateSessionsActive(n) }
func RecordSessionEvicted()                  { globalManager.RecordSessionEvicted() }
func RecordChartRendered(format string)      { globalManager.RecordChartRendered(format) }
func RecordExport()                          { globalManager.RecordExport() }
func RecordLLMRequest(provider, operation, outcome string, ms float64) {
	globalManager.RecordLLMRequest(provider, operation, outcome, ms)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
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
