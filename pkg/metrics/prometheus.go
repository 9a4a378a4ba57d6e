// Package metrics provides Prometheus metrics for the laureates dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Dataset metrics
	datasetLaureates   prometheus.Gauge
	datasetPrizeRows   prometheus.Gauge
	datasetCountries   prometheus.Gauge
	datasetVersion     prometheus.Gauge
	datasetLoadLatency prometheus.Histogram
	datasetReloads     *prometheus.CounterVec

	// View metrics
	viewRenders          *prometheus.CounterVec
	viewRenderLatency    *prometheus.HistogramVec
	viewValidationErrors *prometheus.CounterVec
	viewEmptyResults     *prometheus.CounterVec

	// Cache metrics
	cacheOps *prometheus.CounterVec

	// Cache warm-up metrics
	warmQueueSize  prometheus.Gauge
	warmJobs       *prometheus.CounterVec
	warmJobLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System metrics
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

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nobeldash",
		subsystem:        "dashboard",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.datasetLaureates = auto.NewGauge(m.gaugeOpts("dataset_laureates", "Number of laureate records in the loaded dataset"))
	m.datasetPrizeRows = auto.NewGauge(m.gaugeOpts("dataset_prize_rows", "Number of normalized laureate-prize rows"))
	m.datasetCountries = auto.NewGauge(m.gaugeOpts("dataset_countries", "Number of distinct country aggregates"))
	m.datasetVersion = auto.NewGauge(m.gaugeOpts("dataset_version", "Version of the currently served dataset snapshot"))
	m.datasetLoadLatency = auto.NewHistogram(m.histogramOpts("dataset_load_milliseconds", "Time to load and derive a dataset snapshot", m.histogramBuckets))
	m.datasetReloads = auto.NewCounterVec(m.counterOpts("dataset_reloads_total", "Dataset loads by outcome"), []string{"outcome"})

	m.viewRenders = auto.NewCounterVec(m.counterOpts("view_renders_total", "Views rendered by kind and format"), []string{"view", "format"})
	m.viewRenderLatency = auto.NewHistogramVec(m.histogramOpts("view_render_milliseconds", "View render latency by kind", m.histogramBuckets), []string{"view"})
	m.viewValidationErrors = auto.NewCounterVec(m.counterOpts("view_validation_errors_total", "Rejected view parameters by kind and reason"), []string{"view", "reason"})
	m.viewEmptyResults = auto.NewCounterVec(m.counterOpts("view_empty_results_total", "Views that produced no rows"), []string{"view"})

	m.cacheOps = auto.NewCounterVec(m.counterOpts("cache_operations_total", "Render cache operations by backend and result"), []string{"backend", "result"})

	m.warmQueueSize = auto.NewGauge(m.gaugeOpts("warm_queue_size", "Cache warm-up jobs waiting in the queue"))
	m.warmJobs = auto.NewCounterVec(m.counterOpts("warm_jobs_total", "Cache warm-up jobs by view and outcome"), []string{"view", "outcome"})
	m.warmJobLatency = auto.NewHistogram(m.histogramOpts("warm_job_milliseconds", "Time to render one warm-up job", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// UpdateDatasetSize publishes the size of the served snapshot.
func UpdateDatasetSize(laureates, prizeRows, countries int) {
	globalManager.datasetLaureates.Set(float64(laureates))
	globalManager.datasetPrizeRows.Set(float64(prizeRows))
	globalManager.datasetCountries.Set(float64(countries))
}

// UpdateDatasetVersion sets the served snapshot version.
func UpdateDatasetVersion(version uint64) {
	globalManager.datasetVersion.Set(float64(version))
}

// RecordDatasetLoad records a load attempt and its latency.
func RecordDatasetLoad(outcome string, latencyMs float64) {
	globalManager.datasetReloads.WithLabelValues(outcome).Inc()
	globalManager.datasetLoadLatency.Observe(latencyMs)
}

// RecordViewRender records a rendered view.
func RecordViewRender(view, format string, latencyMs float64) {
	globalManager.viewRenders.WithLabelValues(view, format).Inc()
	globalManager.viewRenderLatency.WithLabelValues(view).Observe(latencyMs)
}

// RecordViewValidationError records rejected view parameters.
func RecordViewValidationError(view, reason string) {
	globalManager.viewValidationErrors.WithLabelValues(view, reason).Inc()
}

// RecordViewEmptyResult records a view that matched nothing.
func RecordViewEmptyResult(view string) {
	globalManager.viewEmptyResults.WithLabelValues(view).Inc()
}

// RecordCacheOp records a cache hit, miss, set or error.
func RecordCacheOp(backend, result string) {
	globalManager.cacheOps.WithLabelValues(backend, result).Inc()
}

// UpdateWarmQueueSize publishes the warm-up queue length.
func UpdateWarmQueueSize(size int) {
	globalManager.warmQueueSize.Set(float64(size))
}

// RecordWarmJob records a processed warm-up job.
func RecordWarmJob(view, outcome string, latencyMs float64) {
	globalManager.warmJobs.WithLabelValues(view, outcome).Inc()
	globalManager.warmJobLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
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
