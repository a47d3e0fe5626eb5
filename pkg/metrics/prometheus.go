// Package metrics provides Prometheus metrics for the pacer recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Tick pipeline
	ticksTotal      *prometheus.CounterVec
	tickLatency     prometheus.Histogram
	samplesIngested prometheus.Counter
	tickErrors      *prometheus.CounterVec

	// Prediction
	predictionErrors prometheus.Counter

	// Session lifecycle
	activeSessions   prometheus.Gauge
	sessionsCreated  prometheus.Counter
	sessionsEvicted  prometheus.Counter
	sessionsArchived prometheus.Counter
	archiveErrors    prometheus.Counter
	duplicateSamples prometheus.Counter

	// Archive spool
	spoolSize          prometheus.Gauge
	spoolCapacity      prometheus.Gauge
	spoolEnqueues      prometheus.Counter
	spoolDequeues      prometheus.Counter
	spoolEnqueueErrors prometheus.Counter
	writerActiveCount  prometheus.Gauge
	writerErrors       prometheus.Counter
	writerLatency      prometheus.Histogram

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pacer",
		subsystem:        "recommend",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ticksTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ticks_total",
			Help:      "Total number of processed ticks by engine state (warmup or full)",
		},
		[]string{"state"},
	)

	m.tickLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_latency_milliseconds",
		Help:      "End-to-end tick processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.samplesIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_ingested_total",
		Help:      "Total number of samples appended to session buffers",
	})

	m.tickErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tick_errors_total",
			Help:      "Total number of failed ticks by error kind",
		},
		[]string{"kind"},
	)

	m.predictionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_errors_total",
		Help:      "Total number of predictor failures (artifact or transform)",
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of live runner sessions",
	})

	m.sessionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_created_total",
		Help:      "Total number of sessions created",
	})

	m.sessionsEvicted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_evicted_total",
		Help:      "Total number of sessions removed by idle eviction",
	})

	m.sessionsArchived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_archived_total",
		Help:      "Total number of session summaries written to the archive",
	})

	m.archiveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_errors_total",
		Help:      "Total number of archive write failures",
	})

	m.duplicateSamples = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_samples_total",
		Help:      "Total number of re-sent samples dropped before buffering",
	})

	m.spoolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_spool_size",
		Help:      "Current number of session summaries waiting in the archive spool",
	})

	m.spoolCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_spool_capacity",
		Help:      "Configured capacity of the archive spool",
	})

	m.spoolEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_spool_enqueues_total",
		Help:      "Total number of session summaries accepted by the archive spool",
	})

	m.spoolDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_spool_dequeues_total",
		Help:      "Total number of session summaries handed to archive writers",
	})

	m.spoolEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_spool_enqueue_errors_total",
		Help:      "Total number of summaries rejected by the archive spool",
	})

	m.writerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_writers_active",
		Help:      "Number of running archive writer goroutines",
	})

	m.writerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_writer_errors_total",
		Help:      "Total number of archive writer failures",
	})

	m.writerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_writer_latency_milliseconds",
		Help:      "Archive write latency in milliseconds",
		Buckets:   m.histogramBuckets,
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

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of HTTP errors by endpoint, method and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of failed operations in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Garbage collector pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordTick counts one processed tick for the given engine state.
func RecordTick(state string) {
	globalManager.ticksTotal.WithLabelValues(state).Inc()
}

// RecordTickLatency observes end-to-end tick latency.
func RecordTickLatency(latencyMs float64) {
	globalManager.tickLatency.Observe(latencyMs)
}

// RecordSamplesIngested counts samples appended to session buffers.
func RecordSamplesIngested(n int) {
	globalManager.samplesIngested.Add(float64(n))
}

// RecordTickError counts one failed tick for the given error kind.
func RecordTickError(kind string) {
	globalManager.tickErrors.WithLabelValues(kind).Inc()
}

// RecordPredictionError counts a predictor failure.
func RecordPredictionError() {
	globalManager.predictionErrors.Inc()
}

// UpdateActiveSessions sets the live session gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionCreated counts a newly created session.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// RecordSessionEvicted counts an idle-evicted session.
func RecordSessionEvicted() {
	globalManager.sessionsEvicted.Inc()
}

// RecordSessionArchived counts a persisted session summary.
func RecordSessionArchived() {
	globalManager.sessionsArchived.Inc()
}

// RecordArchiveError counts a failed archive write.
func RecordArchiveError() {
	globalManager.archiveErrors.Inc()
}

// RecordDuplicateSamples counts re-sent samples dropped before buffering.
func RecordDuplicateSamples(n int) {
	globalManager.duplicateSamples.Add(float64(n))
}

// UpdateSpoolSize sets the archive spool occupancy gauge.
func UpdateSpoolSize(size int) {
	globalManager.spoolSize.Set(float64(size))
}

// UpdateSpoolCapacity sets the archive spool capacity gauge.
func UpdateSpoolCapacity(capacity int) {
	globalManager.spoolCapacity.Set(float64(capacity))
}

// RecordSpoolEnqueue counts a summary accepted by the archive spool.
func RecordSpoolEnqueue() {
	globalManager.spoolEnqueues.Inc()
}

// RecordSpoolDequeue counts a summary handed to an archive writer.
func RecordSpoolDequeue() {
	globalManager.spoolDequeues.Inc()
}

// RecordSpoolEnqueueError counts a summary rejected by the archive spool.
func RecordSpoolEnqueueError() {
	globalManager.spoolEnqueueErrors.Inc()
}

// UpdateWriterActiveCount sets the running archive writer gauge.
func UpdateWriterActiveCount(count int) {
	globalManager.writerActiveCount.Set(float64(count))
}

// RecordWriterError counts an archive writer failure.
func RecordWriterError() {
	globalManager.writerErrors.Inc()
}

// RecordWriterLatency observes an archive write duration.
func RecordWriterLatency(latencyMs float64) {
	globalManager.writerLatency.Observe(latencyMs)
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorLatency observes the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes a GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry used for serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
