// Package metrics provides Prometheus metrics for the records service.
package metrics

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Dataset
	datasetLoads        *prometheus.CounterVec
	datasetLoadDuration prometheus.Histogram
	recordsLoaded       prometheus.Gauge
	rowsDropped         *prometheus.CounterVec
	snapshotLastUnix    prometheus.Gauge
	snapshotCount       prometheus.Counter

	// Queries
	queries      *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
	resultSize   prometheus.Histogram
	exports      *prometheus.CounterVec

	// Sessions
	sessionsActive  prometheus.Gauge
	sessionsCreated prometheus.Counter
	sessionsEvicted prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

// Custom registry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wrpf",
		subsystem:        "records",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.datasetLoads = auto.NewCounterVec(
		m.counterOpts("dataset_loads_total", "Dataset load attempts by status"),
		[]string{"status"},
	)
	m.datasetLoadDuration = auto.NewHistogram(
		m.histogramOpts("dataset_load_duration_milliseconds", "Time to read and normalize the dataset", m.histogramBuckets),
	)
	m.recordsLoaded = auto.NewGauge(
		m.gaugeOpts("records_loaded", "Records in the current snapshot"),
	)
	m.rowsDropped = auto.NewCounterVec(
		m.counterOpts("rows_dropped_total", "Source rows dropped during normalization by reason"),
		[]string{"reason"},
	)
	m.snapshotLastUnix = auto.NewGauge(
		m.gaugeOpts("snapshot_last_unix", "Unix timestamp of the last snapshot swap"),
	)
	m.snapshotCount = auto.NewCounter(
		m.counterOpts("snapshot_count_total", "Snapshots published"),
	)

	m.queries = auto.NewCounterVec(
		m.counterOpts("queries_total", "Record queries by mode and view"),
		[]string{"mode", "view"},
	)
	m.queryLatency = auto.NewHistogramVec(
		m.histogramOpts("query_latency_milliseconds", "Filter and reduce latency", m.histogramBuckets),
		[]string{"mode"},
	)
	m.resultSize = auto.NewHistogram(
		m.histogramOpts("query_result_size", "Rows returned per query", prometheus.ExponentialBuckets(1, 4, 9)),
	)
	m.exports = auto.NewCounterVec(
		m.counterOpts("exports_total", "Exports by format"),
		[]string{"format"},
	)

	m.sessionsActive = auto.NewGauge(
		m.gaugeOpts("sessions_active", "Sessions currently held"),
	)
	m.sessionsCreated = auto.NewCounter(
		m.counterOpts("sessions_created_total", "Sessions created"),
	)
	m.sessionsEvicted = auto.NewCounter(
		m.counterOpts("sessions_evicted_total", "Sessions evicted to stay within the bound"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Most recent GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Enabled reports whether the manager records anything.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordDatasetLoad counts one load attempt and its duration.
func (m *Manager) RecordDatasetLoad(status string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.datasetLoads.WithLabelValues(status).Inc()
	m.datasetLoadDuration.Observe(durationMs)
}

// RecordSnapshot marks a snapshot swap holding n records.
func (m *Manager) RecordSnapshot(n int, at time.Time) {
	if !m.enabled {
		return
	}
	m.recordsLoaded.Set(float64(n))
	m.snapshotLastUnix.Set(float64(at.Unix()))
	m.snapshotCount.Inc()
}

// RecordRowsDropped adds n dropped rows for reason.
func (m *Manager) RecordRowsDropped(reason string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.rowsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordQuery counts a query and its latency and result size.
func (m *Manager) RecordQuery(mode, view string, latencyMs float64, rows int) {
	if !m.enabled {
		return
	}
	m.queries.WithLabelValues(mode, view).Inc()
	m.queryLatency.WithLabelValues(mode).Observe(latencyMs)
	m.resultSize.Observe(float64(rows))
}

// RecordExport counts an export.
func (m *Manager) RecordExport(format string) {
	if !m.enabled {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// UpdateSessionsActive sets the number of live sessions.
func (m *Manager) UpdateSessionsActive(n int) {
	if !m.enabled {
		return
	}
	m.sessionsActive.Set(float64(n))
}

// RecordSessionCreated counts a new session.
func (m *Manager) RecordSessionCreated() {
	if !m.enabled {
		return
	}
	m.sessionsCreated.Inc()
}

// RecordSessionEvicted counts an evicted session.
func (m *Manager) RecordSessionEvicted() {
	if !m.enabled {
		return
	}
	m.sessionsEvicted.Inc()
}

// RecordHTTPRequest records one request with its status and duration.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int, durationMs float64) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// CollectSystem samples memory, goroutines and the last GC pause.
func (m *Manager) CollectSystem() {
	if !m.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		pause := ms.PauseNs[(ms.NumGC+255)%256]
		m.systemGCPauseTime.Observe(float64(pause) / float64(time.Millisecond))
	}
}

// RunSystemCollector calls CollectSystem every refresh interval until ctx
// is done.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	m.CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CollectSystem()
		}
	}
}

// Package-level helpers over the global manager.

// Global returns the process-wide manager.
func Global() *Manager { return globalManager }

func RecordDatasetLoad(status string, durationMs float64) {
	globalManager.RecordDatasetLoad(status, durationMs)
}

func RecordSnapshot(n int, at time.Time) { globalManager.RecordSnapshot(n, at) }

func RecordRowsDropped(reason string, n int) { globalManager.RecordRowsDropped(reason, n) }

func RecordQuery(mode, view string, latencyMs float64, rows int) {
	globalManager.RecordQuery(mode, view, latencyMs, rows)
}

func RecordExport(format string) { globalManager.RecordExport(format) }

func UpdateSessionsActive(n int) { globalManager.UpdateSessionsActive(n) }

func RecordSessionCreated() { globalManager.RecordSessionCreated() }

func RecordSessionEvicted() { globalManager.RecordSessionEvicted() }

func RecordHTTPRequest(endpoint, method string, status int, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, status, durationMs)
}

func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it at startup, before metrics are recorded concurrently.
func Configure(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
	customRegistry = reg
	return globalManager
}

// GetRegistry returns the custom registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
