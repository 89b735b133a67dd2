// Package metrics provides Prometheus metrics for the penalty analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Analytics
	queriesTotal    *prometheus.CounterVec
	queryLatency    *prometheus.HistogramVec
	integrityErrors *prometheus.CounterVec

	// Cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheErrors *prometheus.CounterVec
	cacheSize   prometheus.Gauge

	// Event source
	eventsLoaded      *prometheus.GaugeVec
	entitiesTracked   *prometheus.GaugeVec
	sourceLoads       *prometheus.CounterVec
	sourceFallbacks   prometheus.Counter
	sourceLoadErrors  prometheus.Counter
	sourceLoadLatency prometheus.Histogram
	lastLoadUnix      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // package-level recorder functions delegate here

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out of /healthz

func init() { //nolint:gochecknoinits // global manager must exist before any Record* call
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "penalty",
		subsystem:        "analytics",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		constLabels:      prometheus.Labels{},
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

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.queriesTotal = auto.NewCounterVec(m.counterOpts("queries_total", "Analytics queries served, by query and cache outcome"), []string{"query", "cache"})
	m.queryLatency = auto.NewHistogramVec(m.histogramOpts("query_latency_milliseconds", "Time spent computing an analytics query"), []string{"query"})
	m.integrityErrors = auto.NewCounterVec(m.counterOpts("integrity_errors_total", "Out-of-range weights or ratios detected, by component"), []string{"component"})

	m.cacheHits = auto.NewCounterVec(m.counterOpts("cache_hits_total", "Result cache hits by backend"), []string{"backend"})
	m.cacheMisses = auto.NewCounterVec(m.counterOpts("cache_misses_total", "Result cache misses by backend"), []string{"backend"})
	m.cacheErrors = auto.NewCounterVec(m.counterOpts("cache_errors_total", "Result cache backend failures"), []string{"backend"})
	m.cacheSize = auto.NewGauge(m.gaugeOpts("cache_entries", "Entries held by the in-memory result cache"))

	m.eventsLoaded = auto.NewGaugeVec(m.gaugeOpts("events_loaded", "Events in the current snapshot, by team"), []string{"team"})
	m.entitiesTracked = auto.NewGaugeVec(m.gaugeOpts("entities", "Distinct entities in the current snapshot, by team and role"), []string{"team", "role"})
	m.sourceLoads = auto.NewCounterVec(m.counterOpts("source_loads_total", "Completed event source loads, by origin"), []string{"origin"})
	m.sourceFallbacks = auto.NewCounter(m.counterOpts("source_fallbacks_total", "Loads served from the fallback source"))
	m.sourceLoadErrors = auto.NewCounter(m.counterOpts("source_load_errors_total", "Failed event source loads"))
	m.sourceLoadLatency = auto.NewHistogram(m.histogramOpts("source_load_latency_milliseconds", "Time to read and validate the event source"))
	m.lastLoadUnix = auto.NewGauge(m.gaugeOpts("source_last_load_unix", "Unix time of the last successful load"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration"), []string{"endpoint", "method", "status_code"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "Average GC pause"))
}

// RecordQuery counts a served query. cache is "hit", "miss" or "bypass".
func RecordQuery(query, cache string) {
	globalManager.queriesTotal.WithLabelValues(query, cache).Inc()
}

// RecordQueryLatency records how long a query computation took.
func RecordQueryLatency(query string, latencyMs float64) {
	globalManager.queryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordIntegrityError counts an out-of-range weight or ratio.
func RecordIntegrityError(component string) {
	globalManager.integrityErrors.WithLabelValues(component).Inc()
}

// RecordCacheHit counts a cache hit on backend.
func RecordCacheHit(backend string) { globalManager.cacheHits.WithLabelValues(backend).Inc() }

// RecordCacheMiss counts a cache miss on backend.
func RecordCacheMiss(backend string) { globalManager.cacheMisses.WithLabelValues(backend).Inc() }

// RecordCacheError counts a failed cache operation on backend.
func RecordCacheError(backend string) { globalManager.cacheErrors.WithLabelValues(backend).Inc() }

// UpdateCacheSize sets the number of in-memory cache entries.
func UpdateCacheSize(n int) { globalManager.cacheSize.Set(float64(n)) }

// UpdateEventsLoaded sets the size of team's current snapshot.
func UpdateEventsLoaded(team string, n int) {
	globalManager.eventsLoaded.WithLabelValues(team).Set(float64(n))
}

// UpdateEntities sets the number of distinct entities for team and role.
func UpdateEntities(team, role string, n int) {
	globalManager.entitiesTracked.WithLabelValues(team, role).Set(float64(n))
}

// RecordSourceLoad counts a successful load from origin ("primary" or "fallback").
func RecordSourceLoad(origin string, latencyMs float64, unix int64) {
	globalManager.sourceLoads.WithLabelValues(origin).Inc()
	globalManager.sourceLoadLatency.Observe(latencyMs)
	globalManager.lastLoadUnix.Set(float64(unix))
}

// RecordSourceFallback counts a load that had to use the fallback source.
func RecordSourceFallback() { globalManager.sourceFallbacks.Inc() }

// RecordSourceLoadError counts a failed load.
func RecordSourceLoadError() { globalManager.sourceLoadErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records the average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
