// Package metrics provides Prometheus metrics for the workpulse analysis service.
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

// Manager manages all Prometheus metrics for the workpulse service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Analysis lifecycle
	analysesSubmitted prometheus.Counter
	analysesDuplicate prometheus.Counter
	analysesCompleted prometheus.Counter
	analysesFailed    *prometheus.CounterVec
	analysesStored    prometheus.Gauge
	analysisDuration  prometheus.Histogram

	// Pipeline stages
	stageDuration      *prometheus.HistogramVec
	activityRows       prometheus.Counter
	eventsIngested     prometheus.Counter
	rowsDropped        *prometheus.CounterVec
	slotsMerged        prometheus.Counter
	daysAggregated     prometheus.Counter
	daysJoined         prometheus.Counter
	correlationsTotal  prometheus.Counter
	correlationsHigh   prometheus.Counter
	correlationsUndef  prometheus.Counter
	duplicateVariables prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue Metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics
	workerActiveCount       prometheus.Gauge
	workerBusyCount         prometheus.Gauge
	workerJobsPerSecond     prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "workpulse",
		subsystem:        "analysis",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether the package-level helpers record anything.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauges sampled from runtime state are refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) name(n string) string { return m.metricPrefix + n }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.analysesSubmitted = m.counter("analyses_submitted_total", "Total number of analyses accepted for processing")
	m.analysesDuplicate = m.counter("analyses_duplicate_total", "Total number of submissions answered from an earlier identical analysis")
	m.analysesCompleted = m.counter("analyses_completed_total", "Total number of analyses that finished successfully")
	m.analysesFailed = m.counterVec("analyses_failed_total", "Total number of failed analyses by reason", "reason")
	m.analysesStored = m.gauge("analyses_stored", "Number of analyses currently held in the result store")
	m.analysisDuration = m.histogram("analysis_duration_milliseconds", "End-to-end pipeline duration in milliseconds")

	m.stageDuration = m.histogramVec("stage_duration_milliseconds", "Pipeline stage duration in milliseconds", "stage")
	m.activityRows = m.counter("activity_rows_total", "Total number of activity export rows read")
	m.eventsIngested = m.counter("events_ingested_total", "Total number of activity events kept after normalization")
	m.rowsDropped = m.counterVec("rows_dropped_total", "Total number of input rows dropped by stage and reason", "stage", "reason")
	m.slotsMerged = m.counter("slots_merged_total", "Total number of work slots produced")
	m.daysAggregated = m.counter("days_aggregated_total", "Total number of daily records produced")
	m.daysJoined = m.counter("days_joined_total", "Total number of daily records with a survey response")
	m.correlationsTotal = m.counter("correlations_total", "Total number of (variable, target) correlations computed")
	m.correlationsHigh = m.counter("correlations_high_total", "Total number of correlations classified High")
	m.correlationsUndef = m.counter("correlations_undefined_total", "Total number of correlations that were undefined")
	m.duplicateVariables = m.counter("duplicate_pairs_total", "Total number of repeated (variable, target) pairs dropped on consolidation")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Current number of queued analysis jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued analysis jobs")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueueRate = m.counter("queue_enqueued_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeued_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds")

	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers in the pool")
	m.workerBusyCount = m.gauge("worker_busy_count", "Number of workers currently running an analysis")
	m.workerJobsPerSecond = m.gauge("worker_jobs_per_second", "Jobs finished per second over the last refresh interval")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Job processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Total number of jobs that ended in an error")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

func on() bool { return globalManager.enabled }

// Analysis lifecycle.

// RecordAnalysisSubmitted increments the accepted analyses counter.
func RecordAnalysisSubmitted() {
	if on() {
		globalManager.analysesSubmitted.Inc()
	}
}

// RecordAnalysisDuplicate increments the duplicate submissions counter.
func RecordAnalysisDuplicate() {
	if on() {
		globalManager.analysesDuplicate.Inc()
	}
}

// RecordAnalysisCompleted records a finished analysis and its duration.
func RecordAnalysisCompleted(durationMs float64) {
	if on() {
		globalManager.analysesCompleted.Inc()
		globalManager.analysisDuration.Observe(durationMs)
	}
}

// RecordAnalysisFailed increments the failed analyses counter.
func RecordAnalysisFailed(reason string) {
	if on() {
		globalManager.analysesFailed.WithLabelValues(reason).Inc()
	}
}

// UpdateAnalysesStored sets the number of stored analyses.
func UpdateAnalysesStored(n int) {
	if on() {
		globalManager.analysesStored.Set(float64(n))
	}
}

// Pipeline stages.

// RecordStageDuration records the duration of one pipeline stage.
func RecordStageDuration(stage string, durationMs float64) {
	if on() {
		globalManager.stageDuration.WithLabelValues(stage).Observe(durationMs)
	}
}

// RecordActivityRows adds to the activity rows counter.
func RecordActivityRows(n int) {
	if on() {
		globalManager.activityRows.Add(float64(n))
	}
}

// RecordEventsIngested adds to the kept events counter.
func RecordEventsIngested(n int) {
	if on() {
		globalManager.eventsIngested.Add(float64(n))
	}
}

// RecordRowsDropped adds n dropped rows for stage and reason.
func RecordRowsDropped(stage, reason string, n int) {
	if on() && n > 0 {
		globalManager.rowsDropped.WithLabelValues(stage, reason).Add(float64(n))
	}
}

// RecordSlotsMerged adds to the work slots counter.
func RecordSlotsMerged(n int) {
	if on() {
		globalManager.slotsMerged.Add(float64(n))
	}
}

// RecordDaysAggregated adds to the daily records counter.
func RecordDaysAggregated(n int) {
	if on() {
		globalManager.daysAggregated.Add(float64(n))
	}
}

// RecordDaysJoined adds to the joined days counter.
func RecordDaysJoined(n int) {
	if on() {
		globalManager.daysJoined.Add(float64(n))
	}
}

// RecordCorrelations adds computed, High and undefined correlation counts.
func RecordCorrelations(total, high, undefined int) {
	if on() {
		globalManager.correlationsTotal.Add(float64(total))
		globalManager.correlationsHigh.Add(float64(high))
		globalManager.correlationsUndef.Add(float64(undefined))
	}
}

// RecordDuplicatePairs adds to the consolidation duplicates counter.
func RecordDuplicatePairs(n int) {
	if on() && n > 0 {
		globalManager.duplicateVariables.Add(float64(n))
	}
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if on() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if on() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size and utilization.
func UpdateQueueSize(size, capacity int) {
	if !on() {
		return
	}
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if on() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if on() {
		globalManager.queueEnqueueRate.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if on() {
		globalManager.queueDequeueRate.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if on() {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// RecordQueueProcessingLatency records enqueue latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	if on() {
		globalManager.queueProcessingLatency.Observe(latencyMs)
	}
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of pool workers.
func UpdateWorkerActiveCount(count int) {
	if on() {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

// AddWorkerBusy moves the busy workers gauge by delta.
func AddWorkerBusy(delta int) {
	if on() {
		globalManager.workerBusyCount.Add(float64(delta))
	}
}

// UpdateWorkerJobsPerSecond sets the recent job throughput.
func UpdateWorkerJobsPerSecond(rate float64) {
	if on() {
		globalManager.workerJobsPerSecond.Set(rate)
	}
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if on() {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if on() {
		globalManager.workerErrors.Inc()
	}
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if on() {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if on() {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	if on() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if on() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// SetEnabled turns the package-level helpers on or off.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// Global returns the process-wide manager.
func Global() *Manager { return globalManager }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
