// Package metrics provides Prometheus metrics for the KORM replay service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Replay pipeline
	seasonsAccepted  prometheus.Counter
	seasonsDuplicate prometheus.Counter
	replaysCompleted *prometheus.CounterVec // by termination reason
	replaysFailed    prometheus.Counter
	replayDuration   prometheus.Histogram
	weeksProcessed   prometheus.Counter
	strikesIssued    prometheus.Counter
	eliminations     prometheus.Counter

	// Queue health
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueEnqueues prometheus.Counter
	queueDequeues prometheus.Counter
	queueErrors   *prometheus.CounterVec // by reason

	// Workers and storage
	workerCount   prometheus.Gauge
	seasonsStored prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance, backed by a custom registry so the
// default Go collectors do not leak in.
var (
	globalManager  *Manager              //nolint:gochecknoglobals // singleton metrics manager
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "korm",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.seasonsAccepted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "seasons_accepted_total",
		Help: "Season submissions accepted for replay.",
	})
	m.seasonsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "seasons_duplicate_total",
		Help: "Season submissions rejected as duplicates.",
	})
	m.replaysCompleted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "replays_completed_total",
		Help: "Completed season replays by termination reason.",
	}, []string{"reason"})
	m.replaysFailed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "replays_failed_total",
		Help: "Season replays aborted on error.",
	})
	m.replayDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: "replay_duration_ms",
		Help:    "Full-season replay duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.weeksProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "weeks_processed_total",
		Help: "Competition weeks processed by the strike engine.",
	})
	m.strikesIssued = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "strikes_issued_total",
		Help: "Strikes issued across all replays.",
	})
	m.eliminations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "eliminations_total",
		Help: "Teams eliminated across all replays.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "queue_size",
		Help: "Replay jobs currently queued.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "queue_capacity",
		Help: "Replay job queue capacity.",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queue_enqueues_total",
		Help: "Jobs enqueued.",
	})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queue_dequeues_total",
		Help: "Jobs dequeued.",
	})
	m.queueErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queue_errors_total",
		Help: "Enqueue failures by reason.",
	}, []string{"reason"})

	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "worker_count",
		Help: "Replay workers running.",
	})
	m.seasonsStored = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "seasons_stored",
		Help: "Seasons currently held in the results store.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "system_memory_bytes",
		Help: "Allocated heap bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "system_goroutines",
		Help: "Current goroutine count.",
	})
}

// GetRegistry returns the registry backing the global manager, for promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers forwarding to the global manager.

func RecordSeasonAccepted()  { globalManager.seasonsAccepted.Inc() }
func RecordSeasonDuplicate() { globalManager.seasonsDuplicate.Inc() }

func RecordReplayCompleted(reason string) {
	globalManager.replaysCompleted.WithLabelValues(reason).Inc()
}
func RecordReplayFailed()              { globalManager.replaysFailed.Inc() }
func RecordReplayDuration(ms float64)  { globalManager.replayDuration.Observe(ms) }
func RecordWeeksProcessed(n int)       { globalManager.weeksProcessed.Add(float64(n)) }
func RecordStrikesIssued(n int)        { globalManager.strikesIssued.Add(float64(n)) }
func RecordEliminations(n int)         { globalManager.eliminations.Add(float64(n)) }

func UpdateQueueSize(n int)     { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueEnqueue()       { globalManager.queueEnqueues.Inc() }
func RecordQueueDequeue()       { globalManager.queueDequeues.Inc() }
func RecordQueueEnqueueError(reason string) {
	globalManager.queueErrors.WithLabelValues(reason).Inc()
}

func UpdateWorkerCount(n int)   { globalManager.workerCount.Set(float64(n)) }
func UpdateSeasonsStored(n int) { globalManager.seasonsStored.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}
