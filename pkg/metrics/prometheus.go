// Package metrics provides Prometheus metrics for the Athlos orchestration core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	// Ingestion pipeline
	ingestTotal      *prometheus.CounterVec
	ingestErrors     prometheus.Counter
	ingestNoop       *prometheus.CounterVec
	processorLatency *prometheus.HistogramVec

	// Event bus
	busPublished  *prometheus.CounterVec
	busQueueDepth prometheus.Gauge
	busPanics     prometheus.Counter

	// Rule engine + AI provider
	alertsPublished *prometheus.CounterVec
	aiCalls         *prometheus.CounterVec
	aiFallbacks     *prometheus.CounterVec
	aiLatency       *prometheus.HistogramVec

	// Durable store
	storeLatency  *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
	storeOffloads prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Cache
	cacheRefreshes prometheus.Counter
	cachedAthletes prometheus.Gauge
}

// New creates a metrics Manager with configuration options applied.
func New(opts ...Option) *Manager {
	m := &Manager{
		namespace: "athlos",
		subsystem: "core",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.build()
	return m
}

func (m *Manager) build() {
	factory := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m.ingestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("ingest_total", "Ingested payloads by data type.")),
		[]string{"data_type"},
	)
	m.ingestErrors = prometheus.NewCounter(
		prometheus.CounterOpts(factory("ingest_errors_total", "Ingestion failures surfaced to callers.")),
	)
	m.ingestNoop = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("ingest_noop_total", "Ingestions dropped as warn-and-skip no-ops.")),
		[]string{"reason"},
	)
	m.processorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "processor_latency_ms",
			Help:      "Processor execution latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"data_type"},
	)

	m.busPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("bus_published_total", "Events published to the bus by name.")),
		[]string{"event"},
	)
	m.busQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("bus_queue_depth", "Pending deliveries on the event bus.")),
	)
	m.busPanics = prometheus.NewCounter(
		prometheus.CounterOpts(factory("bus_listener_panics_total", "Listener panics recovered by the dispatcher.")),
	)

	m.alertsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("alerts_published_total", "System alerts published by the rule engine.")),
		[]string{"level"},
	)
	m.aiCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("ai_calls_total", "AI provider calls by operation and outcome.")),
		[]string{"op", "outcome"},
	)
	m.aiFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("ai_fallbacks_total", "Deterministic fallbacks taken by operation.")),
		[]string{"op"},
	)
	m.aiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ai_latency_ms",
			Help:      "AI provider call latency in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"op"},
	)

	m.storeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_latency_ms",
			Help:      "Durable store operation latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"op"},
	)
	m.storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("store_errors_total", "Durable store failures by operation.")),
		[]string{"op"},
	)
	m.storeOffloads = prometheus.NewCounter(
		prometheus.CounterOpts(factory("store_offloads_total", "Oversized documents shed to sidecar keys before retry.")),
	)

	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("http_requests_total", "HTTP requests by endpoint, method and status.")),
		[]string{"endpoint", "method", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request duration in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"endpoint", "method", "status"},
	)

	m.cacheRefreshes = prometheus.NewCounter(
		prometheus.CounterOpts(factory("cache_refreshes_total", "Cache snapshot rebuilds.")),
	)
	m.cachedAthletes = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("cached_athletes", "Athletes held in the in-memory cache.")),
	)

	m.registry.MustRegister(
		m.ingestTotal, m.ingestErrors, m.ingestNoop, m.processorLatency,
		m.busPublished, m.busQueueDepth, m.busPanics,
		m.alertsPublished, m.aiCalls, m.aiFallbacks, m.aiLatency,
		m.storeLatency, m.storeErrors, m.storeOffloads,
		m.httpRequests, m.httpRequestDuration,
		m.cacheRefreshes, m.cachedAthletes,
	)
}

// Registry exposes the manager's registry for HTTP serving.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

var defaultManager = New()

// GetRegistry returns the default manager's registry.
func GetRegistry() *prometheus.Registry { return defaultManager.Registry() }

// Package-level recorders against the default manager.

func RecordIngest(dataType string)   { defaultManager.ingestTotal.WithLabelValues(dataType).Inc() }
func RecordIngestError()             { defaultManager.ingestErrors.Inc() }
func RecordIngestNoop(reason string) { defaultManager.ingestNoop.WithLabelValues(reason).Inc() }
func RecordProcessorLatency(dataType string, ms float64) {
	defaultManager.processorLatency.WithLabelValues(dataType).Observe(ms)
}

func RecordBusPublish(event string) { defaultManager.busPublished.WithLabelValues(event).Inc() }
func UpdateBusQueueDepth(n int)     { defaultManager.busQueueDepth.Set(float64(n)) }
func RecordBusListenerPanic()       { defaultManager.busPanics.Inc() }

func RecordAlert(level string) { defaultManager.alertsPublished.WithLabelValues(level).Inc() }
func RecordAICall(op, outcome string) {
	defaultManager.aiCalls.WithLabelValues(op, outcome).Inc()
}
func RecordAIFallback(op string) { defaultManager.aiFallbacks.WithLabelValues(op).Inc() }
func RecordAILatency(op string, ms float64) {
	defaultManager.aiLatency.WithLabelValues(op).Observe(ms)
}

func RecordStoreLatency(op string, ms float64) {
	defaultManager.storeLatency.WithLabelValues(op).Observe(ms)
}
func RecordStoreError(op string) { defaultManager.storeErrors.WithLabelValues(op).Inc() }
func RecordStoreOffload()        { defaultManager.storeOffloads.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordCacheRefresh()        { defaultManager.cacheRefreshes.Inc() }
func UpdateCachedAthletes(n int) { defaultManager.cachedAthletes.Set(float64(n)) }
