package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run statuses
const (
	StatusOK        = "ok"
	StatusAborted   = "aborted"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Run metrics
	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	DocumentBytes prometheus.Histogram
	OutputLines   prometheus.Histogram
	ScriptErrors  prometheus.Counter

	// Pool metrics
	PoolSize  prometheus.Gauge
	PoolInUse prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds running totals for the JSON API
type Snapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	TotalRuns     int64   `json:"total_runs"`
	FailedRuns    int64   `json:"failed_runs"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a collector with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	m := &Metrics{
		registry:  registry,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playground_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_runs_total",
				Help: "Total number of snippet runs by source and status",
			},
			[]string{"source", "status"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playground_run_duration_seconds",
				Help:    "Snippet run duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
			},
			[]string{"source"},
		),
		DocumentBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "playground_document_bytes",
				Help:    "Size of assembled execution documents in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
			},
		),
		OutputLines: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "playground_output_lines",
				Help:    "Captured output lines per run",
				Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 1000},
			},
		),
		ScriptErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "playground_script_errors_total",
				Help: "Uncaught script errors raised while loading documents",
			},
		),

		PoolSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "playground_sandbox_pool_size",
				Help: "Number of runtimes in the sandbox pool",
			},
		),
		PoolInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "playground_sandbox_pool_in_use",
				Help: "Number of sandbox runtimes currently acquired",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "playground_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "playground_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordRun records one finished run
func (m *Metrics) RecordRun(source, status string, duration time.Duration, lines, scriptErrors int) {
	m.RunsTotal.WithLabelValues(source, status).Inc()
	m.RunDuration.WithLabelValues(source).Observe(duration.Seconds())
	m.OutputLines.Observe(float64(lines))
	m.ScriptErrors.Add(float64(scriptErrors))

	m.mu.Lock()
	m.snapshot.TotalRuns++
	if status != StatusOK {
		m.snapshot.FailedRuns++
	}
	m.mu.Unlock()
}

// RecordDocument records the size of an assembled document
func (m *Metrics) RecordDocument(size int) {
	m.DocumentBytes.Observe(float64(size))
}

// SetPool records pool utilisation
func (m *Metrics) SetPool(size, inUse int) {
	m.PoolSize.Set(float64(size))
	m.PoolInUse.Set(float64(inUse))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
