package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Organization metrics
	TabsOpen     prometheus.Gauge
	TabsCreated  prometheus.Counter
	RealmsActive prometheus.Gauge
	DocksActive  prometheus.Gauge

	// Surface metrics
	SurfacesVisible  prometheus.Gauge
	SurfacesHidden   prometheus.Gauge
	SurfacesMounting prometheus.Gauge
	SurfaceCrashes   prometheus.Counter

	// Shell operation metrics
	OpCalls    *prometheus.CounterVec
	OpDuration *prometheus.HistogramVec
	OpErrors   *prometheus.CounterVec

	// Agent metrics
	AgentCalls    *prometheus.CounterVec
	AgentDuration *prometheus.HistogramVec
	AgentErrors   *prometheus.CounterVec

	// Session metrics
	SnapshotsSaved    prometheus.Counter
	SnapshotsRestored prometheus.Counter

	// Gesture metrics
	Gestures *prometheus.CounterVec

	// Favicon metrics
	FaviconFetches *prometheus.CounterVec

	// Bridge metrics
	BridgeConnections prometheus.Gauge
	BridgeMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64
	TotalErrors       int64
	OpenTabs          int64
	ActiveConnections int64
	TotalDuration     float64 // sum of all request durations
	RequestCount      int64   // count for averaging
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Organization metrics
		TabsOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_tabs_open",
				Help: "Number of open tabs",
			},
		),
		TabsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_tabs_created_total",
				Help: "Total number of tabs created",
			},
		),
		RealmsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_realms_active",
				Help: "Number of realms",
			},
		),
		DocksActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_docks_active",
				Help: "Number of docks",
			},
		),

		// Surface metrics
		SurfacesVisible: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_surfaces_visible",
				Help: "Number of visible surfaces",
			},
		),
		SurfacesHidden: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_surfaces_hidden",
				Help: "Number of hidden mounted surfaces",
			},
		),
		SurfacesMounting: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_surfaces_mounting",
				Help: "Number of surfaces currently mounting",
			},
		),
		SurfaceCrashes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_surface_crashes_total",
				Help: "Total number of surface crashes",
			},
		),

		// Shell operation metrics
		OpCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_op_calls_total",
				Help: "Total number of shell operations",
			},
			[]string{"op", "status"},
		),
		OpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_op_duration_seconds",
				Help:    "Shell operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"op"},
		),
		OpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_op_errors_total",
				Help: "Total number of shell operation errors",
			},
			[]string{"op", "error_type"},
		),

		// Agent metrics
		AgentCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_agent_calls_total",
				Help: "Total number of agent calls",
			},
			[]string{"method", "status"},
		),
		AgentDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_agent_duration_seconds",
				Help:    "Agent call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method"},
		),
		AgentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_agent_errors_total",
				Help: "Total number of agent errors",
			},
			[]string{"method", "code"},
		),

		// Session metrics
		SnapshotsSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_snapshots_saved_total",
				Help: "Total number of session snapshots saved",
			},
		),
		SnapshotsRestored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_snapshots_restored_total",
				Help: "Total number of session snapshots restored",
			},
		),

		// Gesture metrics
		Gestures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_gestures_total",
				Help: "Total number of swipe gestures by outcome",
			},
			[]string{"outcome"},
		),

		// Favicon metrics
		FaviconFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_favicon_fetches_total",
				Help: "Total number of favicon fetches",
			},
			[]string{"status"},
		),

		// Bridge metrics
		BridgeConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_bridge_connections",
				Help: "Number of active bridge connections",
			},
		),
		BridgeMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_bridge_messages_total",
				Help: "Total number of bridge messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_uptime_seconds",
				Help: "Shell service uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOp records a shell operation
func (m *Metrics) RecordOp(op, status string, duration time.Duration) {
	m.OpCalls.WithLabelValues(op, status).Inc()
	m.OpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordOpError records a shell operation error
func (m *Metrics) RecordOpError(op, errorType string) {
	m.OpErrors.WithLabelValues(op, errorType).Inc()
}

// RecordAgentCall records an agent call
func (m *Metrics) RecordAgentCall(method, status string, duration time.Duration) {
	m.AgentCalls.WithLabelValues(method, status).Inc()
	m.AgentDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordAgentError records an agent error
func (m *Metrics) RecordAgentError(method, code string) {
	m.AgentErrors.WithLabelValues(method, code).Inc()
}

// RecordBridgeMessage records a bridge message
func (m *Metrics) RecordBridgeMessage(direction, msgType string) {
	m.BridgeMessages.WithLabelValues(direction, msgType).Inc()
}

// RecordGesture records a swipe gesture outcome
func (m *Metrics) RecordGesture(outcome string) {
	m.Gestures.WithLabelValues(outcome).Inc()
}

// RecordFaviconFetch records a favicon fetch outcome
func (m *Metrics) RecordFaviconFetch(status string) {
	m.FaviconFetches.WithLabelValues(status).Inc()
}

// SetTabsOpen sets the number of open tabs
func (m *Metrics) SetTabsOpen(count int) {
	m.TabsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenTabs = int64(count)
	m.mu.Unlock()
}

// IncTabsCreated increments the tabs created counter
func (m *Metrics) IncTabsCreated() {
	m.TabsCreated.Inc()
}

// SetRealmsActive sets the number of realms
func (m *Metrics) SetRealmsActive(count int) {
	m.RealmsActive.Set(float64(count))
}

// SetDocksActive sets the number of docks
func (m *Metrics) SetDocksActive(count int) {
	m.DocksActive.Set(float64(count))
}

// SetSurfaces sets the surface lifecycle gauges
func (m *Metrics) SetSurfaces(visible, hidden, mounting int) {
	m.SurfacesVisible.Set(float64(visible))
	m.SurfacesHidden.Set(float64(hidden))
	m.SurfacesMounting.Set(float64(mounting))
}

// IncSurfaceCrashes increments the surface crash counter
func (m *Metrics) IncSurfaceCrashes() {
	m.SurfaceCrashes.Inc()
}

// IncSnapshotsSaved increments the snapshots saved counter
func (m *Metrics) IncSnapshotsSaved() {
	m.SnapshotsSaved.Inc()
}

// IncSnapshotsRestored increments the snapshots restored counter
func (m *Metrics) IncSnapshotsRestored() {
	m.SnapshotsRestored.Inc()
}

// IncBridgeConnections increments bridge connections
func (m *Metrics) IncBridgeConnections() {
	m.BridgeConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecBridgeConnections decrements bridge connections
func (m *Metrics) DecBridgeConnections() {
	m.BridgeConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
