package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mescon/Unqlocked/internal/highlight"
)

// MetricsService exposes Prometheus metrics for the clock faces
type MetricsService struct {
	gatherer prometheus.Gatherer

	// Counters
	ticksTotal     *prometheus.CounterVec
	highlightTotal *prometheus.CounterVec
	facesStarted   *prometheus.CounterVec

	// Gauges
	sleepSeconds     *prometheus.GaugeVec
	connectedClients prometheus.Gauge
	activeFaces      prometheus.Gauge

	// Histograms
	stepDuration *prometheus.HistogramVec
}

// NewMetricsService creates the metrics and registers them on reg.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewMetricsService(reg prometheus.Registerer, gatherer prometheus.Gatherer) *MetricsService {
	m := &MetricsService{
		gatherer: gatherer,

		ticksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unqlocked_ticks_total",
				Help: "Total number of states visited by face",
			},
			[]string{"face"},
		),

		highlightTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unqlocked_highlight_total",
				Help: "Total number of highlight passes by outcome",
			},
			[]string{"outcome"}, // strict, relaxed, partial
		),

		facesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unqlocked_faces_started_total",
				Help: "Total number of state machines started by face",
			},
			[]string{"face"},
		),

		sleepSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "unqlocked_sleep_seconds",
				Help: "Length of the most recent sleep until the next state",
			},
			[]string{"face"},
		),

		connectedClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "unqlocked_connected_clients",
				Help: "Number of browser surfaces currently connected",
			},
		),

		activeFaces: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "unqlocked_active_faces",
				Help: "Number of state machines currently running",
			},
		),

		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "unqlocked_step_duration_seconds",
				Help:    "Time spent solving, highlighting and drawing one state",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			},
			[]string{"face"},
		),
	}

	reg.MustRegister(
		m.ticksTotal,
		m.highlightTotal,
		m.facesStarted,
		m.sleepSeconds,
		m.connectedClients,
		m.activeFaces,
		m.stepDuration,
	)

	return m
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveStep records one visited state and how long drawing it took.
func (m *MetricsService) ObserveStep(face string, d time.Duration) {
	m.ticksTotal.WithLabelValues(face).Inc()
	m.stepDuration.WithLabelValues(face).Observe(d.Seconds())
}

// ObserveSleep records the wait until the next state.
func (m *MetricsService) ObserveSleep(face string, d time.Duration) {
	m.sleepSeconds.WithLabelValues(face).Set(d.Seconds())
}

// RecordHighlight counts a highlight pass by how it ended.
func (m *MetricsService) RecordHighlight(outcome highlight.Outcome) {
	m.highlightTotal.WithLabelValues(string(outcome)).Inc()
}

// FaceStarted tracks a state machine starting.
func (m *MetricsService) FaceStarted(face string) {
	m.facesStarted.WithLabelValues(face).Inc()
	m.activeFaces.Inc()
}

// FaceStopped tracks a state machine finishing.
func (m *MetricsService) FaceStopped() {
	m.activeFaces.Dec()
}

// SetConnectedClients reports the number of connected browser surfaces.
func (m *MetricsService) SetConnectedClients(n int) {
	m.connectedClients.Set(float64(n))
}
