package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tick results used as the "result" label of fangraph_ticks_total.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the engine collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TicksTotal          *prometheus.CounterVec
	TicksSkippedTotal   prometheus.Counter
	TickDuration        prometheus.Histogram
	HardwareWritesTotal *prometheus.CounterVec
	HardwareErrorsTotal *prometheus.CounterVec
	ForcedAutoTotal     prometheus.Counter
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.TicksTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fangraph_ticks_total",
			Help: "Total number of update ticks",
		},
		[]string{"result"}, // ok, error
	)

	m.TicksSkippedTotal = promauto.With(m.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fangraph_ticks_skipped_total",
			Help: "Ticks rejected because another tick was in progress",
		},
	)

	m.TickDuration = promauto.With(m.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fangraph_tick_duration_seconds",
			Help:    "Duration of update ticks in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	m.HardwareWritesTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fangraph_hardware_writes_total",
			Help: "Successful hardware writes",
		},
		[]string{"op"}, // set_mode, set_value
	)

	m.HardwareErrorsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fangraph_hardware_errors_total",
			Help: "Failed hardware operations",
		},
		[]string{"op"}, // refresh, read, set_mode, set_value, shutdown
	)

	m.ForcedAutoTotal = promauto.With(m.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fangraph_forced_auto_total",
			Help: "Controls forced back to Auto by the engine",
		},
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTick records a completed tick with its duration.
func (m *Metrics) RecordTick(err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.TicksTotal.WithLabelValues(result).Inc()
	m.TickDuration.Observe(duration.Seconds())
}

// RecordSkippedTick records a tick rejected as overlapping.
func (m *Metrics) RecordSkippedTick() {
	if m == nil {
		return
	}
	m.TicksSkippedTotal.Inc()
}

// RecordHardwareWrite records a successful mode change or duty cycle write.
func (m *Metrics) RecordHardwareWrite(op string) {
	if m == nil {
		return
	}
	m.HardwareWritesTotal.WithLabelValues(op).Inc()
}

// RecordHardwareError records a failed bridge operation.
func (m *Metrics) RecordHardwareError(op string) {
	if m == nil {
		return
	}
	m.HardwareErrorsTotal.WithLabelValues(op).Inc()
}

// RecordForcedAuto records a control forced back to Auto.
func (m *Metrics) RecordForcedAuto() {
	if m == nil {
		return
	}
	m.ForcedAutoTotal.Inc()
}

// WriteToTextfile dumps the collectors in the textfile collector format.
// The file is written atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
