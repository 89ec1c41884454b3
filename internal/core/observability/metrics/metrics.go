// Package metrics holds the prometheus collectors of the simulation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "guardai"

type Metrics struct {
	Ticks        *prometheus.CounterVec
	NodeErrors   *prometheus.CounterVec
	Detections   prometheus.Counter
	Attacks      prometheus.Counter
	TickDuration prometheus.Histogram
	Frames       prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what most tests want.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tree_ticks_total",
			Help:      "Root ticks by resulting status.",
		}, []string{"status"}),
		NodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_errors_total",
			Help:      "Nodes that originated an Error status.",
		}, []string{"node"}),
		Detections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Successful target detections.",
		}),
		Attacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attacks_total",
			Help:      "Attacks performed by guards.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tree_tick_seconds",
			Help:      "Wall time of a single guard tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Simulation frames stepped.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Ticks, m.NodeErrors, m.Detections, m.Attacks, m.TickDuration, m.Frames} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveTick(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Ticks.WithLabelValues(status).Inc()
	m.TickDuration.Observe(d.Seconds())
}

func (m *Metrics) NodeError(node string) {
	if m == nil {
		return
	}
	m.NodeErrors.WithLabelValues(node).Inc()
}

func (m *Metrics) Detection() {
	if m != nil {
		m.Detections.Inc()
	}
}

func (m *Metrics) Attack() {
	if m != nil {
		m.Attacks.Inc()
	}
}

func (m *Metrics) Frame() {
	if m != nil {
		m.Frames.Inc()
	}
}
