package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_scene"

// Metrics holds the Prometheus collectors for loading, rebuilding and rendering.
type Metrics struct {
	EventsLoaded prometheus.Gauge

	RebuildsTotal   *prometheus.CounterVec // labels: outcome={ok,error,busy}
	RebuildDuration prometheus.Histogram
	RebuildsDropped prometheus.Counter

	LiveSpheres     prometheus.Gauge
	SpheresCreated  prometheus.Counter
	SpheresDisposed prometheus.Counter

	// MagnitudeEvents is the diagnostic histogram of primary magnitudes over
	// the full event set. Label "none" counts events without a reading.
	MagnitudeEvents *prometheus.GaugeVec // labels: magnitude

	FramesRendered prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_loaded",
			Help:      "Number of events held by the event store.",
		}),
		RebuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Scene rebuilds by outcome.",
		}, []string{"outcome"}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of a complete teardown and build cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		RebuildsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_requests_dropped_total",
			Help:      "Rebuild requests ignored because one was already queued.",
		}),
		LiveSpheres: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_spheres",
			Help:      "Sphere handles currently owned by the synchronizer.",
		}),
		SpheresCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spheres_created_total",
			Help:      "Sphere handles created.",
		}),
		SpheresDisposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spheres_disposed_total",
			Help:      "Sphere handles disposed.",
		}),
		MagnitudeEvents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "magnitude_events",
			Help:      "Events per primary magnitude value across the loaded set.",
		}, []string{"magnitude"}),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Render loop frames produced.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EventsLoaded,
		m.RebuildsTotal,
		m.RebuildDuration,
		m.RebuildsDropped,
		m.LiveSpheres,
		m.SpheresCreated,
		m.SpheresDisposed,
		m.MagnitudeEvents,
		m.FramesRendered,
	}
}
