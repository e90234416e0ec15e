package observability

import (
	"errors"
	"net/http"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "framegraph"

// StatsFunc reports the current store counts.
type StatsFunc func() store.Stats

// Metrics holds the Prometheus collectors for one graph.
type Metrics struct {
	registry *prometheus.Registry

	EdgesUpserted *prometheus.CounterVec
	EdgesRejected *prometheus.CounterVec
	Resolves      *prometheus.CounterVec
	Resets        prometheus.Counter
	Notifications prometheus.Counter
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EdgesUpserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_upserted_total",
			Help:      "Edges accepted by the store, by classification and whether the edge was new.",
		}, []string{"classification", "created"}),
		EdgesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_rejected_total",
			Help:      "Edge updates rejected by the store, by reason.",
		}, []string{"reason"}),
		Resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolves_total",
			Help:      "Transform resolutions, by outcome.",
		}, []string{"outcome"}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Times the graph was cleared.",
		}),
		Notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Coalesced change signals emitted.",
		}),
	}
	m.registry.MustRegister(m.EdgesUpserted, m.EdgesRejected, m.Resolves, m.Resets, m.Notifications)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterStats exposes store counts as gauges evaluated at scrape time.
func (m *Metrics) RegisterStats(stats StatsFunc) {
	gauge := func(name, help string, pick func(store.Stats) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(pick(stats())) })
	}
	m.registry.MustRegister(
		gauge("frames", "Known frames.", func(s store.Stats) int { return s.Frames }),
		gauge("durable_edges", "Edges in the durable pool.", func(s store.Stats) int { return s.Durable }),
		gauge("expiring_edges", "Edges in the expiring pool.", func(s store.Stats) int { return s.Expiring }),
		gauge("stale_edges", "Expiring edges outside the expiry window.", func(s store.Stats) int { return s.Stale }),
	)
}

// Hooks returns hooks that record into the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnEdgeUpserted: func(e domain.Edge, created bool) {
			c := "false"
			if created {
				c = "true"
			}
			m.EdgesUpserted.WithLabelValues(string(e.Classification), c).Inc()
		},
		OnEdgeRejected: func(_ domain.EdgeUpdate, err error) {
			m.EdgesRejected.WithLabelValues(reason(err)).Inc()
		},
		OnResolve: func(_, _ string, err error) {
			m.Resolves.WithLabelValues(reason(err)).Inc()
		},
		OnReset: func() {
			m.Resets.Inc()
		},
		OnNotify: func() {
			m.Notifications.Inc()
		},
	}
}

func reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMalformedEdge):
		return "malformed"
	case errors.Is(err, domain.ErrInactive):
		return "inactive"
	case errors.Is(err, domain.ErrUnknownFrame):
		return "unknown_frame"
	case errors.Is(err, domain.ErrNoPath):
		return "no_path"
	case errors.Is(err, domain.ErrInconsistentPath):
		return "inconsistent_path"
	}
	return "other"
}
