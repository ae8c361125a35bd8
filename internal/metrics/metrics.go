// Package metrics exposes Prometheus collectors for editor activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "threatforge"

// Metrics groups the collectors recorded by the diagram service
type Metrics struct {
	registry *prometheus.Registry

	Mutations   *prometheus.CounterVec
	Rejected    *prometheus.CounterVec
	Rebuilds    prometheus.Counter
	RebuildTime prometheus.Histogram
	Saves       *prometheus.CounterVec
	Suggested   prometheus.Counter
	Nodes       prometheus.Gauge
	Edges       prometheus.Gauge
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Applied document operations by operation name",
			},
			[]string{"op"},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_rejected_total",
				Help:      "Document operations that returned an error",
			},
			[]string{"op"},
		),
		Rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Full graph rebuilds from the model",
		}),
		RebuildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Time spent rebuilding the graph",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Save attempts by target and result",
			},
			[]string{"target", "result"},
		),
		Suggested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "threats_suggested_total",
			Help:      "Threat candidates produced by the analyzer",
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the current graph",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the current graph",
		}),
	}

	m.registry.MustRegister(
		m.Mutations, m.Rejected, m.Rebuilds, m.RebuildTime,
		m.Saves, m.Suggested, m.Nodes, m.Edges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRebuild records one rebuild and the resulting graph size
func (m *Metrics) ObserveRebuild(start time.Time, nodes, edges int) {
	m.Rebuilds.Inc()
	m.RebuildTime.Observe(time.Since(start).Seconds())
	m.Nodes.Set(float64(nodes))
	m.Edges.Set(float64(edges))
}

// ObserveSave records the result of writing the model or a layout
func (m *Metrics) ObserveSave(target string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Saves.WithLabelValues(target, result).Inc()
}
