// Package metrics exposes Prometheus collectors for port reconciliation and
// library storage.
package metrics

import (
	"net/http"
	"time"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptdrafter"

// Metrics implements editor.Observer and library.Observer.
type Metrics struct {
	registry *prometheus.Registry

	reconciles   *prometheus.CounterVec
	portsChanged *prometheus.CounterVec
	reconcileDur *prometheus.HistogramVec
	nodesActive  prometheus.Gauge
	storeOps     *prometheus.CounterVec
	storeDur     *prometheus.HistogramVec
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reconciles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconciliations_total",
				Help:      "Reconciliation passes by node kind and whether they changed any port.",
			},
			[]string{"kind", "changed"},
		),
		portsChanged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ports_changed_total",
				Help:      "Dynamic ports attached or detached.",
			},
			[]string{"kind", "op"},
		),
		reconcileDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconcile_duration_seconds",
				Help:      "Duration of a reconciliation pass.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"kind"},
		),
		nodesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes_active",
			Help:      "Nodes registered with the editor host.",
		}),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "library_operations_total",
				Help:      "Library store operations by operation, category and result.",
			},
			[]string{"op", "category", "result"},
		),
		storeDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "library_operation_duration_seconds",
				Help:      "Duration of library store operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(
		m.reconciles, m.portsChanged, m.reconcileDur, m.nodesActive, m.storeOps, m.storeDur,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Reconciled records a reconciliation pass.
func (m *Metrics) Reconciled(kind domain.NodeKind, edit domain.PortEdit, took time.Duration) {
	changed := "false"
	if !edit.IsEmpty() {
		changed = "true"
	}
	m.reconciles.WithLabelValues(string(kind), changed).Inc()
	m.portsChanged.WithLabelValues(string(kind), "add").Add(float64(len(edit.ToAdd)))
	m.portsChanged.WithLabelValues(string(kind), "remove").Add(float64(len(edit.ToRemove)))
	m.reconcileDur.WithLabelValues(string(kind)).Observe(took.Seconds())
}

// NodesActive sets the live node gauge.
func (m *Metrics) NodesActive(n int) {
	m.nodesActive.Set(float64(n))
}

// StoreOp records a library store operation.
func (m *Metrics) StoreOp(op string, category domain.Category, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, string(category), result).Inc()
	m.storeDur.WithLabelValues(op).Observe(took.Seconds())
}
