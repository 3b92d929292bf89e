// Package telemetry exposes Prometheus metrics for routing nodes.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mosaicnetworks/intree/src/peers"
)

const namespace = "intree"

// Data outcomes.
const (
	DataOriginated = "originated"
	DataRelayed    = "relayed"
	DataDelivered  = "delivered"
	DataRerouted   = "rerouted"
	DataMisrouted  = "misrouted"
	DataDropped    = "dropped"
)

// Metrics holds a registry and the collectors of every node sharing it. All
// node metrics are labeled by node id.
type Metrics struct {
	Registry *prometheus.Registry

	ticks           *prometheus.CounterVec
	sent            *prometheus.CounterVec
	received        *prometheus.CounterVec
	malformed       *prometheus.CounterVec
	data            *prometheus.CounterVec
	merges          *prometheus.CounterVec
	neighborDeaths  *prometheus.CounterVec
	treeNodes       *prometheus.GaugeVec
	liveNeighbors   *prometheus.GaugeVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Number of ticks executed.",
			},
			[]string{"node"},
		),
		sent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_sent_total",
				Help:      "Records handed to the transport, by type.",
			},
			[]string{"node", "type"},
		),
		received: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_received_total",
				Help:      "Well-formed records received, by type.",
			},
			[]string{"node", "type"},
		),
		malformed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_malformed_total",
				Help:      "Received lines discarded because they could not be parsed.",
			},
			[]string{"node"},
		),
		data: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_total",
				Help:      "Data records handled, by outcome.",
			},
			[]string{"node", "outcome"},
		),
		merges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tree_merges_total",
				Help:      "Intree merges, by whether the local tree changed.",
			},
			[]string{"node", "changed"},
		),
		neighborDeaths: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "neighbor_deaths_total",
				Help:      "Neighbors declared dead at an epoch boundary.",
			},
			[]string{"node"},
		),
		treeNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tree_nodes",
				Help:      "Number of nodes in the local in-tree, root included.",
			},
			[]string{"node"},
		),
		liveNeighbors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_neighbors",
				Help:      "Size of the incoming neighbor set.",
			},
			[]string{"node"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"op", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"op"},
		),
	}

	m.Registry.MustRegister(
		m.ticks,
		m.sent,
		m.received,
		m.malformed,
		m.data,
		m.merges,
		m.neighborDeaths,
		m.treeNodes,
		m.liveNeighbors,
		m.requestsTotal,
		m.requestDuration,
	)

	return m
}

// Handler exposes the registry. Mount it with mux.Handle("/metrics", m.Handler()).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Node returns the recorder used by node id.
func (m *Metrics) Node(id peers.NodeID) *NodeMetrics {
	label := prometheus.Labels{"node": id.String()}
	return &NodeMetrics{
		ticks:          m.ticks.With(label),
		sent:           m.sent.MustCurryWith(label),
		received:       m.received.MustCurryWith(label),
		malformed:      m.malformed.With(label),
		data:           m.data.MustCurryWith(label),
		merges:         m.merges.MustCurryWith(label),
		neighborDeaths: m.neighborDeaths.With(label),
		treeNodes:      m.treeNodes.With(label),
		liveNeighbors:  m.liveNeighbors.With(label),
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler to record metrics under the provided "op"
// label.
func (m *Metrics) Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		m.requestsTotal.WithLabelValues(op, class).Inc()
		m.requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}

// NodeMetrics records the activity of a single node. A nil *NodeMetrics
// records nothing.
type NodeMetrics struct {
	ticks          prometheus.Counter
	sent           *prometheus.CounterVec
	received       *prometheus.CounterVec
	malformed      prometheus.Counter
	data           *prometheus.CounterVec
	merges         *prometheus.CounterVec
	neighborDeaths prometheus.Counter
	treeNodes      prometheus.Gauge
	liveNeighbors  prometheus.Gauge
}

// Tick ...
func (n *NodeMetrics) Tick() {
	if n == nil {
		return
	}
	n.ticks.Inc()
}

// Sent counts a record of the given type handed to the transport.
func (n *NodeMetrics) Sent(kind string) {
	if n == nil {
		return
	}
	n.sent.WithLabelValues(kind).Inc()
}

// Received counts a well-formed record of the given type.
func (n *NodeMetrics) Received(kind string) {
	if n == nil {
		return
	}
	n.received.WithLabelValues(kind).Inc()
}

// Malformed ...
func (n *NodeMetrics) Malformed() {
	if n == nil {
		return
	}
	n.malformed.Inc()
}

// Data counts a Data record outcome.
func (n *NodeMetrics) Data(outcome string) {
	if n == nil {
		return
	}
	n.data.WithLabelValues(outcome).Inc()
}

// Merge counts an Intree merge.
func (n *NodeMetrics) Merge(changed bool) {
	if n == nil {
		return
	}
	n.merges.WithLabelValues(strconv.FormatBool(changed)).Inc()
}

// NeighborDeaths ...
func (n *NodeMetrics) NeighborDeaths(count int) {
	if n == nil || count == 0 {
		return
	}
	n.neighborDeaths.Add(float64(count))
}

// Tree records the size of the local tree and neighbor set.
func (n *NodeMetrics) Tree(nodes, neighbors int) {
	if n == nil {
		return
	}
	n.treeNodes.Set(float64(nodes))
	n.liveNeighbors.Set(float64(neighbors))
}
