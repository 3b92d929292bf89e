package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNodeMetrics(t *testing.T) {
	m := NewMetrics()
	n0 := m.Node(0)
	n1 := m.Node(1)

	n0.Tick()
	n0.Tick()
	n1.Tick()
	n0.Sent("Hello")
	n0.Sent("Hello")
	n0.Data(DataDelivered)
	n1.Merge(true)
	n1.Merge(false)
	n1.Merge(false)
	n1.NeighborDeaths(2)
	n1.NeighborDeaths(0)
	n1.Tree(4, 2)

	body := scrape(t, m)
	for _, want := range []string{
		`intree_ticks_total{node="0"} 2`,
		`intree_ticks_total{node="1"} 1`,
		`intree_records_sent_total{node="0",type="Hello"} 2`,
		`intree_data_total{node="0",outcome="delivered"} 1`,
		`intree_tree_merges_total{changed="false",node="1"} 2`,
		`intree_tree_merges_total{changed="true",node="1"} 1`,
		`intree_neighbor_deaths_total{node="1"} 2`,
		`intree_tree_nodes{node="1"} 4`,
		`intree_live_neighbors{node="1"} 2`,
	} {
		assert.True(t, strings.Contains(body, want), want)
	}
}

func TestNilNodeMetrics(t *testing.T) {
	var n *NodeMetrics
	n.Tick()
	n.Sent("Data")
	n.Malformed()
	n.Tree(1, 0)
}

func TestInstrument(t *testing.T) {
	m := NewMetrics()
	m.Node(3).Received("Intree")

	h := m.Instrument("ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	body := scrape(t, m)
	assert.True(t, strings.Contains(body, `intree_records_received_total{node="3",type="Intree"} 1`), body)
	assert.True(t, strings.Contains(body, `intree_http_requests_total{op="ping",status="4xx"} 1`), body)
}
