package node

import (
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/tree"
)

type stats struct {
	sent          int
	sendErrors    int
	malformed     int
	hellos        int
	announcements int
	merges        int
	changes       int
	deaths        int
	originated    int
	relayed       int
	delivered     int
	dropped       int
	misrouted     int
}

// Snapshot is a read-only copy of the routing state, published at the end of
// every tick.
type Snapshot struct {
	ID          peers.NodeID
	Tick        int
	State       string
	Edges       []tree.Edge
	TreeNodes   []peers.NodeID
	Neighbors   []peers.NodeID
	Paths       map[peers.NodeID][]peers.NodeID
	Dest        peers.NodeID
	Outstanding bool
	Stats       map[string]string
}

// publish copies the routing state into the snapshot. Only the goroutine
// running Tick calls it.
func (n *Node) publish() {
	paths := make(map[peers.NodeID][]peers.NodeID)
	for _, nb := range n.paths.Neighbors() {
		p := n.paths.Path(nb)
		cp := make([]peers.NodeID, len(p))
		copy(cp, p)
		paths[nb] = cp
	}

	snap := Snapshot{
		ID:          n.id,
		Tick:        n.tick,
		State:       n.getState().String(),
		Edges:       n.tree.Edges(),
		TreeNodes:   n.tree.Nodes(),
		Neighbors:   n.live.incoming.IDs(),
		Paths:       paths,
		Dest:        n.dest,
		Outstanding: n.outstanding,
		Stats:       n.statsMap(),
	}

	n.snapLock.Lock()
	n.snapshot = snap
	n.snapLock.Unlock()
}

// Snapshot returns the state published at the end of the last tick. It is
// safe to call from any goroutine.
func (n *Node) Snapshot() Snapshot {
	n.snapLock.RLock()
	s := n.snapshot
	n.snapLock.RUnlock()
	s.State = n.getState().String()
	return s
}

// GetStats returns the counters of the last published snapshot.
func (n *Node) GetStats() map[string]string {
	return n.Snapshot().Stats
}

func (n *Node) statsMap() map[string]string {
	var perTick float64
	if n.tick > 0 && !n.start.IsZero() {
		perTick = float64(time.Since(n.start).Milliseconds()) / float64(n.tick)
	}

	return map[string]string{
		"id":              n.id.String(),
		"tick":            strconv.Itoa(n.tick),
		"tree_nodes":      strconv.Itoa(n.tree.Len()),
		"live_neighbors":  strconv.Itoa(n.live.incoming.Len()),
		"records_sent":    strconv.Itoa(n.stats.sent),
		"send_errors":     strconv.Itoa(n.stats.sendErrors),
		"malformed":       strconv.Itoa(n.stats.malformed),
		"hellos":          strconv.Itoa(n.stats.hellos),
		"announcements":   strconv.Itoa(n.stats.announcements),
		"merges":          strconv.Itoa(n.stats.merges),
		"tree_changes":    strconv.Itoa(n.stats.changes),
		"neighbor_deaths": strconv.Itoa(n.stats.deaths),
		"data_originated": strconv.Itoa(n.stats.originated),
		"data_relayed":    strconv.Itoa(n.stats.relayed),
		"data_delivered":  strconv.Itoa(n.stats.delivered),
		"data_dropped":    strconv.Itoa(n.stats.dropped),
		"data_misrouted":  strconv.Itoa(n.stats.misrouted),
		"ms_per_tick":     strconv.FormatFloat(perTick, 'f', 2, 64),
	}
}

func (n *Node) logStats() {
	s := n.GetStats()
	n.logger.WithFields(logrus.Fields{
		"tick":            s["tick"],
		"tree_nodes":      s["tree_nodes"],
		"live_neighbors":  s["live_neighbors"],
		"records_sent":    s["records_sent"],
		"tree_changes":    s["tree_changes"],
		"data_relayed":    s["data_relayed"],
		"data_delivered":  s["data_delivered"],
		"data_dropped":    s["data_dropped"],
		"neighbor_deaths": s["neighbor_deaths"],
	}).Info("Stats")
}
