// Package sim runs a whole network of routing nodes in a single process.
//
// A Network wires one node per topology member to a shared in-memory
// transport. It can be stepped deterministically, every live node ticking
// once per step in ascending id order, or run concurrently with one goroutine
// per node. Nodes can be killed to exercise neighbor liveness.
package sim

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mosaicnetworks/intree/src/config"
	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/node"
	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/store"
	"github.com/mosaicnetworks/intree/src/telemetry"
	"github.com/mosaicnetworks/intree/src/tree"
)

// Network is a set of nodes sharing an in-memory transport.
type Network struct {
	conf      *config.Config
	topology  *peers.Topology
	transport *net.InmemTransport
	metrics   *telemetry.Metrics
	nodes     []*node.Node
	byID      map[peers.NodeID]*node.Node

	deadLock sync.Mutex
	dead     *peers.NodeSet

	logger *logrus.Entry
}

// NewNetwork creates a node for every member of topo. The node conf.NodeID
// gets conf.Message to send to conf.Dest, if any.
func NewNetwork(conf *config.Config, topo *peers.Topology) (*Network, error) {
	if conf.Symmetric {
		topo = topo.Symmetric()
	}

	n := &Network{
		conf:      conf,
		topology:  topo,
		transport: net.NewInmemTransport(conf.NumNodes),
		metrics:   telemetry.NewMetrics(),
		byID:      make(map[peers.NodeID]*node.Node),
		dead:      peers.NewNodeSet(conf.NumNodes),
		logger:    conf.Logger(),
	}
	n.transport.ConnectTopology(topo)

	for _, id := range topo.Nodes() {
		st, err := n.newStore(id)
		if err != nil {
			n.Close()
			return nil, err
		}

		nc := node.NewConfig(conf, id, topo.Neighbors(id))
		nc.Metrics = n.metrics.Node(id)
		if dest, ok := conf.Destination(); ok && id == conf.ID() {
			nc.Dest = dest
			nc.Message = conf.Message
		}

		nd := node.NewNode(nc, n.transport, st)
		n.nodes = append(n.nodes, nd)
		n.byID[id] = nd
	}

	n.logger.WithFields(logrus.Fields{
		"nodes": len(n.nodes),
		"links": len(topo.Links()),
	}).Debug("Network created")

	return n, nil
}

func (n *Network) newStore(id peers.NodeID) (store.Store, error) {
	switch n.conf.Store {
	case config.StoreBadger:
		return store.NewBadgerStore(
			filepath.Join(n.conf.DatabaseDir, fmt.Sprintf("node_%d", id)),
			n.conf.NodeLogger(id),
		)
	case config.StoreFile:
		return store.NewFileStore(n.conf.DataDir, id)
	default:
		return store.NewInmemStore(), nil
	}
}

// Topology returns the topology the network was built with.
func (n *Network) Topology() *peers.Topology {
	return n.topology
}

// Transport returns the shared transport.
func (n *Network) Transport() *net.InmemTransport {
	return n.transport
}

// Metrics returns the registry shared by all nodes.
func (n *Network) Metrics() *telemetry.Metrics {
	return n.metrics
}

// Nodes returns all nodes, dead ones included, in ascending id order.
func (n *Network) Nodes() []*node.Node {
	return n.nodes
}

// Node returns the node with the given id, or nil.
func (n *Network) Node(id peers.NodeID) *node.Node {
	return n.byID[id]
}

// Observe registers fn on the shared transport.
func (n *Network) Observe(fn net.Observer) {
	n.transport.Observe(fn)
}

func (n *Network) isDead(id peers.NodeID) bool {
	n.deadLock.Lock()
	defer n.deadLock.Unlock()
	return n.dead.Contains(id)
}

// Kill silences a node: it stops ticking and all its queues are removed, so
// its neighbors stop hearing from it.
func (n *Network) Kill(id peers.NodeID) {
	nd, ok := n.byID[id]
	if !ok {
		return
	}

	n.deadLock.Lock()
	n.dead.Add(id)
	n.deadLock.Unlock()

	for _, nb := range n.topology.Neighbors(id) {
		n.transport.Disconnect(id, nb)
	}
	nd.Shutdown()

	n.logger.WithField("id", id).Info("Killed node")
}

// Step ticks every live node once, in ascending id order.
func (n *Network) Step() error {
	for _, nd := range n.nodes {
		if n.isDead(nd.ID()) {
			continue
		}
		if err := nd.Tick(); err != nil {
			return errors.Wrapf(err, "node %d", nd.ID())
		}
	}
	return nil
}

// Steps calls Step count times.
func (n *Network) Steps(count int) error {
	for i := 0; i < count; i++ {
		if err := n.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Run runs every live node in its own goroutine until they all complete
// their duration or ctx is cancelled. The first node error cancels the
// others and is returned.
func (n *Network) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, nd := range n.nodes {
		if n.isDead(nd.ID()) {
			continue
		}
		nd := nd
		g.Go(func() error {
			if err := nd.Run(gctx); err != nil {
				return errors.Wrapf(err, "node %d", nd.ID())
			}
			return nil
		})
	}
	return g.Wait()
}

// Converged reports whether every live node's tree contains exactly the live
// nodes it can reach, each at its shortest hop distance.
func (n *Network) Converged() bool {
	return n.Check() == nil
}

// Check is Converged with an explanation.
func (n *Network) Check() error {
	n.deadLock.Lock()
	dead := n.dead.Clone()
	n.deadLock.Unlock()

	for _, nd := range n.nodes {
		id := nd.ID()
		if dead.Contains(id) {
			continue
		}

		snap := nd.Snapshot()
		t := tree.FromEdges(id, n.conf.NumNodes, snap.Edges)
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "node %d", id)
		}

		want := distances(n.topology, id, dead)
		got := t.Levels()
		for v := range want {
			if want[v] != got[v] {
				return fmt.Errorf("node %d: node %d at depth %d, shortest distance %d (tree %s)",
					id, v, got[v], want[v], t)
			}
		}
	}
	return nil
}

// Close releases the transport and every store.
func (n *Network) Close() error {
	var result error

	for _, nd := range n.nodes {
		nd.Shutdown()
		if err := nd.Store().Close(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "node %d store", nd.ID()))
		}
	}

	if err := n.transport.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "transport"))
	}

	return result
}
