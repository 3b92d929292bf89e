package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/store"
	"github.com/mosaicnetworks/intree/src/telemetry"
	"github.com/mosaicnetworks/intree/src/tree"
)

// Node is the routing engine of a single node.
type Node struct {
	state

	conf    *Config
	logger  *logrus.Entry
	metrics *telemetry.NodeMetrics

	id        peers.NodeID
	neighbors []peers.NodeID

	trans net.Transport
	store store.Store

	tree   *tree.InTree
	paths  *tree.PathCache
	live   *liveness
	outbox *Outbox

	tick          int
	sendIntreeNow bool

	dest        peers.NodeID
	outstanding bool
	message     string

	stats stats

	snapLock sync.RWMutex
	snapshot Snapshot

	controlTimer *ControlTimer
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	start time.Time
}

// NewNode is a factory method that returns a Node instance.
func NewNode(conf *Config, trans net.Transport, store store.Store) *Node {
	logger := conf.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	node := &Node{
		conf:         conf,
		logger:       logger.WithField("this_id", conf.ID),
		metrics:      conf.Metrics,
		id:           conf.ID,
		neighbors:    conf.Neighbors,
		trans:        trans,
		store:        store,
		tree:         tree.NewInTree(conf.ID, conf.Size),
		paths:        tree.NewPathCache(conf.ID),
		live:         newLiveness(conf.Size),
		outbox:       NewOutbox(),
		dest:         peers.None,
		controlTimer: NewFixedControlTimer(),
		shutdownCh:   make(chan struct{}),
	}

	if conf.Dest.Valid(conf.Size) && conf.Dest != conf.ID {
		if err := net.CheckPayload(conf.Message); err != nil {
			node.logger.WithError(err).Error("Ignoring configured message")
		} else {
			node.dest = conf.Dest
			node.outstanding = true
			node.message = conf.Message
		}
	}

	node.publish()

	return node
}

// ID returns the id of the node.
func (n *Node) ID() peers.NodeID {
	return n.id
}

// Store returns the received-record store of the node.
func (n *Node) Store() store.Store {
	return n.store
}

// State returns the lifecycle state of the node.
func (n *Node) State() State {
	return n.getState()
}

// Send sets a new outstanding message, replacing any previous one. It must
// not be called concurrently with Tick. Invalid destinations and payloads
// containing line breaks are rejected and leave the outstanding message
// untouched.
func (n *Node) Send(dest peers.NodeID, message string) error {
	if !dest.Valid(n.conf.Size) || dest == n.id {
		return fmt.Errorf("invalid destination %d", dest)
	}
	if err := net.CheckPayload(message); err != nil {
		return err
	}
	n.dest = dest
	n.message = message
	n.outstanding = true
	return nil
}

// Tick executes one step of the node: drain and dispatch inbound records,
// reconcile liveness on epoch boundaries, send whatever is due, and flush.
// The tick counter advances exactly once per call.
func (n *Node) Tick() error {
	if n.tick == 0 && n.start.IsZero() {
		n.start = time.Now()
	}

	lines, err := n.trans.ReceiveAll(n.id)
	if err != nil {
		return err
	}
	for _, l := range lines {
		n.dispatch(l)
	}

	if n.tick > 0 && n.tick%n.conf.LivenessEpoch == 0 {
		n.reconcileEpoch()
	}

	if n.tick%n.conf.HelloPeriod == 0 {
		n.sendHello()
	}

	if n.tick%n.conf.IntreePeriod == 0 || n.sendIntreeNow {
		n.announce()
	}

	if n.outstanding && n.tick%n.conf.DataPeriod == 0 {
		n.originate()
	}

	n.flush()

	n.tick++
	n.metrics.Tick()
	n.metrics.Tree(n.tree.Len(), n.live.incoming.Len())
	n.publish()

	return nil
}

// Ticks returns the number of ticks executed so far.
func (n *Node) Ticks() int {
	return n.tick
}

// Run drives Tick every TickInterval until Duration ticks have executed, the
// context is cancelled, or Shutdown is called. A failing tick stops the node
// and its error is returned.
func (n *Node) Run(ctx context.Context) error {
	n.setState(Running)
	defer n.setState(Shutdown)

	go n.controlTimer.Run(n.conf.TickInterval)
	defer n.controlTimer.Shutdown()

	n.logger.WithFields(logrus.Fields{
		"neighbors": n.neighbors,
		"duration":  n.conf.Duration,
		"interval":  n.conf.TickInterval,
	}).Debug("Run")

	for {
		if err := n.Tick(); err != nil {
			n.logger.WithError(err).Error("Tick")
			return err
		}

		if n.conf.Duration > 0 && n.tick >= n.conf.Duration {
			n.logStats()
			return nil
		}

		select {
		case <-n.controlTimer.tickCh:
		case <-ctx.Done():
			n.logStats()
			return nil
		case <-n.shutdownCh:
			n.logStats()
			return nil
		}
	}
}

// Shutdown stops Run. The transport and store are not closed; they belong to
// whoever created the node.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.logger.Debug("Shutdown")
		close(n.shutdownCh)
	})
}

func (n *Node) dispatch(line string) {
	rec, err := net.Parse(line, n.conf.Size)
	if err != nil {
		n.stats.malformed++
		n.metrics.Malformed()
		n.logger.WithError(err).Debug("Discarding record")
		return
	}

	n.metrics.Received(rec.Kind().String())

	switch r := rec.(type) {
	case net.Hello:
		n.onHello(r)
	case net.Intree:
		n.onIntree(r)
	case net.Data:
		n.onData(r)
	}
}

func (n *Node) flush() {
	n.outbox.Flush(func(to peers.NodeID, rec net.Record) {
		if err := n.trans.Send(n.id, to, rec.String()); err != nil {
			n.stats.sendErrors++
			n.logger.WithError(err).WithField("to", to).Debug("Send")
			return
		}
		n.stats.sent++
		n.metrics.Sent(rec.Kind().String())
	})
}

func (n *Node) broadcast(rec net.Record) {
	for _, nb := range n.neighbors {
		n.outbox.Push(n.id, nb, rec)
	}
}
