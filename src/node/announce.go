package node

import (
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/net"
)

func (n *Node) sendHello() {
	n.stats.hellos++
	n.broadcast(net.Hello{From: n.id})
}

// announce broadcasts the local in-tree. Without live neighbors the tree is
// announced as the root alone.
func (n *Node) announce() {
	rec := net.Intree{RootedAt: n.id}
	if !n.live.incoming.Empty() {
		rec.Edges = n.tree.Edges()
	}

	n.logger.WithFields(logrus.Fields{
		"tick":  n.tick,
		"now":   n.sendIntreeNow,
		"edges": len(rec.Edges),
	}).Debug("Announce")

	n.sendIntreeNow = false
	n.stats.announcements++
	n.broadcast(rec)
}

func (n *Node) onHello(h net.Hello) {
	if h.From == n.id {
		return
	}
	n.live.onHello(h.From)
}

func (n *Node) onIntree(r net.Intree) {
	if r.RootedAt == n.id {
		return
	}

	n.live.onIntree(r.RootedAt)

	changed := n.tree.Merge(r.RootedAt, r.Edges)
	n.paths.Refresh(n.tree)

	n.stats.merges++
	n.metrics.Merge(changed)

	if changed {
		n.stats.changes++
		n.sendIntreeNow = true
		n.logger.WithFields(logrus.Fields{
			"from": r.RootedAt,
			"tree": n.tree.String(),
		}).Debug("Tree changed")
	}
}

// reconcileEpoch declares dead every live neighbor that was not heard from
// during the epoch, and prunes their branches.
func (n *Node) reconcileEpoch() {
	dead := n.live.reconcile()
	if len(dead) == 0 {
		return
	}

	changed := false
	for _, d := range dead {
		removed := n.tree.RemoveBranch(d)
		if len(removed) > 0 {
			changed = true
		}
		n.paths.Drop(d)
	}
	n.paths.Refresh(n.tree)

	n.stats.deaths += len(dead)
	n.metrics.NeighborDeaths(len(dead))

	n.logger.WithFields(logrus.Fields{
		"tick":    n.tick,
		"dead":    dead,
		"changed": changed,
	}).Info("Neighbors lost")

	if changed {
		n.sendIntreeNow = true
	}
}
