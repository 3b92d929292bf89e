package node

import (
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/store"
	"github.com/mosaicnetworks/intree/src/telemetry"
)

// originate sends the outstanding message along the tree. Nothing is sent
// while the destination is unreachable; the message stays outstanding and is
// retried at the next data period.
func (n *Node) originate() {
	path := n.tree.PathFromRootToNode(n.id, n.dest)
	if len(path) < 2 {
		n.logger.WithField("dest", n.dest).Debug("No path to destination")
		return
	}

	rec := net.Data{
		Src:     n.id,
		Dest:    n.dest,
		Hops:    path[1:],
		Payload: n.message,
	}
	n.outbox.Push(n.id, path[1], rec)
	n.outstanding = false

	n.stats.originated++
	n.metrics.Data(telemetry.DataOriginated)

	n.logger.WithFields(logrus.Fields{
		"dest": n.dest,
		"path": path,
	}).Debug("Originate")
}

func (n *Node) onData(d net.Data) {
	next, _ := d.NextHop()
	if next != n.id {
		n.stats.misrouted++
		n.metrics.Data(telemetry.DataMisrouted)
		n.logger.WithField("hop", next).Debug("Discarding misrouted Data")
		return
	}

	hops := d.Hops[1:]

	if d.Dest == n.id {
		n.deliver(d)
		return
	}

	if len(hops) == 0 || !n.live.isLive(hops[0]) {
		rerouted, ok := n.reroute(d.Dest)
		if !ok {
			n.stats.dropped++
			n.metrics.Data(telemetry.DataDropped)
			n.logger.WithFields(logrus.Fields{
				"src":  d.Src,
				"dest": d.Dest,
			}).Debug("Dropping Data, no route")
			return
		}
		hops = rerouted
		n.metrics.Data(telemetry.DataRerouted)
	}

	fwd := net.Data{
		Src:     d.Src,
		Dest:    d.Dest,
		Hops:    hops,
		Payload: d.Payload,
	}
	n.outbox.Push(d.Src, hops[0], fwd)

	n.stats.relayed++
	n.metrics.Data(telemetry.DataRelayed)
}

// reroute computes fresh hops towards dest: the lowest neighbor whose cached
// branch contains dest, then the tree path from that neighbor down to dest.
func (n *Node) reroute(dest peers.NodeID) ([]peers.NodeID, bool) {
	via, ok := n.paths.ViaNeighborFor(dest)
	if !ok || !n.live.isLive(via) {
		return nil, false
	}
	hops := n.tree.PathFromRootToNode(via, dest)
	if len(hops) == 0 {
		return nil, false
	}
	return hops, true
}

func (n *Node) deliver(d net.Data) {
	rec := store.Record{
		Src:     d.Src,
		Dest:    d.Dest,
		Payload: d.Payload,
		Tick:    n.tick,
	}

	if err := n.store.Append(rec); err != nil {
		n.logger.WithError(err).Error("Recording delivered message")
		return
	}

	n.stats.delivered++
	n.metrics.Data(telemetry.DataDelivered)
	n.logger.Info(rec.Line())
}
