package node

import (
	"github.com/mosaicnetworks/intree/src/peers"
)

// liveness tracks which neighbors are alive. A neighbor is live once it has
// been heard from; it stays live as long as it is heard, by Hello or Intree,
// at least once per epoch.
type liveness struct {
	// incoming is the IncomingNeighbors set: neighbors a record was
	// received from and that have not been declared dead since.
	incoming *peers.NodeSet

	heardHello  *peers.NodeSet
	heardIntree *peers.NodeSet
}

func newLiveness(size int) *liveness {
	return &liveness{
		incoming:    peers.NewNodeSet(size),
		heardHello:  peers.NewNodeSet(size),
		heardIntree: peers.NewNodeSet(size),
	}
}

// onHello confirms sender for the current epoch. Hello senders become live
// immediately.
func (l *liveness) onHello(sender peers.NodeID) {
	l.heardHello.Add(sender)
	l.incoming.Add(sender)
}

// onIntree confirms sender for the current epoch. It only becomes live at
// the next reconciliation.
func (l *liveness) onIntree(sender peers.NodeID) {
	l.heardIntree.Add(sender)
}

func (l *liveness) isLive(id peers.NodeID) bool {
	return l.incoming.Contains(id)
}

// reconcile closes an epoch. It returns the neighbors that were live but
// not heard from, in ascending order. Neighbors heard this epoch form the new
// live set and the confirmation marks are cleared.
func (l *liveness) reconcile() []peers.NodeID {
	confirmed := l.heardHello.Union(l.heardIntree)
	dead := l.incoming.Difference(confirmed).IDs()

	l.incoming = confirmed
	l.heardHello.Clear()
	l.heardIntree.Clear()

	return dead
}
