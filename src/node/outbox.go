package node

import (
	"sort"

	"github.com/ef-ds/deque"

	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/peers"
)

type outbound struct {
	to     peers.NodeID
	record net.Record
}

// Outbox holds the records produced during a tick until they are flushed to
// the transport. Records are queued per originating source; each queue is
// FIFO.
type Outbox struct {
	queues map[peers.NodeID]*deque.Deque
	count  int
}

// NewOutbox ...
func NewOutbox() *Outbox {
	return &Outbox{
		queues: make(map[peers.NodeID]*deque.Deque),
	}
}

// Push queues rec for to on behalf of source.
func (o *Outbox) Push(source, to peers.NodeID, rec net.Record) {
	q, ok := o.queues[source]
	if !ok {
		q = deque.New()
		o.queues[source] = q
	}
	q.PushBack(outbound{to: to, record: rec})
	o.count++
}

// Len returns the number of queued records.
func (o *Outbox) Len() int {
	return o.count
}

// Flush empties the outbox, sources in ascending order, calling send for
// every record. Errors returned by send do not interrupt the flush.
func (o *Outbox) Flush(send func(to peers.NodeID, rec net.Record)) {
	sources := make([]peers.NodeID, 0, len(o.queues))
	for s := range o.queues {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	for _, s := range sources {
		q := o.queues[s]
		for q.Len() > 0 {
			v, _ := q.PopFront()
			m := v.(outbound)
			send(m.to, m.record)
		}
		delete(o.queues, s)
	}
	o.count = 0
}
