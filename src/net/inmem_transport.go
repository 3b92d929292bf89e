package net

import (
	"sync"

	"github.com/ef-ds/deque"

	"github.com/mosaicnetworks/intree/src/peers"
)

type channelKey struct {
	from, to peers.NodeID
}

// InmemTransport implements the Transport interface with in-memory queues so
// that a whole network can be simulated in a single process. Queues must be
// established with Connect or ConnectLink before lines can flow.
type InmemTransport struct {
	sync.Mutex
	size      int
	queues    map[channelKey]*deque.Deque
	observers []Observer
	shutdown  bool
}

// NewInmemTransport creates a transport for a universe of the given size.
func NewInmemTransport(size int) *InmemTransport {
	return &InmemTransport{
		size:   size,
		queues: make(map[channelKey]*deque.Deque),
	}
}

// Connect establishes the queues in both directions between a and b.
func (i *InmemTransport) Connect(a, b peers.NodeID) {
	i.ConnectLink(a, b)
	i.ConnectLink(b, a)
}

// ConnectLink establishes the from->to queue.
func (i *InmemTransport) ConnectLink(from, to peers.NodeID) {
	if !from.Valid(i.size) || !to.Valid(i.size) || from == to {
		return
	}
	i.Lock()
	defer i.Unlock()
	k := channelKey{from, to}
	if _, ok := i.queues[k]; !ok {
		i.queues[k] = deque.New()
	}
}

// ConnectTopology establishes a queue for every link of t.
func (i *InmemTransport) ConnectTopology(t *peers.Topology) {
	for _, l := range t.Links() {
		i.ConnectLink(l.From, l.To)
	}
}

// Disconnect removes the queues between a and b, discarding anything still
// pending on them.
func (i *InmemTransport) Disconnect(a, b peers.NodeID) {
	i.Lock()
	defer i.Unlock()
	delete(i.queues, channelKey{a, b})
	delete(i.queues, channelKey{b, a})
}

// Observe registers fn to be called, outside the transport lock, for every
// line accepted by Send.
func (i *InmemTransport) Observe(fn Observer) {
	i.Lock()
	defer i.Unlock()
	i.observers = append(i.observers, fn)
}

// Send implements the Transport interface.
func (i *InmemTransport) Send(from, to peers.NodeID, line string) error {
	i.Lock()
	if i.shutdown {
		i.Unlock()
		return ErrTransportShutdown
	}
	q, ok := i.queues[channelKey{from, to}]
	if !ok {
		i.Unlock()
		return ErrNoChannel
	}
	q.PushBack(line)
	observers := i.observers
	i.Unlock()

	for _, fn := range observers {
		fn(from, to, line)
	}
	return nil
}

// ReceiveAll implements the Transport interface.
func (i *InmemTransport) ReceiveAll(id peers.NodeID) ([]string, error) {
	i.Lock()
	defer i.Unlock()

	if i.shutdown {
		return nil, ErrTransportShutdown
	}

	lines := []string{}
	for from := 0; from < i.size; from++ {
		q, ok := i.queues[channelKey{peers.NodeID(from), id}]
		if !ok {
			continue
		}
		for q.Len() > 0 {
			v, _ := q.PopFront()
			lines = append(lines, v.(string))
		}
	}
	return lines, nil
}

// Pending returns the number of lines waiting for id.
func (i *InmemTransport) Pending(id peers.NodeID) int {
	i.Lock()
	defer i.Unlock()
	n := 0
	for k, q := range i.queues {
		if k.to == id {
			n += q.Len()
		}
	}
	return n
}

// Close implements the Transport interface.
func (i *InmemTransport) Close() error {
	i.Lock()
	defer i.Unlock()
	i.shutdown = true
	i.queues = make(map[channelKey]*deque.Deque)
	return nil
}
