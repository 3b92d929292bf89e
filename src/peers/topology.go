package peers

import (
	"fmt"
	"sort"
)

// Link is a directed edge of the topology: lines sent by From reach To.
type Link struct {
	From NodeID
	To   NodeID
}

// Topology is a static adjacency list over a fixed universe.
type Topology struct {
	size int
	out  []*NodeSet
}

// NewTopology creates a Topology without links.
func NewTopology(size int) *Topology {
	out := make([]*NodeSet, size)
	for i := range out {
		out[i] = NewNodeSet(size)
	}
	return &Topology{
		size: size,
		out:  out,
	}
}

// Size returns the size of the universe.
func (t *Topology) Size() int {
	return t.size
}

// AddLink adds the directed link from -> to.
func (t *Topology) AddLink(from, to NodeID) error {
	if !from.Valid(t.size) || !to.Valid(t.size) {
		return fmt.Errorf("link %d -> %d outside universe of %d nodes", from, to, t.size)
	}
	if from == to {
		return fmt.Errorf("self link on node %d", from)
	}
	t.out[from].Add(to)
	return nil
}

// Connect adds the links a -> b and b -> a.
func (t *Topology) Connect(a, b NodeID) error {
	if err := t.AddLink(a, b); err != nil {
		return err
	}
	return t.AddLink(b, a)
}

// HasLink ...
func (t *Topology) HasLink(from, to NodeID) bool {
	return from.Valid(t.size) && t.out[from].Contains(to)
}

// Neighbors returns the nodes that id sends to, in ascending order.
func (t *Topology) Neighbors(id NodeID) []NodeID {
	if !id.Valid(t.size) {
		return nil
	}
	return t.out[id].IDs()
}

// Links returns every link, ordered by (From, To).
func (t *Topology) Links() []Link {
	res := []Link{}
	for from, set := range t.out {
		for _, to := range set.IDs() {
			res = append(res, Link{From: NodeID(from), To: to})
		}
	}
	return res
}

// Nodes returns the ids that take part in at least one link.
func (t *Topology) Nodes() []NodeID {
	seen := NewNodeSet(t.size)
	for _, l := range t.Links() {
		seen.Add(l.From)
		seen.Add(l.To)
	}
	return seen.IDs()
}

// Symmetric returns a copy of the topology where every link also exists in
// the opposite direction.
func (t *Topology) Symmetric() *Topology {
	res := NewTopology(t.size)
	for _, l := range t.Links() {
		// ids were validated when the link was added
		_ = res.Connect(l.From, l.To)
	}
	return res
}

// Pairs returns the unordered neighbor pairs {a, b}, a < b, for which at
// least one direction exists.
func (t *Topology) Pairs() [][2]NodeID {
	seen := map[[2]NodeID]bool{}
	res := [][2]NodeID{}
	for _, l := range t.Links() {
		p := [2]NodeID{l.From, l.To}
		if p[0] > p[1] {
			p[0], p[1] = p[1], p[0]
		}
		if !seen[p] {
			seen[p] = true
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i][0] != res[j][0] {
			return res[i][0] < res[j][0]
		}
		return res[i][1] < res[j][1]
	})
	return res
}

// Line builds the symmetric chain 0 - 1 - ... - (n-1) in a universe of the
// given size.
func Line(size, n int) *Topology {
	t := NewTopology(size)
	for i := 0; i+1 < n; i++ {
		_ = t.Connect(NodeID(i), NodeID(i+1))
	}
	return t
}
