package tree

import (
	"sort"

	"github.com/mosaicnetworks/intree/src/peers"
)

// PathFromRootToNode returns the sequence root, ..., target following the
// tree downwards from root. The result is empty if either node is absent or
// target is not below root.
func (t *InTree) PathFromRootToNode(root, target peers.NodeID) []peers.NodeID {
	if !t.f.contains(root) || !t.f.contains(target) {
		return nil
	}

	var found []peers.NodeID
	path := []peers.NodeID{}
	t.f.walk(DepthFirst, root, func(n, _ peers.NodeID, depth int) bool {
		if found != nil {
			return false
		}
		path = append(path[:depth], n)
		if n == target {
			found = make([]peers.NodeID, len(path))
			copy(found, path)
			return false
		}
		return true
	})
	return found
}

// PathCache remembers, for each neighbor that announced a tree, the nodes
// reachable through it: self, the neighbor, then the neighbor's branch in
// breadth-first order, so the last element is the farthest descendant.
// A neighbor whose branch is empty maps to an empty sequence.
type PathCache struct {
	self  peers.NodeID
	paths map[peers.NodeID][]peers.NodeID
}

// NewPathCache ...
func NewPathCache(self peers.NodeID) *PathCache {
	return &PathCache{
		self:  self,
		paths: make(map[peers.NodeID][]peers.NodeID),
	}
}

// Update recomputes the entry of rootedAt from t.
func (c *PathCache) Update(t *InTree, rootedAt peers.NodeID) {
	p, ok := t.Parent(rootedAt)
	if !ok || p != c.self {
		c.paths[rootedAt] = []peers.NodeID{}
		return
	}

	path := []peers.NodeID{c.self}
	t.Walk(BreadthFirst, rootedAt, func(n, _ peers.NodeID, _ int) bool {
		path = append(path, n)
		return true
	})
	c.paths[rootedAt] = path
}

// Refresh recomputes every known entry, and adds entries for the current
// direct children of the root.
func (c *PathCache) Refresh(t *InTree) {
	for _, n := range t.Children(c.self) {
		if _, ok := c.paths[n]; !ok {
			c.paths[n] = nil
		}
	}
	for n := range c.paths {
		c.Update(t, n)
	}
}

// Drop forgets rootedAt.
func (c *PathCache) Drop(rootedAt peers.NodeID) {
	delete(c.paths, rootedAt)
}

// Path returns the cached sequence for rootedAt.
func (c *PathCache) Path(rootedAt peers.NodeID) []peers.NodeID {
	return c.paths[rootedAt]
}

// Neighbors returns the neighbors with an entry, in ascending order.
func (c *PathCache) Neighbors() []peers.NodeID {
	res := make([]peers.NodeID, 0, len(c.paths))
	for n := range c.paths {
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// ViaNeighborFor returns the neighbor whose cached path contains target.
// Neighbors are tried in ascending order.
func (c *PathCache) ViaNeighborFor(target peers.NodeID) (peers.NodeID, bool) {
	if target == c.self {
		return peers.None, false
	}
	for _, n := range c.Neighbors() {
		for _, v := range c.paths[n] {
			if v == target {
				return n, true
			}
		}
	}
	return peers.None, false
}
