package tree

import (
	"github.com/mosaicnetworks/intree/src/peers"
)

// Order selects the traversal order of Walk.
type Order int

const (
	// BreadthFirst visits nodes level by level.
	BreadthFirst Order = iota
	// DepthFirst visits nodes in pre-order.
	DepthFirst
)

// Visitor is called once per visited node with its parent (peers.None for
// the starting node of a walk over a root) and its depth relative to the
// starting node. Returning false skips the descendants of node.
type Visitor func(node, parent peers.NodeID, depth int) bool

// forest is a parent array over a fixed universe. A node is a member if it
// was added, roots have peers.None as parent.
type forest struct {
	parent []peers.NodeID
	member []bool
}

func newForest(size int) *forest {
	f := &forest{
		parent: make([]peers.NodeID, size),
		member: make([]bool, size),
	}
	for i := range f.parent {
		f.parent[i] = peers.None
	}
	return f
}

func (f *forest) size() int {
	return len(f.parent)
}

func (f *forest) valid(v peers.NodeID) bool {
	return v.Valid(len(f.parent))
}

func (f *forest) contains(v peers.NodeID) bool {
	return f.valid(v) && f.member[v]
}

// set makes v a member with the given parent (peers.None for a root).
func (f *forest) set(v, parent peers.NodeID) {
	f.member[v] = true
	f.parent[v] = parent
}

func (f *forest) clone() *forest {
	c := &forest{
		parent: make([]peers.NodeID, len(f.parent)),
		member: make([]bool, len(f.member)),
	}
	copy(c.parent, f.parent)
	copy(c.member, f.member)
	return c
}

func (f *forest) equal(o *forest) bool {
	if len(f.parent) != len(o.parent) {
		return false
	}
	for i := range f.parent {
		if f.member[i] != o.member[i] {
			return false
		}
		if f.member[i] && f.parent[i] != o.parent[i] {
			return false
		}
	}
	return true
}

// children returns, for every node, its member children in ascending order.
func (f *forest) children() [][]peers.NodeID {
	res := make([][]peers.NodeID, len(f.parent))
	for i, p := range f.parent {
		if f.member[i] && f.contains(p) {
			res[p] = append(res[p], peers.NodeID(i))
		}
	}
	return res
}

type walkItem struct {
	node   peers.NodeID
	parent peers.NodeID
	depth  int
}

// walk is the single traversal used for serialization, pruning, level
// assignment and path resolution. Each node is visited at most once.
func (f *forest) walk(order Order, from peers.NodeID, visit Visitor) {
	if !f.contains(from) {
		return
	}
	children := f.children()
	visited := make([]bool, len(f.parent))

	pending := []walkItem{{node: from, parent: f.parent[from], depth: 0}}
	for len(pending) > 0 {
		var it walkItem
		if order == BreadthFirst {
			it, pending = pending[0], pending[1:]
		} else {
			it, pending = pending[len(pending)-1], pending[:len(pending)-1]
		}

		if visited[it.node] {
			continue
		}
		visited[it.node] = true

		if !visit(it.node, it.parent, it.depth) {
			continue
		}

		kids := children[it.node]
		if order == BreadthFirst {
			for _, c := range kids {
				pending = append(pending, walkItem{node: c, parent: it.node, depth: it.depth + 1})
			}
		} else {
			// pushed in reverse so the smallest id is visited first
			for i := len(kids) - 1; i >= 0; i-- {
				pending = append(pending, walkItem{node: kids[i], parent: it.node, depth: it.depth + 1})
			}
		}
	}
}

// subtree returns v and all its descendants, breadth-first.
func (f *forest) subtree(v peers.NodeID) []peers.NodeID {
	res := []peers.NodeID{}
	f.walk(BreadthFirst, v, func(n, _ peers.NodeID, _ int) bool {
		res = append(res, n)
		return true
	})
	return res
}

// removeSubtree deletes v and every descendant of v. It returns the removed
// nodes, breadth-first.
func (f *forest) removeSubtree(v peers.NodeID) []peers.NodeID {
	removed := f.subtree(v)
	for _, n := range removed {
		f.member[n] = false
		f.parent[n] = peers.None
	}
	return removed
}

// levels returns the hop distance of every node reachable from root, -1 for
// the others.
func (f *forest) levels(root peers.NodeID) []int {
	res := make([]int, len(f.parent))
	for i := range res {
		res[i] = -1
	}
	f.walk(BreadthFirst, root, func(n, _ peers.NodeID, depth int) bool {
		res[n] = depth
		return true
	})
	return res
}

// keepReachable drops every member that cannot be reached from root.
func (f *forest) keepReachable(root peers.NodeID) {
	lv := f.levels(root)
	for i := range f.member {
		if lv[i] < 0 {
			f.member[i] = false
			f.parent[i] = peers.None
		}
	}
}
