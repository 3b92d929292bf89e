package tree

import (
	"fmt"
	"strings"

	"github.com/mosaicnetworks/intree/src/peers"
)

// Edge is a (child, parent) pair of an in-tree.
type Edge struct {
	Child  peers.NodeID
	Parent peers.NodeID
}

// String renders the edge as it appears in an Intree record.
func (e Edge) String() string {
	return fmt.Sprintf("(%d %d)", e.Child, e.Parent)
}

// InTree is the local view of the spanning forest rooted at the owning node.
// It is not safe for concurrent use; the owning node is its only user.
type InTree struct {
	root peers.NodeID
	f    *forest
}

// NewInTree returns a tree containing only root, in a universe of the given
// size.
func NewInTree(root peers.NodeID, size int) *InTree {
	f := newForest(size)
	if root.Valid(size) {
		f.set(root, peers.None)
	}
	return &InTree{
		root: root,
		f:    f,
	}
}

// FromEdges builds a tree rooted at root from an edge list, applying the
// same rules as an announcement: the first parent listed for a child wins
// and nodes not connected to root are dropped.
func FromEdges(root peers.NodeID, size int, edges []Edge) *InTree {
	t := NewInTree(root, size)
	f := forestFromEdges(size, edges)
	f.set(root, peers.None)
	f.keepReachable(root)
	t.f = f
	return t
}

func forestFromEdges(size int, edges []Edge) *forest {
	f := newForest(size)
	for _, e := range edges {
		if !f.valid(e.Child) || !f.valid(e.Parent) || e.Child == e.Parent {
			continue
		}
		if f.contains(e.Child) && f.parent[e.Child] != peers.None {
			continue
		}
		f.set(e.Child, e.Parent)
		if !f.contains(e.Parent) {
			f.set(e.Parent, peers.None)
		}
	}
	return f
}

// Root returns the owning node.
func (t *InTree) Root() peers.NodeID {
	return t.root
}

// Size returns the size of the universe.
func (t *InTree) Size() int {
	return t.f.size()
}

// Contains ...
func (t *InTree) Contains(v peers.NodeID) bool {
	return t.f.contains(v)
}

// Parent returns the parent of v, false if v is the root or absent.
func (t *InTree) Parent(v peers.NodeID) (peers.NodeID, bool) {
	if !t.f.contains(v) || t.f.parent[v] == peers.None {
		return peers.None, false
	}
	return t.f.parent[v], true
}

// Len returns the number of members, root included.
func (t *InTree) Len() int {
	n := 0
	for _, m := range t.f.member {
		if m {
			n++
		}
	}
	return n
}

// Nodes returns the members in ascending order.
func (t *InTree) Nodes() []peers.NodeID {
	res := []peers.NodeID{}
	for i, m := range t.f.member {
		if m {
			res = append(res, peers.NodeID(i))
		}
	}
	return res
}

// Children returns the children of v in ascending order.
func (t *InTree) Children(v peers.NodeID) []peers.NodeID {
	if !t.f.contains(v) {
		return nil
	}
	return t.f.children()[v]
}

// Walk traverses the tree from the given node.
func (t *InTree) Walk(order Order, from peers.NodeID, visit Visitor) {
	t.f.walk(order, from, visit)
}

// Edges returns the (child, parent) edges in breadth-first visit order from
// the root. This is the order used in Intree records.
func (t *InTree) Edges() []Edge {
	res := []Edge{}
	t.f.walk(BreadthFirst, t.root, func(n, p peers.NodeID, depth int) bool {
		if depth > 0 {
			res = append(res, Edge{Child: n, Parent: p})
		}
		return true
	})
	return res
}

// Levels returns the hop distance from the root of every node, -1 for
// absent nodes.
func (t *InTree) Levels() []int {
	return t.f.levels(t.root)
}

// Depth returns the hop distance of v from the root, -1 if absent.
func (t *InTree) Depth(v peers.NodeID) int {
	if !t.f.contains(v) {
		return -1
	}
	return t.Levels()[v]
}

// RemoveBranch removes v and everything below it. The root cannot be
// removed. It returns the removed nodes.
func (t *InTree) RemoveBranch(v peers.NodeID) []peers.NodeID {
	if v == t.root || !t.f.contains(v) {
		return nil
	}
	return t.f.removeSubtree(v)
}

// Clone returns an independent copy.
func (t *InTree) Clone() *InTree {
	return &InTree{
		root: t.root,
		f:    t.f.clone(),
	}
}

// Equal reports whether both trees have the same root, members and edges.
func (t *InTree) Equal(o *InTree) bool {
	return t.root == o.root && t.f.equal(o.f)
}

// Validate checks the forest invariant: every member other than the root has
// exactly one parent, which is a member, and following parents always ends
// at the root.
func (t *InTree) Validate() error {
	if !t.f.contains(t.root) {
		return fmt.Errorf("root %d is not a member", t.root)
	}
	if t.f.parent[t.root] != peers.None {
		return fmt.Errorf("root %d has parent %d", t.root, t.f.parent[t.root])
	}
	size := t.f.size()
	for i, m := range t.f.member {
		v := peers.NodeID(i)
		if !m || v == t.root {
			continue
		}
		steps := 0
		for cur := v; cur != t.root; cur = t.f.parent[cur] {
			p := t.f.parent[cur]
			if !t.f.contains(p) {
				return fmt.Errorf("node %d: ancestor %d has missing parent %d", v, cur, p)
			}
			steps++
			if steps > size {
				return fmt.Errorf("node %d: cycle detected", v)
			}
		}
	}
	return nil
}

// String renders the edges as in an Intree record, eg. "(1 0) (2 1)".
func (t *InTree) String() string {
	edges := t.Edges()
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}
