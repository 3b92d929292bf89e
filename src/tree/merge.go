package tree

import (
	"github.com/mosaicnetworks/intree/src/peers"
)

// Merge reconciles the tree announced by neighbor rootedAt with the local
// tree and adopts the result. It returns true if the local tree changed, in
// which case the owner should re-announce without waiting for its timer.
//
// Announcements from the root itself or from ids outside the universe are
// ignored. Malformed edges (self loops, unknown ids, nodes not connected to
// the announcer) are dropped rather than reported.
func (t *InTree) Merge(rootedAt peers.NodeID, received []Edge) bool {
	if rootedAt == t.root || !t.f.valid(rootedAt) || !t.f.contains(t.root) {
		return false
	}

	rec := t.normalize(rootedAt, received)

	cur := t.f.clone()
	pruneBranch(cur, rec, rootedAt)

	merged := mergeLevels(cur, rec, t.root)

	changed := !merged.equal(t.f)
	t.f = merged
	return changed
}

// normalize re-roots the announcement under the local root: whatever the
// announcer believed was below us is dropped, and the direct link the
// announcement travelled on becomes the edge rootedAt -> root.
func (t *InTree) normalize(rootedAt peers.NodeID, received []Edge) *forest {
	rec := forestFromEdges(t.f.size(), received)

	// the announcer is the root of its own tree
	rec.set(rootedAt, peers.None)

	if rec.contains(t.root) {
		rec.parent[t.root] = peers.None
		rec.removeSubtree(t.root)
	}

	rec.set(t.root, peers.None)
	rec.set(rootedAt, t.root)
	rec.keepReachable(t.root)

	return rec
}

// pruneBranch removes from cur every node below rootedAt that the
// announcement no longer vouches for: absent from rec, or attached to a
// different parent there. Removal cascades to the whole subtree.
func pruneBranch(cur, rec *forest, rootedAt peers.NodeID) {
	stale := []peers.NodeID{}
	cur.walk(BreadthFirst, rootedAt, func(n, p peers.NodeID, depth int) bool {
		if depth == 0 {
			// rootedAt itself is re-placed by the level merge
			return true
		}
		if !rec.contains(n) || rec.parent[n] != p {
			stale = append(stale, n)
			return false
		}
		return true
	})
	for _, n := range stale {
		cur.removeSubtree(n)
	}
}

// mergeLevels walks both trees one hop level at a time and builds the merged
// tree. At each level:
//
//   - a node present on one side only keeps that side's edge, and any deeper
//     copy of it on the other side is removed with its subtree;
//   - a node present on both sides keeps a single edge, the current tree's
//     when the parents disagree.
//
// Nodes are processed in ascending id order within a level, the current tree
// before the received one, so the outcome does not depend on map or arrival
// order. cur and rec are consumed.
func mergeLevels(cur, rec *forest, root peers.NodeID) *forest {
	size := cur.size()
	merged := newForest(size)
	merged.set(root, peers.None)

	curLv := cur.levels(root)
	recLv := rec.levels(root)

	for hop := 1; hop < size; hop++ {
		found := false

		for i := 0; i < size; i++ {
			v := peers.NodeID(i)
			inCur := cur.contains(v) && curLv[v] == hop
			inRec := rec.contains(v) && recLv[v] == hop

			switch {
			case inCur && inRec:
				merged.set(v, cur.parent[v])
			case inCur:
				merged.set(v, cur.parent[v])
				if rec.contains(v) {
					rec.removeSubtree(v)
				}
			case inRec:
				merged.set(v, rec.parent[v])
				if cur.contains(v) {
					cur.removeSubtree(v)
				}
			default:
				continue
			}
			found = true
		}

		if !found {
			break
		}
	}

	return merged
}
