package tree

import (
	"testing"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/stretchr/testify/require"
)

func edges(pairs ...int) []Edge {
	res := []Edge{}
	for i := 0; i+1 < len(pairs); i += 2 {
		res = append(res, Edge{Child: peers.NodeID(pairs[i]), Parent: peers.NodeID(pairs[i+1])})
	}
	return res
}

func TestEdgesBreadthFirst(t *testing.T) {
	tr := FromEdges(0, 10, edges(4, 2, 3, 1, 2, 0, 1, 0))

	require.Equal(t, edges(1, 0, 2, 0, 3, 1, 4, 2), tr.Edges())
	require.Equal(t, "(1 0) (2 0) (3 1) (4 2)", tr.String())
	require.Equal(t, 5, tr.Len())
	require.NoError(t, tr.Validate())
}

func TestFromEdgesDropsAnomalies(t *testing.T) {
	// 5 -> 6 is not connected to the root, 7 <-> 8 is a cycle, 3 is listed
	// twice (the first parent wins) and 9 -> 9 is a self loop.
	tr := FromEdges(0, 10, edges(1, 0, 3, 1, 3, 0, 5, 6, 7, 8, 8, 7, 9, 9, 2, 11))

	require.Equal(t, []peers.NodeID{0, 1, 3}, tr.Nodes())
	p, ok := tr.Parent(3)
	require.True(t, ok)
	require.Equal(t, peers.NodeID(1), p)
	require.NoError(t, tr.Validate())
}

func TestRemoveBranchCascades(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 0, 3, 1, 4, 3, 5, 2))

	removed := tr.RemoveBranch(1)
	require.Equal(t, []peers.NodeID{1, 3, 4}, removed)
	require.Equal(t, []peers.NodeID{0, 2, 5}, tr.Nodes())
	require.NoError(t, tr.Validate())

	require.Nil(t, tr.RemoveBranch(0), "the root cannot be removed")
	require.Nil(t, tr.RemoveBranch(7), "absent nodes are ignored")
}

func TestLevels(t *testing.T) {
	tr := FromEdges(2, 6, edges(1, 2, 0, 1, 3, 2, 4, 3, 5, 4))

	require.Equal(t, []int{2, 1, 0, 1, 2, 3}, tr.Levels())
	require.Equal(t, 3, tr.Depth(5))
	require.Equal(t, -1, NewInTree(0, 6).Depth(5))
}

func TestValidateDetectsBrokenTrees(t *testing.T) {
	tr := FromEdges(0, 5, edges(1, 0, 2, 1))
	// break the tree from the inside
	tr.f.parent[1] = 2
	require.Error(t, tr.Validate())

	tr = FromEdges(0, 5, edges(1, 0, 2, 1))
	tr.f.member[1] = false
	require.Error(t, tr.Validate())
}

func TestWalkDepthFirst(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 0, 3, 1, 4, 1, 5, 2))

	order := []peers.NodeID{}
	tr.Walk(DepthFirst, 0, func(n, _ peers.NodeID, _ int) bool {
		order = append(order, n)
		return true
	})
	require.Equal(t, []peers.NodeID{0, 1, 3, 4, 2, 5}, order)

	// returning false skips the subtree
	order = order[:0]
	tr.Walk(BreadthFirst, 0, func(n, _ peers.NodeID, _ int) bool {
		order = append(order, n)
		return n != 1
	})
	require.Equal(t, []peers.NodeID{0, 1, 2, 5}, order)
}
