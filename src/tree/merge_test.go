package tree

import (
	"math/rand"
	"testing"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/stretchr/testify/require"
)

func TestMergeFirstAnnouncement(t *testing.T) {
	tr := NewInTree(1, 10)

	// a neighbor that knows nobody announces a root-only tree
	require.True(t, tr.Merge(0, nil))
	require.Equal(t, edges(0, 1), tr.Edges())

	// the same announcement again changes nothing
	require.False(t, tr.Merge(0, nil))
	require.Equal(t, edges(0, 1), tr.Edges())
}

func TestMergeDropsSelfSubtree(t *testing.T) {
	tr := FromEdges(1, 10, edges(2, 1))

	// 0 believes 1 is its child and 2 sits below 1: both are our own echo
	require.True(t, tr.Merge(0, edges(1, 0, 2, 1)))
	require.Equal(t, edges(0, 1, 2, 1), tr.Edges())
	require.NoError(t, tr.Validate())
}

func TestMergeShorterPathWins(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 1, 3, 2, 4, 3))

	// 5 is a new neighbor that reaches 3 directly
	require.True(t, tr.Merge(5, edges(3, 5)))

	// 3 moves under 5, and 4 (reachable only through the old copy of 3) is
	// removed with it
	require.Equal(t, edges(1, 0, 5, 0, 2, 1, 3, 5), tr.Edges())
	require.False(t, tr.Contains(4))
	require.NoError(t, tr.Validate())
}

func TestMergeTieKeepsCurrentEdge(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 0, 3, 1))
	before := tr.Clone()

	// 2 also reaches 3 in one hop; 3 stays under 1
	require.False(t, tr.Merge(2, edges(3, 2)))
	require.True(t, tr.Equal(before))

	p, _ := tr.Parent(3)
	require.Equal(t, peers.NodeID(1), p)
}

func TestMergePrunesVanishedNodes(t *testing.T) {
	tr := NewInTree(0, 10)
	require.True(t, tr.Merge(1, edges(2, 1, 3, 2)))
	require.Equal(t, edges(1, 0, 2, 1, 3, 2), tr.Edges())

	// 1 lost its link to 2
	require.True(t, tr.Merge(1, edges(0, 1)))
	require.Equal(t, edges(1, 0), tr.Edges())
}

func TestMergePrunesSupersededBranch(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 1, 3, 2, 4, 3))

	// 1 now reaches 3 directly, 4 is not announced any more
	require.True(t, tr.Merge(1, edges(2, 1, 3, 1)))
	require.Equal(t, edges(1, 0, 2, 1, 3, 1), tr.Edges())
	require.NoError(t, tr.Validate())
}

func TestMergeKeepsOtherBranches(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 0, 4, 2))

	require.True(t, tr.Merge(1, edges(3, 1)))
	require.Equal(t, edges(1, 0, 2, 0, 3, 1, 4, 2), tr.Edges())

	// different nodes at the same hop are distinct destinations
	require.True(t, tr.Contains(3))
	require.True(t, tr.Contains(4))
}

func TestMergeIgnoresBadAnnouncer(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0))

	require.False(t, tr.Merge(0, edges(5, 0)))
	require.False(t, tr.Merge(10, edges(5, 10)))
	require.False(t, tr.Merge(peers.None, nil))
	require.Equal(t, edges(1, 0), tr.Edges())
}

func randomEdges(r *rand.Rand, size int) []Edge {
	n := r.Intn(2 * size)
	res := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, Edge{
			Child:  peers.NodeID(r.Intn(size+2) - 1),
			Parent: peers.NodeID(r.Intn(size+2) - 1),
		})
	}
	return res
}

func TestMergeForestInvariantAndIdempotence(t *testing.T) {
	const size = 10
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		self := peers.NodeID(r.Intn(size))
		tr := NewInTree(self, size)

		for step := 0; step < 30; step++ {
			from := peers.NodeID(r.Intn(size))
			announced := randomEdges(r, size)

			tr.Merge(from, announced)
			require.NoError(t, tr.Validate(), "round %d step %d", round, step)

			snapshot := tr.Clone()
			require.False(t, tr.Merge(from, announced),
				"round %d step %d: repeated announcement from %d changed the tree", round, step, from)
			require.True(t, snapshot.Equal(tr))

			// the announcer, when accepted, is a direct child of the root
			if from != self {
				p, ok := tr.Parent(from)
				require.True(t, ok)
				require.Equal(t, self, p)
			}
		}
	}
}
