package tree

import (
	"testing"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFromRootToNode(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 0, 3, 1, 4, 3))

	assert.Equal(t, []peers.NodeID{0, 1, 3, 4}, tr.PathFromRootToNode(0, 4))
	assert.Equal(t, []peers.NodeID{1, 3, 4}, tr.PathFromRootToNode(1, 4))
	assert.Equal(t, []peers.NodeID{0}, tr.PathFromRootToNode(0, 0))
	assert.Empty(t, tr.PathFromRootToNode(2, 4), "4 is not below 2")
	assert.Empty(t, tr.PathFromRootToNode(0, 9), "9 is unknown")
	assert.Empty(t, tr.PathFromRootToNode(8, 4), "8 is unknown")
}

func TestPathCache(t *testing.T) {
	tr := FromEdges(0, 10, edges(1, 0, 2, 0, 3, 1, 4, 3, 5, 2, 6, 1))
	c := NewPathCache(0)
	c.Refresh(tr)

	require.Equal(t, []peers.NodeID{1, 2}, c.Neighbors())
	require.Equal(t, []peers.NodeID{0, 1, 3, 6, 4}, c.Path(1))
	require.Equal(t, []peers.NodeID{0, 2, 5}, c.Path(2))

	via, ok := c.ViaNeighborFor(4)
	require.True(t, ok)
	require.Equal(t, peers.NodeID(1), via)

	via, ok = c.ViaNeighborFor(5)
	require.True(t, ok)
	require.Equal(t, peers.NodeID(2), via)

	_, ok = c.ViaNeighborFor(0)
	require.False(t, ok, "self is never reached through a neighbor")
	_, ok = c.ViaNeighborFor(7)
	require.False(t, ok)

	// the branch of 1 disappears: its entry is kept but emptied
	tr.RemoveBranch(1)
	c.Update(tr, 1)
	require.Empty(t, c.Path(1))
	_, ok = c.ViaNeighborFor(4)
	require.False(t, ok)

	c.Drop(1)
	require.Equal(t, []peers.NodeID{2}, c.Neighbors())
}
