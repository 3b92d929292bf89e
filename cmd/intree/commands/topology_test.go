package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/sim"
)

func TestLoadTopologyShape(t *testing.T) {
	conf := NewDefaultCLIConfig()
	conf.Shape = "ring"
	conf.Intree.NumNodes = 4

	topo, err := loadTopology(conf)
	require.NoError(t, err)
	assert.Equal(t, []peers.NodeID{1, 3}, topo.Neighbors(0))
	assert.Equal(t, []peers.NodeID{0, 2}, topo.Neighbors(1))
}

func TestLoadTopologyFile(t *testing.T) {
	dir := t.TempDir()

	conf := NewDefaultCLIConfig()
	conf.Intree.NumNodes = 5
	conf.Intree.SetDataDir(dir)

	grid, err := sim.Shape("grid", 5, 4, 1)
	require.NoError(t, err)
	require.NoError(t, peers.NewTopologyFile(dir, filepath.Join(dir, peers.DefaultTopologyFile)).Write(grid))

	topo, err := loadTopology(conf)
	require.NoError(t, err)
	assert.Equal(t, grid.Links(), topo.Links())
}

func TestLoadTopologyUnknownShape(t *testing.T) {
	conf := NewDefaultCLIConfig()
	conf.Shape = "star"

	_, err := loadTopology(conf)
	assert.Error(t, err)
}
