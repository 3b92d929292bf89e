package router

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicnetworks/intree/src/common"
	"github.com/mosaicnetworks/intree/src/config"
	"github.com/mosaicnetworks/intree/src/peers"
)

func newTestRouterConfig(t *testing.T, dir string, id int) *config.Config {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.SetDataDir(dir)
	conf.NodeID = id
	conf.Transport = config.TransportFile
	conf.Store = config.StoreFile
	conf.ChannelDir = filepath.Join(dir, "channels")
	conf.TickInterval = time.Millisecond
	return conf
}

func TestInitMissingTopology(t *testing.T) {
	conf := newTestRouterConfig(t, t.TempDir(), 0)

	r := NewRouter(conf)
	assert.Error(t, r.Init())
}

func TestInitInvalidConfig(t *testing.T) {
	conf := newTestRouterConfig(t, t.TempDir(), 12)

	r := NewRouter(conf)
	assert.Error(t, r.Init())
}

func TestRunBadgerStore(t *testing.T) {
	dir := t.TempDir()
	conf := newTestRouterConfig(t, dir, 0)
	conf.Transport = config.TransportInmem
	conf.Store = config.StoreBadger
	conf.Duration = 3

	r := NewRouter(conf)
	r.Topology = peers.Line(conf.NumNodes, 2)
	require.NoError(t, r.Init())

	assert.Equal(t, []peers.NodeID{1}, r.Topology.Neighbors(0))
	assert.Equal(t, filepath.Join(dir, config.DefaultBadgerFile, "node_0"), r.Store.StorePath())

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 3, r.Node.Ticks())
	assert.NoError(t, r.Shutdown())
}

// Two routers sharing a data directory talk through channel files, like two
// node processes would.
func TestTwoProcessesOverFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, peers.DefaultTopologyFile), []byte("0 1\n"), 0644))

	conf0 := newTestRouterConfig(t, dir, 0)
	conf0.Duration = 100
	conf0.Dest = 1
	conf0.Message = "over files"

	conf1 := newTestRouterConfig(t, dir, 1)
	conf1.Duration = 400

	routers := []*Router{NewRouter(conf0), NewRouter(conf1)}
	for _, r := range routers {
		require.NoError(t, r.Init())
	}

	var wg sync.WaitGroup
	for _, r := range routers {
		wg.Add(1)
		go func(r *Router) {
			defer wg.Done()
			assert.NoError(t, r.Run(context.Background()))
		}(r)
	}
	wg.Wait()

	recs, err := routers[1].Store.Records()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Message from 0 to 1 : over files", recs[0].Line())

	data, err := os.ReadFile(filepath.Join(dir, "1_received"))
	require.NoError(t, err)
	assert.Equal(t, "Message from 0 to 1 : over files\n", string(data))

	_, err = os.Stat(filepath.Join(dir, "channels", "channel_0_1"))
	assert.NoError(t, err)

	for _, r := range routers {
		assert.NoError(t, r.Shutdown())
	}
}

func TestShutdownTwice(t *testing.T) {
	conf := newTestRouterConfig(t, t.TempDir(), 0)
	conf.Transport = config.TransportInmem
	conf.Store = config.StoreInmem

	r := NewRouter(conf)
	r.Topology = peers.Line(conf.NumNodes, 2)
	require.NoError(t, r.Init())
	require.NoError(t, r.Shutdown())

	// a second shutdown is harmless for every component
	assert.NoError(t, r.Shutdown())
}
