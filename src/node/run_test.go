package node

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/store"
)

func TestRunStopsAfterDuration(t *testing.T) {
	trans := net.NewInmemTransport(testSize)
	conf := TestConfig(t, 0, testSize)
	conf.Duration = 5

	n := NewNode(conf, trans, store.NewInmemStore())
	assert.Equal(t, Idle, n.State())

	require.NoError(t, n.Run(context.Background()))
	assert.Equal(t, 5, n.Ticks())
	assert.Equal(t, Shutdown, n.State())
	assert.Equal(t, "5", n.GetStats()["tick"])
}

func TestRunCancelled(t *testing.T) {
	trans := net.NewInmemTransport(testSize)
	conf := TestConfig(t, 0, testSize)
	conf.Duration = 0

	n := NewNode(conf, trans, store.NewInmemStore())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- n.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, n.Ticks() > 0)
}

func TestRunStopsOnTransportFailure(t *testing.T) {
	trans := net.NewInmemTransport(testSize)
	conf := TestConfig(t, 0, testSize)

	n := NewNode(conf, trans, store.NewInmemStore())
	require.NoError(t, trans.Close())

	err := n.Run(context.Background())
	assert.Equal(t, net.ErrTransportShutdown, err)
}

func TestShutdown(t *testing.T) {
	trans := net.NewInmemTransport(testSize)
	conf := TestConfig(t, 0, testSize)
	conf.Duration = 0
	conf.TickInterval = time.Hour

	n := NewNode(conf, trans, store.NewInmemStore())

	done := make(chan error)
	go func() { done <- n.Run(context.Background()) }()

	n.Shutdown()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
