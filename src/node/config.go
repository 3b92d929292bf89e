package node

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/intree/src/common"
	"github.com/mosaicnetworks/intree/src/config"
	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/telemetry"
)

// Config contains the per-node settings of the routing engine.
type Config struct {
	ID   peers.NodeID
	Size int

	// Neighbors are the nodes Hello and Intree records are broadcast to.
	Neighbors []peers.NodeID

	HelloPeriod   int
	IntreePeriod  int
	DataPeriod    int
	LivenessEpoch int

	TickInterval time.Duration
	// Duration is the number of ticks Run executes. Zero runs until the
	// context is cancelled.
	Duration int

	// Dest is the destination of Message, peers.None for none. Until a path
	// to Dest is known the message stays outstanding and origination is
	// attempted again every DataPeriod ticks; once sent it is never retried.
	Dest    peers.NodeID
	Message string

	Logger  *logrus.Entry
	Metrics *telemetry.NodeMetrics
}

// NewConfig derives the settings of node id from the global configuration.
func NewConfig(conf *config.Config, id peers.NodeID, neighbors []peers.NodeID) *Config {
	return &Config{
		ID:            id,
		Size:          conf.NumNodes,
		Neighbors:     neighbors,
		HelloPeriod:   conf.HelloPeriod,
		IntreePeriod:  conf.IntreePeriod,
		DataPeriod:    conf.DataPeriod,
		LivenessEpoch: conf.LivenessEpoch,
		TickInterval:  conf.TickInterval,
		Duration:      conf.Duration,
		Dest:          peers.None,
		Logger:        conf.NodeLogger(id),
	}
}

// DefaultConfig returns the settings of an isolated node with the default
// periods.
func DefaultConfig(id peers.NodeID, size int) *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		ID:            id,
		Size:          size,
		HelloPeriod:   config.DefaultHelloPeriod,
		IntreePeriod:  config.DefaultIntreePeriod,
		DataPeriod:    config.DefaultDataPeriod,
		LivenessEpoch: config.DefaultLivenessEpoch,
		TickInterval:  config.DefaultTickInterval,
		Duration:      config.DefaultDuration,
		Dest:          peers.None,
		Logger:        logger.WithField("prefix", "node-"+id.String()),
	}
}

// TestConfig returns DefaultConfig with a logger writing to t.
func TestConfig(t testing.TB, id peers.NodeID, size int) *Config {
	conf := DefaultConfig(id, size)
	conf.TickInterval = time.Millisecond
	conf.Logger = common.NewTestEntry(t, common.TestLogLevel, "node-"+id.String())
	return conf
}
