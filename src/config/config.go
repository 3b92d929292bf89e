package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/mosaicnetworks/intree/src/common"
	"github.com/mosaicnetworks/intree/src/net"
	"github.com/mosaicnetworks/intree/src/peers"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultChannelDir is the default name of the folder containing the
	// channel files of the file transport.
	DefaultChannelDir = "channels"
)

// Transport kinds.
const (
	TransportInmem = "inmem"
	TransportFile  = "file"
)

// Store kinds.
const (
	StoreInmem  = "inmem"
	StoreBadger = "badger"
	StoreFile   = "file"
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultNodeID        = 0
	DefaultNumNodes      = 10
	DefaultDuration      = 300
	DefaultTickInterval  = 1000 * time.Millisecond
	DefaultHelloPeriod   = 30
	DefaultIntreePeriod  = 10
	DefaultDataPeriod    = 15
	DefaultLivenessEpoch = 64
	DefaultDest          = -1
	DefaultMessage       = ""
	DefaultTransport     = TransportFile
	DefaultStore         = StoreFile
	DefaultServiceAddr   = "127.0.0.1:8000"
	DefaultNoService     = false
)

// Config contains all the configuration properties of an intree node.
type Config struct {
	// DataDir is the top-level directory containing the configuration file,
	// the topology file and the data of the node.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, also writes the log to this file.
	LogFile string `mapstructure:"log-file"`

	// NodeID is the id of this node in the universe [0, NumNodes).
	NodeID int `mapstructure:"id"`

	// NumNodes is the size of the node universe.
	NumNodes int `mapstructure:"nodes"`

	// Duration is the number of ticks the node runs for.
	Duration int `mapstructure:"duration"`

	// TickInterval is the wall-clock length of a tick.
	TickInterval time.Duration `mapstructure:"tick"`

	// HelloPeriod is the number of ticks between two Hello broadcasts.
	HelloPeriod int `mapstructure:"hello-period"`

	// IntreePeriod is the number of ticks between two periodic Intree
	// announcements. Changes to the tree are announced on the same tick
	// regardless.
	IntreePeriod int `mapstructure:"intree-period"`

	// DataPeriod is the number of ticks between two attempts at sending the
	// outstanding message.
	DataPeriod int `mapstructure:"data-period"`

	// LivenessEpoch is the number of ticks after which a neighbor that was
	// not heard from is declared dead. It must be longer than HelloPeriod.
	LivenessEpoch int `mapstructure:"epoch"`

	// Dest is the destination of Message, -1 for none. The message is sent
	// once, as soon as a path to Dest is known; while there is none it stays
	// outstanding and is attempted again every DataPeriod ticks. A message
	// already on its way is never retried.
	Dest int `mapstructure:"dest"`

	// Message is the payload sent to Dest. It may not contain line breaks.
	Message string `mapstructure:"message"`

	// Transport selects how lines travel between nodes: "inmem" or "file".
	Transport string `mapstructure:"transport"`

	// ChannelDir is the directory shared by all nodes of a file transport.
	// Defaults to <DataDir>/channels.
	ChannelDir string `mapstructure:"channels"`

	// Store selects the received-record backend: "inmem", "badger" or
	// "file".
	Store string `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// TopologyFile is the path of the topology file. Relative paths are
	// resolved against DataDir.
	TopologyFile string `mapstructure:"topology"`

	// Symmetric makes every topology link bidirectional.
	Symmetric bool `mapstructure:"symmetric"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:       DefaultDataDir(),
		LogLevel:      DefaultLogLevel,
		NodeID:        DefaultNodeID,
		NumNodes:      DefaultNumNodes,
		Duration:      DefaultDuration,
		TickInterval:  DefaultTickInterval,
		HelloPeriod:   DefaultHelloPeriod,
		IntreePeriod:  DefaultIntreePeriod,
		DataPeriod:    DefaultDataPeriod,
		LivenessEpoch: DefaultLivenessEpoch,
		Dest:          DefaultDest,
		Message:       DefaultMessage,
		Transport:     DefaultTransport,
		Store:         DefaultStore,
		DatabaseDir:   DefaultDatabaseDir(),
		TopologyFile:  peers.DefaultTopologyFile,
		Symmetric:     true,
		ServiceAddr:   DefaultServiceAddr,
		NoService:     DefaultNoService,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests. Nodes built from it use in-memory transport and
// store, and the HTTP service is off.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.DataDir = ""
	config.Transport = TransportInmem
	config.Store = StoreInmem
	config.NoService = true
	config.TickInterval = time.Millisecond
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely set
// it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// ID returns NodeID as a peers.NodeID.
func (c *Config) ID() peers.NodeID {
	return peers.NodeID(c.NodeID)
}

// Destination returns the outstanding destination, if any.
func (c *Config) Destination() (peers.NodeID, bool) {
	if c.Dest < 0 {
		return peers.None, false
	}
	return peers.NodeID(c.Dest), true
}

// TopologyPath returns the full path of the topology file.
func (c *Config) TopologyPath() string {
	if filepath.IsAbs(c.TopologyFile) {
		return c.TopologyFile
	}
	return filepath.Join(c.DataDir, c.TopologyFile)
}

// ChannelPath returns the directory of the file transport.
func (c *Config) ChannelPath() string {
	if c.ChannelDir != "" {
		return c.ChannelDir
	}
	return filepath.Join(c.DataDir, DefaultChannelDir)
}

// Validate checks that the configuration describes a runnable node.
func (c *Config) Validate() error {
	if c.NumNodes <= 0 {
		return fmt.Errorf("nodes must be positive, got %d", c.NumNodes)
	}
	if !c.ID().Valid(c.NumNodes) {
		return fmt.Errorf("id %d outside [0, %d)", c.NodeID, c.NumNodes)
	}
	if c.Dest >= c.NumNodes || c.Dest < -1 {
		return fmt.Errorf("dest %d outside [0, %d)", c.Dest, c.NumNodes)
	}
	if err := net.CheckPayload(c.Message); err != nil {
		return fmt.Errorf("message: %v", err)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %d", c.Duration)
	}
	if c.HelloPeriod <= 0 || c.IntreePeriod <= 0 || c.DataPeriod <= 0 || c.LivenessEpoch <= 0 {
		return fmt.Errorf("periods must be positive")
	}
	if c.LivenessEpoch <= c.HelloPeriod {
		return fmt.Errorf("epoch (%d) must be longer than hello-period (%d)", c.LivenessEpoch, c.HelloPeriod)
	}
	switch c.Transport {
	case TransportInmem, TransportFile:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	switch c.Store {
	case StoreInmem, StoreBadger, StoreFile:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}

// Logger returns a formatted logrus Entry, with prefix set to "intree".
func (c *Config) Logger() *logrus.Entry {
	return c.baseLogger().WithField("prefix", "intree")
}

// NodeLogger returns a formatted logrus Entry, with prefix set to
// "node-<id>".
func (c *Config) NodeLogger(id peers.NodeID) *logrus.Entry {
	return c.baseLogger().WithField("prefix", fmt.Sprintf("node-%d", id))
}

func (c *Config) baseLogger() *logrus.Logger {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
		if c.LogFile != "" {
			pathMap := lfshook.PathMap{}
			for _, l := range logrus.AllLevels {
				pathMap[l] = c.LogFile
			}
			c.logger.Hooks.Add(lfshook.NewHook(
				pathMap,
				&logrus.TextFormatter{DisableColors: true},
			))
		}
	}
	return c.logger
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level intree config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Intree")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Intree")
		} else {
			return filepath.Join(home, ".intree")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
