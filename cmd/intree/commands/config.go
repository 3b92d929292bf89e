package commands

import (
	"github.com/mosaicnetworks/intree/src/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//CLIConfig contains configuration for the intree commands
type CLIConfig struct {
	Intree   config.Config `mapstructure:",squash"`
	Shape    string        `mapstructure:"shape"`
	Seed     int64         `mapstructure:"seed"`
	Lockstep bool          `mapstructure:"lockstep"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Intree: *config.NewDefaultConfig(),
		Shape:  "",
		Seed:   1,
	}
}

// addCommonFlags adds the flags shared by every command that builds nodes
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Intree.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Intree.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.Intree.LogFile, "Also write the log to this file")

	// Universe and topology
	cmd.Flags().Int("nodes", _config.Intree.NumNodes, "Size of the node universe")
	cmd.Flags().String("topology", _config.Intree.TopologyFile, "Topology file, relative to datadir")
	cmd.Flags().Bool("symmetric", _config.Intree.Symmetric, "Make every topology link bidirectional")

	// Timing
	cmd.Flags().Int("duration", _config.Intree.Duration, "Number of ticks to run for, 0 for no limit")
	cmd.Flags().Duration("tick", _config.Intree.TickInterval, "Length of a tick")
	cmd.Flags().Int("hello-period", _config.Intree.HelloPeriod, "Ticks between Hello broadcasts")
	cmd.Flags().Int("intree-period", _config.Intree.IntreePeriod, "Ticks between Intree announcements")
	cmd.Flags().Int("data-period", _config.Intree.DataPeriod, "Ticks between attempts at sending the message")
	cmd.Flags().Int("epoch", _config.Intree.LivenessEpoch, "Ticks after which a silent neighbor is dead")

	// Message
	cmd.Flags().Int("dest", _config.Intree.Dest, "Destination of the message, -1 for none")
	cmd.Flags().String("message", _config.Intree.Message, "Message to send to dest")

	// Store
	cmd.Flags().String("store", _config.Intree.Store, "Received-record store: inmem, badger or file")
	cmd.Flags().String("db", _config.Intree.DatabaseDir, "Dabatabase directory")

	// Service
	cmd.Flags().Bool("no-service", _config.Intree.NoService, "Disable the HTTP service")
	cmd.Flags().StringP("service-listen", "s", _config.Intree.ServiceAddr, "Listen IP:Port for HTTP service")
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/intree.toml (.json, .yaml also work)
	viper.SetConfigName("intree")               // name of config file (without extension)
	viper.AddConfigPath(_config.Intree.DataDir) // search root directory

	// If a config file is found, read it in.
	configFile := ""
	if err := viper.ReadInConfig(); err == nil {
		configFile = viper.ConfigFileUsed()
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return err
	}

	// second unmarshal to read from config file
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	if configFile != "" {
		_config.Intree.Logger().Debugf("Using config file: %s", configFile)
	} else {
		_config.Intree.Logger().Debugf("No config file found in: %s", _config.Intree.DataDir)
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.Intree.SetDataDir(_config.Intree.DataDir)

	return nil
}
