package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/intree/src/router"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewRunCmd returns the command that starts a single intree node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runIntree,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runIntree(cmd *cobra.Command, args []string) error {
	r := router.NewRouter(&_config.Intree)

	if err := r.Init(); err != nil {
		_config.Intree.Logger().Error("Cannot initialize router: ", err)
		r.Shutdown()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := r.Run(ctx)
	if err := r.Shutdown(); err != nil {
		_config.Intree.Logger().Error("Shutdown: ", err)
	}
	return runErr
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)

	cmd.Flags().Int("id", _config.Intree.NodeID, "Id of this node")

	// Transport
	cmd.Flags().String("transport", _config.Intree.Transport, "Transport between nodes: inmem or file")
	cmd.Flags().String("channels", _config.Intree.ChannelDir, "Directory of the file transport channels")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	_config.Intree.Logger().WithFields(logrus.Fields{
		"intree.DataDir":       _config.Intree.DataDir,
		"intree.LogLevel":      _config.Intree.LogLevel,
		"intree.NodeID":        _config.Intree.NodeID,
		"intree.NumNodes":      _config.Intree.NumNodes,
		"intree.Duration":      _config.Intree.Duration,
		"intree.TickInterval":  _config.Intree.TickInterval,
		"intree.HelloPeriod":   _config.Intree.HelloPeriod,
		"intree.IntreePeriod":  _config.Intree.IntreePeriod,
		"intree.DataPeriod":    _config.Intree.DataPeriod,
		"intree.LivenessEpoch": _config.Intree.LivenessEpoch,
		"intree.Dest":          _config.Intree.Dest,
		"intree.Transport":     _config.Intree.Transport,
		"intree.ChannelDir":    _config.Intree.ChannelPath(),
		"intree.Store":         _config.Intree.Store,
		"intree.TopologyFile":  _config.Intree.TopologyPath(),
		"intree.ServiceAddr":   _config.Intree.ServiceAddr,
		"Shape":                _config.Shape,
	}).Debug("RUN")

	return nil
}
