package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/intree/src/config"
	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/mosaicnetworks/intree/src/service"
	"github.com/mosaicnetworks/intree/src/sim"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewNetworkCmd returns the command that runs a whole topology in-process
func NewNetworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "network",
		Short:   "Run every node of a topology in this process",
		PreRunE: loadConfig,
		RunE:    runNetwork,
	}
	AddNetworkFlags(cmd)
	return cmd
}

//AddNetworkFlags adds flags to the Network command
func AddNetworkFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)
	addShapeFlags(cmd)

	cmd.Flags().Int("id", _config.Intree.NodeID, "Id of the node sending the message")
	cmd.Flags().Bool("lockstep", _config.Lockstep, "Step nodes in lock-step instead of running them concurrently")
}

func addShapeFlags(cmd *cobra.Command) {
	cmd.Flags().String("shape", _config.Shape, "Generate the topology instead of reading it: line, ring, grid or random")
	cmd.Flags().Int64("seed", _config.Seed, "Seed of the random shape")
}

// loadTopology generates the configured shape or reads the topology file
func loadTopology(conf *CLIConfig) (*peers.Topology, error) {
	if conf.Shape != "" {
		return sim.Shape(conf.Shape, conf.Intree.NumNodes, conf.Intree.NumNodes, conf.Seed)
	}
	return peers.NewTopologyFile(conf.Intree.DataDir, conf.Intree.TopologyPath()).Topology(conf.Intree.NumNodes)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	conf := &_config.Intree
	logger := conf.Logger()

	if err := conf.Validate(); err != nil {
		return err
	}

	topo, err := loadTopology(_config)
	if err != nil {
		logger.Error("Cannot load topology: ", err)
		return err
	}

	if conf.Store == config.StoreFile {
		if err := os.MkdirAll(conf.DataDir, 0755); err != nil {
			return err
		}
	}

	nw, err := sim.NewNetwork(conf, topo)
	if err != nil {
		logger.Error("Cannot create network: ", err)
		return err
	}
	defer func() {
		if err := nw.Close(); err != nil {
			logger.Error("Close: ", err)
		}
	}()

	var srv *service.Service
	if !conf.NoService {
		srv = service.NewService(conf.ServiceAddr, nw.Nodes(), nw.Metrics(), logger)
		go srv.Serve()
		defer srv.Shutdown(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _config.Lockstep {
		err = runLockstep(ctx, nw, conf.Duration)
	} else {
		err = nw.Run(ctx)
	}
	if err != nil {
		return err
	}

	if err := nw.Check(); err != nil {
		logger.WithError(err).Warn("Network has not converged")
	} else {
		logger.Info("Network converged")
	}

	for _, n := range nw.Nodes() {
		s := n.GetStats()
		logger.WithFields(logrus.Fields{
			"id":         s["id"],
			"tree_nodes": s["tree_nodes"],
			"delivered":  s["data_delivered"],
			"dropped":    s["data_dropped"],
		}).Info("Node")
	}

	return nil
}

// runLockstep steps the network duration times, or forever when duration is
// 0, stopping early when ctx is done
func runLockstep(ctx context.Context, nw *sim.Network, duration int) error {
	for i := 0; duration == 0 || i < duration; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := nw.Step(); err != nil {
			return err
		}
	}
	return nil
}
