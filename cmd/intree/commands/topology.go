package commands

import (
	"fmt"

	"github.com/mosaicnetworks/intree/src/peers"
	"github.com/spf13/cobra"
)

//NewTopologyCmd returns the command that writes a generated topology file,
//to be shared by nodes started with the run command
func NewTopologyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "topology",
		Short:   "Write a generated topology file to datadir",
		PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlagsLoadViper(cmd) },
		RunE:    writeTopology,
	}

	cmd.Flags().String("datadir", _config.Intree.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("topology", _config.Intree.TopologyFile, "Topology file, relative to datadir")
	cmd.Flags().Int("nodes", _config.Intree.NumNodes, "Size of the node universe")
	cmd.Flags().String("shape", "line", "Shape of the topology: line, ring, grid or random")
	cmd.Flags().Int64("seed", _config.Seed, "Seed of the random shape")

	return cmd
}

func writeTopology(cmd *cobra.Command, args []string) error {
	topo, err := loadTopology(_config)
	if err != nil {
		return err
	}

	file := peers.NewTopologyFile(_config.Intree.DataDir, _config.Intree.TopologyPath())
	if err := file.Write(topo); err != nil {
		return err
	}

	fmt.Println(file.Path())
	return nil
}
