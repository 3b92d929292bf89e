package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for intree
var RootCmd = &cobra.Command{
	Use:              "intree",
	Short:            "in-tree routing simulator",
	TraverseChildren: true,
}
