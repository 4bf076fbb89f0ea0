package subcmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var RootCmd = &cobra.Command{
	Use:   "panelsim",
	Short: "Mock cloud backend for the game server control panel",
	Long: "panelsim simulates the cloud APIs behind the control panel (instance " +
		"lifecycle, parameter store, command execution, costs, stack status) so " +
		"integration tests run fast, deterministic and offline.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}
