package main

import (
	"github.com/spf13/cobra"
)

var configPath string
var logLevel string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ndnd",
		Short:         "A small Named Data Networking forwarder and producer for UDP links",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newServeCommand())
	root.AddCommand(newAskCommand())
	return root
}
