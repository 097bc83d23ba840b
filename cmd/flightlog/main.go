package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"uav-logchat/flightdesk/internal/logging"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "flightlog",
		Short:         "Inspect and generate ArduPilot DataFlash logs",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init("cli", logLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")

	// Add subcommands
	root.AddCommand(summarizeCmd())
	root.AddCommand(synthCmd())

	return root
}
