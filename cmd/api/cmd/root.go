package cmd

import (
	"fmt"
	"os"

	"github.com/harentsoaR/diagnosia-api/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevel  string
	logFormat string
)

var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "diagnosia-api",
		Short: "NexGen Diagnosia API - diagnostics lab booking backend",
		Long: `diagnosia-api serves the REST backend of the NexGen Diagnosia lab:
test catalogue, paid bookings, reports, banners and marketing content.

Running it without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	serve := newServeCommand()
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newSeedCommand(), newVersionCommand())
	return root
}

// Execute runs the root command. It is called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
