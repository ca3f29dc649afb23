package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/happiness/pkg/config"
	"github.com/wonny/happiness/pkg/logger"
)

var (
	// Global flags
	referenceFile string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "happiness",
	Short: "Customer Happiness Index - derived metrics & anomaly engine",
	Long: `Customer Happiness Index CLI

Derives the happiness score, period-over-period trends, volume
anomalies and ranked insights from a rolling sentiment window, and
serves them to the dashboard over a read-only feed.

Usage:
  go run ./cmd/happiness [command]

Examples:
  go run ./cmd/happiness serve
  go run ./cmd/happiness snapshot --range 7d
  go run ./cmd/happiness validate --reference ./reference.yaml
  go run ./cmd/happiness scheduler run`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&referenceFile, "reference", "", "reference dataset YAML (default: REFERENCE_FILE or embedded)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads the environment and applies global flag overrides
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if referenceFile != "" {
		cfg.ReferenceFile = referenceFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, logger.New(cfg), nil
}
