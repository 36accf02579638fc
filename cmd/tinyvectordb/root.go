package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyvectordb/tinyvectordb/internal/config"
	"github.com/tinyvectordb/tinyvectordb/internal/runtime"
)

var (
	// Version is set during build.
	Version = "0.1.0"

	configPath string
	logLevel   string
)

// rootCmd is the base command for the tinyvectordb CLI.
var rootCmd = &cobra.Command{
	Use:   "tinyvectordb",
	Short: "Embedded vector database, driven from the command line",
	Long: `tinyvectordb stores, indexes, and searches vectors in a single SQLite-backed
file store with HNSW approximate nearest neighbor indexes.

Examples:
  tinyvectordb space create demo --dimension 384 --metric cosine
  tinyvectordb vector upsert demo --dense 0.1,0.2,0.3
  tinyvectordb search demo --dense 0.1,0.2,0.3 --k 10
  tinyvectordb serve --addr :8080`,
	Version: Version,
}

// Execute adds all child commands to rootCmd and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "", "log level (debug, info, warn, error)")
}

// openRuntime loads configuration and opens a Runtime for a CLI command. The
// caller owns the returned Runtime and must Close it.
func openRuntime() (*runtime.Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return runtime.Open(cfg)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
