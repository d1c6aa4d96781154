package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - streaming chat relay with sentence segmentation",
	Long: `Ganymede relays chat requests to an upstream chat-completions endpoint
and streams the model's incremental output back as discrete, naturally-bounded
text segments rather than raw byte chunks.

It provides:
  - Incremental sentence segmentation for mixed CJK/Latin text
  - Exactly-once terminal outcomes per relay invocation
  - Cooperative, idempotent cancellation wired to client disconnects
  - Prometheus metrics and an optional relay-outcome audit store`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
