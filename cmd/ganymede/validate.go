package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"meridian-hq/ganymede/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate loads the configuration file, applies defaults and environment
overrides, and reports any problems without starting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Best-effort .env loading so env overrides behave as in `run`.
		_ = godotenv.Load()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		fmt.Printf("configuration %s is valid\n", cfgFile)
		fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  upstream model: %s\n", cfg.Upstream.Model)
		if cfg.Upstream.APIKey == "" {
			fmt.Println("  warning: no upstream API key configured; relays will fail until one is provided")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
