package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers the aws provider factory.
	_ "github.com/yairfalse/purku/providers/aws"
)

var (
	version    = "0.1.0"
	configPath string

	rootCmd = &cobra.Command{
		Use:   "purku",
		Short: "Cloud account teardown engine",
		Long: `Purku - Cloud Account Teardown Engine

Purku empties cloud accounts: it discovers every resource in the
configured accounts and regions, protects provider-managed defaults,
and deletes the rest in dependency order until the scope converges.

Deletion is destructive and final. Always scan first.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`Purku {{.Version}} - Cloud Account Teardown Engine
`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "purku.yaml", "Config file path")
}
