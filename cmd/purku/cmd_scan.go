package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/purku/config"
)

var (
	scanJSON    bool
	scanVerbose bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Preview what a teardown would delete",
	Long: `Run discovery, classification and planning across every configured
scope without deleting anything. The output is the same report a real
teardown would produce, with every candidate marked deleted.

Always scan before tearing down.`,
	Example: `  purku scan                       # Summary of what would be deleted
  purku scan --json                # Full report document
  purku scan --config prod.yaml    # Specific config file`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Emit the full report document as JSON")
	scanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Verbose output")
}

func runScan(cmd *cobra.Command, args []string) error {
	setupLogging(scanVerbose)
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := executeRun(ctx, cfg, newRunID(), true, "")
	if err != nil {
		return err
	}
	return printResult(result, scanJSON)
}
