package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yairfalse/purku/config"
	"github.com/yairfalse/purku/orchestrator"
)

var (
	teardownDryRun      bool
	teardownYes         bool
	teardownJSON        bool
	teardownVerbose     bool
	teardownMetricsAddr string
)

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Delete every non-protected resource in the configured scopes",
	Long: `Tear the configured accounts and regions down to their protected
defaults. Resources are deleted in dependency order; blocked resources
are retried until the scope converges.

This is destructive and final. Without --yes, purku asks for explicit
confirmation listing every scope it is about to empty.`,
	Example: `  purku teardown --dry-run         # Same as scan
  purku teardown                   # Interactive confirmation
  purku teardown --yes             # No prompt (CI use)
  purku teardown --metrics :9090   # Expose progress counters`,
	RunE: runTeardown,
}

func init() {
	rootCmd.AddCommand(teardownCmd)

	teardownCmd.Flags().BoolVar(&teardownDryRun, "dry-run", false, "Preview without deleting anything")
	teardownCmd.Flags().BoolVarP(&teardownYes, "yes", "y", false, "Skip the confirmation prompt")
	teardownCmd.Flags().BoolVar(&teardownJSON, "json", false, "Emit the full report document as JSON")
	teardownCmd.Flags().BoolVarP(&teardownVerbose, "verbose", "v", false, "Verbose output")
	teardownCmd.Flags().StringVar(&teardownMetricsAddr, "metrics", "", "Metrics server address (disabled when empty)")
}

func runTeardown(cmd *cobra.Command, args []string) error {
	setupLogging(teardownVerbose)
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !teardownDryRun && !teardownYes {
		if !confirmTeardown(cfg) {
			fmt.Println("aborted")
			return nil
		}
	}

	result, err := executeRun(ctx, cfg, newRunID(), teardownDryRun, teardownMetricsAddr)
	if err != nil {
		return err
	}
	return printResult(result, teardownJSON)
}

// confirmTeardown lists every scope about to be emptied and requires a
// typed "yes". Anything else aborts.
func confirmTeardown(cfg *config.Config) bool {
	fmt.Println("About to tear down the following scopes:")
	for _, scope := range orchestrator.ExpandScopes(cfg.Accounts, cfg.Regions) {
		fmt.Printf("  %s\n", scope)
	}
	fmt.Print("\nThis deletes every non-protected resource. Type 'yes' to continue: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == "yes"
}
