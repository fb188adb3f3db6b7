package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/purku/config"
	"github.com/yairfalse/purku/report"
	"github.com/yairfalse/purku/storage"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Show results of past runs",
	Long: `List stored runs, or render one run's full report from the history
database. Runs are stored only when paths.history_db is configured.`,
	Example: `  purku report                     # List stored run ids
  purku report 20260831-154210     # Summary of one run
  purku report 20260831-154210 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Emit the full report document as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Paths.HistoryDB == "" {
		return fmt.Errorf("paths.history_db is not configured")
	}

	history, err := storage.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	if len(args) == 0 {
		ids, err := history.RunIDs()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no stored runs")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	result, err := history.Load(args[0])
	if err != nil {
		return err
	}
	doc := report.Build(result)
	if reportJSON {
		return report.WriteJSON(os.Stdout, doc)
	}
	return report.WriteSummary(os.Stdout, doc)
}
