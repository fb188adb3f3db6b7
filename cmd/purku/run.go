package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yairfalse/purku/config"
	"github.com/yairfalse/purku/internal/emitter"
	"github.com/yairfalse/purku/journal"
	"github.com/yairfalse/purku/orchestrator"
	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/report"
	"github.com/yairfalse/purku/storage"
	"github.com/yairfalse/purku/sweep"
	"github.com/yairfalse/purku/telemetry"
	"github.com/yairfalse/purku/types"
)

// newRunID stamps one invocation. Journal files and history entries key
// off it.
func newRunID() string {
	return time.Now().UTC().Format("20060102-150405")
}

func waitBudgets(cfg *config.Config) map[types.ResourceType]time.Duration {
	if len(cfg.Run.WaitBudgets) == 0 {
		return nil
	}
	budgets := make(map[types.ResourceType]time.Duration, len(cfg.Run.WaitBudgets))
	for name, budget := range cfg.Run.WaitBudgets {
		budgets[types.ResourceType(name)] = budget
	}
	return budgets
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func setupLogging(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// executeRun wires the full pipeline for one invocation and returns the
// aggregated result. dryRun overrides whatever the config says.
func executeRun(ctx context.Context, cfg *config.Config, runID string, dryRun bool, metricsAddr string) (*types.RunResult, error) {
	logger := telemetry.NewLogger("purku")

	factory, err := providers.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}

	opts := orchestrator.Options{
		Workers: cfg.Run.Workers,
		Sweep: sweep.Options{
			MaxRetries:   cfg.Run.MaxRetries,
			RetryDelay:   cfg.Run.RetryDelay,
			PollInterval: cfg.Run.PollInterval,
			WaitBudgets:  waitBudgets(cfg),
			DryRun:       dryRun,
		},
	}
	orch := orchestrator.New(factory, opts, logger)

	if cfg.Paths.JournalDir != "" {
		j, err := journal.Open(cfg.Paths.JournalDir, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() { _ = j.Close() }()
		orch = orch.WithJournal(j)
	}

	if metricsAddr != "" {
		metrics := emitter.NewPrometheus()
		orch = orch.WithEmitter(metrics)
		go serveMetrics(metricsAddr, metrics, logger)
	}

	scopes := orchestrator.ExpandScopes(cfg.Accounts, cfg.Regions)
	logger.Info().
		Str("run_id", runID).
		Int("scopes", len(scopes)).
		Bool("dry_run", dryRun).
		Msg("starting run")

	result := orch.Run(ctx, runID, scopes)

	if cfg.Paths.HistoryDB != "" {
		if err := saveHistory(cfg.Paths.HistoryDB, result); err != nil {
			logger.Error().Err(err).Msg("failed to save run history")
		}
	}
	return result, nil
}

func serveMetrics(addr string, metrics *emitter.Prometheus, logger *telemetry.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info().Str("addr", addr).Msg("starting metrics server")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed { // #nosec G114 -- scrape endpoint, lifetime of the run
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func saveHistory(path string, result *types.RunResult) error {
	history, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()
	return history.Save(result)
}

// printResult renders the run to stdout and returns an error when the
// run left failures or unprocessed scopes behind.
func printResult(result *types.RunResult, asJSON bool) error {
	doc := report.Build(result)
	if asJSON {
		if err := report.WriteJSON(os.Stdout, doc); err != nil {
			return err
		}
	} else {
		if err := report.WriteSummary(os.Stdout, doc); err != nil {
			return err
		}
	}

	totals := result.TotalCounts()
	if totals[types.OutcomeFailed] > 0 || len(result.ScopeErrors) > 0 {
		return fmt.Errorf("run finished with %d failures and %d scope errors",
			totals[types.OutcomeFailed], len(result.ScopeErrors))
	}
	return nil
}
