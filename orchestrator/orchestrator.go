// Package orchestrator fans a teardown run out over (account, region)
// scopes. Scopes are independent: each gets its own provider client,
// discovery pass and sweeper, and a failing scope never takes down the
// run.
package orchestrator

import (
	"context"
	"sync"

	"github.com/yairfalse/purku/discover"
	"github.com/yairfalse/purku/journal"
	"github.com/yairfalse/purku/plan"
	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/sweep"
	"github.com/yairfalse/purku/telemetry"
	"github.com/yairfalse/purku/types"
)

// Emitter receives per-outcome metrics. A nil Emitter disables emission.
type Emitter interface {
	Observe(rec types.Record)
}

// Options tunes a run.
type Options struct {
	// Workers bounds concurrent scope pipelines.
	Workers int
	Sweep   sweep.Options
}

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
}

// Orchestrator schedules scope pipelines for one run.
type Orchestrator struct {
	factory providers.Factory
	opts    Options
	logger  *telemetry.Logger
	journal *journal.Journal
	emitter Emitter
}

// New creates an Orchestrator.
func New(factory providers.Factory, opts Options, logger *telemetry.Logger) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{factory: factory, opts: opts, logger: logger}
}

// WithJournal attaches an audit journal to the run.
func (o *Orchestrator) WithJournal(j *journal.Journal) *Orchestrator {
	o.journal = j
	return o
}

// WithEmitter attaches a metrics emitter to the run.
func (o *Orchestrator) WithEmitter(e Emitter) *Orchestrator {
	o.emitter = e
	return o
}

// ExpandScopes builds the scope matrix from account and region lists.
func ExpandScopes(accounts, regions []string) []types.Scope {
	scopes := make([]types.Scope, 0, len(accounts)*len(regions))
	for _, account := range accounts {
		for _, region := range regions {
			scopes = append(scopes, types.Scope{AccountID: account, Region: region})
		}
	}
	return scopes
}

// Run processes every scope through a bounded worker pool and returns
// the aggregated result. Scope failures land in ScopeErrors; the run
// itself always completes.
func (o *Orchestrator) Run(ctx context.Context, runID string, scopes []types.Scope) *types.RunResult {
	result := types.NewRunResult(runID, o.opts.Sweep.DryRun)
	o.appendJournal(journal.EntryRunStarted, "", map[string]any{
		"run_id":  runID,
		"dry_run": o.opts.Sweep.DryRun,
		"scopes":  len(scopes),
	})

	queue := make(chan types.Scope)
	var wg sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for scope := range queue {
				o.runScope(ctx, scope, result)
			}
		}()
	}

	for _, scope := range scopes {
		queue <- scope
	}
	close(queue)
	wg.Wait()

	result.Finalize()
	o.appendJournal(journal.EntryRunFinished, "", result.TotalCounts())
	return result
}

// runScope is one scope's full pipeline: authenticate, discover, sweep
// phase by phase, merge. Any error before sweeping fails the scope
// wholesale.
func (o *Orchestrator) runScope(ctx context.Context, scope types.Scope, run *types.RunResult) {
	logger := o.logger.WithScope(scope.AccountID, scope.Region)
	o.appendJournal(journal.EntryScopeStarted, scope.String(), nil)

	provider, err := o.factory(ctx, scope)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Msg("provider setup failed, skipping scope")
		o.failScope(run, scope, err)
		return
	}

	discovery, err := discover.New(provider, logger).Discover(ctx, scope)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Msg("discovery failed, skipping scope")
		o.failScope(run, scope, err)
		return
	}

	result := types.NewScopeResult(scope)
	for _, rec := range discovery.Protected {
		result.Add(rec)
	}

	logger.WithContext(ctx).Info().
		Int("candidates", discovery.CandidateCount()).
		Int("protected", len(discovery.Protected)).
		Msg("scope discovered")

	sweeper := sweep.New(provider, o.opts.Sweep, logger)
	for _, t := range plan.Phases {
		if ctx.Err() != nil {
			// Stop sweeping, but keep everything the scope already
			// achieved; only the remaining phases are lost.
			o.failScope(run, scope, ctx.Err())
			break
		}
		sweeper.RunPhase(ctx, t, discovery.Candidates[t], result)
	}

	result.Finalize()
	o.recordScope(scope, result)
	run.MergeScope(result)

	logger.WithContext(ctx).Info().
		Dur("duration", result.Duration).
		Int("deleted", len(result.Deleted)).
		Int("blocked", len(result.Blocked)).
		Int("failed", len(result.Failed)).
		Msg("scope complete")
}

func (o *Orchestrator) failScope(run *types.RunResult, scope types.Scope, err error) {
	run.AddScopeError(scope, err)
	o.appendJournal(journal.EntryScopeError, scope.String(), err.Error())
}

// recordScope journals and emits every outcome of a finished scope.
func (o *Orchestrator) recordScope(scope types.Scope, result *types.ScopeResult) {
	for _, bucket := range [][]types.Record{
		result.Deleted, result.AlreadyGone, result.Protected,
		result.Blocked, result.Timeout, result.Failed,
	} {
		for _, rec := range bucket {
			if o.journal != nil {
				if err := o.journal.AppendOutcome(scope, rec); err != nil {
					o.logger.Error().Err(err).Msg("journal append failed")
				}
			}
			if o.emitter != nil {
				o.emitter.Observe(rec)
			}
		}
	}
}

func (o *Orchestrator) appendJournal(entryType journal.EntryType, scope string, data any) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Append(entryType, scope, data); err != nil {
		o.logger.Error().Err(err).Msg("journal append failed")
	}
}
