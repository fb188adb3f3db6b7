// Package sweep executes deletions for one scope: one pass issues a
// delete per remaining resource, classifies the response, and the
// convergence loop re-drives the blocked set until it drains, progress
// stalls, or the retry budget runs out.
package sweep

import (
	"context"
	"time"

	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/telemetry"
	"github.com/yairfalse/purku/types"
)

// Sweeper drives teardown phases for a single scope. It is not safe for
// concurrent use; the orchestrator creates one per scope.
type Sweeper struct {
	provider providers.Provider
	opts     Options
	logger   *telemetry.Logger

	// Injected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Sweeper for one scope's provider.
func New(provider providers.Provider, opts Options, logger *telemetry.Logger) *Sweeper {
	opts.applyDefaults()
	return &Sweeper{
		provider: provider,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPhase processes one resource type's candidates to completion and
// records every outcome in result. It returns only when each candidate
// is deleted, already gone, failed, timed out, or exhausted-blocked.
func (s *Sweeper) RunPhase(ctx context.Context, t types.ResourceType, candidates []types.Resource, result *types.ScopeResult) {
	if len(candidates) == 0 {
		return
	}
	ops := s.provider.Ops(t)
	if ops == nil {
		return
	}
	traits := types.TraitsOf(t)

	pending := candidates
	blockedReasons := make(map[string]string)

	for pass := 1; pass <= s.opts.MaxRetries; pass++ {
		// Cross-references may have been re-established or belong to a
		// group not yet cleared, so self-referencing types re-clear
		// before every pass, not just the first.
		if traits.SelfReferencing && !s.opts.DryRun {
			s.clearRules(ctx, ops, pending)
		}

		var blocked []types.Resource
		var issued []types.Resource
		progress := 0

		for _, r := range pending {
			outcome, reason := s.deleteOne(ctx, ops, r)
			switch outcome {
			case types.OutcomeDeleted:
				progress++
				if traits.Async && !s.opts.DryRun {
					issued = append(issued, r)
				} else {
					result.Add(record(r, types.OutcomeDeleted, reason))
				}
			case types.OutcomeAlreadyGone:
				progress++
				result.Add(record(r, types.OutcomeAlreadyGone, reason))
			case types.OutcomeBlocked:
				blockedReasons[r.Key()] = reason
				blocked = append(blocked, r)
			case types.OutcomeFailed:
				result.Add(record(r, types.OutcomeFailed, reason))
			}
		}

		if len(issued) > 0 {
			s.awaitAll(ctx, ops, issued, s.waitBudget(t, traits), result)
		}

		s.logger.WithContext(ctx).Info().
			Str("resource_type", string(t)).
			Int("pass", pass).
			Int("progress", progress).
			Int("blocked", len(blocked)).
			Msg("deletion pass complete")

		pending = blocked
		if len(pending) == 0 {
			return
		}
		// A pass that freed nothing will not free anything next time
		// either - stop instead of spinning out the retry budget.
		if progress == 0 {
			break
		}
		if pass < s.opts.MaxRetries {
			if err := s.sleep(ctx, s.opts.RetryDelay); err != nil {
				break
			}
		}
	}

	// Whatever is still blocked is a dependency violation for the run,
	// distinct from Failed.
	for _, r := range pending {
		result.Add(record(r, types.OutcomeBlocked, blockedReasons[r.Key()]))
	}
}

func (s *Sweeper) waitBudget(t types.ResourceType, traits types.Traits) time.Duration {
	if budget, ok := s.opts.WaitBudgets[t]; ok {
		return budget
	}
	return traits.WaitBudget
}

// deleteOne issues a single delete and classifies the response. No
// resource is deleted twice in one pass; the caller owns the pass sets.
func (s *Sweeper) deleteOne(ctx context.Context, ops providers.ResourceOps, r types.Resource) (types.Outcome, string) {
	if s.opts.DryRun {
		return types.OutcomeDeleted, "dry run"
	}

	err := ops.Delete(ctx, r)
	switch {
	case err == nil:
		return types.OutcomeDeleted, ""
	case providers.IsNotFound(err):
		return types.OutcomeAlreadyGone, err.Error()
	case providers.IsDependency(err):
		return types.OutcomeBlocked, err.Error()
	default:
		return types.OutcomeFailed, err.Error()
	}
}

// clearRules strips cross-reference rules from every pending resource.
// Failures are logged and skipped - a group whose rules would not clear
// surfaces as blocked on the delete that follows.
func (s *Sweeper) clearRules(ctx context.Context, ops providers.ResourceOps, pending []types.Resource) {
	clearer, ok := ops.(providers.RuleClearer)
	if !ok {
		return
	}
	for _, r := range pending {
		if err := clearer.ClearRules(ctx, r); err != nil {
			s.logger.WithContext(ctx).Warn().
				Err(err).
				Str("resource_id", r.ID).
				Msg("rule clearing failed")
		}
	}
}

func record(r types.Resource, outcome types.Outcome, reason string) types.Record {
	rec := types.Record{Resource: r, Outcome: outcome, At: time.Now()}
	if outcome == types.OutcomeFailed {
		rec.Error = reason
	} else {
		rec.Reason = reason
	}
	return rec
}
