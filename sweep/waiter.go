package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/types"
)

// awaitAll confirms async deletions in parallel and records each as
// Deleted or Timeout. The whole batch shares one wall-clock budget
// start; only this scope's goroutines wait, never other scopes.
func (s *Sweeper) awaitAll(ctx context.Context, ops providers.ResourceOps, issued []types.Resource, budget time.Duration, result *types.ScopeResult) {
	checker, ok := ops.(providers.StatusChecker)
	if !ok {
		// Async trait without a status op - nothing to poll, trust the
		// accepted delete.
		for _, r := range issued {
			result.Add(record(r, types.OutcomeDeleted, ""))
		}
		return
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, r := range issued {
		wg.Add(1)
		go func(r types.Resource) {
			defer wg.Done()
			rec := s.awaitOne(ctx, checker, r, budget)
			mu.Lock()
			result.Add(rec)
			mu.Unlock()
		}(r)
	}
	wg.Wait()
}

// awaitOne polls status at the fixed interval until the resource is
// gone or the budget elapses. Not-found means deletion completed; a
// budget miss is Timeout, not Failed - the delete may still land.
func (s *Sweeper) awaitOne(ctx context.Context, checker providers.StatusChecker, r types.Resource, budget time.Duration) types.Record {
	deadline := s.now().Add(budget)

	for {
		status, err := checker.Status(ctx, r)
		switch {
		case err != nil && providers.IsNotFound(err):
			return record(r, types.OutcomeDeleted, "")
		case err != nil:
			// Transient describe failures do not decide anything;
			// keep polling until the budget says stop.
			s.logger.WithContext(ctx).Debug().
				Err(err).
				Str("resource_id", r.ID).
				Msg("status poll failed")
		case status == providers.StatusDeleted:
			return record(r, types.OutcomeDeleted, "")
		}

		now := s.now()
		if !now.Before(deadline) {
			return record(r, types.OutcomeTimeout,
				"deletion not confirmed within "+budget.String())
		}
		// Shorten the last sleep so the final poll lands exactly on the
		// deadline instead of giving up one interval early.
		interval := s.opts.PollInterval
		if remaining := deadline.Sub(now); remaining < interval {
			interval = remaining
		}
		if err := s.sleep(ctx, interval); err != nil {
			return record(r, types.OutcomeTimeout, "wait cancelled: "+err.Error())
		}
	}
}
