package sweep

import (
	"time"

	"github.com/yairfalse/purku/types"
)

// Options tune one sweeper instance. Zero values pick up defaults.
type Options struct {
	// MaxRetries bounds convergence passes per phase.
	MaxRetries int
	// RetryDelay is the fixed wait between passes, giving the provider
	// time to propagate deletions.
	RetryDelay time.Duration
	// PollInterval is the async waiter's fixed poll interval.
	PollInterval time.Duration
	// WaitBudgets overrides per-type async wait budgets from the trait
	// table. Types absent here keep their built-in budget.
	WaitBudgets map[types.ResourceType]time.Duration
	// DryRun records every candidate as deleted without calling the
	// provider. Rule clearing and waiting are skipped too.
	DryRun bool
}

func (o *Options) applyDefaults() {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 4
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 30 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 15 * time.Second
	}
}
