package types

import (
	"sync"
	"time"
)

// ScopeResult accumulates outcomes for a single (account, region) scope.
// It is owned by exactly one scope pipeline until Finalize, so it needs
// no locking of its own.
type ScopeResult struct {
	Scope     Scope         `json:"scope"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	Deleted     []Record `json:"deleted,omitempty"`
	AlreadyGone []Record `json:"already_gone,omitempty"`
	Protected   []Record `json:"protected,omitempty"`
	// Blocked holds resources still dependency-blocked after the retry
	// loop exhausted - distinct from Failed.
	Blocked []Record `json:"blocked,omitempty"`
	Timeout []Record `json:"timeout,omitempty"`
	Failed  []Record `json:"failed,omitempty"`
}

// NewScopeResult starts accumulation for one scope.
func NewScopeResult(scope Scope) *ScopeResult {
	return &ScopeResult{Scope: scope, StartTime: time.Now()}
}

// Add records one outcome. Every outcome lands in exactly one bucket.
func (sr *ScopeResult) Add(rec Record) {
	switch rec.Outcome {
	case OutcomeDeleted:
		sr.Deleted = append(sr.Deleted, rec)
	case OutcomeAlreadyGone:
		sr.AlreadyGone = append(sr.AlreadyGone, rec)
	case OutcomeProtected:
		sr.Protected = append(sr.Protected, rec)
	case OutcomeBlocked:
		sr.Blocked = append(sr.Blocked, rec)
	case OutcomeTimeout:
		sr.Timeout = append(sr.Timeout, rec)
	case OutcomeFailed:
		sr.Failed = append(sr.Failed, rec)
	}
}

// Finalize stamps timing. The result must not be mutated afterwards.
func (sr *ScopeResult) Finalize() {
	sr.EndTime = time.Now()
	sr.Duration = sr.EndTime.Sub(sr.StartTime)
}

// Counts returns outcome totals for the scope.
func (sr *ScopeResult) Counts() map[Outcome]int {
	return map[Outcome]int{
		OutcomeDeleted:     len(sr.Deleted),
		OutcomeAlreadyGone: len(sr.AlreadyGone),
		OutcomeProtected:   len(sr.Protected),
		OutcomeBlocked:     len(sr.Blocked),
		OutcomeTimeout:     len(sr.Timeout),
		OutcomeFailed:      len(sr.Failed),
	}
}

// ScopeError records a whole scope that could not be processed, e.g. an
// authentication failure for that account.
type ScopeError struct {
	Scope Scope     `json:"scope"`
	Error string    `json:"error"`
	At    time.Time `json:"at"`
}

// RunResult aggregates all scope results for one invocation. Scope
// pipelines never touch it while processing - completed ScopeResults are
// merged in under the mutex at scope boundaries only.
type RunResult struct {
	mu sync.Mutex

	RunID     string        `json:"run_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	DryRun    bool          `json:"dry_run"`

	Scopes      []*ScopeResult `json:"scopes"`
	ScopeErrors []ScopeError   `json:"scope_errors,omitempty"`
}

// NewRunResult starts aggregation for one invocation.
func NewRunResult(runID string, dryRun bool) *RunResult {
	return &RunResult{RunID: runID, DryRun: dryRun, StartTime: time.Now()}
}

// MergeScope hands a finalized ScopeResult to the aggregate.
func (rr *RunResult) MergeScope(sr *ScopeResult) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.Scopes = append(rr.Scopes, sr)
}

// AddScopeError records a scope that failed wholesale.
func (rr *RunResult) AddScopeError(scope Scope, err error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.ScopeErrors = append(rr.ScopeErrors, ScopeError{
		Scope: scope,
		Error: err.Error(),
		At:    time.Now(),
	})
}

// Finalize stamps run timing after all scopes have completed.
func (rr *RunResult) Finalize() {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.EndTime = time.Now()
	rr.Duration = rr.EndTime.Sub(rr.StartTime)
}

// TotalCounts sums outcome totals across all scopes.
func (rr *RunResult) TotalCounts() map[Outcome]int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	totals := make(map[Outcome]int)
	for _, sr := range rr.Scopes {
		for outcome, n := range sr.Counts() {
			totals[outcome] += n
		}
	}
	return totals
}
