package types

import "time"

// Outcome classifies the result of one deletion attempt.
type Outcome string

const (
	// OutcomeDeleted means the provider accepted the delete.
	OutcomeDeleted Outcome = "deleted"
	// OutcomeAlreadyGone means the provider reported not-found. Treated
	// as success - re-deleting is idempotent.
	OutcomeAlreadyGone Outcome = "already_gone"
	// OutcomeProtected means the classifier flagged the resource as a
	// provider-managed default. No delete was attempted.
	OutcomeProtected Outcome = "protected"
	// OutcomeBlocked means a dependency still exists. Retry-eligible.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeTimeout means async completion was not confirmed within
	// budget. Deletion may still be in flight - not a failure.
	OutcomeTimeout Outcome = "timeout"
	// OutcomeFailed means the provider rejected the delete for a reason
	// other than dependency. Terminal for the run.
	OutcomeFailed Outcome = "failed"
)

// Success reports whether the outcome counts as a completed deletion.
func (o Outcome) Success() bool {
	return o == OutcomeDeleted || o == OutcomeAlreadyGone
}

// Retryable reports whether the outcome is eligible for another pass.
func (o Outcome) Retryable() bool {
	return o == OutcomeBlocked
}

// Record is one resource's final disposition within a run.
type Record struct {
	Resource Resource  `json:"resource"`
	Outcome  Outcome   `json:"outcome"`
	Reason   string    `json:"reason,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}
