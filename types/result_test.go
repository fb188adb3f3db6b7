package types

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeClassification(t *testing.T) {
	assert.True(t, OutcomeDeleted.Success())
	assert.True(t, OutcomeAlreadyGone.Success())
	assert.False(t, OutcomeBlocked.Success())
	assert.True(t, OutcomeBlocked.Retryable())
	assert.False(t, OutcomeFailed.Retryable())
	assert.False(t, OutcomeTimeout.Retryable())
}

func TestScopeResultBuckets(t *testing.T) {
	sr := NewScopeResult(Scope{AccountID: "111122223333", Region: "us-east-1"})

	outcomes := []Outcome{
		OutcomeDeleted, OutcomeDeleted, OutcomeAlreadyGone,
		OutcomeProtected, OutcomeBlocked, OutcomeFailed, OutcomeTimeout,
	}
	for i, o := range outcomes {
		sr.Add(Record{
			Resource: Resource{ID: string(rune('a' + i)), Type: TypeSubnet},
			Outcome:  o,
			At:       time.Now(),
		})
	}
	sr.Finalize()

	counts := sr.Counts()
	assert.Equal(t, 2, counts[OutcomeDeleted])
	assert.Equal(t, 1, counts[OutcomeAlreadyGone])
	assert.Equal(t, 1, counts[OutcomeProtected])
	assert.Equal(t, 1, counts[OutcomeBlocked])
	assert.Equal(t, 1, counts[OutcomeFailed])
	assert.Equal(t, 1, counts[OutcomeTimeout])
	assert.False(t, sr.EndTime.IsZero())
	assert.GreaterOrEqual(t, sr.Duration, time.Duration(0))
}

func TestRunResultMergeConcurrent(t *testing.T) {
	rr := NewRunResult("run-1", false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sr := NewScopeResult(Scope{AccountID: "acct", Region: "region"})
			sr.Add(Record{Resource: Resource{ID: "r", Type: TypeVolume}, Outcome: OutcomeDeleted})
			sr.Finalize()
			rr.MergeScope(sr)
			if i%2 == 0 {
				rr.AddScopeError(Scope{AccountID: "bad", Region: "region"}, errors.New("auth failed"))
			}
		}(i)
	}
	wg.Wait()
	rr.Finalize()

	require.Len(t, rr.Scopes, 10)
	assert.Len(t, rr.ScopeErrors, 5)
	assert.Equal(t, 10, rr.TotalCounts()[OutcomeDeleted])
}
