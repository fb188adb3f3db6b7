package sweep

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/purku/telemetry"
	"github.com/yairfalse/purku/types"
)

// fakeClock advances only when the sweeper sleeps. Locked because
// awaitAll polls from several goroutines.
type fakeClock struct {
	mu      sync.Mutex
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	c.mu.Unlock()
	return ctx.Err()
}

func newWaiterSweeper(cloud *fakeCloud, opts Options) (*Sweeper, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(singleTypeProvider{ops: cloud}, opts, telemetry.NewLogger("test"))
	s.now = clock.now
	s.sleep = clock.sleep
	return s, clock
}

func TestAwaitOneCompletesOnNotFound(t *testing.T) {
	cloud := newFakeCloud()
	// No scripted statuses: the first poll reports not-found.
	s, clock := newWaiterSweeper(cloud, Options{PollInterval: 15 * time.Second})

	rec := s.awaitOne(context.Background(), cloud, types.Resource{ID: "nat-1", Type: types.TypeNATGateway}, 10*time.Minute)

	assert.Equal(t, types.OutcomeDeleted, rec.Outcome)
	assert.Empty(t, clock.slept, "completion on first poll needs no sleep")
}

func TestAwaitOneCompletesOnDeletedState(t *testing.T) {
	cloud := newFakeCloud()
	cloud.statuses["nat-1"] = []string{"deleting", "deleting", "deleted"}
	s, clock := newWaiterSweeper(cloud, Options{PollInterval: 15 * time.Second})

	rec := s.awaitOne(context.Background(), cloud, types.Resource{ID: "nat-1", Type: types.TypeNATGateway}, 10*time.Minute)

	assert.Equal(t, types.OutcomeDeleted, rec.Outcome)
	assert.Len(t, clock.slept, 2)
}

func TestAwaitOneTimesOutAtBudgetBoundary(t *testing.T) {
	cloud := newFakeCloud()
	// Status never leaves "deleting".
	statuses := make([]string, 100)
	for i := range statuses {
		statuses[i] = "deleting"
	}
	cloud.statuses["nat-1"] = statuses

	s, clock := newWaiterSweeper(cloud, Options{PollInterval: 15 * time.Second})
	start := clock.current

	rec := s.awaitOne(context.Background(), cloud, types.Resource{ID: "nat-1", Type: types.TypeNATGateway}, time.Minute)

	assert.Equal(t, types.OutcomeTimeout, rec.Outcome)
	assert.Contains(t, rec.Reason, "1m0s")
	// Polls at 0s, 15s, 30s, 45s and once more exactly on the boundary
	// at 60s, then gives up without sleeping past the budget.
	assert.Len(t, clock.slept, 4)
	assert.Equal(t, time.Minute, clock.current.Sub(start), "waiter must stop exactly at the budget")
}

func TestAwaitOneConfirmsOnFinalBoundaryPoll(t *testing.T) {
	cloud := newFakeCloud()
	// Still draining at 45s; the last allowed poll at 60s sees it gone.
	cloud.statuses["nat-1"] = []string{"deleting", "deleting", "deleting", "deleting", "deleted"}

	s, clock := newWaiterSweeper(cloud, Options{PollInterval: 15 * time.Second})
	start := clock.current

	rec := s.awaitOne(context.Background(), cloud, types.Resource{ID: "nat-1", Type: types.TypeNATGateway}, time.Minute)

	assert.Equal(t, types.OutcomeDeleted, rec.Outcome)
	assert.Len(t, clock.slept, 4)
	assert.Equal(t, time.Minute, clock.current.Sub(start))
}

func TestConfiguredBudgetOverridesDefault(t *testing.T) {
	cloud := newFakeCloud("nat-1")
	statuses := make([]string, 100)
	for i := range statuses {
		statuses[i] = "deleting"
	}
	cloud.statuses["nat-1"] = statuses

	s, _ := newWaiterSweeper(cloud, Options{
		PollInterval: 15 * time.Second,
		WaitBudgets:  map[types.ResourceType]time.Duration{types.TypeNATGateway: 30 * time.Second},
	})
	result := types.NewScopeResult(types.Scope{AccountID: "a", Region: "r"})

	s.RunPhase(context.Background(), types.TypeNATGateway, []types.Resource{
		{ID: "nat-1", Type: types.TypeNATGateway},
	}, result)

	require.Len(t, result.Timeout, 1)
	assert.Contains(t, result.Timeout[0].Reason, "30s")
}

func TestAwaitAllRecordsEveryResource(t *testing.T) {
	cloud := newFakeCloud()
	cloud.statuses["nat-slow"] = []string{"deleting", "deleted"}
	s, _ := newWaiterSweeper(cloud, Options{PollInterval: time.Second})
	result := types.NewScopeResult(types.Scope{AccountID: "a", Region: "r"})

	s.awaitAll(context.Background(), cloud, []types.Resource{
		{ID: "nat-gone", Type: types.TypeNATGateway},
		{ID: "nat-slow", Type: types.TypeNATGateway},
	}, time.Minute, result)

	require.Len(t, result.Deleted, 2)
}

func TestRunPhaseWaitsForAsyncTypes(t *testing.T) {
	cloud := newFakeCloud("nat-1")
	// After the delete is issued, two polls see it draining, then gone.
	cloud.statuses["nat-1"] = []string{"deleting", "deleted"}

	s, _ := newWaiterSweeper(cloud, Options{PollInterval: time.Second})
	result := types.NewScopeResult(types.Scope{AccountID: "a", Region: "r"})

	s.RunPhase(context.Background(), types.TypeNATGateway, []types.Resource{
		{ID: "nat-1", Type: types.TypeNATGateway},
	}, result)

	require.Len(t, result.Deleted, 1)
	assert.Empty(t, result.Timeout)
}
