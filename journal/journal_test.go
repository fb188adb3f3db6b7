package journal

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/purku/types"
)

func TestAppendAndRead(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir, "run-1")
	require.NoError(t, err)

	scope := types.Scope{AccountID: "111122223333", Region: "eu-west-1"}
	require.NoError(t, j.Append(EntryRunStarted, "", map[string]string{"run_id": "run-1"}))
	require.NoError(t, j.AppendOutcome(scope, types.Record{
		Resource: types.Resource{ID: "vpc-1", Type: types.TypeVPC, Scope: scope},
		Outcome:  types.OutcomeDeleted,
		At:       time.Now(),
	}))
	require.NoError(t, j.Close())

	entries, err := Read(filepath.Join(dir, "purku-run-1.jsonl"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, EntryRunStarted, entries[0].Type)
	assert.Equal(t, int64(1), entries[0].Sequence)
	assert.Equal(t, EntryOutcome, entries[1].Type)
	assert.Equal(t, scope.String(), entries[1].Scope)
	assert.Equal(t, int64(2), entries[1].Sequence)
}

func TestConcurrentAppendsKeepSequenceDense(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir, "run-2")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = j.Append(EntryOutcome, "a/r", nil)
		}()
	}
	wg.Wait()
	require.NoError(t, j.Close())

	entries, err := Read(filepath.Join(dir, "purku-run-2.jsonl"))
	require.NoError(t, err)
	require.Len(t, entries, 20)

	seen := make(map[int64]bool)
	for _, e := range entries {
		seen[e.Sequence] = true
	}
	for i := int64(1); i <= 20; i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}
