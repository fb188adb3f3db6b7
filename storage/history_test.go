package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/purku/types"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "purku.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func finishedRun(runID string) *types.RunResult {
	rr := types.NewRunResult(runID, false)
	sr := types.NewScopeResult(types.Scope{AccountID: "111122223333", Region: "eu-west-1"})
	sr.Add(types.Record{
		Resource: types.Resource{ID: "vpc-1", Type: types.TypeVPC},
		Outcome:  types.OutcomeDeleted,
	})
	sr.Finalize()
	rr.MergeScope(sr)
	rr.Finalize()
	return rr
}

func TestSaveAndLoad(t *testing.T) {
	h := openTestHistory(t)

	require.NoError(t, h.Save(finishedRun("run-1")))

	loaded, err := h.Load("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	require.Len(t, loaded.Scopes, 1)
	assert.Equal(t, 1, loaded.TotalCounts()[types.OutcomeDeleted])
}

func TestSaveRequiresRunID(t *testing.T) {
	h := openTestHistory(t)
	assert.Error(t, h.Save(types.NewRunResult("", false)))
}

func TestLoadUnknownRun(t *testing.T) {
	h := openTestHistory(t)
	_, err := h.Load("missing")
	assert.Error(t, err)
}

func TestRunIDs(t *testing.T) {
	h := openTestHistory(t)
	require.NoError(t, h.Save(finishedRun("run-a")))
	require.NoError(t, h.Save(finishedRun("run-b")))

	ids, err := h.RunIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, ids)
}
