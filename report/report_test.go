package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/purku/types"
)

func sampleRun() *types.RunResult {
	rr := types.NewRunResult("run-1", false)

	scopeA := types.Scope{AccountID: "111122223333", Region: "eu-west-1"}
	srA := types.NewScopeResult(scopeA)
	srA.Add(types.Record{
		Resource: types.Resource{ID: "vpc-custom", Type: types.TypeVPC, Scope: scopeA},
		Outcome:  types.OutcomeDeleted,
	})
	srA.Add(types.Record{
		Resource: types.Resource{ID: "vpc-default", Type: types.TypeVPC, Scope: scopeA, Name: "default"},
		Outcome:  types.OutcomeProtected,
		Reason:   "default vpc",
	})
	srA.Add(types.Record{
		Resource: types.Resource{ID: "sg-stuck", Type: types.TypeSecurityGroup, Scope: scopeA},
		Outcome:  types.OutcomeBlocked,
		Reason:   "dependency violation",
	})
	srA.Finalize()
	rr.MergeScope(srA)

	scopeB := types.Scope{AccountID: "111122223333", Region: "us-east-1"}
	srB := types.NewScopeResult(scopeB)
	srB.Add(types.Record{
		Resource: types.Resource{ID: "vpc-east", Type: types.TypeVPC, Scope: scopeB},
		Outcome:  types.OutcomeDeleted,
	})
	srB.Finalize()
	rr.MergeScope(srB)

	rr.AddScopeError(types.Scope{AccountID: "999999999999", Region: "eu-west-1"}, errors.New("access denied"))
	rr.Finalize()
	return rr
}

func TestBuildSummaryCounts(t *testing.T) {
	doc := Build(sampleRun())

	assert.Equal(t, 2, doc.Summary[types.TypeVPC][types.OutcomeDeleted])
	assert.Equal(t, 1, doc.Summary[types.TypeVPC][types.OutcomeProtected])
	assert.Equal(t, 1, doc.Summary[types.TypeSecurityGroup][types.OutcomeBlocked])
}

func TestBuildBuckets(t *testing.T) {
	doc := Build(sampleRun())

	require.Len(t, doc.Deleted, 2)
	require.Len(t, doc.Protected, 1)
	require.Len(t, doc.Blocked, 1)
	assert.Empty(t, doc.Failed)

	assert.Equal(t, "dependency violation", doc.Blocked[0].Reason)
	require.Len(t, doc.Errors, 1)
	assert.Equal(t, "access denied", doc.Errors[0].Error)
}

func TestBuildOrdersItemsDeterministically(t *testing.T) {
	doc := Build(sampleRun())

	// eu-west-1 sorts before us-east-1 regardless of merge order.
	assert.Equal(t, "vpc-custom", doc.Deleted[0].ID)
	assert.Equal(t, "vpc-east", doc.Deleted[1].ID)
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Build(sampleRun())))
	assert.Contains(t, buf.String(), `"run_id": "run-1"`)
	assert.Contains(t, buf.String(), `"summary"`)
}

func TestWriteSummary(t *testing.T) {
	rr := sampleRun()
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Build(rr)))

	out := buf.String()
	assert.Contains(t, out, "run run-1 (teardown)")
	assert.Contains(t, out, "deleted")
	assert.Contains(t, out, "scope 999999999999/eu-west-1 failed: access denied")
}
