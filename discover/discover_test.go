package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/telemetry"
	"github.com/yairfalse/purku/types"
)

// fakeOps serves a canned list, optionally failing.
type fakeOps struct {
	resources []types.Resource
	listErr   error
}

func (f *fakeOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.resources, nil
}

func (f *fakeOps) Delete(ctx context.Context, r types.Resource) error { return nil }

// fakeProvider hands out fakeOps per type.
type fakeProvider struct {
	ops map[types.ResourceType]*fakeOps
}

func (f *fakeProvider) Ops(t types.ResourceType) providers.ResourceOps {
	ops, ok := f.ops[t]
	if !ok {
		return nil
	}
	return ops
}

func (f *fakeProvider) Name() string { return "fake" }

var testScope = types.Scope{AccountID: "111122223333", Region: "eu-west-1"}

func vpc(id string, isDefault bool) types.Resource {
	return types.Resource{
		ID: id, Type: types.TypeVPC, Scope: testScope,
		Attributes: types.Attributes{IsDefault: isDefault},
	}
}

func subnet(id, vpcID string) types.Resource {
	return types.Resource{
		ID: id, Type: types.TypeSubnet, Scope: testScope,
		Attributes: types.Attributes{VpcID: vpcID},
	}
}

func TestDiscoverSplitsProtectedFromCandidates(t *testing.T) {
	provider := &fakeProvider{ops: map[types.ResourceType]*fakeOps{
		types.TypeVPC: {resources: []types.Resource{
			vpc("vpc-default", true),
			vpc("vpc-custom", false),
		}},
		types.TypeSecurityGroup: {resources: []types.Resource{
			{ID: "sg-default", Type: types.TypeSecurityGroup,
				Attributes: types.Attributes{VpcID: "vpc-custom", GroupName: "default"}},
			{ID: "sg-app", Type: types.TypeSecurityGroup,
				Attributes: types.Attributes{VpcID: "vpc-custom", GroupName: "app"}},
		}},
	}}

	d := New(provider, telemetry.NewLogger("test"))
	result, err := d.Discover(context.Background(), testScope)
	require.NoError(t, err)

	assert.Equal(t, []string{"vpc-custom"}, candidateIDs(result, types.TypeVPC))
	assert.Equal(t, []string{"sg-app"}, candidateIDs(result, types.TypeSecurityGroup))
	require.Len(t, result.Protected, 2)
	for _, rec := range result.Protected {
		assert.Equal(t, types.OutcomeProtected, rec.Outcome)
		assert.NotEmpty(t, rec.Reason)
	}
	assert.True(t, result.VpcIDs["vpc-custom"])
	assert.False(t, result.VpcIDs["vpc-default"])
}

func TestDiscoverFiltersToNonProtectedVpcs(t *testing.T) {
	provider := &fakeProvider{ops: map[types.ResourceType]*fakeOps{
		types.TypeVPC: {resources: []types.Resource{
			vpc("vpc-default", true),
			vpc("vpc-custom", false),
		}},
		types.TypeSubnet: {resources: []types.Resource{
			subnet("subnet-in-default", "vpc-default"),
			subnet("subnet-in-custom", "vpc-custom"),
		}},
		// Detached gateways carry no VPC id and stay in.
		types.TypeInternetGateway: {resources: []types.Resource{
			{ID: "igw-detached", Type: types.TypeInternetGateway},
		}},
	}}

	d := New(provider, telemetry.NewLogger("test"))
	result, err := d.Discover(context.Background(), testScope)
	require.NoError(t, err)

	assert.Equal(t, []string{"subnet-in-custom"}, candidateIDs(result, types.TypeSubnet))
	assert.Equal(t, []string{"igw-detached"}, candidateIDs(result, types.TypeInternetGateway))
}

func TestDiscoverToleratesListFailures(t *testing.T) {
	listErr := errors.New("throttled")
	provider := &fakeProvider{ops: map[types.ResourceType]*fakeOps{
		types.TypeVPC:      {resources: []types.Resource{vpc("vpc-custom", false)}},
		types.TypeSQSQueue: {listErr: listErr},
		types.TypeVolume: {resources: []types.Resource{
			{ID: "vol-1", Type: types.TypeVolume},
		}},
	}}

	d := New(provider, telemetry.NewLogger("test"))
	result, err := d.Discover(context.Background(), testScope)
	require.NoError(t, err)

	assert.Empty(t, result.Candidates[types.TypeSQSQueue])
	assert.ErrorIs(t, result.ListErrors[types.TypeSQSQueue], listErr)
	// Other types still enumerate.
	assert.Equal(t, []string{"vol-1"}, candidateIDs(result, types.TypeVolume))
	assert.Equal(t, 2, result.CandidateCount())
}

func TestDiscoverFailsScopeOnVpcListFailure(t *testing.T) {
	provider := &fakeProvider{ops: map[types.ResourceType]*fakeOps{
		types.TypeVPC: {listErr: errors.New("access denied")},
	}}

	d := New(provider, telemetry.NewLogger("test"))
	_, err := d.Discover(context.Background(), testScope)
	assert.Error(t, err)
}

func candidateIDs(result *Result, t types.ResourceType) []string {
	var ids []string
	for _, r := range result.Candidates[t] {
		ids = append(ids, r.ID)
	}
	return ids
}
