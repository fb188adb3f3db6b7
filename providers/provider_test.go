package providers

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/purku/types"
)

type stubProvider struct{}

func (stubProvider) Ops(t types.ResourceType) ResourceOps { return nil }
func (stubProvider) Name() string                         { return "stub" }

func TestRegistry(t *testing.T) {
	Register("stub", func(ctx context.Context, scope types.Scope) (Provider, error) {
		return stubProvider{}, nil
	})

	factory, err := Get("stub")
	require.NoError(t, err)

	p, err := factory(context.Background(), types.Scope{AccountID: "a", Region: "r"})
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())

	_, err = Get("nope")
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("delete subnet: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrDependency))

	assert.True(t, IsDependency(fmt.Errorf("delete vpc: %w", ErrDependency)))
	assert.False(t, IsDependency(fmt.Errorf("throttled")))
}
