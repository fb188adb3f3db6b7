package providers

import (
	"context"
	"fmt"

	"github.com/yairfalse/purku/types"
)

// ResourceOps is the three-operation contract the teardown core depends
// on per resource type. The core never sees a concrete SDK shape.
type ResourceOps interface {
	// List enumerates all instances of the type in scope.
	List(ctx context.Context, scope types.Scope) ([]types.Resource, error)
	// Delete issues a single delete. Errors are classified by the
	// caller via IsNotFound / IsDependency.
	Delete(ctx context.Context, r types.Resource) error
}

// StatusDeleted is the normalized terminal state for async deletions.
// Implementations map provider-specific terminal states (e.g. EC2's
// "terminated") onto it so the waiter needs no per-provider knowledge.
const StatusDeleted = "deleted"

// StatusChecker is implemented by ops for async types. Status returns
// the provider-side state; a not-found error or StatusDeleted both mean
// deletion completed.
type StatusChecker interface {
	Status(ctx context.Context, r types.Resource) (string, error)
}

// RuleClearer is implemented by ops for self-referencing types. It
// removes cross-reference rules from one resource so mutually-referencing
// instances become deletable.
type RuleClearer interface {
	ClearRules(ctx context.Context, r types.Resource) error
}

// Provider hands out per-type ops for one authenticated scope.
type Provider interface {
	// Ops returns the ops for t, or nil if the provider does not
	// implement the type.
	Ops(t types.ResourceType) ResourceOps
	Name() string
}

// Factory builds an authenticated provider for one scope. Credential
// acquisition lives behind this; a factory error is a scope-level error.
type Factory func(ctx context.Context, scope types.Scope) (Provider, error)

var factories = make(map[string]Factory)

// Register registers a provider factory under a name.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Get returns the factory registered under name.
func Get(name string) (Factory, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not registered", name)
	}
	return factory, nil
}
