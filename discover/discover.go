// Package discover enumerates the scope's resources per type, applies
// the protection classifier inline and filters VPC-scoped types to the
// non-protected VPCs. A failing lister yields an empty result for that
// type, never an aborted scope.
package discover

import (
	"context"
	"fmt"
	"time"

	"github.com/yairfalse/purku/guard"
	"github.com/yairfalse/purku/plan"
	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/telemetry"
	"github.com/yairfalse/purku/types"
)

// Result is one scope's discovery output. Candidates hold only
// non-protected resources; every protected hit is in the ledger.
type Result struct {
	Scope      types.Scope
	Candidates map[types.ResourceType][]types.Resource
	Protected  []types.Record
	// VpcIDs is the non-protected VPC id set used to filter dependent
	// types. Dependent listers never re-scan globally.
	VpcIDs map[string]bool
	// ListErrors records per-type enumeration failures that were
	// tolerated (logged, empty result substituted).
	ListErrors map[types.ResourceType]error
}

// Discoverer runs discovery for one provider.
type Discoverer struct {
	provider providers.Provider
	logger   *telemetry.Logger
}

// New creates a Discoverer.
func New(provider providers.Provider, logger *telemetry.Logger) *Discoverer {
	return &Discoverer{provider: provider, logger: logger}
}

// Discover enumerates every planned type in scope. VPCs go first so the
// non-protected VPC id set exists before any dependent type is listed.
func (d *Discoverer) Discover(ctx context.Context, scope types.Scope) (*Result, error) {
	result := &Result{
		Scope:      scope,
		Candidates: make(map[types.ResourceType][]types.Resource),
		VpcIDs:     make(map[string]bool),
		ListErrors: make(map[types.ResourceType]error),
	}

	if err := d.discoverType(ctx, scope, types.TypeVPC, result); err != nil {
		// Without the VPC set every dependent filter is wrong; this is
		// the one list failure that fails the scope.
		return nil, fmt.Errorf("vpc discovery failed for %s: %w", scope, err)
	}
	for _, id := range result.Candidates[types.TypeVPC] {
		result.VpcIDs[id.ID] = true
	}

	for _, t := range plan.Phases {
		if t == types.TypeVPC {
			continue
		}
		if err := d.discoverType(ctx, scope, t, result); err != nil {
			result.ListErrors[t] = err
			d.logger.WithContext(ctx).Warn().
				Err(err).
				Str("resource_type", string(t)).
				Str("scope", scope.String()).
				Msg("listing failed, continuing with empty set")
		}
	}
	return result, nil
}

func (d *Discoverer) discoverType(ctx context.Context, scope types.Scope, t types.ResourceType, result *Result) error {
	ops := d.provider.Ops(t)
	if ops == nil {
		return nil
	}

	resources, err := ops.List(ctx, scope)
	if err != nil {
		return err
	}

	vpcScoped := types.TraitsOf(t).VpcScoped
	for _, r := range resources {
		if verdict := guard.Classify(r); verdict.Protected {
			result.Protected = append(result.Protected, types.Record{
				Resource: r,
				Outcome:  types.OutcomeProtected,
				Reason:   verdict.Reason,
				At:       time.Now(),
			})
			continue
		}
		// Resources inside a protected VPC stay with that VPC.
		if vpcScoped && r.Attributes.VpcID != "" && !result.VpcIDs[r.Attributes.VpcID] {
			continue
		}
		result.Candidates[t] = append(result.Candidates[t], r)
	}

	d.logger.WithContext(ctx).Debug().
		Str("resource_type", string(t)).
		Int("candidates", len(result.Candidates[t])).
		Msg("discovered")
	return nil
}

// CandidateCount sums candidates across all types.
func (r *Result) CandidateCount() int {
	n := 0
	for _, list := range r.Candidates {
		n += len(list)
	}
	return n
}
