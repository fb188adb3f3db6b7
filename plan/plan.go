// Package plan declares the fixed teardown order. The order reflects
// real provider-side dependencies: compute and managed services first,
// then the network fabric from the leaves inward, the VPC second to
// last, and DHCP option sets after the VPC that held their association.
package plan

import (
	"fmt"

	"github.com/yairfalse/purku/types"
)

// Phases is the canonical teardown order. A type never precedes a type
// it depends on. Scope pipelines execute phases strictly in this order;
// phase N's retry loop must exit before phase N+1 starts.
var Phases = []types.ResourceType{
	types.TypeEKSCluster,
	types.TypeInstance,
	types.TypeMachineImage,
	types.TypeVolume,
	types.TypeRDSInstance,
	types.TypeLambdaFunction,
	types.TypeSQSQueue,
	types.TypeSNSTopic,
	types.TypeLoadBalancer,
	types.TypeTargetGroup,
	types.TypeNATGateway,
	types.TypeVPCEndpoint,
	types.TypeFlowLog,
	types.TypeTransitAttachment,
	types.TypePeeringConnection,
	types.TypeNetworkInterface,
	types.TypeElasticIP,
	types.TypeInternetGateway,
	types.TypeSecurityGroup,
	types.TypeSubnet,
	types.TypeRouteTable,
	types.TypeNetworkACL,
	types.TypeCustomerGateway,
	types.TypeVPC,
	types.TypeDHCPOptions,
}

// Position returns the phase index of t, or -1 if t is not planned.
func Position(t types.ResourceType) int {
	for i, phase := range Phases {
		if phase == t {
			return i
		}
	}
	return -1
}

// Validate checks the plan covers every known type exactly once.
// Run by tests; a drift between the trait table and the plan is a bug.
func Validate() error {
	seen := make(map[types.ResourceType]bool, len(Phases))
	for _, t := range Phases {
		if seen[t] {
			return fmt.Errorf("type %s planned twice", t)
		}
		seen[t] = true
	}
	for _, t := range types.AllTypes() {
		if !seen[t] {
			return fmt.Errorf("type %s missing from plan", t)
		}
	}
	if len(Phases) != len(types.AllTypes()) {
		return fmt.Errorf("plan has %d phases, trait table has %d types",
			len(Phases), len(types.AllTypes()))
	}
	return nil
}

// Reversed returns the phases in reverse order. Exists for tests that
// prove the declared order matters.
func Reversed() []types.ResourceType {
	out := make([]types.ResourceType, len(Phases))
	for i, t := range Phases {
		out[len(Phases)-1-i] = t
	}
	return out
}
