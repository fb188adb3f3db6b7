// Package guard decides which discovered resources are provider-managed
// defaults that purku must never delete. Predicates are pure; the
// discoverer records every hit in the protection ledger so the report
// shows why nothing was attempted.
package guard

import (
	"github.com/yairfalse/purku/types"
)

// The reserved name of the per-VPC default security group.
const defaultSecurityGroupName = "default"

// Verdict is the classification of one resource.
type Verdict struct {
	Protected bool
	Reason    string
}

// Classify returns the protection verdict for r. Types whose trait
// table says CanHaveDefault=false are never protected.
func Classify(r types.Resource) Verdict {
	if !types.TraitsOf(r.Type).CanHaveDefault {
		return Verdict{}
	}

	switch r.Type {
	case types.TypeVPC:
		if r.Attributes.IsDefault {
			return Verdict{Protected: true, Reason: "default VPC is provider-managed"}
		}
	case types.TypeSecurityGroup:
		if r.Attributes.GroupName == defaultSecurityGroupName {
			return Verdict{Protected: true, Reason: "default security group cannot be deleted"}
		}
	case types.TypeRouteTable:
		if r.Attributes.HasMainRoute {
			return Verdict{Protected: true, Reason: "main route table is deleted with its VPC"}
		}
	case types.TypeNetworkACL:
		if r.Attributes.IsDefault {
			return Verdict{Protected: true, Reason: "default network ACL is provider-managed"}
		}
	case types.TypeDHCPOptions:
		if r.Attributes.IsDefault {
			return Verdict{Protected: true, Reason: "provider-managed DHCP option set"}
		}
	}
	return Verdict{}
}

// IsProtected is the bare predicate form of Classify.
func IsProtected(r types.Resource) bool {
	return Classify(r).Protected
}
