package types

import "time"

// Scope is an (account, region) pair that a teardown run is confined to.
type Scope struct {
	AccountID string `json:"account_id"`
	Region    string `json:"region"`
}

// String returns the canonical scope label used in logs and reports.
func (s Scope) String() string {
	return s.AccountID + "/" + s.Region
}

// Resource describes one discovered cloud resource. Identity is
// (Type, ID, Scope). A Resource is immutable once discovery returns it.
type Resource struct {
	ID            string            `json:"id"`
	Type          ResourceType      `json:"type"`
	Scope         Scope             `json:"scope"`
	Name          string            `json:"name,omitempty"`
	Status        string            `json:"status,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
	Attributes    Attributes        `json:"attributes,omitempty"`
	ReferencedIDs []string          `json:"referenced_ids,omitempty"`
	DiscoveredAt  time.Time         `json:"discovered_at"`
}

// Attributes carries the per-type fields the classifier and deleter need.
// Structured on purpose - no map[string]interface{}.
type Attributes struct {
	VpcID           string   `json:"vpc_id,omitempty"`
	IsDefault       bool     `json:"is_default,omitempty"`
	HasMainRoute    bool     `json:"has_main_route,omitempty"`
	GroupName       string   `json:"group_name,omitempty"`
	AllocationID    string   `json:"allocation_id,omitempty"`
	AssociationID   string   `json:"association_id,omitempty"`
	AttachedTo      string   `json:"attached_to,omitempty"`
	OwnerID         string   `json:"owner_id,omitempty"`
	State           string   `json:"state,omitempty"`
	TargetGroupArns []string `json:"target_group_arns,omitempty"`
}

// Key returns a stable identity string for deduplication within a run.
func (r Resource) Key() string {
	return string(r.Type) + ":" + r.ID + ":" + r.Scope.String()
}

// InVpc reports whether the resource belongs to the given VPC.
func (r Resource) InVpc(vpcID string) bool {
	return r.Attributes.VpcID != "" && r.Attributes.VpcID == vpcID
}

// References reports whether the resource's rules or attachments name id.
func (r Resource) References(id string) bool {
	for _, ref := range r.ReferencedIDs {
		if ref == id {
			return true
		}
	}
	return false
}
