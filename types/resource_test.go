package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceKey(t *testing.T) {
	r := Resource{
		ID:    "vpc-123",
		Type:  TypeVPC,
		Scope: Scope{AccountID: "111122223333", Region: "eu-west-1"},
	}
	assert.Equal(t, "vpc:vpc-123:111122223333/eu-west-1", r.Key())
}

func TestResourceReferences(t *testing.T) {
	r := Resource{
		ID:            "sg-aaa",
		Type:          TypeSecurityGroup,
		ReferencedIDs: []string{"sg-bbb", "sg-ccc"},
	}

	assert.True(t, r.References("sg-bbb"))
	assert.False(t, r.References("sg-ddd"))
	assert.False(t, Resource{}.References("sg-bbb"))
}

func TestResourceInVpc(t *testing.T) {
	r := Resource{ID: "subnet-1", Type: TypeSubnet, Attributes: Attributes{VpcID: "vpc-1"}}

	assert.True(t, r.InVpc("vpc-1"))
	assert.False(t, r.InVpc("vpc-2"))
	// No VPC attribute never matches, even against empty string
	assert.False(t, Resource{}.InVpc(""))
}

func TestTraitsTable(t *testing.T) {
	tests := []struct {
		name string
		typ  ResourceType
		want func(tr Traits) bool
	}{
		{"vpc is protectable", TypeVPC, func(tr Traits) bool { return tr.CanHaveDefault }},
		{"security group self-references", TypeSecurityGroup, func(tr Traits) bool { return tr.SelfReferencing }},
		{"nat gateway is async", TypeNATGateway, func(tr Traits) bool { return tr.Async && tr.WaitBudget > 0 }},
		{"subnet is vpc scoped", TypeSubnet, func(tr Traits) bool { return tr.VpcScoped }},
		{"sqs queue is plain sync", TypeSQSQueue, func(tr Traits) bool {
			return !tr.Async && !tr.CanHaveDefault && !tr.SelfReferencing
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want(TraitsOf(tt.typ)))
		})
	}
}

func TestOnlySecurityGroupsSelfReference(t *testing.T) {
	for _, typ := range AllTypes() {
		if TraitsOf(typ).SelfReferencing {
			assert.Equal(t, TypeSecurityGroup, typ)
		}
	}
}
