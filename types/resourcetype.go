package types

import "time"

// ResourceType tags one of the closed set of resource families purku
// knows how to tear down. The set is fixed - purku never discovers
// arbitrary catalog types.
type ResourceType string

const (
	TypeEKSCluster        ResourceType = "eks_cluster"
	TypeInstance          ResourceType = "instance"
	TypeMachineImage      ResourceType = "machine_image"
	TypeVolume            ResourceType = "volume"
	TypeRDSInstance       ResourceType = "rds_instance"
	TypeLambdaFunction    ResourceType = "lambda_function"
	TypeSQSQueue          ResourceType = "sqs_queue"
	TypeSNSTopic          ResourceType = "sns_topic"
	TypeLoadBalancer      ResourceType = "load_balancer"
	TypeTargetGroup       ResourceType = "target_group"
	TypeNATGateway        ResourceType = "nat_gateway"
	TypeVPCEndpoint       ResourceType = "vpc_endpoint"
	TypeFlowLog           ResourceType = "flow_log"
	TypeTransitAttachment ResourceType = "transit_gateway_attachment"
	TypePeeringConnection ResourceType = "peering_connection"
	TypeNetworkInterface  ResourceType = "network_interface"
	TypeElasticIP         ResourceType = "elastic_ip"
	TypeInternetGateway   ResourceType = "internet_gateway"
	TypeSecurityGroup     ResourceType = "security_group"
	TypeNetworkACL        ResourceType = "network_acl"
	TypeRouteTable        ResourceType = "route_table"
	TypeSubnet            ResourceType = "subnet"
	TypeDHCPOptions       ResourceType = "dhcp_options"
	TypeCustomerGateway   ResourceType = "customer_gateway"
	TypeVPC               ResourceType = "vpc"
)

// Traits declares how a resource type behaves during teardown. Traits are
// resolved once at plan construction, never by branching on type strings
// in the hot path.
type Traits struct {
	// CanHaveDefault means the provider may own a protected default
	// instance of this type that must never be deleted.
	CanHaveDefault bool
	// Async means deletion is asynchronous and completion must be
	// confirmed by polling within WaitBudget.
	Async      bool
	WaitBudget time.Duration
	// SelfReferencing means instances can reference each other and need
	// rule clearing before deletion (security groups only).
	SelfReferencing bool
	// VpcScoped means discovery is filtered to the in-scope VPC id set.
	VpcScoped bool
}

var traits = map[ResourceType]Traits{
	TypeEKSCluster:        {Async: true, WaitBudget: 15 * time.Minute},
	TypeInstance:          {Async: true, WaitBudget: 10 * time.Minute},
	TypeMachineImage:      {},
	TypeVolume:            {},
	TypeRDSInstance:       {Async: true, WaitBudget: 15 * time.Minute},
	TypeLambdaFunction:    {},
	TypeSQSQueue:          {},
	TypeSNSTopic:          {},
	TypeLoadBalancer:      {Async: true, WaitBudget: 5 * time.Minute},
	TypeTargetGroup:       {},
	TypeNATGateway:        {Async: true, WaitBudget: 10 * time.Minute, VpcScoped: true},
	TypeVPCEndpoint:       {VpcScoped: true},
	TypeFlowLog:           {VpcScoped: true},
	TypeTransitAttachment: {Async: true, WaitBudget: 10 * time.Minute, VpcScoped: true},
	TypePeeringConnection: {VpcScoped: true},
	TypeNetworkInterface:  {VpcScoped: true},
	TypeElasticIP:         {},
	TypeInternetGateway:   {VpcScoped: true},
	TypeSecurityGroup:     {CanHaveDefault: true, SelfReferencing: true, VpcScoped: true},
	TypeNetworkACL:        {CanHaveDefault: true, VpcScoped: true},
	TypeRouteTable:        {CanHaveDefault: true, VpcScoped: true},
	TypeSubnet:            {VpcScoped: true},
	TypeDHCPOptions:       {CanHaveDefault: true},
	TypeCustomerGateway:   {},
	TypeVPC:               {CanHaveDefault: true},
}

// TraitsOf returns the trait table entry for t. Unknown types get the
// zero Traits, which means synchronous, unprotected, unfiltered.
func TraitsOf(t ResourceType) Traits {
	return traits[t]
}

// AllTypes returns every known resource type, unordered. The teardown
// order lives in the plan package, not here.
func AllTypes() []ResourceType {
	out := make([]ResourceType, 0, len(traits))
	for t := range traits {
		out = append(out, t)
	}
	return out
}
