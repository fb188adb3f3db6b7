package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/types"
)

func init() {
	providers.Register("aws", NewProviderFactory)
}

// NewProviderFactory builds an authenticated AWS provider for one scope.
// The default credential chain must resolve to the scope's account - a
// mismatch is a scope-level error, never silently swept past.
func NewProviderFactory(ctx context.Context, scope types.Scope) (providers.Provider, error) {
	return NewProvider(ctx, scope)
}

// Provider implements providers.Provider against AWS SDK v2.
type Provider struct {
	ec2Client    *ec2.Client
	eksClient    *eks.Client
	elbv2Client  *elasticloadbalancingv2.Client
	rdsClient    *rds.Client
	lambdaClient *lambda.Client
	sqsClient    *sqs.Client
	snsClient    *sns.Client
	scope        types.Scope
	ops          map[types.ResourceType]providers.ResourceOps
}

// NewProvider loads credentials for the scope's region and verifies the
// resolved identity matches the scope's account.
func NewProvider(ctx context.Context, scope types.Scope) (*Provider, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(scope.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for %s: %w", scope, err)
	}

	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller identity for %s: %w", scope, err)
	}
	if scope.AccountID != "" && aws.ToString(identity.Account) != scope.AccountID {
		return nil, fmt.Errorf("credentials resolve to account %s, scope wants %s",
			aws.ToString(identity.Account), scope.AccountID)
	}

	p := &Provider{
		ec2Client:    ec2.NewFromConfig(cfg),
		eksClient:    eks.NewFromConfig(cfg),
		elbv2Client:  elasticloadbalancingv2.NewFromConfig(cfg),
		rdsClient:    rds.NewFromConfig(cfg),
		lambdaClient: lambda.NewFromConfig(cfg),
		sqsClient:    sqs.NewFromConfig(cfg),
		snsClient:    sns.NewFromConfig(cfg),
		scope:        scope,
	}
	p.buildOps()
	return p, nil
}

// buildOps wires one ops value per resource type. Selection happens here
// once, never by branching on type strings during teardown.
func (p *Provider) buildOps() {
	p.ops = map[types.ResourceType]providers.ResourceOps{
		types.TypeVPC:               vpcOps{p.ec2Client, p.scope},
		types.TypeSubnet:            subnetOps{p.ec2Client, p.scope},
		types.TypeRouteTable:        routeTableOps{p.ec2Client, p.scope},
		types.TypeInternetGateway:   internetGatewayOps{p.ec2Client, p.scope},
		types.TypeDHCPOptions:       dhcpOptionsOps{p.ec2Client, p.scope},
		types.TypeNetworkACL:        networkACLOps{p.ec2Client, p.scope},
		types.TypeSecurityGroup:     securityGroupOps{p.ec2Client, p.scope},
		types.TypeNATGateway:        natGatewayOps{p.ec2Client, p.scope},
		types.TypeElasticIP:         elasticIPOps{p.ec2Client, p.scope},
		types.TypeNetworkInterface:  networkInterfaceOps{p.ec2Client, p.scope},
		types.TypeVPCEndpoint:       vpcEndpointOps{p.ec2Client, p.scope},
		types.TypePeeringConnection: peeringOps{p.ec2Client, p.scope},
		types.TypeFlowLog:           flowLogOps{p.ec2Client, p.scope},
		types.TypeTransitAttachment: transitAttachmentOps{p.ec2Client, p.scope},
		types.TypeCustomerGateway:   customerGatewayOps{p.ec2Client, p.scope},
		types.TypeInstance:          instanceOps{p.ec2Client, p.scope},
		types.TypeVolume:            volumeOps{p.ec2Client, p.scope},
		types.TypeMachineImage:      machineImageOps{p.ec2Client, p.scope},
		types.TypeEKSCluster:        eksClusterOps{p.eksClient, p.scope},
		types.TypeLoadBalancer:      loadBalancerOps{p.elbv2Client, p.scope},
		types.TypeTargetGroup:       targetGroupOps{p.elbv2Client, p.scope},
		types.TypeRDSInstance:       rdsInstanceOps{p.rdsClient, p.scope},
		types.TypeLambdaFunction:    lambdaFunctionOps{p.lambdaClient, p.scope},
		types.TypeSQSQueue:          sqsQueueOps{p.sqsClient, p.scope},
		types.TypeSNSTopic:          snsTopicOps{p.snsClient, p.scope},
	}
}

// Ops returns the ops for t, or nil if unsupported.
func (p *Provider) Ops(t types.ResourceType) providers.ResourceOps {
	return p.ops[t]
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "aws"
}
