package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/purku/types"
)

// natGatewayOps handles NAT gateway discovery, deletion and status
// polling. Deletion is asynchronous; "deleted" state or not-found both
// mean completion.
type natGatewayOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o natGatewayOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeNatGatewaysPaginator(o.client, &ec2.DescribeNatGatewaysInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe nat gateways")
		}
		for _, nat := range output.NatGateways {
			// Gateways already deleting or deleted are not candidates.
			if nat.State == ec2types.NatGatewayStateDeleted {
				continue
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(nat.NatGatewayId),
				Type:         types.TypeNATGateway,
				Scope:        scope,
				Name:         nameTag(nat.Tags),
				Status:       string(nat.State),
				Tags:         convertEC2Tags(nat.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID: aws.ToString(nat.VpcId),
					State: string(nat.State),
				},
			})
		}
	}
	return resources, nil
}

func (o natGatewayOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{
		NatGatewayId: aws.String(r.ID),
	})
	return classify(err, "delete nat gateway "+r.ID)
}

func (o natGatewayOps) Status(ctx context.Context, r types.Resource) (string, error) {
	output, err := o.client.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{r.ID},
	})
	if err != nil {
		return "", classify(err, "describe nat gateway "+r.ID)
	}
	if len(output.NatGateways) == 0 {
		return "", classify(errNotFoundSynthetic, "describe nat gateway "+r.ID)
	}
	return string(output.NatGateways[0].State), nil
}

// elasticIPOps handles Elastic IP discovery and release.
type elasticIPOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o elasticIPOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	output, err := o.client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, classify(err, "describe addresses")
	}

	var resources []types.Resource
	for _, addr := range output.Addresses {
		resources = append(resources, types.Resource{
			ID:           aws.ToString(addr.AllocationId),
			Type:         types.TypeElasticIP,
			Scope:        scope,
			Name:         aws.ToString(addr.PublicIp),
			Tags:         convertEC2Tags(addr.Tags),
			DiscoveredAt: time.Now(),
			Attributes: types.Attributes{
				AllocationID:  aws.ToString(addr.AllocationId),
				AssociationID: aws.ToString(addr.AssociationId),
				AttachedTo:    aws.ToString(addr.InstanceId),
			},
		})
	}
	return resources, nil
}

func (o elasticIPOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{
		AllocationId: aws.String(r.ID),
	})
	return classify(err, "release address "+r.ID)
}

// networkInterfaceOps handles leftover ENI discovery and deletion.
// Interfaces still attached to something are deleted by their owner;
// the delete on those classifies as blocked and the retry loop picks
// them up once the owner is gone.
type networkInterfaceOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o networkInterfaceOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeNetworkInterfacesPaginator(o.client, &ec2.DescribeNetworkInterfacesInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe network interfaces")
		}
		for _, eni := range output.NetworkInterfaces {
			var attachedTo string
			if eni.Attachment != nil {
				attachedTo = aws.ToString(eni.Attachment.InstanceId)
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(eni.NetworkInterfaceId),
				Type:         types.TypeNetworkInterface,
				Scope:        scope,
				Status:       string(eni.Status),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID:      aws.ToString(eni.VpcId),
					AttachedTo: attachedTo,
					State:      string(eni.Status),
				},
			})
		}
	}
	return resources, nil
}

func (o networkInterfaceOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteNetworkInterface(ctx, &ec2.DeleteNetworkInterfaceInput{
		NetworkInterfaceId: aws.String(r.ID),
	})
	return classify(err, "delete network interface "+r.ID)
}

// vpcEndpointOps handles VPC endpoint discovery and deletion.
type vpcEndpointOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o vpcEndpointOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeVpcEndpointsPaginator(o.client, &ec2.DescribeVpcEndpointsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe vpc endpoints")
		}
		for _, ep := range output.VpcEndpoints {
			resources = append(resources, types.Resource{
				ID:           aws.ToString(ep.VpcEndpointId),
				Type:         types.TypeVPCEndpoint,
				Scope:        scope,
				Status:       string(ep.State),
				Tags:         convertEC2Tags(ep.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID: aws.ToString(ep.VpcId),
				},
			})
		}
	}
	return resources, nil
}

func (o vpcEndpointOps) Delete(ctx context.Context, r types.Resource) error {
	output, err := o.client.DeleteVpcEndpoints(ctx, &ec2.DeleteVpcEndpointsInput{
		VpcEndpointIds: []string{r.ID},
	})
	if err != nil {
		return classify(err, "delete vpc endpoint "+r.ID)
	}
	// Batch API reports per-id failures in the body, not as an error.
	for _, unsuccessful := range output.Unsuccessful {
		if unsuccessful.Error != nil {
			return classify(&unsuccessfulItemError{item: unsuccessful}, "delete vpc endpoint "+r.ID)
		}
	}
	return nil
}

// peeringOps handles VPC peering connection discovery and deletion.
type peeringOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o peeringOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeVpcPeeringConnectionsPaginator(o.client, &ec2.DescribeVpcPeeringConnectionsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe peering connections")
		}
		for _, pcx := range output.VpcPeeringConnections {
			if pcx.Status != nil && pcx.Status.Code == ec2types.VpcPeeringConnectionStateReasonCodeDeleted {
				continue
			}
			var vpcID string
			if pcx.RequesterVpcInfo != nil {
				vpcID = aws.ToString(pcx.RequesterVpcInfo.VpcId)
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(pcx.VpcPeeringConnectionId),
				Type:         types.TypePeeringConnection,
				Scope:        scope,
				Tags:         convertEC2Tags(pcx.Tags),
				DiscoveredAt: time.Now(),
				Attributes:   types.Attributes{VpcID: vpcID},
			})
		}
	}
	return resources, nil
}

func (o peeringOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteVpcPeeringConnection(ctx, &ec2.DeleteVpcPeeringConnectionInput{
		VpcPeeringConnectionId: aws.String(r.ID),
	})
	return classify(err, "delete peering connection "+r.ID)
}

// flowLogOps handles VPC flow log discovery and deletion.
type flowLogOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o flowLogOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeFlowLogsPaginator(o.client, &ec2.DescribeFlowLogsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe flow logs")
		}
		for _, fl := range output.FlowLogs {
			resources = append(resources, types.Resource{
				ID:           aws.ToString(fl.FlowLogId),
				Type:         types.TypeFlowLog,
				Scope:        scope,
				Tags:         convertEC2Tags(fl.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					// ResourceId is the VPC (or subnet/ENI) the log watches.
					VpcID: aws.ToString(fl.ResourceId),
				},
			})
		}
	}
	return resources, nil
}

func (o flowLogOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteFlowLogs(ctx, &ec2.DeleteFlowLogsInput{
		FlowLogIds: []string{r.ID},
	})
	return classify(err, "delete flow log "+r.ID)
}

// transitAttachmentOps handles transit gateway VPC attachment discovery,
// deletion and status polling.
type transitAttachmentOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o transitAttachmentOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeTransitGatewayVpcAttachmentsPaginator(
		o.client, &ec2.DescribeTransitGatewayVpcAttachmentsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe transit gateway attachments")
		}
		for _, att := range output.TransitGatewayVpcAttachments {
			if att.State == ec2types.TransitGatewayAttachmentStateDeleted {
				continue
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(att.TransitGatewayAttachmentId),
				Type:         types.TypeTransitAttachment,
				Scope:        scope,
				Status:       string(att.State),
				Tags:         convertEC2Tags(att.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID: aws.ToString(att.VpcId),
					State: string(att.State),
				},
			})
		}
	}
	return resources, nil
}

func (o transitAttachmentOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteTransitGatewayVpcAttachment(ctx, &ec2.DeleteTransitGatewayVpcAttachmentInput{
		TransitGatewayAttachmentId: aws.String(r.ID),
	})
	return classify(err, "delete transit gateway attachment "+r.ID)
}

func (o transitAttachmentOps) Status(ctx context.Context, r types.Resource) (string, error) {
	output, err := o.client.DescribeTransitGatewayVpcAttachments(ctx, &ec2.DescribeTransitGatewayVpcAttachmentsInput{
		TransitGatewayAttachmentIds: []string{r.ID},
	})
	if err != nil {
		return "", classify(err, "describe transit gateway attachment "+r.ID)
	}
	if len(output.TransitGatewayVpcAttachments) == 0 {
		return "", classify(errNotFoundSynthetic, "describe transit gateway attachment "+r.ID)
	}
	return string(output.TransitGatewayVpcAttachments[0].State), nil
}

// customerGatewayOps handles customer gateway discovery and deletion.
type customerGatewayOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o customerGatewayOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	output, err := o.client.DescribeCustomerGateways(ctx, &ec2.DescribeCustomerGatewaysInput{})
	if err != nil {
		return nil, classify(err, "describe customer gateways")
	}

	var resources []types.Resource
	for _, cgw := range output.CustomerGateways {
		if aws.ToString(cgw.State) == "deleted" {
			continue
		}
		resources = append(resources, types.Resource{
			ID:           aws.ToString(cgw.CustomerGatewayId),
			Type:         types.TypeCustomerGateway,
			Scope:        scope,
			Status:       aws.ToString(cgw.State),
			Tags:         convertEC2Tags(cgw.Tags),
			DiscoveredAt: time.Now(),
		})
	}
	return resources, nil
}

func (o customerGatewayOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteCustomerGateway(ctx, &ec2.DeleteCustomerGatewayInput{
		CustomerGatewayId: aws.String(r.ID),
	})
	return classify(err, "delete customer gateway "+r.ID)
}
