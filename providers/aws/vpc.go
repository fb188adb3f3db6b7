package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/purku/types"
)

// vpcOps handles VPC discovery and deletion.
type vpcOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o vpcOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeVpcsPaginator(o.client, &ec2.DescribeVpcsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe vpcs")
		}
		for _, vpc := range output.Vpcs {
			resources = append(resources, buildVpcResource(vpc, scope))
		}
	}
	return resources, nil
}

func buildVpcResource(vpc ec2types.Vpc, scope types.Scope) types.Resource {
	return types.Resource{
		ID:           aws.ToString(vpc.VpcId),
		Type:         types.TypeVPC,
		Scope:        scope,
		Name:         nameTag(vpc.Tags),
		Status:       string(vpc.State),
		Tags:         convertEC2Tags(vpc.Tags),
		DiscoveredAt: time.Now(),
		Attributes: types.Attributes{
			IsDefault:  aws.ToBool(vpc.IsDefault),
			AttachedTo: aws.ToString(vpc.DhcpOptionsId),
		},
	}
}

func (o vpcOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteVpc(ctx, &ec2.DeleteVpcInput{
		VpcId: aws.String(r.ID),
	})
	return classify(err, "delete vpc "+r.ID)
}

// subnetOps handles subnet discovery and deletion.
type subnetOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o subnetOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeSubnetsPaginator(o.client, &ec2.DescribeSubnetsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe subnets")
		}
		for _, subnet := range output.Subnets {
			resources = append(resources, types.Resource{
				ID:           aws.ToString(subnet.SubnetId),
				Type:         types.TypeSubnet,
				Scope:        scope,
				Name:         nameTag(subnet.Tags),
				Status:       string(subnet.State),
				Tags:         convertEC2Tags(subnet.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID:     aws.ToString(subnet.VpcId),
					IsDefault: aws.ToBool(subnet.DefaultForAz),
				},
			})
		}
	}
	return resources, nil
}

func (o subnetOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{
		SubnetId: aws.String(r.ID),
	})
	return classify(err, "delete subnet "+r.ID)
}

// routeTableOps handles route table discovery and deletion. The main
// route table carries the "main" association and is flagged for the
// classifier; it is deleted implicitly with the VPC.
type routeTableOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o routeTableOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeRouteTablesPaginator(o.client, &ec2.DescribeRouteTablesInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe route tables")
		}
		for _, rt := range output.RouteTables {
			resources = append(resources, types.Resource{
				ID:           aws.ToString(rt.RouteTableId),
				Type:         types.TypeRouteTable,
				Scope:        scope,
				Name:         nameTag(rt.Tags),
				Tags:         convertEC2Tags(rt.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID:        aws.ToString(rt.VpcId),
					HasMainRoute: hasMainAssociation(rt.Associations),
				},
			})
		}
	}
	return resources, nil
}

func hasMainAssociation(assocs []ec2types.RouteTableAssociation) bool {
	for _, assoc := range assocs {
		if aws.ToBool(assoc.Main) {
			return true
		}
	}
	return false
}

func (o routeTableOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{
		RouteTableId: aws.String(r.ID),
	})
	return classify(err, "delete route table "+r.ID)
}

// internetGatewayOps handles internet gateway discovery and deletion.
// An attached gateway is detached first; the detach itself can report a
// dependency violation while public addresses remain mapped.
type internetGatewayOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o internetGatewayOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeInternetGatewaysPaginator(o.client, &ec2.DescribeInternetGatewaysInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe internet gateways")
		}
		for _, igw := range output.InternetGateways {
			var vpcID string
			if len(igw.Attachments) > 0 {
				vpcID = aws.ToString(igw.Attachments[0].VpcId)
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(igw.InternetGatewayId),
				Type:         types.TypeInternetGateway,
				Scope:        scope,
				Name:         nameTag(igw.Tags),
				Tags:         convertEC2Tags(igw.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID:      vpcID,
					AttachedTo: vpcID,
				},
			})
		}
	}
	return resources, nil
}

func (o internetGatewayOps) Delete(ctx context.Context, r types.Resource) error {
	if r.Attributes.AttachedTo != "" {
		_, err := o.client.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
			InternetGatewayId: aws.String(r.ID),
			VpcId:             aws.String(r.Attributes.AttachedTo),
		})
		// Already-detached is fine, everything else stops the delete.
		if err := classify(err, "detach internet gateway "+r.ID); err != nil && !isGone(err) {
			return err
		}
	}

	_, err := o.client.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{
		InternetGatewayId: aws.String(r.ID),
	})
	return classify(err, "delete internet gateway "+r.ID)
}

// dhcpOptionsOps handles DHCP option set discovery and deletion. A set
// is flagged provider-managed when a default VPC still references it or
// when its options match the account-default shape.
type dhcpOptionsOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o dhcpOptionsOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	vpcOutput, err := o.client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return nil, classify(err, "describe vpcs for dhcp associations")
	}

	defaultAssociated := make(map[string]bool)
	associated := make(map[string][]string)
	for _, vpc := range vpcOutput.Vpcs {
		optID := aws.ToString(vpc.DhcpOptionsId)
		associated[optID] = append(associated[optID], aws.ToString(vpc.VpcId))
		if aws.ToBool(vpc.IsDefault) {
			defaultAssociated[optID] = true
		}
	}

	paginator := ec2.NewDescribeDhcpOptionsPaginator(o.client, &ec2.DescribeDhcpOptionsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe dhcp options")
		}
		for _, opts := range output.DhcpOptions {
			id := aws.ToString(opts.DhcpOptionsId)
			resources = append(resources, types.Resource{
				ID:            id,
				Type:          types.TypeDHCPOptions,
				Scope:         scope,
				Name:          nameTag(opts.Tags),
				Tags:          convertEC2Tags(opts.Tags),
				ReferencedIDs: associated[id],
				DiscoveredAt:  time.Now(),
				Attributes: types.Attributes{
					IsDefault: defaultAssociated[id] || isDefaultOptionShape(opts.DhcpConfigurations),
				},
			})
		}
	}
	return resources, nil
}

// isDefaultOptionShape recognizes the option set AWS creates with every
// account: AmazonProvidedDNS as the only name server, at most a
// region-internal domain-name, nothing else. Such a set is
// provider-managed even when no VPC currently references it.
func isDefaultOptionShape(configs []ec2types.DhcpConfiguration) bool {
	sawDNS := false
	for _, cfg := range configs {
		switch aws.ToString(cfg.Key) {
		case "domain-name-servers":
			if len(cfg.Values) != 1 || aws.ToString(cfg.Values[0].Value) != "AmazonProvidedDNS" {
				return false
			}
			sawDNS = true
		case "domain-name":
			// Region-dependent value, always present on the default set.
		default:
			return false
		}
	}
	return sawDNS
}

func (o dhcpOptionsOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteDhcpOptions(ctx, &ec2.DeleteDhcpOptionsInput{
		DhcpOptionsId: aws.String(r.ID),
	})
	return classify(err, "delete dhcp options "+r.ID)
}

// networkACLOps handles network ACL discovery and deletion.
type networkACLOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o networkACLOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeNetworkAclsPaginator(o.client, &ec2.DescribeNetworkAclsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe network acls")
		}
		for _, acl := range output.NetworkAcls {
			resources = append(resources, types.Resource{
				ID:           aws.ToString(acl.NetworkAclId),
				Type:         types.TypeNetworkACL,
				Scope:        scope,
				Name:         nameTag(acl.Tags),
				Tags:         convertEC2Tags(acl.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID:     aws.ToString(acl.VpcId),
					IsDefault: aws.ToBool(acl.IsDefault),
				},
			})
		}
	}
	return resources, nil
}

func (o networkACLOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteNetworkAcl(ctx, &ec2.DeleteNetworkAclInput{
		NetworkAclId: aws.String(r.ID),
	})
	return classify(err, "delete network acl "+r.ID)
}
