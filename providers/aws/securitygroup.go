package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/purku/types"
)

// The reserved name AWS gives the per-VPC default security group.
const defaultSecurityGroupName = "default"

// securityGroupOps handles security group discovery, rule clearing and
// deletion. Groups can name other groups in their rules, so rule
// clearing runs before deletion to break reference cycles.
type securityGroupOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o securityGroupOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeSecurityGroupsPaginator(o.client, &ec2.DescribeSecurityGroupsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe security groups")
		}
		for _, sg := range output.SecurityGroups {
			resources = append(resources, buildSecurityGroupResource(sg, scope))
		}
	}
	return resources, nil
}

func buildSecurityGroupResource(sg ec2types.SecurityGroup, scope types.Scope) types.Resource {
	name := aws.ToString(sg.GroupName)
	return types.Resource{
		ID:            aws.ToString(sg.GroupId),
		Type:          types.TypeSecurityGroup,
		Scope:         scope,
		Name:          name,
		Tags:          convertEC2Tags(sg.Tags),
		ReferencedIDs: referencedGroupIDs(sg),
		DiscoveredAt:  time.Now(),
		Attributes: types.Attributes{
			VpcID:     aws.ToString(sg.VpcId),
			GroupName: name,
			IsDefault: name == defaultSecurityGroupName,
		},
	}
}

// referencedGroupIDs collects every other group this group's rules name.
func referencedGroupIDs(sg ec2types.SecurityGroup) []string {
	seen := make(map[string]bool)
	var ids []string
	collect := func(perms []ec2types.IpPermission) {
		for _, perm := range perms {
			for _, pair := range perm.UserIdGroupPairs {
				id := aws.ToString(pair.GroupId)
				if id != "" && id != aws.ToString(sg.GroupId) && !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	collect(sg.IpPermissions)
	collect(sg.IpPermissionsEgress)
	return ids
}

func (o securityGroupOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: aws.String(r.ID),
	})
	return classify(err, "delete security group "+r.ID)
}

// ClearRules removes the group's rules one by one so a rule naming an
// already-deleted group cannot abort removal of the rest. The stock
// allow-all egress rule is preserved; revoking a rule that is already
// gone counts as success.
func (o securityGroupOps) ClearRules(ctx context.Context, r types.Resource) error {
	output, err := o.client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{r.ID},
	})
	if err != nil {
		err = classify(err, "describe security group "+r.ID)
		if isGone(err) {
			return nil
		}
		return err
	}
	if len(output.SecurityGroups) == 0 {
		return nil
	}
	sg := output.SecurityGroups[0]

	for _, perm := range sg.IpPermissions {
		_, err := o.client.RevokeSecurityGroupIngress(ctx, &ec2.RevokeSecurityGroupIngressInput{
			GroupId:       aws.String(r.ID),
			IpPermissions: []ec2types.IpPermission{perm},
		})
		if err := classify(err, "revoke ingress on "+r.ID); err != nil && !isGone(err) {
			return err
		}
	}

	for _, perm := range sg.IpPermissionsEgress {
		if isDefaultEgressRule(perm) {
			continue
		}
		_, err := o.client.RevokeSecurityGroupEgress(ctx, &ec2.RevokeSecurityGroupEgressInput{
			GroupId:       aws.String(r.ID),
			IpPermissions: []ec2types.IpPermission{perm},
		})
		if err := classify(err, "revoke egress on "+r.ID); err != nil && !isGone(err) {
			return err
		}
	}
	return nil
}

// isDefaultEgressRule matches the allow-all egress rule AWS creates
// with every group.
func isDefaultEgressRule(perm ec2types.IpPermission) bool {
	if aws.ToString(perm.IpProtocol) != "-1" {
		return false
	}
	if len(perm.UserIdGroupPairs) > 0 || len(perm.Ipv6Ranges) > 0 {
		return false
	}
	return len(perm.IpRanges) == 1 && aws.ToString(perm.IpRanges[0].CidrIp) == "0.0.0.0/0"
}
