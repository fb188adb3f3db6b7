package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	"github.com/yairfalse/purku/types"
)

// loadBalancerOps handles ALB/NLB discovery, deletion and status
// polling. The ARN is the resource id.
type loadBalancerOps struct {
	client *elbv2.Client
	scope  types.Scope
}

func (o loadBalancerOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := elbv2.NewDescribeLoadBalancersPaginator(o.client, &elbv2.DescribeLoadBalancersInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe load balancers")
		}
		for _, lb := range output.LoadBalancers {
			var state string
			if lb.State != nil {
				state = string(lb.State.Code)
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(lb.LoadBalancerArn),
				Type:         types.TypeLoadBalancer,
				Scope:        scope,
				Name:         aws.ToString(lb.LoadBalancerName),
				Status:       state,
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					VpcID: aws.ToString(lb.VpcId),
					State: state,
				},
			})
		}
	}
	return resources, nil
}

func (o loadBalancerOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteLoadBalancer(ctx, &elbv2.DeleteLoadBalancerInput{
		LoadBalancerArn: aws.String(r.ID),
	})
	return classify(err, "delete load balancer "+r.Name)
}

func (o loadBalancerOps) Status(ctx context.Context, r types.Resource) (string, error) {
	output, err := o.client.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{
		LoadBalancerArns: []string{r.ID},
	})
	if err != nil {
		return "", classify(err, "describe load balancer "+r.Name)
	}
	if len(output.LoadBalancers) == 0 {
		return "", classify(errNotFoundSynthetic, "describe load balancer "+r.Name)
	}
	if output.LoadBalancers[0].State == nil {
		return "", nil
	}
	return string(output.LoadBalancers[0].State.Code), nil
}

// targetGroupOps handles target group discovery and deletion. A group
// still referenced by a listener classifies as in-use until its load
// balancer goes away.
type targetGroupOps struct {
	client *elbv2.Client
	scope  types.Scope
}

func (o targetGroupOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := elbv2.NewDescribeTargetGroupsPaginator(o.client, &elbv2.DescribeTargetGroupsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe target groups")
		}
		for _, tg := range output.TargetGroups {
			resources = append(resources, types.Resource{
				ID:            aws.ToString(tg.TargetGroupArn),
				Type:          types.TypeTargetGroup,
				Scope:         scope,
				Name:          aws.ToString(tg.TargetGroupName),
				ReferencedIDs: tg.LoadBalancerArns,
				DiscoveredAt:  time.Now(),
				Attributes: types.Attributes{
					VpcID: aws.ToString(tg.VpcId),
				},
			})
		}
	}
	return resources, nil
}

func (o targetGroupOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteTargetGroup(ctx, &elbv2.DeleteTargetGroupInput{
		TargetGroupArn: aws.String(r.ID),
	})
	return classify(err, "delete target group "+r.Name)
}
