package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/types"
)

// eksClusterOps handles EKS cluster discovery, deletion and status
// polling. Cluster deletion is the slowest async path purku drives.
type eksClusterOps struct {
	client *eks.Client
	scope  types.Scope
}

func (o eksClusterOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := eks.NewListClustersPaginator(o.client, &eks.ListClustersInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "list eks clusters")
		}
		for _, name := range output.Clusters {
			resource, err := o.describeCluster(ctx, name, scope)
			if err != nil {
				if isGone(err) {
					continue
				}
				return nil, err
			}
			resources = append(resources, resource)
		}
	}
	return resources, nil
}

func (o eksClusterOps) describeCluster(ctx context.Context, name string, scope types.Scope) (types.Resource, error) {
	output, err := o.client.DescribeCluster(ctx, &eks.DescribeClusterInput{
		Name: aws.String(name),
	})
	if err != nil {
		return types.Resource{}, classify(err, "describe eks cluster "+name)
	}

	cluster := output.Cluster
	resource := types.Resource{
		ID:           name,
		Type:         types.TypeEKSCluster,
		Scope:        scope,
		Name:         name,
		Status:       string(cluster.Status),
		Tags:         cluster.Tags,
		DiscoveredAt: time.Now(),
	}
	if cluster.ResourcesVpcConfig != nil {
		resource.Attributes.VpcID = aws.ToString(cluster.ResourcesVpcConfig.VpcId)
	}
	return resource, nil
}

func (o eksClusterOps) Delete(ctx context.Context, r types.Resource) error {
	// Node groups hold the cluster; they must drain first or the
	// delete comes back as in-use.
	if err := o.deleteNodegroups(ctx, r.ID); err != nil {
		return err
	}

	_, err := o.client.DeleteCluster(ctx, &eks.DeleteClusterInput{
		Name: aws.String(r.ID),
	})
	return classify(err, "delete eks cluster "+r.ID)
}

func (o eksClusterOps) deleteNodegroups(ctx context.Context, cluster string) error {
	output, err := o.client.ListNodegroups(ctx, &eks.ListNodegroupsInput{
		ClusterName: aws.String(cluster),
	})
	if err != nil {
		err = classify(err, "list nodegroups for "+cluster)
		if isGone(err) {
			return nil
		}
		return err
	}

	for _, ng := range output.Nodegroups {
		_, err := o.client.DeleteNodegroup(ctx, &eks.DeleteNodegroupInput{
			ClusterName:   aws.String(cluster),
			NodegroupName: aws.String(ng),
		})
		if err := classify(err, "delete nodegroup "+ng); err != nil && !isGone(err) {
			return err
		}
	}
	return nil
}

func (o eksClusterOps) Status(ctx context.Context, r types.Resource) (string, error) {
	output, err := o.client.DescribeCluster(ctx, &eks.DescribeClusterInput{
		Name: aws.String(r.ID),
	})
	if err != nil {
		return "", classify(err, "describe eks cluster "+r.ID)
	}
	if output.Cluster == nil {
		return providers.StatusDeleted, nil
	}
	return string(output.Cluster.Status), nil
}
