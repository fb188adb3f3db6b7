package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/purku/providers"
	"github.com/yairfalse/purku/types"
)

// instanceOps handles EC2 instance discovery, termination and status
// polling. Termination is asynchronous; "terminated" normalizes to the
// waiter's terminal state.
type instanceOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o instanceOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeInstancesPaginator(o.client, &ec2.DescribeInstancesInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe instances")
		}
		for _, reservation := range output.Reservations {
			for _, inst := range reservation.Instances {
				state := instanceState(inst)
				if state == string(ec2types.InstanceStateNameTerminated) {
					continue
				}
				resources = append(resources, types.Resource{
					ID:           aws.ToString(inst.InstanceId),
					Type:         types.TypeInstance,
					Scope:        scope,
					Name:         nameTag(inst.Tags),
					Status:       state,
					Tags:         convertEC2Tags(inst.Tags),
					DiscoveredAt: time.Now(),
					Attributes: types.Attributes{
						VpcID: aws.ToString(inst.VpcId),
						State: state,
					},
				})
			}
		}
	}
	return resources, nil
}

func (o instanceOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{r.ID},
	})
	return classify(err, "terminate instance "+r.ID)
}

func (o instanceOps) Status(ctx context.Context, r types.Resource) (string, error) {
	output, err := o.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{r.ID},
	})
	if err != nil {
		return "", classify(err, "describe instance "+r.ID)
	}
	for _, reservation := range output.Reservations {
		for _, inst := range reservation.Instances {
			state := instanceState(inst)
			if state == string(ec2types.InstanceStateNameTerminated) {
				return providers.StatusDeleted, nil
			}
			return state, nil
		}
	}
	return "", classify(errNotFoundSynthetic, "describe instance "+r.ID)
}

// instanceState reads the state name, tolerating a response without a
// populated State block.
func instanceState(inst ec2types.Instance) string {
	if inst.State == nil {
		return ""
	}
	return string(inst.State.Name)
}

// volumeOps handles EBS volume discovery and deletion. Attached volumes
// classify as blocked until their instance terminates.
type volumeOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o volumeOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := ec2.NewDescribeVolumesPaginator(o.client, &ec2.DescribeVolumesInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe volumes")
		}
		for _, vol := range output.Volumes {
			var attachedTo string
			if len(vol.Attachments) > 0 {
				attachedTo = aws.ToString(vol.Attachments[0].InstanceId)
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(vol.VolumeId),
				Type:         types.TypeVolume,
				Scope:        scope,
				Name:         nameTag(vol.Tags),
				Status:       string(vol.State),
				Tags:         convertEC2Tags(vol.Tags),
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					AttachedTo: attachedTo,
					State:      string(vol.State),
				},
			})
		}
	}
	return resources, nil
}

func (o volumeOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteVolume(ctx, &ec2.DeleteVolumeInput{
		VolumeId: aws.String(r.ID),
	})
	return classify(err, "delete volume "+r.ID)
}

// machineImageOps handles AMI discovery and deregistration for images
// owned by the account.
type machineImageOps struct {
	client *ec2.Client
	scope  types.Scope
}

func (o machineImageOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	output, err := o.client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{"self"},
	})
	if err != nil {
		return nil, classify(err, "describe images")
	}

	var resources []types.Resource
	for _, image := range output.Images {
		resources = append(resources, types.Resource{
			ID:           aws.ToString(image.ImageId),
			Type:         types.TypeMachineImage,
			Scope:        scope,
			Name:         aws.ToString(image.Name),
			Status:       string(image.State),
			Tags:         convertEC2Tags(image.Tags),
			DiscoveredAt: time.Now(),
			Attributes: types.Attributes{
				OwnerID: aws.ToString(image.OwnerId),
			},
		})
	}
	return resources, nil
}

func (o machineImageOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeregisterImage(ctx, &ec2.DeregisterImageInput{
		ImageId: aws.String(r.ID),
	})
	return classify(err, "deregister image "+r.ID)
}
