package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/yairfalse/purku/types"
)

// rdsInstanceOps handles RDS instance discovery, deletion and status
// polling. Final snapshots are skipped - this is a teardown engine, the
// account is going away.
type rdsInstanceOps struct {
	client *rds.Client
	scope  types.Scope
}

func (o rdsInstanceOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := rds.NewDescribeDBInstancesPaginator(o.client, &rds.DescribeDBInstancesInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "describe db instances")
		}
		for _, db := range output.DBInstances {
			status := aws.ToString(db.DBInstanceStatus)
			if status == "deleting" {
				continue
			}
			resources = append(resources, types.Resource{
				ID:           aws.ToString(db.DBInstanceIdentifier),
				Type:         types.TypeRDSInstance,
				Scope:        scope,
				Name:         aws.ToString(db.DBInstanceIdentifier),
				Status:       status,
				DiscoveredAt: time.Now(),
				Attributes: types.Attributes{
					State: status,
				},
			})
		}
	}
	return resources, nil
}

func (o rdsInstanceOps) Delete(ctx context.Context, r types.Resource) error {
	// Deletion protection must come off first or the delete is
	// rejected outright.
	_, err := o.client.ModifyDBInstance(ctx, &rds.ModifyDBInstanceInput{
		DBInstanceIdentifier: aws.String(r.ID),
		DeletionProtection:   aws.Bool(false),
		ApplyImmediately:     aws.Bool(true),
	})
	if err := classify(err, "disable deletion protection on "+r.ID); err != nil && !isGone(err) {
		return err
	}

	_, err = o.client.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier: aws.String(r.ID),
		SkipFinalSnapshot:    aws.Bool(true),
	})
	return classify(err, "delete db instance "+r.ID)
}

func (o rdsInstanceOps) Status(ctx context.Context, r types.Resource) (string, error) {
	output, err := o.client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(r.ID),
	})
	if err != nil {
		return "", classify(err, "describe db instance "+r.ID)
	}
	if len(output.DBInstances) == 0 {
		return "", classify(errNotFoundSynthetic, "describe db instance "+r.ID)
	}
	return aws.ToString(output.DBInstances[0].DBInstanceStatus), nil
}
