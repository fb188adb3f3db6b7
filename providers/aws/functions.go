package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/yairfalse/purku/types"
)

// lambdaFunctionOps handles Lambda function discovery and deletion.
type lambdaFunctionOps struct {
	client *lambda.Client
	scope  types.Scope
}

func (o lambdaFunctionOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := lambda.NewListFunctionsPaginator(o.client, &lambda.ListFunctionsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "list functions")
		}
		for _, fn := range output.Functions {
			resources = append(resources, types.Resource{
				ID:           aws.ToString(fn.FunctionName),
				Type:         types.TypeLambdaFunction,
				Scope:        scope,
				Name:         aws.ToString(fn.FunctionName),
				Status:       string(fn.State),
				DiscoveredAt: time.Now(),
			})
		}
	}
	return resources, nil
}

func (o lambdaFunctionOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(r.ID),
	})
	return classify(err, "delete function "+r.ID)
}
