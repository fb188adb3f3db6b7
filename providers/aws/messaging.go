package aws

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/yairfalse/purku/types"
)

// sqsQueueOps handles SQS queue discovery and deletion. The queue URL
// is the resource id; the trailing path segment is the display name.
type sqsQueueOps struct {
	client *sqs.Client
	scope  types.Scope
}

func (o sqsQueueOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := sqs.NewListQueuesPaginator(o.client, &sqs.ListQueuesInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "list queues")
		}
		for _, url := range output.QueueUrls {
			resources = append(resources, types.Resource{
				ID:           url,
				Type:         types.TypeSQSQueue,
				Scope:        scope,
				Name:         lastPathSegment(url),
				DiscoveredAt: time.Now(),
			})
		}
	}
	return resources, nil
}

func (o sqsQueueOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteQueue(ctx, &sqs.DeleteQueueInput{
		QueueUrl: aws.String(r.ID),
	})
	return classify(err, "delete queue "+r.Name)
}

// snsTopicOps handles SNS topic discovery and deletion. The topic ARN
// is the resource id.
type snsTopicOps struct {
	client *sns.Client
	scope  types.Scope
}

func (o snsTopicOps) List(ctx context.Context, scope types.Scope) ([]types.Resource, error) {
	paginator := sns.NewListTopicsPaginator(o.client, &sns.ListTopicsInput{})

	var resources []types.Resource
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "list topics")
		}
		for _, topic := range output.Topics {
			arn := aws.ToString(topic.TopicArn)
			resources = append(resources, types.Resource{
				ID:           arn,
				Type:         types.TypeSNSTopic,
				Scope:        scope,
				Name:         lastColonSegment(arn),
				DiscoveredAt: time.Now(),
			})
		}
	}
	return resources, nil
}

func (o snsTopicOps) Delete(ctx context.Context, r types.Resource) error {
	_, err := o.client.DeleteTopic(ctx, &sns.DeleteTopicInput{
		TopicArn: aws.String(r.ID),
	})
	return classify(err, "delete topic "+r.Name)
}

func lastPathSegment(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

func lastColonSegment(arn string) string {
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		return arn[i+1:]
	}
	return arn
}
