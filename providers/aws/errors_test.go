package aws

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/yairfalse/purku/providers"
)

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

func TestClassifyNotFound(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"ec2 vpc", "InvalidVpcID.NotFound"},
		{"ec2 subnet", "InvalidSubnetID.NotFound"},
		{"ec2 security group", "InvalidGroup.NotFound"},
		{"eks", "ResourceNotFoundException"},
		{"rds", "DBInstanceNotFound"},
		{"elbv2 lb", "LoadBalancerNotFound"},
		{"elbv2 tg", "TargetGroupNotFound"},
		{"sqs", "AWS.SimpleQueueService.NonExistentQueue"},
		{"revoked rule", "InvalidPermission.NotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(apiError(tt.code, "gone"), "delete")
			assert.True(t, providers.IsNotFound(err), "code %s should classify not-found", tt.code)
			assert.False(t, providers.IsDependency(err))
		})
	}
}

func TestClassifyDependency(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"ec2", "DependencyViolation"},
		{"eks", "ResourceInUseException"},
		{"rds", "ResourceInUseFault"},
		{"elbv2", "ResourceInUse"},
		{"eip", "InvalidIPAddress.InUse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(apiError(tt.code, "still referenced"), "delete")
			assert.True(t, providers.IsDependency(err), "code %s should classify dependency", tt.code)
			assert.False(t, providers.IsNotFound(err))
		})
	}
}

func TestClassifyOther(t *testing.T) {
	err := classify(apiError("UnauthorizedOperation", "nope"), "delete vpc vpc-1")
	assert.False(t, providers.IsNotFound(err))
	assert.False(t, providers.IsDependency(err))
	assert.Contains(t, err.Error(), "delete vpc vpc-1")

	// Non-API errors pass through wrapped.
	raw := errors.New("connection reset")
	err = classify(raw, "describe")
	assert.True(t, errors.Is(err, raw))
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify(nil, "delete"))
}

func TestClassifyKeepsContext(t *testing.T) {
	err := classify(apiError("DependencyViolation", "vpc has dependencies"), "delete vpc vpc-123")
	assert.Contains(t, err.Error(), "vpc-123")
	assert.Contains(t, err.Error(), "vpc has dependencies")
}

func TestClassifyWrappedChain(t *testing.T) {
	// Classification survives another layer of wrapping.
	err := fmt.Errorf("pass 2: %w", classify(apiError("DependencyViolation", ""), "delete"))
	assert.True(t, providers.IsDependency(err))
}
