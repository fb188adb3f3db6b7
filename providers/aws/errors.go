package aws

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/yairfalse/purku/providers"
)

// Error codes AWS returns when a resource is already gone. EC2 uses
// Invalid<Thing>.NotFound, the managed services each invented their own.
var notFoundCodes = map[string]bool{
	"NotFoundException":                         true,
	"ResourceNotFoundException":                 true,
	"ResourceNotFoundFault":                     true,
	"DBInstanceNotFound":                        true,
	"DBInstanceNotFoundFault":                   true,
	"LoadBalancerNotFound":                      true,
	"TargetGroupNotFound":                       true,
	"NoSuchEntity":                              true,
	"NotFound":                                  true,
	"AWS.SimpleQueueService.NonExistentQueue":   true,
	"QueueDoesNotExist":                         true,
	"InvalidAddress.NotFound":                   true,
	"InvalidAllocationID.NotFound":              true,
	"InvalidAssociationID.NotFound":             true,
	"InvalidPermission.NotFound":                true,
}

// Error codes for deletions blocked by a surviving dependent.
var dependencyCodes = map[string]bool{
	"DependencyViolation":    true,
	"ResourceInUse":          true,
	"ResourceInUseException": true,
	"ResourceInUseFault":     true,
	"DeleteConflict":         true,
	"InvalidIPAddress.InUse": true,
}

// classify wraps an SDK error with the matching providers sentinel so
// the core can use errors.Is without seeing smithy shapes.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case isNotFoundCode(code):
			return fmt.Errorf("%s: %s: %w", op, code, providers.ErrNotFound)
		case dependencyCodes[code]:
			return fmt.Errorf("%s: %s (%s): %w", op, code, apiErr.ErrorMessage(), providers.ErrDependency)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// errNotFoundSynthetic stands in when a describe call succeeds but
// returns an empty set instead of a NotFound code.
var errNotFoundSynthetic = providers.ErrNotFound

// unsuccessfulItemError adapts an EC2 batch-API per-item failure to the
// smithy error shape so classify can handle it like any other API error.
type unsuccessfulItemError struct {
	item ec2types.UnsuccessfulItem
}

func (e *unsuccessfulItemError) Error() string {
	return e.ErrorCode() + ": " + e.ErrorMessage()
}

func (e *unsuccessfulItemError) ErrorCode() string {
	if e.item.Error == nil {
		return ""
	}
	return aws.ToString(e.item.Error.Code)
}

func (e *unsuccessfulItemError) ErrorMessage() string {
	if e.item.Error == nil {
		return ""
	}
	return aws.ToString(e.item.Error.Message)
}

func (e *unsuccessfulItemError) ErrorFault() smithy.ErrorFault {
	return smithy.FaultUnknown
}

// isGone is shorthand for the not-found classification on a wrapped error.
func isGone(err error) bool {
	return providers.IsNotFound(err)
}

func isNotFoundCode(code string) bool {
	// EC2's family of Invalid*.NotFound codes, plus the explicit set.
	return notFoundCodes[code] || strings.HasSuffix(code, ".NotFound")
}
