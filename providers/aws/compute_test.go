package aws

import (
	"testing"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
)

func TestInstanceStateToleratesMissingStateBlock(t *testing.T) {
	assert.Empty(t, instanceState(ec2types.Instance{}))

	inst := ec2types.Instance{State: &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning}}
	assert.Equal(t, "running", instanceState(inst))
}
