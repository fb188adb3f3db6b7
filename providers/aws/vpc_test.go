package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
)

func dhcpConfig(key string, values ...string) ec2types.DhcpConfiguration {
	cfg := ec2types.DhcpConfiguration{Key: aws.String(key)}
	for _, v := range values {
		cfg.Values = append(cfg.Values, ec2types.AttributeValue{Value: aws.String(v)})
	}
	return cfg
}

func TestIsDefaultOptionShape(t *testing.T) {
	tests := []struct {
		name    string
		configs []ec2types.DhcpConfiguration
		want    bool
	}{
		{
			name: "amazon dns with region domain",
			configs: []ec2types.DhcpConfiguration{
				dhcpConfig("domain-name", "eu-west-1.compute.internal"),
				dhcpConfig("domain-name-servers", "AmazonProvidedDNS"),
			},
			want: true,
		},
		{
			name:    "amazon dns alone",
			configs: []ec2types.DhcpConfiguration{dhcpConfig("domain-name-servers", "AmazonProvidedDNS")},
			want:    true,
		},
		{
			name:    "custom name server",
			configs: []ec2types.DhcpConfiguration{dhcpConfig("domain-name-servers", "10.0.0.2")},
			want:    false,
		},
		{
			name:    "extra server alongside the provided one",
			configs: []ec2types.DhcpConfiguration{dhcpConfig("domain-name-servers", "AmazonProvidedDNS", "10.0.0.2")},
			want:    false,
		},
		{
			name: "extra option key",
			configs: []ec2types.DhcpConfiguration{
				dhcpConfig("domain-name-servers", "AmazonProvidedDNS"),
				dhcpConfig("ntp-servers", "10.0.0.1"),
			},
			want: false,
		},
		{
			name: "no configurations",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDefaultOptionShape(tt.configs))
		})
	}
}
