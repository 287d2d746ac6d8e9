package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAWSConfig_DefaultRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")

	cfg, err := LoadAWSConfig(context.Background(), Settings{})
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.Region)
}

func TestLoadAWSConfig_WithEndpointOverride(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), Settings{
		Region:   "eu-west-1",
		Endpoint: "http://localhost:4566",
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *cfg.BaseEndpoint)
}

func TestNewClients(t *testing.T) {
	c, err := NewClients(context.Background(), Settings{Region: "us-west-2"})
	require.NoError(t, err)
	assert.NotNil(t, c.DynamoDB)
	assert.NotNil(t, c.SQS)
	assert.NotNil(t, c.CloudWatch)
}
