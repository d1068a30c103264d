package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const roleSessionName = "govlink"

var ErrLoadConfig = errors.New("failed to load AWS config")

// Option adjusts the loaded aws.Config.
type Option func(*aws.Config)

// BaseEndpoint routes every service client to a single endpoint, used against local emulators.
func BaseEndpoint(endpoint string) Option {
	return func(cfg *aws.Config) {
		if endpoint != "" {
			cfg.BaseEndpoint = aws.String(endpoint)
		}
	}
}

// StaticCredentials replaces the default credential chain.
func StaticCredentials(accessKeyID, secretAccessKey, sessionToken string) Option {
	return func(cfg *aws.Config) {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken)
	}
}

// LoadConfig loads the default credential chain for the region.
func LoadConfig(ctx context.Context, region string, opts ...Option) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg, nil
}

// AssumeRole returns a copy of cfg whose credentials come from assuming roleARN.
// Credentials are cached and refreshed by the SDK.
func AssumeRole(cfg aws.Config, roleARN string) aws.Config {
	assumed := cfg.Copy()

	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleARN,
		func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
		})
	assumed.Credentials = aws.NewCredentialsCache(provider)

	return assumed
}

// RoleARN builds an IAM role ARN inside accountID.
func RoleARN(partition, accountID, roleName string) string {
	return fmt.Sprintf("arn:%s:iam::%s:role/%s", partition, accountID, roleName)
}
