package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

type secretsManagerClient interface {
	GetSecretValue(ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context,
		params *secretsmanager.PutSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context,
		params *secretsmanager.CreateSecretInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

var _ secretsManagerClient = (*secretsmanager.Client)(nil)

var (
	ErrGetSecretFailed = errors.New("secret retrieval failed")
	ErrPutSecretFailed = errors.New("secret storage failed")
	ErrEmptySecret     = errors.New("secret has no string value")
)

// SecretsClient stores opaque string blobs in AWS Secrets Manager.
type SecretsClient struct {
	internalClient secretsManagerClient
}

func NewSecretsClient(cfg aws.Config) *SecretsClient {
	return &SecretsClient{internalClient: secretsmanager.NewFromConfig(cfg)}
}

// GetSecret returns the current string value of secretID.
func (c *SecretsClient) GetSecret(ctx context.Context, secretID string) (string, error) {
	out, err := c.internalClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGetSecretFailed, err)
	}

	if out.SecretString == nil {
		return "", fmt.Errorf("%w: %s", ErrEmptySecret, secretID)
	}

	return *out.SecretString, nil
}

// PutSecret writes a new version of secretID, creating the secret when it does not exist.
func (c *SecretsClient) PutSecret(ctx context.Context, secretID, value string) error {
	_, err := c.internalClient.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(secretID),
		SecretString: aws.String(value),
	})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", ErrPutSecretFailed, err)
	}

	_, err = c.internalClient.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(secretID),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPutSecretFailed, err)
	}

	return nil
}
