package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManager is a mock of the AWS Secrets Manager client.
type SecretsManager struct {
	GetSecretValueFunc func(ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValueFunc func(ctx context.Context,
		params *secretsmanager.PutSecretValueInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecretFunc func(ctx context.Context,
		params *secretsmanager.CreateSecretInput,
		optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

func (m *SecretsManager) GetSecretValue(
	ctx context.Context,
	params *secretsmanager.GetSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	if m.GetSecretValueFunc != nil {
		return m.GetSecretValueFunc(ctx, params, optFns...)
	}

	panic("GetSecretValueFunc not implemented")
}

func (m *SecretsManager) PutSecretValue(
	ctx context.Context,
	params *secretsmanager.PutSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.PutSecretValueOutput, error) {
	if m.PutSecretValueFunc != nil {
		return m.PutSecretValueFunc(ctx, params, optFns...)
	}

	panic("PutSecretValueFunc not implemented")
}

func (m *SecretsManager) CreateSecret(
	ctx context.Context,
	params *secretsmanager.CreateSecretInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.CreateSecretOutput, error) {
	if m.CreateSecretFunc != nil {
		return m.CreateSecretFunc(ctx, params, optFns...)
	}

	panic("CreateSecretFunc not implemented")
}
