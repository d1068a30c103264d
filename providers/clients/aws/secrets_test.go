package aws_test

import (
	"context"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govlink/govlink/providers/clients/aws"
	"github.com/govlink/govlink/providers/clients/aws/mock"
)

const secretID = "govlink/bridge/api-key"

func TestSecretsClient_GetSecret(t *testing.T) {
	t.Run("Should return secret string", func(t *testing.T) {
		m := &mock.SecretsManager{
			GetSecretValueFunc: func(_ context.Context,
				params *secretsmanager.GetSecretValueInput,
				_ ...func(*secretsmanager.Options),
			) (*secretsmanager.GetSecretValueOutput, error) {
				assert.Equal(t, secretID, awssdk.ToString(params.SecretId))
				return &secretsmanager.GetSecretValueOutput{SecretString: awssdk.String("s3cr3t")}, nil
			},
		}

		v, err := aws.NewSecretsClientForTests(m).GetSecret(t.Context(), secretID)
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", v)
	})

	t.Run("Should fail on binary secret", func(t *testing.T) {
		m := &mock.SecretsManager{
			GetSecretValueFunc: func(context.Context,
				*secretsmanager.GetSecretValueInput,
				...func(*secretsmanager.Options),
			) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{SecretBinary: []byte{1}}, nil
			},
		}

		_, err := aws.NewSecretsClientForTests(m).GetSecret(t.Context(), secretID)
		assert.ErrorIs(t, err, aws.ErrEmptySecret)
	})

	t.Run("Should wrap api error", func(t *testing.T) {
		m := &mock.SecretsManager{
			GetSecretValueFunc: func(context.Context,
				*secretsmanager.GetSecretValueInput,
				...func(*secretsmanager.Options),
			) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, errForced
			},
		}

		_, err := aws.NewSecretsClientForTests(m).GetSecret(t.Context(), secretID)
		assert.ErrorIs(t, err, aws.ErrGetSecretFailed)
	})
}

func TestSecretsClient_PutSecret(t *testing.T) {
	t.Run("Should put new version", func(t *testing.T) {
		m := &mock.SecretsManager{
			PutSecretValueFunc: func(context.Context,
				*secretsmanager.PutSecretValueInput,
				...func(*secretsmanager.Options),
			) (*secretsmanager.PutSecretValueOutput, error) {
				return &secretsmanager.PutSecretValueOutput{}, nil
			},
		}

		err := aws.NewSecretsClientForTests(m).PutSecret(t.Context(), secretID, "v")
		assert.NoError(t, err)
	})

	t.Run("Should create missing secret", func(t *testing.T) {
		created := false
		m := &mock.SecretsManager{
			PutSecretValueFunc: func(context.Context,
				*secretsmanager.PutSecretValueInput,
				...func(*secretsmanager.Options),
			) (*secretsmanager.PutSecretValueOutput, error) {
				return nil, &smtypes.ResourceNotFoundException{Message: awssdk.String("missing")}
			},
			CreateSecretFunc: func(_ context.Context,
				params *secretsmanager.CreateSecretInput,
				_ ...func(*secretsmanager.Options),
			) (*secretsmanager.CreateSecretOutput, error) {
				created = true

				assert.Equal(t, secretID, awssdk.ToString(params.Name))

				return &secretsmanager.CreateSecretOutput{}, nil
			},
		}

		err := aws.NewSecretsClientForTests(m).PutSecret(t.Context(), secretID, "v")
		assert.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("Should not create on other errors", func(t *testing.T) {
		m := &mock.SecretsManager{
			PutSecretValueFunc: func(context.Context,
				*secretsmanager.PutSecretValueInput,
				...func(*secretsmanager.Options),
			) (*secretsmanager.PutSecretValueOutput, error) {
				return nil, errForced
			},
		}

		err := aws.NewSecretsClientForTests(m).PutSecret(t.Context(), secretID, "v")
		assert.ErrorIs(t, err, aws.ErrPutSecretFailed)
	})
}

func TestEventBridgeClient_PutEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Should publish entry", func(t *testing.T) {
		m := &mock.EventBridge{
			PutEventsFunc: func(_ context.Context,
				params *eventbridge.PutEventsInput,
				_ ...func(*eventbridge.Options),
			) (*eventbridge.PutEventsOutput, error) {
				require.Len(t, params.Entries, 1)
				assert.Equal(t, "bus", awssdk.ToString(params.Entries[0].EventBusName))
				assert.Equal(t, "AccountRegistered", awssdk.ToString(params.Entries[0].DetailType))
				assert.Equal(t, at, awssdk.ToTime(params.Entries[0].Time))

				return &eventbridge.PutEventsOutput{}, nil
			},
		}

		err := aws.NewEventBridgeClientForTests(m, "bus").PutEvent(t.Context(), "govlink", "AccountRegistered", "{}", at)
		assert.NoError(t, err)
	})

	t.Run("Should fail on rejected entry", func(t *testing.T) {
		m := &mock.EventBridge{
			PutEventsFunc: func(context.Context,
				*eventbridge.PutEventsInput,
				...func(*eventbridge.Options),
			) (*eventbridge.PutEventsOutput, error) {
				return &eventbridge.PutEventsOutput{
					FailedEntryCount: 1,
					Entries: []ebtypes.PutEventsResultEntry{
						{ErrorCode: awssdk.String("InternalFailure"), ErrorMessage: awssdk.String("boom")},
					},
				}, nil
			},
		}

		err := aws.NewEventBridgeClientForTests(m, "bus").PutEvent(t.Context(), "govlink", "AccountRegistered", "{}", at)
		assert.ErrorIs(t, err, aws.ErrEventRejected)
		assert.ErrorContains(t, err, "InternalFailure")
	})
}
