package testutils

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/model"
)

const (
	TestGovCloudAccountID   = "123456789012"
	TestCommercialAccountID = "210987654321"
	TestAccountName         = "sandbox-gov-001"
	TestAccountEmail        = "sandbox-gov-001@example.com"

	TestOrgManagementAccountID = "111111111111"
	TestHubAccountID           = "222222222222"
	TestBridgeAccountID        = "333333333333"

	TestRoleArn        = "arn:aws:iam::123456789012:role/ExampleRole"
	TestTrustAnchorArn = "arn:aws:rolesanywhere:us-east-1:123456789012:trust-anchor/12345678-90ab-cdef-1234"
	TestProfileArn     = "arn:aws:rolesanywhere:us-east-1:123456789012:profile/12345678-90ab-cdef-1234"
)

// NewMutator returns a builder applying optional mutations on a fresh base value.
func NewMutator[T any](base func() T) func(mutations ...func(*T)) T {
	return func(mutations ...func(*T)) T {
		v := base()
		for _, m := range mutations {
			if m != nil {
				m(&v)
			}
		}

		return v
	}
}

func NewAccount(m func(*model.Account)) *model.Account {
	mut := NewMutator(func() model.Account {
		return model.Account{
			AwsAccountID: TestGovCloudAccountID,
			Name:         TestAccountName,
			Email:        TestAccountEmail,
			Status:       model.AccountAvailable,
		}
	})

	account := mut(m)

	return &account
}

func NewExecution(m func(*model.Execution)) *model.Execution {
	mut := NewMutator(func() model.Execution {
		id := uuid.New()

		return model.Execution{
			ID:        id,
			ARN:       "arn:aws-us-gov:states:us-gov-west-1:000000000000:execution:test:" + id.String(),
			Mode:      "create",
			State:     "MODE_DISPATCH",
			Status:    model.ExecutionRunning,
			Input:     json.RawMessage(`{"mode":"create","accountName":"sandbox-gov-001","email":"sandbox-gov-001@example.com"}`),
			StartTime: time.Now().UTC(),
		}
	})

	execution := mut(m)

	return &execution
}
