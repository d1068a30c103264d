package aws_test

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govlink/govlink/providers/clients/aws"
	"github.com/govlink/govlink/providers/clients/aws/mock"
)

const (
	accountID   = "123456789012"
	handshakeID = "h-abc123"
	rootID      = "r-root"
	entryOU     = "ou-root-entry"
)

var errForced = errors.New("forced error")

func TestOrganizationsClient_InviteAccount(t *testing.T) {
	t.Run("Should return handshake id", func(t *testing.T) {
		m := &mock.Organizations{
			InviteAccountToOrganizationFunc: func(_ context.Context,
				params *organizations.InviteAccountToOrganizationInput,
				_ ...func(*organizations.Options),
			) (*organizations.InviteAccountToOrganizationOutput, error) {
				assert.Equal(t, accountID, awssdk.ToString(params.Target.Id))
				assert.Equal(t, types.HandshakePartyTypeAccount, params.Target.Type)

				return &organizations.InviteAccountToOrganizationOutput{
					Handshake: &types.Handshake{Id: awssdk.String(handshakeID)},
				}, nil
			},
		}

		id, err := aws.NewOrganizationsClientForTests(m, nil).InviteAccount(t.Context(), accountID)
		require.NoError(t, err)
		assert.Equal(t, handshakeID, id)
	})

	t.Run("Should keep typed error in chain", func(t *testing.T) {
		m := &mock.Organizations{
			InviteAccountToOrganizationFunc: func(context.Context,
				*organizations.InviteAccountToOrganizationInput,
				...func(*organizations.Options),
			) (*organizations.InviteAccountToOrganizationOutput, error) {
				return nil, &types.DuplicateHandshakeException{Message: awssdk.String("duplicate")}
			},
		}

		_, err := aws.NewOrganizationsClientForTests(m, nil).InviteAccount(t.Context(), accountID)
		assert.ErrorIs(t, err, aws.ErrInviteAccountFailed)

		var duplicate *types.DuplicateHandshakeException
		assert.ErrorAs(t, err, &duplicate)
	})

	t.Run("Should fail on empty handshake", func(t *testing.T) {
		m := &mock.Organizations{
			InviteAccountToOrganizationFunc: func(context.Context,
				*organizations.InviteAccountToOrganizationInput,
				...func(*organizations.Options),
			) (*organizations.InviteAccountToOrganizationOutput, error) {
				return &organizations.InviteAccountToOrganizationOutput{}, nil
			},
		}

		_, err := aws.NewOrganizationsClientForTests(m, nil).InviteAccount(t.Context(), accountID)
		assert.ErrorIs(t, err, aws.ErrEmptyHandshakeResponse)
	})
}

func TestOrganizationsClient_FindOpenHandshake(t *testing.T) {
	pages := []*organizations.ListHandshakesForOrganizationOutput{
		{
			Handshakes: []types.Handshake{
				{
					Id:      awssdk.String("h-other"),
					State:   types.HandshakeStateOpen,
					Parties: []types.HandshakeParty{{Id: awssdk.String("999999999999"), Type: types.HandshakePartyTypeAccount}},
				},
				{
					Id:      awssdk.String("h-done"),
					State:   types.HandshakeStateAccepted,
					Parties: []types.HandshakeParty{{Id: awssdk.String(accountID), Type: types.HandshakePartyTypeAccount}},
				},
			},
			NextToken: awssdk.String("page-2"),
		},
		{
			Handshakes: []types.Handshake{
				{
					Id:      awssdk.String(handshakeID),
					State:   types.HandshakeStateOpen,
					Parties: []types.HandshakeParty{{Id: awssdk.String(accountID), Type: types.HandshakePartyTypeAccount}},
				},
			},
		},
	}

	call := 0
	m := &mock.Organizations{
		ListHandshakesForOrganizationFunc: func(_ context.Context,
			params *organizations.ListHandshakesForOrganizationInput,
			_ ...func(*organizations.Options),
		) (*organizations.ListHandshakesForOrganizationOutput, error) {
			assert.Equal(t, types.ActionTypeInvite, params.Filter.ActionType)

			out := pages[call]
			call++

			return out, nil
		},
	}

	id, err := aws.NewOrganizationsClientForTests(m, nil).FindOpenHandshake(t.Context(), accountID)
	require.NoError(t, err)
	assert.Equal(t, handshakeID, id)
	assert.Equal(t, 2, call)
}

func TestOrganizationsClient_AcceptHandshakeAs(t *testing.T) {
	t.Run("Should accept with member client", func(t *testing.T) {
		member := &mock.Organizations{
			AcceptHandshakeFunc: func(_ context.Context,
				params *organizations.AcceptHandshakeInput,
				_ ...func(*organizations.Options),
			) (*organizations.AcceptHandshakeOutput, error) {
				assert.Equal(t, handshakeID, awssdk.ToString(params.HandshakeId))
				return &organizations.AcceptHandshakeOutput{}, nil
			},
		}

		err := aws.NewOrganizationsClientForTests(&mock.Organizations{}, member).
			AcceptHandshakeAs(t.Context(), accountID, handshakeID)
		assert.NoError(t, err)
	})

	t.Run("Should wrap error", func(t *testing.T) {
		member := &mock.Organizations{
			AcceptHandshakeFunc: func(context.Context,
				*organizations.AcceptHandshakeInput,
				...func(*organizations.Options),
			) (*organizations.AcceptHandshakeOutput, error) {
				return nil, errForced
			},
		}

		err := aws.NewOrganizationsClientForTests(&mock.Organizations{}, member).
			AcceptHandshakeAs(t.Context(), accountID, handshakeID)
		assert.ErrorIs(t, err, aws.ErrAcceptHandshakeFailed)
		assert.ErrorIs(t, err, errForced)
	})
}

func TestOrganizationsClient_ParentOf(t *testing.T) {
	tests := []struct {
		name    string
		parents []types.Parent
		err     error
		want    string
		wantErr error
	}{
		{
			name:    "Should return first parent",
			parents: []types.Parent{{Id: awssdk.String(rootID), Type: types.ParentTypeRoot}},
			want:    rootID,
		},
		{
			name:    "Should fail without parents",
			wantErr: aws.ErrNoParent,
		},
		{
			name:    "Should wrap api error",
			err:     errForced,
			wantErr: aws.ErrListParentsFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mock.Organizations{
				ListParentsFunc: func(context.Context,
					*organizations.ListParentsInput,
					...func(*organizations.Options),
				) (*organizations.ListParentsOutput, error) {
					if tt.err != nil {
						return nil, tt.err
					}

					return &organizations.ListParentsOutput{Parents: tt.parents}, nil
				},
			}

			got, err := aws.NewOrganizationsClientForTests(m, nil).ParentOf(t.Context(), accountID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrganizationsClient_MoveAccount(t *testing.T) {
	m := &mock.Organizations{
		MoveAccountFunc: func(_ context.Context,
			params *organizations.MoveAccountInput,
			_ ...func(*organizations.Options),
		) (*organizations.MoveAccountOutput, error) {
			assert.Equal(t, accountID, awssdk.ToString(params.AccountId))
			assert.Equal(t, rootID, awssdk.ToString(params.SourceParentId))
			assert.Equal(t, entryOU, awssdk.ToString(params.DestinationParentId))

			return &organizations.MoveAccountOutput{}, nil
		},
	}

	err := aws.NewOrganizationsClientForTests(m, nil).MoveAccount(t.Context(), accountID, rootID, entryOU)
	assert.NoError(t, err)
}

func TestOrganizationsClient_ListAccountsInOU(t *testing.T) {
	m := &mock.Organizations{
		ListAccountsForParentFunc: func(_ context.Context,
			params *organizations.ListAccountsForParentInput,
			_ ...func(*organizations.Options),
		) (*organizations.ListAccountsForParentOutput, error) {
			if params.NextToken == nil {
				return &organizations.ListAccountsForParentOutput{
					Accounts:  []types.Account{{Id: awssdk.String("111111111111"), Status: types.AccountStatusActive}},
					NextToken: awssdk.String("next"),
				}, nil
			}

			return &organizations.ListAccountsForParentOutput{
				Accounts: []types.Account{{Id: awssdk.String("222222222222"), Name: awssdk.String("two")}},
			}, nil
		},
	}

	accounts, err := aws.NewOrganizationsClientForTests(m, nil).ListAccountsInOU(t.Context(), entryOU)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "111111111111", accounts[0].ID)
	assert.Equal(t, "ACTIVE", accounts[0].Status)
	assert.Equal(t, "two", accounts[1].Name)
}

func TestRoleARN(t *testing.T) {
	assert.Equal(t,
		"arn:aws-us-gov:iam::123456789012:role/OrganizationAccountAccessRole",
		aws.RoleARN("aws-us-gov", accountID, "OrganizationAccountAccessRole"),
	)
}
