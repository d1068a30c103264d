package steps_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/steps"
	"github.com/govlink/govlink/internal/testutils"
)

const (
	entryOU = "ou-entry-1234"
	rootID  = "r-root"
)

var errForced = errors.New("forced error")

type bridgeFake struct {
	createRes  *bridge.CreateAccountResult
	createErr  error
	statusRes  *bridge.AccountStatus
	statusErr  error
	acceptErr  error
	accepted   []bridge.AcceptInvitationRequest
	createArgs []string
}

func (b *bridgeFake) CreateAccount(_ context.Context, name, email, role string) (*bridge.CreateAccountResult, error) {
	b.createArgs = []string{name, email, role}
	return b.createRes, b.createErr
}

func (b *bridgeFake) GetAccountStatus(context.Context, string) (*bridge.AccountStatus, error) {
	return b.statusRes, b.statusErr
}

func (b *bridgeFake) AcceptInvitation(_ context.Context, req bridge.AcceptInvitationRequest) (*bridge.AcceptInvitationResult, error) {
	b.accepted = append(b.accepted, req)
	return &bridge.AcceptInvitationResult{}, b.acceptErr
}

type orgsFake struct {
	inviteID   string
	inviteErr  error
	openID     string
	openErr    error
	parent     string
	parentErr  error
	moveErr    error
	acceptErrs []error

	invites int
	moves   [][3]string
	accepts [][2]string
}

func (o *orgsFake) InviteAccount(context.Context, string) (string, error) {
	o.invites++
	return o.inviteID, o.inviteErr
}

func (o *orgsFake) FindOpenHandshake(context.Context, string) (string, error) {
	return o.openID, o.openErr
}

func (o *orgsFake) ParentOf(context.Context, string) (string, error) {
	return o.parent, o.parentErr
}

func (o *orgsFake) MoveAccount(_ context.Context, id, src, dst string) error {
	o.moves = append(o.moves, [3]string{id, src, dst})
	return o.moveErr
}

func (o *orgsFake) AcceptHandshakeAs(_ context.Context, accountID, handshakeID string) error {
	o.accepts = append(o.accepts, [2]string{accountID, handshakeID})

	if len(o.acceptErrs) == 0 {
		return nil
	}

	err := o.acceptErrs[0]
	o.acceptErrs = o.acceptErrs[1:]

	return err
}

type registrarFake struct {
	account *model.Account
	err     error
	in      manager.RegisterAccountInput
}

func (r *registrarFake) RegisterAccount(_ context.Context, in manager.RegisterAccountInput) (*model.Account, error) {
	r.in = in
	return r.account, r.err
}

func pair() steps.LinkedAccountPair {
	return steps.LinkedAccountPair{
		GovCloudAccountID:   testutils.TestGovCloudAccountID,
		CommercialAccountID: testutils.TestCommercialAccountID,
		AccountName:         testutils.TestAccountName,
	}
}

func handshake(id string) steps.Handshake {
	return steps.Handshake{
		HandshakeID:         id,
		GovCloudAccountID:   testutils.TestGovCloudAccountID,
		CommercialAccountID: testutils.TestCommercialAccountID,
	}
}

func alreadyInOrganization() error {
	return &types.HandshakeConstraintViolationException{
		Message: aws.String("already a member"),
		Reason:  types.HandshakeConstraintViolationExceptionReasonAlreadyInAnOrganization,
	}
}

func TestInitiateCreation(t *testing.T) {
	t.Run("Should request creation with role name", func(t *testing.T) {
		b := &bridgeFake{createRes: &bridge.CreateAccountResult{RequestID: "car-1"}}
		s := &steps.InitiateCreation{Bridge: b, RoleName: "OrganizationAccountAccessRole"}

		out, err := s.Execute(t.Context(), steps.CreationInput{AccountName: testutils.TestAccountName, Email: testutils.TestAccountEmail})
		require.NoError(t, err)
		assert.Equal(t, "car-1", out.RequestID)
		assert.Equal(t, testutils.TestAccountName, out.AccountName)
		assert.Equal(t, []string{testutils.TestAccountName, testutils.TestAccountEmail, "OrganizationAccountAccessRole"}, b.createArgs)
	})

	t.Run("Should fail on empty request id", func(t *testing.T) {
		s := &steps.InitiateCreation{Bridge: &bridgeFake{createRes: &bridge.CreateAccountResult{}}}

		_, err := s.Execute(t.Context(), steps.CreationInput{})
		assert.ErrorIs(t, err, steps.ErrEmptyRequestID)
	})

	t.Run("Should propagate bridge errors", func(t *testing.T) {
		s := &steps.InitiateCreation{Bridge: &bridgeFake{createErr: errForced}}

		_, err := s.Execute(t.Context(), steps.CreationInput{})
		assert.ErrorIs(t, err, errForced)
	})
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  *bridge.AccountStatus
		err     error
		want    steps.StatusOutput
		wantErr error
	}{
		{
			name:   "Should report in progress",
			status: &bridge.AccountStatus{Status: bridge.StatusInProgress},
			want:   steps.StatusOutput{Status: bridge.StatusInProgress},
		},
		{
			name: "Should report success with ids",
			status: &bridge.AccountStatus{
				Status:              bridge.StatusSucceeded,
				GovCloudAccountID:   testutils.TestGovCloudAccountID,
				CommercialAccountID: testutils.TestCommercialAccountID,
			},
			want: steps.StatusOutput{
				Status:              bridge.StatusSucceeded,
				GovCloudAccountID:   testutils.TestGovCloudAccountID,
				CommercialAccountID: testutils.TestCommercialAccountID,
			},
		},
		{
			name:   "Should report failure with message",
			status: &bridge.AccountStatus{Status: bridge.StatusFailed, Message: "quota exceeded"},
			want:   steps.StatusOutput{Status: bridge.StatusFailed, Message: "quota exceeded"},
		},
		{
			name:    "Should fail success without account id",
			status:  &bridge.AccountStatus{Status: bridge.StatusSucceeded},
			wantErr: steps.ErrMissingAccountID,
		},
		{
			name:    "Should fail on unknown status",
			status:  &bridge.AccountStatus{Status: "PAUSED"},
			wantErr: steps.ErrUnknownCreationState,
		},
		{
			name:    "Should propagate bridge errors",
			err:     errForced,
			wantErr: errForced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &steps.CheckStatus{Bridge: &bridgeFake{statusRes: tt.status, statusErr: tt.err}}

			out, err := s.Execute(t.Context(), steps.StatusInput{RequestID: "car-1"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSendInvitation(t *testing.T) {
	t.Run("Should return new handshake", func(t *testing.T) {
		s := &steps.SendInvitation{Orgs: &orgsFake{inviteID: "h-1"}}

		out, err := s.Execute(t.Context(), pair())
		require.NoError(t, err)
		assert.Equal(t, handshake("h-1"), out)
	})

	t.Run("Should reuse open handshake on duplicate", func(t *testing.T) {
		s := &steps.SendInvitation{Orgs: &orgsFake{
			inviteErr: &types.DuplicateHandshakeException{Message: aws.String("duplicate")},
			openID:    "h-open",
		}}

		out, err := s.Execute(t.Context(), pair())
		require.NoError(t, err)
		assert.Equal(t, "h-open", out.HandshakeID)
	})

	t.Run("Should fail duplicate without open handshake", func(t *testing.T) {
		s := &steps.SendInvitation{Orgs: &orgsFake{
			inviteErr: &types.DuplicateHandshakeException{},
		}}

		_, err := s.Execute(t.Context(), pair())
		assert.ErrorIs(t, err, steps.ErrEmptyHandshake)
	})

	t.Run("Should mark member account as already joined", func(t *testing.T) {
		s := &steps.SendInvitation{Orgs: &orgsFake{inviteErr: alreadyInOrganization(), parent: rootID}}

		out, err := s.Execute(t.Context(), pair())
		require.NoError(t, err)
		assert.Equal(t, steps.AlreadyJoined, out.HandshakeID)
		assert.True(t, out.Skipped())
	})

	t.Run("Should fail for account in a foreign organization", func(t *testing.T) {
		s := &steps.SendInvitation{Orgs: &orgsFake{inviteErr: alreadyInOrganization(), parentErr: errForced}}

		_, err := s.Execute(t.Context(), pair())

		var violation *types.HandshakeConstraintViolationException
		assert.ErrorAs(t, err, &violation)
	})

	t.Run("Should not treat other constraint violations as joined", func(t *testing.T) {
		s := &steps.SendInvitation{Orgs: &orgsFake{inviteErr: &types.HandshakeConstraintViolationException{
			Reason: types.HandshakeConstraintViolationExceptionReasonAccountNumberLimitExceeded,
		}}}

		_, err := s.Execute(t.Context(), pair())
		assert.Error(t, err)
	})

	t.Run("Should reject incomplete pair", func(t *testing.T) {
		orgs := &orgsFake{}
		s := &steps.SendInvitation{Orgs: orgs}

		_, err := s.Execute(t.Context(), steps.LinkedAccountPair{GovCloudAccountID: testutils.TestGovCloudAccountID})
		assert.ErrorIs(t, err, steps.ErrEmptyAccountPair)
		assert.Zero(t, orgs.invites)
	})
}

func TestAcceptInvitation(t *testing.T) {
	t.Run("Should skip already joined without any call", func(t *testing.T) {
		orgs := &orgsFake{}
		b := &bridgeFake{}

		for _, accepter := range []steps.HandshakeAccepter{
			&steps.DirectAccepter{Orgs: orgs},
			&steps.BridgeAccepter{Bridge: b, Region: "us-gov-west-1"},
		} {
			s := &steps.AcceptInvitation{Accepter: accepter}

			out, err := s.Execute(t.Context(), handshake(steps.AlreadyJoined))
			require.NoError(t, err)
			assert.Equal(t, handshake(steps.AlreadyJoined), out)
		}

		assert.Empty(t, orgs.accepts)
		assert.Empty(t, b.accepted)
	})

	t.Run("Should accept as the invited account", func(t *testing.T) {
		orgs := &orgsFake{}
		s := &steps.AcceptInvitation{Accepter: &steps.DirectAccepter{Orgs: orgs}}

		out, err := s.Execute(t.Context(), handshake("h-1"))
		require.NoError(t, err)
		assert.Equal(t, handshake("h-1"), out)
		assert.Equal(t, [][2]string{{testutils.TestGovCloudAccountID, "h-1"}}, orgs.accepts)
	})

	t.Run("Should be idempotent when already a member", func(t *testing.T) {
		orgs := &orgsFake{parent: entryOU, acceptErrs: []error{nil, alreadyInOrganization()}}
		s := &steps.AcceptInvitation{Accepter: &steps.DirectAccepter{Orgs: orgs}, Orgs: orgs}

		_, err := s.Execute(t.Context(), handshake("h-1"))
		require.NoError(t, err)

		_, err = s.Execute(t.Context(), handshake("h-1"))
		require.NoError(t, err)
		assert.Len(t, orgs.accepts, 2)
	})

	t.Run("Should treat invalid transition of a member as success", func(t *testing.T) {
		orgs := &orgsFake{parent: rootID, acceptErrs: []error{&types.InvalidHandshakeTransitionException{}}}
		s := &steps.AcceptInvitation{Accepter: &steps.DirectAccepter{Orgs: orgs}, Orgs: orgs}

		_, err := s.Execute(t.Context(), handshake("h-1"))
		assert.NoError(t, err)
	})

	t.Run("Should fail invalid transition when account is not a member", func(t *testing.T) {
		declined := &types.InvalidHandshakeTransitionException{Message: aws.String("handshake is DECLINED")}
		orgs := &orgsFake{
			parentErr:  &types.ChildNotFoundException{},
			acceptErrs: []error{declined},
		}
		s := &steps.AcceptInvitation{Accepter: &steps.DirectAccepter{Orgs: orgs}, Orgs: orgs}

		_, err := s.Execute(t.Context(), handshake("h-1"))
		require.Error(t, err)
		assert.ErrorAs(t, err, &declined)
	})

	t.Run("Should fail ambiguous errors without membership lookup", func(t *testing.T) {
		s := &steps.AcceptInvitation{
			Accepter: &steps.DirectAccepter{Orgs: &orgsFake{acceptErrs: []error{alreadyInOrganization()}}},
		}

		_, err := s.Execute(t.Context(), handshake("h-1"))
		assert.Error(t, err)
	})

	for name, settled := range map[string]error{
		"already in state": &types.HandshakeAlreadyInStateException{},
		"bridge conflict":  &bridge.APIError{StatusCode: http.StatusConflict},
	} {
		t.Run("Should treat "+name+" as success", func(t *testing.T) {
			s := &steps.AcceptInvitation{Accepter: &steps.DirectAccepter{Orgs: &orgsFake{acceptErrs: []error{settled}}}}

			_, err := s.Execute(t.Context(), handshake("h-1"))
			assert.NoError(t, err)
		})
	}

	t.Run("Should propagate other errors", func(t *testing.T) {
		s := &steps.AcceptInvitation{Accepter: &steps.DirectAccepter{Orgs: &orgsFake{acceptErrs: []error{errForced}}}}

		_, err := s.Execute(t.Context(), handshake("h-1"))
		assert.ErrorIs(t, err, errForced)
	})

	t.Run("Should fail on empty handshake", func(t *testing.T) {
		s := &steps.AcceptInvitation{Accepter: &steps.DirectAccepter{Orgs: &orgsFake{}}}

		_, err := s.Execute(t.Context(), handshake(""))
		assert.ErrorIs(t, err, steps.ErrEmptyHandshake)
	})

	t.Run("Should accept through the bridge", func(t *testing.T) {
		b := &bridgeFake{}
		s := &steps.AcceptInvitation{Accepter: &steps.BridgeAccepter{Bridge: b, Region: "us-gov-west-1"}}

		_, err := s.Execute(t.Context(), handshake("h-1"))
		require.NoError(t, err)
		require.Len(t, b.accepted, 1)
		assert.Equal(t, bridge.AcceptInvitationRequest{
			GovCloudAccountID:         testutils.TestGovCloudAccountID,
			HandshakeID:               "h-1",
			GovCloudRegion:            "us-gov-west-1",
			CommercialLinkedAccountID: testutils.TestCommercialAccountID,
		}, b.accepted[0])
	})
}

func TestMoveToEntryOU(t *testing.T) {
	t.Run("Should move account from root", func(t *testing.T) {
		orgs := &orgsFake{parent: rootID}
		s := &steps.MoveToEntryOU{Orgs: orgs, EntryOUID: entryOU}

		out, err := s.Execute(t.Context(), pair())
		require.NoError(t, err)
		assert.Equal(t, pair(), out)
		assert.Equal(t, [][3]string{{testutils.TestGovCloudAccountID, rootID, entryOU}}, orgs.moves)
	})

	t.Run("Should not move account already in entry OU", func(t *testing.T) {
		orgs := &orgsFake{parent: entryOU}
		s := &steps.MoveToEntryOU{Orgs: orgs, EntryOUID: entryOU}

		_, err := s.Execute(t.Context(), pair())
		require.NoError(t, err)
		assert.Empty(t, orgs.moves)
	})

	t.Run("Should treat duplicate account as moved", func(t *testing.T) {
		s := &steps.MoveToEntryOU{Orgs: &orgsFake{parent: rootID, moveErr: &types.DuplicateAccountException{}}, EntryOUID: entryOU}

		_, err := s.Execute(t.Context(), pair())
		assert.NoError(t, err)
	})

	t.Run("Should propagate errors", func(t *testing.T) {
		s := &steps.MoveToEntryOU{Orgs: &orgsFake{parentErr: errForced}, EntryOUID: entryOU}

		_, err := s.Execute(t.Context(), pair())
		assert.ErrorIs(t, err, errForced)

		s = &steps.MoveToEntryOU{Orgs: &orgsFake{parent: rootID, moveErr: errForced}, EntryOUID: entryOU}

		_, err = s.Execute(t.Context(), pair())
		assert.ErrorIs(t, err, errForced)
	})
}

func TestRegisterInISB(t *testing.T) {
	executionID := uuid.New()
	linked := testutils.TestCommercialAccountID
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should register pair with execution id", func(t *testing.T) {
		r := &registrarFake{account: testutils.NewAccount(func(a *model.Account) {
			a.CommercialLinkedAccountID = &linked
			a.CreatedAt = created
		})}
		s := &steps.RegisterInISB{Registrar: r}

		out, err := s.Execute(t.Context(), steps.RegistrationInput{Pair: pair(), ExecutionID: executionID})
		require.NoError(t, err)
		assert.Equal(t, steps.RegisteredAccount{
			AwsAccountID:              testutils.TestGovCloudAccountID,
			Name:                      testutils.TestAccountName,
			Status:                    string(model.AccountAvailable),
			CommercialLinkedAccountID: testutils.TestCommercialAccountID,
			RegisteredAt:              created,
		}, out)
		assert.Equal(t, executionID, r.in.ExecutionID)
		assert.Equal(t, testutils.TestCommercialAccountID, r.in.CommercialAccountID)
	})

	t.Run("Should pass creation email to registrar", func(t *testing.T) {
		r := &registrarFake{account: testutils.NewAccount(nil)}
		s := &steps.RegisterInISB{Registrar: r}

		_, err := s.Execute(t.Context(), steps.RegistrationInput{
			Pair:        pair(),
			Email:       "user@example.com",
			ExecutionID: executionID,
		})
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", r.in.Email)
	})

	t.Run("Should propagate registrar errors", func(t *testing.T) {
		s := &steps.RegisterInISB{Registrar: &registrarFake{err: manager.ErrReservedAccount}}

		_, err := s.Execute(t.Context(), steps.RegistrationInput{Pair: pair(), ExecutionID: executionID})
		assert.ErrorIs(t, err, manager.ErrReservedAccount)
	})
}

func TestAPIErrorCode(t *testing.T) {
	t.Run("Should return code of modeled exception", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &types.DuplicateHandshakeException{Message: aws.String("dup")})
		assert.Equal(t, "DuplicateHandshakeException", steps.APIErrorCode(err))
	})

	t.Run("Should return code of generic api error", func(t *testing.T) {
		err := &smithy.GenericAPIError{Code: "TooManyRequestsException", Message: "slow down"}
		assert.Equal(t, "TooManyRequestsException", steps.APIErrorCode(err))
	})

	t.Run("Should return empty code for other errors", func(t *testing.T) {
		assert.Empty(t, steps.APIErrorCode(errForced))
	})
}
