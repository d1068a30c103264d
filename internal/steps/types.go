package steps

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/model"
)

// AlreadyJoined is the handshake id recorded when the account is already a
// member of the organization. Acceptance is skipped for it.
const AlreadyJoined = "already-joined"

var (
	ErrEmptyRequestID       = errors.New("bridge returned an empty creation request id")
	ErrMissingAccountID     = errors.New("creation succeeded without a GovCloud account id")
	ErrUnknownCreationState = errors.New("bridge returned an unknown creation status")
	ErrEmptyHandshake       = errors.New("handshake id must be set")
	ErrEmptyAccountPair     = errors.New("linked account pair is incomplete")
)

// LinkedAccountPair ties a GovCloud account to its commercial twin.
type LinkedAccountPair struct {
	GovCloudAccountID   string `json:"govCloudAccountId"`
	CommercialAccountID string `json:"commercialAccountId"`
	AccountName         string `json:"accountName"`
}

func (p LinkedAccountPair) validate() error {
	if p.GovCloudAccountID == "" || p.CommercialAccountID == "" {
		return ErrEmptyAccountPair
	}

	return nil
}

// Handshake is an organization invitation targeting the GovCloud account.
type Handshake struct {
	HandshakeID         string `json:"handshakeId"`
	GovCloudAccountID   string `json:"govCloudAccountId"`
	CommercialAccountID string `json:"commercialAccountId"`
}

func (h Handshake) Skipped() bool {
	return h.HandshakeID == AlreadyJoined
}

// BridgeAccounts is the commercial account API used during creation.
type BridgeAccounts interface {
	CreateAccount(ctx context.Context, accountName, email, roleName string) (*bridge.CreateAccountResult, error)
	GetAccountStatus(ctx context.Context, requestID string) (*bridge.AccountStatus, error)
}

// BridgeInvitations accepts handshakes on the commercial side.
type BridgeInvitations interface {
	AcceptInvitation(ctx context.Context, req bridge.AcceptInvitationRequest) (*bridge.AcceptInvitationResult, error)
}

// Organizations is the GovCloud organization as seen by the management account.
type Organizations interface {
	InviteAccount(ctx context.Context, accountID string) (string, error)
	FindOpenHandshake(ctx context.Context, accountID string) (string, error)
	ParentOf(ctx context.Context, accountID string) (string, error)
	MoveAccount(ctx context.Context, accountID, sourceParentID, destinationParentID string) error
}

// Membership locates an account inside the organization.
type Membership interface {
	ParentOf(ctx context.Context, accountID string) (string, error)
}

// MemberOrganizations accepts handshakes acting as the invited account.
type MemberOrganizations interface {
	AcceptHandshakeAs(ctx context.Context, accountID, handshakeID string) error
}

// Registrar writes the joined account to the inventory.
type Registrar interface {
	RegisterAccount(ctx context.Context, in manager.RegisterAccountInput) (*model.Account, error)
}

// CreationInput starts a new account.
type CreationInput struct {
	AccountName string `json:"accountName"`
	Email       string `json:"email"`
}

type CreationOutput struct {
	RequestID   string `json:"requestId"`
	AccountName string `json:"accountName"`
	Email       string `json:"email"`
}

type StatusInput struct {
	RequestID string `json:"requestId"`
}

type StatusOutput struct {
	Status              string `json:"status"`
	GovCloudAccountID   string `json:"govCloudAccountId,omitempty"`
	CommercialAccountID string `json:"commercialAccountId,omitempty"`
	Message             string `json:"message,omitempty"`
}

// RegistrationInput carries Email only for accounts created by the workflow.
type RegistrationInput struct {
	Pair        LinkedAccountPair `json:"pair"`
	Email       string            `json:"email,omitempty"`
	ExecutionID uuid.UUID         `json:"executionId"`
}

// RegisteredAccount is the inventory view returned to the workflow.
type RegisteredAccount struct {
	AwsAccountID              string    `json:"awsAccountId"`
	Name                      string    `json:"name"`
	Status                    string    `json:"status"`
	CommercialLinkedAccountID string    `json:"commercialLinkedAccountId"`
	RegisteredAt              time.Time `json:"registeredAt"`
}
