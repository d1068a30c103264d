package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"golang.org/x/time/rate"
)

// organizationsClient defines the methods of the AWS Organizations client that we use.
// This is used for mocking the client in tests.
type organizationsClient interface {
	InviteAccountToOrganization(ctx context.Context,
		params *organizations.InviteAccountToOrganizationInput,
		optFns ...func(*organizations.Options)) (*organizations.InviteAccountToOrganizationOutput, error)
	AcceptHandshake(ctx context.Context,
		params *organizations.AcceptHandshakeInput,
		optFns ...func(*organizations.Options)) (*organizations.AcceptHandshakeOutput, error)
	ListHandshakesForOrganization(ctx context.Context,
		params *organizations.ListHandshakesForOrganizationInput,
		optFns ...func(*organizations.Options)) (*organizations.ListHandshakesForOrganizationOutput, error)
	ListParents(ctx context.Context,
		params *organizations.ListParentsInput,
		optFns ...func(*organizations.Options)) (*organizations.ListParentsOutput, error)
	MoveAccount(ctx context.Context,
		params *organizations.MoveAccountInput,
		optFns ...func(*organizations.Options)) (*organizations.MoveAccountOutput, error)
	ListAccountsForParent(ctx context.Context,
		params *organizations.ListAccountsForParentInput,
		optFns ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error)
}

// check if the Client implements the organizationsClient interface
var _ organizationsClient = (*organizations.Client)(nil)

var (
	ErrInviteAccountFailed    = errors.New("organizations invitation failed")
	ErrAcceptHandshakeFailed  = errors.New("organizations handshake acceptance failed")
	ErrListHandshakesFailed   = errors.New("organizations handshake listing failed")
	ErrListParentsFailed      = errors.New("organizations parent listing failed")
	ErrMoveAccountFailed      = errors.New("organizations account move failed")
	ErrListAccountsFailed     = errors.New("organizations account listing failed")
	ErrNoParent               = errors.New("account has no parent")
	ErrEmptyHandshakeResponse = errors.New("organizations returned no handshake")
)

// AccountStatusActive is the Status of an account that can join workflows.
const AccountStatusActive = string(types.AccountStatusActive)

// Account is a member account of an organizational unit.
type Account struct {
	ID     string
	Name   string
	Email  string
	Status string
}

// OrganizationsClient calls AWS Organizations with delegated credentials.
// Every call waits on a shared token bucket so bursts from concurrent
// executions stay within the Organizations API quota.
type OrganizationsClient struct {
	internalClient organizationsClient
	limiter        *rate.Limiter
	// memberClient returns a client acting as the given member account.
	memberClient func(accountID string) organizationsClient
}

// NewOrganizationsClient assumes orgRoleARN for organization calls and targetRoleName
// inside member accounts for handshake acceptance.
func NewOrganizationsClient(
	cfg aws.Config,
	orgRoleARN, partition, targetRoleName string,
	limiter *rate.Limiter,
) *OrganizationsClient {
	orgCfg := cfg
	if orgRoleARN != "" {
		orgCfg = AssumeRole(cfg, orgRoleARN)
	}

	return &OrganizationsClient{
		internalClient: organizations.NewFromConfig(orgCfg),
		limiter:        limiter,
		memberClient: func(accountID string) organizationsClient {
			return organizations.NewFromConfig(AssumeRole(cfg, RoleARN(partition, accountID, targetRoleName)))
		},
	}
}

// InviteAccount invites accountID into the organization and returns the handshake id.
func (c *OrganizationsClient) InviteAccount(ctx context.Context, accountID string) (string, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return "", err
	}

	out, err := c.internalClient.InviteAccountToOrganization(ctx, &organizations.InviteAccountToOrganizationInput{
		Target: &types.HandshakeParty{
			Id:   aws.String(accountID),
			Type: types.HandshakePartyTypeAccount,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInviteAccountFailed, err)
	}

	if out.Handshake == nil || out.Handshake.Id == nil {
		return "", ErrEmptyHandshakeResponse
	}

	return *out.Handshake.Id, nil
}

// FindOpenHandshake returns the id of a pending invitation targeting accountID,
// or an empty string when there is none.
func (c *OrganizationsClient) FindOpenHandshake(ctx context.Context, accountID string) (string, error) {
	var nextToken *string

	for {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return "", err
		}

		out, err := c.internalClient.ListHandshakesForOrganization(ctx, &organizations.ListHandshakesForOrganizationInput{
			Filter:    &types.HandshakeFilter{ActionType: types.ActionTypeInvite},
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrListHandshakesFailed, err)
		}

		for _, h := range out.Handshakes {
			if isPending(h.State) && targetsAccount(h, accountID) {
				return aws.ToString(h.Id), nil
			}
		}

		if out.NextToken == nil {
			return "", nil
		}

		nextToken = out.NextToken
	}
}

// AcceptHandshakeAs accepts handshakeID acting as the invited member account.
func (c *OrganizationsClient) AcceptHandshakeAs(ctx context.Context, accountID, handshakeID string) error {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return err
	}

	_, err = c.memberClient(accountID).AcceptHandshake(ctx, &organizations.AcceptHandshakeInput{
		HandshakeId: aws.String(handshakeID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAcceptHandshakeFailed, err)
	}

	return nil
}

// ParentOf returns the id of the root or organizational unit holding accountID.
func (c *OrganizationsClient) ParentOf(ctx context.Context, accountID string) (string, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return "", err
	}

	out, err := c.internalClient.ListParents(ctx, &organizations.ListParentsInput{
		ChildId: aws.String(accountID),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrListParentsFailed, err)
	}

	if len(out.Parents) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoParent, accountID)
	}

	return aws.ToString(out.Parents[0].Id), nil
}

// MoveAccount moves accountID from sourceParentID to destinationParentID.
func (c *OrganizationsClient) MoveAccount(ctx context.Context, accountID, sourceParentID, destinationParentID string) error {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return err
	}

	_, err = c.internalClient.MoveAccount(ctx, &organizations.MoveAccountInput{
		AccountId:           aws.String(accountID),
		SourceParentId:      aws.String(sourceParentID),
		DestinationParentId: aws.String(destinationParentID),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMoveAccountFailed, err)
	}

	return nil
}

// ListAccountsInOU returns every account directly under parentID.
func (c *OrganizationsClient) ListAccountsInOU(ctx context.Context, parentID string) ([]Account, error) {
	var (
		accounts  []Account
		nextToken *string
	)

	for {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, err
		}

		out, err := c.internalClient.ListAccountsForParent(ctx, &organizations.ListAccountsForParentInput{
			ParentId:  aws.String(parentID),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrListAccountsFailed, err)
		}

		for _, a := range out.Accounts {
			accounts = append(accounts, Account{
				ID:     aws.ToString(a.Id),
				Name:   aws.ToString(a.Name),
				Email:  aws.ToString(a.Email),
				Status: string(a.Status),
			})
		}

		if out.NextToken == nil {
			return accounts, nil
		}

		nextToken = out.NextToken
	}
}

func isPending(state types.HandshakeState) bool {
	return state == types.HandshakeStateOpen || state == types.HandshakeStateRequested
}

func targetsAccount(h types.Handshake, accountID string) bool {
	for _, p := range h.Parties {
		if p.Type == types.HandshakePartyTypeAccount && aws.ToString(p.Id) == accountID {
			return true
		}
	}

	return false
}
