package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/organizations"
)

// Organizations is a mock of the AWS Organizations client.
// Calls to an unset func panic.
type Organizations struct {
	InviteAccountToOrganizationFunc func(ctx context.Context,
		params *organizations.InviteAccountToOrganizationInput,
		optFns ...func(*organizations.Options)) (*organizations.InviteAccountToOrganizationOutput, error)
	AcceptHandshakeFunc func(ctx context.Context,
		params *organizations.AcceptHandshakeInput,
		optFns ...func(*organizations.Options)) (*organizations.AcceptHandshakeOutput, error)
	ListHandshakesForOrganizationFunc func(ctx context.Context,
		params *organizations.ListHandshakesForOrganizationInput,
		optFns ...func(*organizations.Options)) (*organizations.ListHandshakesForOrganizationOutput, error)
	ListParentsFunc func(ctx context.Context,
		params *organizations.ListParentsInput,
		optFns ...func(*organizations.Options)) (*organizations.ListParentsOutput, error)
	MoveAccountFunc func(ctx context.Context,
		params *organizations.MoveAccountInput,
		optFns ...func(*organizations.Options)) (*organizations.MoveAccountOutput, error)
	ListAccountsForParentFunc func(ctx context.Context,
		params *organizations.ListAccountsForParentInput,
		optFns ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error)
}

func (m *Organizations) InviteAccountToOrganization(
	ctx context.Context,
	params *organizations.InviteAccountToOrganizationInput,
	optFns ...func(*organizations.Options),
) (*organizations.InviteAccountToOrganizationOutput, error) {
	if m.InviteAccountToOrganizationFunc != nil {
		return m.InviteAccountToOrganizationFunc(ctx, params, optFns...)
	}

	panic("InviteAccountToOrganizationFunc not implemented")
}

func (m *Organizations) AcceptHandshake(
	ctx context.Context,
	params *organizations.AcceptHandshakeInput,
	optFns ...func(*organizations.Options),
) (*organizations.AcceptHandshakeOutput, error) {
	if m.AcceptHandshakeFunc != nil {
		return m.AcceptHandshakeFunc(ctx, params, optFns...)
	}

	panic("AcceptHandshakeFunc not implemented")
}

func (m *Organizations) ListHandshakesForOrganization(
	ctx context.Context,
	params *organizations.ListHandshakesForOrganizationInput,
	optFns ...func(*organizations.Options),
) (*organizations.ListHandshakesForOrganizationOutput, error) {
	if m.ListHandshakesForOrganizationFunc != nil {
		return m.ListHandshakesForOrganizationFunc(ctx, params, optFns...)
	}

	panic("ListHandshakesForOrganizationFunc not implemented")
}

func (m *Organizations) ListParents(
	ctx context.Context,
	params *organizations.ListParentsInput,
	optFns ...func(*organizations.Options),
) (*organizations.ListParentsOutput, error) {
	if m.ListParentsFunc != nil {
		return m.ListParentsFunc(ctx, params, optFns...)
	}

	panic("ListParentsFunc not implemented")
}

func (m *Organizations) MoveAccount(
	ctx context.Context,
	params *organizations.MoveAccountInput,
	optFns ...func(*organizations.Options),
) (*organizations.MoveAccountOutput, error) {
	if m.MoveAccountFunc != nil {
		return m.MoveAccountFunc(ctx, params, optFns...)
	}

	panic("MoveAccountFunc not implemented")
}

func (m *Organizations) ListAccountsForParent(
	ctx context.Context,
	params *organizations.ListAccountsForParentInput,
	optFns ...func(*organizations.Options),
) (*organizations.ListAccountsForParentOutput, error) {
	if m.ListAccountsForParentFunc != nil {
		return m.ListAccountsForParentFunc(ctx, params, optFns...)
	}

	panic("ListAccountsForParentFunc not implemented")
}
