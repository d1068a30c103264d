package steps

import (
	"context"
	"log/slog"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/log"
)

// SendInvitation invites the GovCloud account into the organization.
type SendInvitation struct {
	Orgs Organizations
}

func (s *SendInvitation) Execute(ctx context.Context, in LinkedAccountPair) (Handshake, error) {
	err := in.validate()
	if err != nil {
		return Handshake{}, err
	}

	out := Handshake{
		GovCloudAccountID:   in.GovCloudAccountID,
		CommercialAccountID: in.CommercialAccountID,
	}

	id, err := s.Orgs.InviteAccount(ctx, in.GovCloudAccountID)

	switch {
	case err == nil:
		out.HandshakeID = id
	case isDuplicateHandshake(err):
		id, err = s.Orgs.FindOpenHandshake(ctx, in.GovCloudAccountID)
		if err != nil {
			return Handshake{}, err
		}

		if id == "" {
			return Handshake{}, ErrEmptyHandshake
		}

		log.Info(ctx, "Reusing open invitation", slog.String("handshakeId", id))

		out.HandshakeID = id
	case isAlreadyInOrganization(err):
		// The account may belong to another organization. Only an account
		// with a parent in ours counts as joined.
		_, parentErr := s.Orgs.ParentOf(ctx, in.GovCloudAccountID)
		if parentErr != nil {
			return Handshake{}, err
		}

		log.Info(ctx, "Account is already a member of the organization")

		out.HandshakeID = AlreadyJoined
	default:
		return Handshake{}, err
	}

	return out, nil
}

// HandshakeAccepter completes an invitation on behalf of the invited account.
type HandshakeAccepter interface {
	Accept(ctx context.Context, h Handshake) error
}

// DirectAccepter assumes a role inside the invited account and accepts there.
type DirectAccepter struct {
	Orgs MemberOrganizations
}

func (a *DirectAccepter) Accept(ctx context.Context, h Handshake) error {
	return a.Orgs.AcceptHandshakeAs(ctx, h.GovCloudAccountID, h.HandshakeID)
}

// BridgeAccepter delegates acceptance to the commercial side.
type BridgeAccepter struct {
	Bridge BridgeInvitations
	Region string
}

func (a *BridgeAccepter) Accept(ctx context.Context, h Handshake) error {
	_, err := a.Bridge.AcceptInvitation(ctx, bridge.AcceptInvitationRequest{
		GovCloudAccountID:         h.GovCloudAccountID,
		HandshakeID:               h.HandshakeID,
		GovCloudRegion:            a.Region,
		CommercialLinkedAccountID: h.CommercialAccountID,
	})

	return err
}

// AcceptInvitation accepts the handshake produced by SendInvitation. Orgs
// confirms membership when the acceptance error alone is ambiguous.
type AcceptInvitation struct {
	Accepter HandshakeAccepter
	Orgs     Membership
}

func (s *AcceptInvitation) Execute(ctx context.Context, in Handshake) (Handshake, error) {
	if in.Skipped() {
		return in, nil
	}

	if in.HandshakeID == "" {
		return Handshake{}, ErrEmptyHandshake
	}

	err := s.Accepter.Accept(ctx, in)
	if err != nil {
		switch {
		case isHandshakeSettled(err):
		case needsMembershipCheck(err) && s.isMember(ctx, in.GovCloudAccountID):
		default:
			return Handshake{}, err
		}

		log.Info(ctx, "Invitation already accepted", slog.String("handshakeId", in.HandshakeID))
	}

	return in, nil
}

func (s *AcceptInvitation) isMember(ctx context.Context, accountID string) bool {
	if s.Orgs == nil {
		return false
	}

	parent, err := s.Orgs.ParentOf(ctx, accountID)
	if err != nil {
		log.Warn(ctx, "Membership check failed", log.ErrorAttr(err))
		return false
	}

	return parent != ""
}

// MoveToEntryOU places the account in the organizational unit that carries
// the baseline stack sets.
type MoveToEntryOU struct {
	Orgs      Organizations
	EntryOUID string
}

func (s *MoveToEntryOU) Execute(ctx context.Context, in LinkedAccountPair) (LinkedAccountPair, error) {
	parent, err := s.Orgs.ParentOf(ctx, in.GovCloudAccountID)
	if err != nil {
		return LinkedAccountPair{}, err
	}

	if parent == s.EntryOUID {
		return in, nil
	}

	err = s.Orgs.MoveAccount(ctx, in.GovCloudAccountID, parent, s.EntryOUID)
	if err != nil && !isDuplicateAccount(err) {
		return LinkedAccountPair{}, err
	}

	log.Info(ctx, "Account moved to entry organizational unit",
		slog.String("from", parent),
		slog.String("to", s.EntryOUID),
	)

	return in, nil
}
