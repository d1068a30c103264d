package steps

import (
	"context"
	"log/slog"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
)

// InitiateCreation asks the commercial side to create a linked GovCloud account.
type InitiateCreation struct {
	Bridge   BridgeAccounts
	RoleName string
}

func (s *InitiateCreation) Execute(ctx context.Context, in CreationInput) (CreationOutput, error) {
	res, err := s.Bridge.CreateAccount(ctx, in.AccountName, in.Email, s.RoleName)
	if err != nil {
		return CreationOutput{}, err
	}

	if res.RequestID == "" {
		return CreationOutput{}, ErrEmptyRequestID
	}

	log.Info(ctx, "Account creation requested", slog.String("requestId", res.RequestID))

	return CreationOutput{
		RequestID:   res.RequestID,
		AccountName: in.AccountName,
		Email:       in.Email,
	}, nil
}

// CheckStatus polls the creation request started by InitiateCreation.
type CheckStatus struct {
	Bridge BridgeAccounts
}

func (s *CheckStatus) Execute(ctx context.Context, in StatusInput) (StatusOutput, error) {
	res, err := s.Bridge.GetAccountStatus(ctx, in.RequestID)
	if err != nil {
		return StatusOutput{}, err
	}

	out := StatusOutput{
		Status:              res.Status,
		GovCloudAccountID:   res.GovCloudAccountID,
		CommercialAccountID: res.CommercialAccountID,
		Message:             res.Message,
	}

	switch res.Status {
	case bridge.StatusInProgress, bridge.StatusFailed:
		return out, nil
	case bridge.StatusSucceeded:
		if res.GovCloudAccountID == "" {
			return StatusOutput{}, errs.Wrapf(ErrMissingAccountID, in.RequestID)
		}

		return out, nil
	default:
		return StatusOutput{}, errs.Wrapf(ErrUnknownCreationState, res.Status)
	}
}
