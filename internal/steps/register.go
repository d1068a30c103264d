package steps

import (
	"context"

	"github.com/govlink/govlink/internal/manager"
)

// RegisterInISB records the joined account in the sandbox inventory.
type RegisterInISB struct {
	Registrar Registrar
}

func (s *RegisterInISB) Execute(ctx context.Context, in RegistrationInput) (RegisteredAccount, error) {
	err := in.Pair.validate()
	if err != nil {
		return RegisteredAccount{}, err
	}

	account, err := s.Registrar.RegisterAccount(ctx, manager.RegisterAccountInput{
		GovCloudAccountID:   in.Pair.GovCloudAccountID,
		CommercialAccountID: in.Pair.CommercialAccountID,
		AccountName:         in.Pair.AccountName,
		Email:               in.Email,
		ExecutionID:         in.ExecutionID,
	})
	if err != nil {
		return RegisteredAccount{}, err
	}

	out := RegisteredAccount{
		AwsAccountID: account.AwsAccountID,
		Name:         account.Name,
		Status:       string(account.Status),
		RegisteredAt: account.CreatedAt,
	}

	if account.CommercialLinkedAccountID != nil {
		out.CommercialLinkedAccountID = *account.CommercialLinkedAccountID
	}

	return out, nil
}
