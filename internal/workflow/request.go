package workflow

import (
	"encoding/json"

	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/utils/validator"
)

// Mode selects the flow an execution runs.
type Mode string

func (m Mode) String() string {
	return string(m)
}

const (
	ModeCreate       Mode = "create"
	ModeJoinExisting Mode = "join-existing"
)

// Request is an account creation request. Its only implementations are
// CreateRequest and JoinExistingRequest.
type Request interface {
	Mode() Mode
	sealed()
}

// CreateRequest asks for a brand-new GovCloud account.
type CreateRequest struct {
	AccountName string `json:"accountName" validate:"required,min=1,max=50"`
	Email       string `json:"email"       validate:"required,email"`
}

func (CreateRequest) Mode() Mode { return ModeCreate }
func (CreateRequest) sealed()    {}

func (r CreateRequest) MarshalJSON() ([]byte, error) {
	type plain CreateRequest

	return json.Marshal(struct {
		Mode Mode `json:"mode"`
		plain
	}{ModeCreate, plain(r)})
}

// JoinExistingRequest adopts an existing, unlinked GovCloud account.
type JoinExistingRequest struct {
	GovCloudAccountID   string `json:"govCloudAccountId"   validate:"required,len=12,numeric"`
	CommercialAccountID string `json:"commercialAccountId" validate:"required,len=12,numeric"`
	AccountName         string `json:"accountName"         validate:"required,min=1,max=50"`
}

func (JoinExistingRequest) Mode() Mode { return ModeJoinExisting }
func (JoinExistingRequest) sealed()    {}

func (r JoinExistingRequest) MarshalJSON() ([]byte, error) {
	type plain JoinExistingRequest

	return json.Marshal(struct {
		Mode Mode `json:"mode"`
		plain
	}{ModeJoinExisting, plain(r)})
}

// DecodeRequest parses and validates the JSON form of a Request.
// An unknown mode yields ErrInvalidMode.
func DecodeRequest(data []byte) (Request, error) {
	var envelope struct {
		Mode Mode `json:"mode"`
	}

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return nil, errs.Wrap(ErrInvalidRequest, err)
	}

	var req Request

	switch envelope.Mode {
	case ModeCreate:
		var r CreateRequest

		err = json.Unmarshal(data, &r)
		req = r
	case ModeJoinExisting:
		var r JoinExistingRequest

		err = json.Unmarshal(data, &r)
		req = r
	default:
		return nil, errs.Wrapf(ErrInvalidMode, "%q", envelope.Mode)
	}

	if err != nil {
		return nil, errs.Wrap(ErrInvalidRequest, err)
	}

	err = ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	return req, nil
}

func ValidateRequest(req Request) error {
	if req == nil {
		return ErrInvalidRequest
	}

	err := validator.ValidateStruct(req)
	if err != nil {
		return errs.Wrap(ErrInvalidRequest, err)
	}

	return nil
}
