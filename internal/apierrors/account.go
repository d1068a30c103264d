package apierrors

import (
	"net/http"

	"github.com/govlink/govlink/internal/manager"
)

var accountErrors = []ExposedError{
	{
		InternalErrorChain: []error{manager.ErrAccountNotFound},
		ExposedError: APIError{
			Code:    "ACCOUNT_NOT_FOUND",
			Message: "Account is not in the inventory",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrInvalidAccountID},
		ExposedError: APIError{
			Code:    ValidationErr,
			Message: "Account id must be a 12-digit numeric string",
			Status:  http.StatusBadRequest,
		},
		ExposeCause: true,
	},
	{
		InternalErrorChain: []error{ErrInvalidAccountQuery},
		ExposedError: APIError{
			Code:    ValidationErr,
			Message: "Account query is invalid",
			Status:  http.StatusBadRequest,
		},
		ExposeCause: true,
	},
}
