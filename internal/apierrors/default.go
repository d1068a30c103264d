package apierrors

import (
	"net/http"

	"github.com/govlink/govlink/internal/repo"
)

var defaultErrors = []ExposedError{
	{
		InternalErrorChain: []error{ErrDecodeBody},
		ExposedError:       *JSONDecodeErrorMessage(),
		ExposeCause:        true,
	},
	{
		InternalErrorChain: []error{ErrInvalidQueryParam},
		ExposedError: APIError{
			Code:    ValidationErr,
			Message: "Query parameter is invalid",
			Status:  http.StatusBadRequest,
		},
		ExposeCause: true,
	},
	{
		InternalErrorChain: []error{repo.ErrNotFound},
		ExposedError: APIError{
			Code:    ResourceNotFound,
			Message: "The requested resource was not found",
			Status:  http.StatusNotFound,
		},
	},
}
