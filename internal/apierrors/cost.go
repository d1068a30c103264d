package apierrors

import (
	"net/http"

	"github.com/govlink/govlink/internal/manager"
)

var costErrors = []ExposedError{
	{
		InternalErrorChain: []error{manager.ErrEmptyCostRequest},
		ExposedError: APIError{
			Code:    ValidationErr,
			Message: "Cost request must name at least one account",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{manager.ErrInvalidCostPeriod},
		ExposedError: APIError{
			Code:    ValidationErr,
			Message: "Cost period must be two YYYY-MM-DD dates with end after start",
			Status:  http.StatusBadRequest,
		},
		ExposeCause: true,
	},
	{
		InternalErrorChain: []error{ErrCostsDisabled},
		ExposedError: APIError{
			Code:    NotImplementedErr,
			Message: "Cost aggregation is not configured",
			Status:  http.StatusNotImplemented,
		},
	},
}
