package apierrors

import (
	"errors"
	"net/http"
	"slices"
)

const (
	InternalServerErr  = "INTERNAL_SERVER_ERROR"
	JSONDecodeErr      = "JSON_DECODE_ERROR"
	ValidationErr      = "VALIDATION_ERROR"
	ResourceNotFound   = "RESOURCE_NOT_FOUND"
	RouteNotFound      = "ROUTE_NOT_FOUND"
	NotImplementedErr  = "NOT_IMPLEMENTED"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
)

var (
	ErrDecodeBody          = errors.New("failed to decode request body")
	ErrInvalidExecutionID  = errors.New("execution id is not a valid UUID")
	ErrInvalidQueryParam   = errors.New("query parameter is invalid")
	ErrWorkflowDisabled    = errors.New("account workflow is not configured")
	ErrCostsDisabled       = errors.New("cost aggregation is not configured")
	ErrScheduleExecution   = errors.New("failed to schedule execution")
	ErrTransformExecution  = errors.New("failed to transform execution to API")
	ErrInvalidAccountQuery = errors.New("account query is invalid")
)

// APIError is the problem exposed to API clients. Detail, when set, carries
// the internal message of a client error.
type APIError struct {
	Code    string
	Message string
	Status  int
	Detail  string
}

// ExposedError maps an internal error chain to the problem shown to clients.
// Every error of the chain must match; longer chains take precedence.
type ExposedError struct {
	InternalErrorChain []error
	ExposedError       APIError
	// ExposeCause adds the internal error text as detail. Only for client errors.
	ExposeCause bool
}

var mapping = slices.Concat(
	workflowErrors,
	accountErrors,
	costErrors,
	defaultErrors,
)

// TransformToAPIError returns the problem for err, or an internal server
// error when nothing matches.
func TransformToAPIError(err error) *APIError {
	var (
		best    *ExposedError
		bestLen int
	)

	for i := range mapping {
		m := &mapping[i]
		if len(m.InternalErrorChain) <= bestLen || !matches(err, m.InternalErrorChain) {
			continue
		}

		best, bestLen = m, len(m.InternalErrorChain)
	}

	if best == nil {
		return InternalServerErrorMessage()
	}

	out := best.ExposedError
	if best.ExposeCause {
		out.Detail = err.Error()
	}

	return &out
}

func matches(err error, chain []error) bool {
	for _, target := range chain {
		if !errors.Is(err, target) {
			return false
		}
	}

	return true
}

func InternalServerErrorMessage() *APIError {
	return &APIError{
		Code:    InternalServerErr,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
}

func JSONDecodeErrorMessage() *APIError {
	return &APIError{
		Code:    JSONDecodeErr,
		Message: "Can't decode JSON body",
		Status:  http.StatusBadRequest,
	}
}

func RouteNotFoundMessage() *APIError {
	return &APIError{
		Code:    RouteNotFound,
		Message: "No such route",
		Status:  http.StatusNotFound,
	}
}
