package apierrors

import (
	"net/http"

	"github.com/govlink/govlink/internal/async/tasks"
	"github.com/govlink/govlink/internal/workflow"
)

var workflowErrors = []ExposedError{
	{
		InternalErrorChain: []error{workflow.ErrInvalidMode},
		ExposedError: APIError{
			Code:    "INVALID_MODE",
			Message: "mode must be one of create or join-existing",
			Status:  http.StatusBadRequest,
		},
		ExposeCause: true,
	},
	{
		InternalErrorChain: []error{workflow.ErrInvalidRequest},
		ExposedError: APIError{
			Code:    ValidationErr,
			Message: "Account request failed validation",
			Status:  http.StatusBadRequest,
		},
		ExposeCause: true,
	},
	{
		InternalErrorChain: []error{workflow.ErrExecutionNotFound},
		ExposedError: APIError{
			Code:    "EXECUTION_NOT_FOUND",
			Message: "Execution does not exist",
			Status:  http.StatusNotFound,
		},
	},
	{
		InternalErrorChain: []error{workflow.ErrExecutionTerminal},
		ExposedError: APIError{
			Code:    "EXECUTION_TERMINAL",
			Message: "Execution has already finished",
			Status:  http.StatusConflict,
		},
		ExposeCause: true,
	},
	{
		InternalErrorChain: []error{workflow.ErrConcurrentUpdate},
		ExposedError: APIError{
			Code:    "CONCURRENT_UPDATE",
			Message: "Execution was updated concurrently, retry the request",
			Status:  http.StatusConflict,
		},
	},
	{
		InternalErrorChain: []error{ErrInvalidExecutionID},
		ExposedError: APIError{
			Code:    ValidationErr,
			Message: "Execution id must be a UUID",
			Status:  http.StatusBadRequest,
		},
	},
	{
		InternalErrorChain: []error{ErrWorkflowDisabled},
		ExposedError: APIError{
			Code:    NotImplementedErr,
			Message: "Account workflow is not configured",
			Status:  http.StatusNotImplemented,
		},
	},
	{
		InternalErrorChain: []error{ErrScheduleExecution, tasks.ErrEnqueueNextStep},
		ExposedError: APIError{
			Code:    ServiceUnavailable,
			Message: "Execution could not be scheduled, retry the request",
			Status:  http.StatusServiceUnavailable,
		},
	},
}
