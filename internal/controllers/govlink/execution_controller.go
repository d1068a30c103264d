package govlink

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/govlink/govlink/internal/api/write"
	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/async/tasks"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/workflow"
)

const (
	abortReasonScheduleFailed = "first step could not be scheduled"
	abortReasonDefault        = "aborted by API request"
)

type CreateAccountResponse struct {
	ExecutionID  string `json:"executionId"`
	ExecutionARN string `json:"executionArn"`
	Message      string `json:"message"`
	Mode         string `json:"mode"`
}

type ExecutionEvent struct {
	Sequence   int             `json:"sequence"`
	Transition string          `json:"transition"`
	FromState  string          `json:"fromState,omitempty"`
	ToState    string          `json:"toState"`
	Output     json.RawMessage `json:"output,omitempty"`
	Error      string          `json:"error,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

type ExecutionResponse struct {
	ExecutionID  string           `json:"executionId"`
	ExecutionARN string           `json:"executionArn"`
	Mode         string           `json:"mode"`
	Status       string           `json:"status"`
	State        string           `json:"state"`
	Result       json.RawMessage  `json:"result,omitempty"`
	Error        string           `json:"error,omitempty"`
	Cause        string           `json:"cause,omitempty"`
	StartDate    string           `json:"startDate"`
	StopDate     *string          `json:"stopDate,omitempty"`
	History      []ExecutionEvent `json:"history,omitempty"`
}

type AbortRequest struct {
	Reason string `json:"reason"`
}

// CreateAccount starts an account workflow execution and schedules its first step.
func (c *APIController) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if c.engine == nil {
		c.fail(w, r, apierrors.ErrWorkflowDisabled)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	req, err := workflow.DecodeRequest(body)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	exec, err := c.engine.Start(ctx, req)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	err = tasks.ScheduleAdvance(ctx, c.enqueuer, exec.ID, 0, c.retries)
	if err != nil {
		_, abortErr := c.engine.Abort(ctx, exec.ID, abortReasonScheduleFailed)
		if abortErr != nil {
			log.Error(ctx, "Failed to abort unscheduled execution", abortErr,
				slog.String("executionId", exec.ID.String()))
		}

		c.fail(w, r, errs.Wrap(apierrors.ErrScheduleExecution, err))

		return
	}

	message := "Account creation workflow started"
	if req.Mode() == workflow.ModeJoinExisting {
		message = "Account join workflow started"
	}

	write.JSON(ctx, w, http.StatusAccepted, CreateAccountResponse{
		ExecutionID:  exec.ID.String(),
		ExecutionARN: exec.ARN,
		Message:      message,
		Mode:         req.Mode().String(),
	})
}

// GetExecution reports the status of an execution. ?history=true adds the transition log.
func (c *APIController) GetExecution(w http.ResponseWriter, r *http.Request) {
	if c.engine == nil {
		c.fail(w, r, apierrors.ErrWorkflowDisabled)
		return
	}

	id, err := executionID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	withHistory := false

	if v := r.URL.Query().Get("history"); v != "" {
		withHistory, err = strconv.ParseBool(v)
		if err != nil {
			c.fail(w, r, errs.Wrapf(apierrors.ErrInvalidQueryParam, "history: %s", v))
			return
		}
	}

	exec, history, err := c.engine.Describe(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	resp := toExecutionResponse(exec)
	if withHistory {
		resp.History = toExecutionEvents(history)
	}

	write.JSON(r.Context(), w, http.StatusOK, resp)
}

// AbortExecution stops a running execution. Side effects already applied are kept.
func (c *APIController) AbortExecution(w http.ResponseWriter, r *http.Request) {
	if c.engine == nil {
		c.fail(w, r, apierrors.ErrWorkflowDisabled)
		return
	}

	id, err := executionID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var req AbortRequest

	if len(body) > 0 {
		err = json.Unmarshal(body, &req)
		if err != nil {
			c.fail(w, r, errs.Wrap(apierrors.ErrDecodeBody, err))
			return
		}
	}

	if req.Reason == "" {
		req.Reason = abortReasonDefault
	}

	exec, err := c.engine.Abort(r.Context(), id, req.Reason)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusOK, toExecutionResponse(exec))
}

func toExecutionResponse(exec *model.Execution) ExecutionResponse {
	resp := ExecutionResponse{
		ExecutionID:  exec.ID.String(),
		ExecutionARN: exec.ARN,
		Mode:         exec.Mode,
		Status:       exec.Status.String(),
		State:        exec.State,
		Error:        exec.FailureError,
		Cause:        exec.FailureCause,
		StartDate:    exec.StartTime.UTC().Format(time.RFC3339),
	}

	if exec.Status == model.ExecutionSucceeded {
		resp.Result = exec.Result
	}

	if exec.StopTime != nil {
		stop := exec.StopTime.UTC().Format(time.RFC3339)
		resp.StopDate = &stop
	}

	return resp
}

func toExecutionEvents(history []*model.ExecutionEvent) []ExecutionEvent {
	out := make([]ExecutionEvent, 0, len(history))

	for _, e := range history {
		out = append(out, ExecutionEvent{
			Sequence:   e.Sequence,
			Transition: e.Transition,
			FromState:  e.FromState,
			ToState:    e.ToState,
			Output:     e.Output,
			Error:      e.Error,
			Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return out
}

