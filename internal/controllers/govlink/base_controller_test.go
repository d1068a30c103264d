package govlink_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/govlink/govlink/internal/async"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/controllers/govlink"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/middleware"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/workflow"
)

var errForced = errors.New("forced error")

var startTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type engineFake struct {
	started   []workflow.Request
	startErr  error
	execs     map[uuid.UUID]*model.Execution
	history   []*model.ExecutionEvent
	aborted   map[uuid.UUID]string
	abortErr  error
}

func newEngineFake() *engineFake {
	return &engineFake{
		execs:   map[uuid.UUID]*model.Execution{},
		aborted: map[uuid.UUID]string{},
	}
}

func (e *engineFake) Start(_ context.Context, req workflow.Request) (*model.Execution, error) {
	if e.startErr != nil {
		return nil, e.startErr
	}

	e.started = append(e.started, req)

	id := uuid.New()
	exec := &model.Execution{
		ID:        id,
		ARN:       "arn:aws-us-gov:states:us-gov-west-1:000000000000:execution:govlink:" + id.String(),
		Mode:      req.Mode().String(),
		State:     workflow.StateModeDispatch.String(),
		Status:    model.ExecutionRunning,
		StartTime: startTime,
	}
	e.execs[id] = exec

	return exec, nil
}

func (e *engineFake) Describe(_ context.Context, id uuid.UUID) (*model.Execution, []*model.ExecutionEvent, error) {
	exec, ok := e.execs[id]
	if !ok {
		return nil, nil, errs.Wrapf(workflow.ErrExecutionNotFound, id.String())
	}

	return exec, e.history, nil
}

func (e *engineFake) Abort(_ context.Context, id uuid.UUID, reason string) (*model.Execution, error) {
	if e.abortErr != nil {
		return nil, e.abortErr
	}

	exec, ok := e.execs[id]
	if !ok {
		return nil, errs.Wrapf(workflow.ErrExecutionNotFound, id.String())
	}

	if exec.IsTerminal() {
		return nil, errs.Wrapf(workflow.ErrExecutionTerminal, exec.Status.String())
	}

	e.aborted[id] = reason

	stop := startTime.Add(time.Minute)
	exec.Status = model.ExecutionAborted
	exec.State = workflow.StateAborted.String()
	exec.FailureError = workflow.FailureAborted
	exec.FailureCause = reason
	exec.StopTime = &stop

	return exec, nil
}

type costsFake struct {
	req     manager.CostRequest
	report  *manager.CostReport
	stored  []*model.CostReport
	account string
	limit   int
	err     error
}

func (c *costsFake) Aggregate(_ context.Context, req manager.CostRequest) (*manager.CostReport, error) {
	c.req = req
	return c.report, c.err
}

func (c *costsFake) ListReports(_ context.Context, accountID string, limit int) ([]*model.CostReport, error) {
	c.account, c.limit = accountID, limit
	return c.stored, c.err
}

// newServer mounts every controller route behind the request middlewares.
func newServer(c *govlink.APIController) http.Handler {
	mux := http.NewServeMux()
	for _, route := range c.Routes() {
		mux.HandleFunc(route.Pattern(), route.Handler)
	}

	return middleware.Chain(mux,
		middleware.InjectRequestID(),
		middleware.PanicRecoveryMiddleware(),
		middleware.LoggingMiddleware(),
	)
}

func newEnqueuer(client *async.MockClient) *async.App {
	return async.NewWithClient(&config.Config{}, client)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequestWithContext(t.Context(), method, path, reader)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	return out
}

// problem is the RFC 7807 body of an error response.
type problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}
