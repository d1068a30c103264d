package async

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/errs"
	govlinkcontext "github.com/govlink/govlink/utils/context"
)

var ErrParsingPayload = errors.New("could not parse task payload")

// TaskPayload represents the payload for an async task, including the
// request and execution the task runs on behalf of.
type TaskPayload struct {
	RequestID   string    `json:"requestId,omitempty"`
	ExecutionID uuid.UUID `json:"executionId"`
	Data        []byte    `json:"data,omitempty"`
}

func NewTaskPayload(ctx context.Context, executionID uuid.UUID, data []byte) TaskPayload {
	requestID, err := govlinkcontext.GetRequestID(ctx)
	if err != nil {
		requestID = ""
	}

	return TaskPayload{
		RequestID:   requestID,
		ExecutionID: executionID,
		Data:        data,
	}
}

func ParseTaskPayload(payload []byte) (TaskPayload, error) {
	var p TaskPayload

	err := json.Unmarshal(payload, &p)
	if err != nil {
		return TaskPayload{}, errs.Wrap(ErrParsingPayload, err)
	}

	if p.ExecutionID == uuid.Nil {
		return TaskPayload{}, errs.Wrapf(ErrParsingPayload, "execution id is missing")
	}

	return p, nil
}

func (p *TaskPayload) InjectContext(ctx context.Context) context.Context {
	if p.RequestID != "" {
		ctx = govlinkcontext.WithRequestID(ctx, p.RequestID)
	}

	return govlinkcontext.WithExecutionID(ctx, p.ExecutionID)
}

func (p *TaskPayload) ToBytes() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errs.Wrap(ErrParsingPayload, err)
	}

	return data, nil
}
