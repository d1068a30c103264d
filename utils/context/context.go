package context

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrGetRequestID   = errors.New("no requestID found in context")
	ErrGetExecutionID = errors.New("no executionID found in context")
)

type key string

const (
	requestID   = key("requestID")
	executionID = key("executionID")
)

func InjectRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestID, uuid.NewString())
}

// WithRequestID carries an existing request id, e.g. from a task payload.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestID, id)
}

func GetRequestID(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestID).(string)
	if !ok || requestID == "" {
		return "", ErrGetRequestID
	}

	return requestID, nil
}

// WithExecutionID marks ctx as running on behalf of a workflow execution.
func WithExecutionID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, executionID, id)
}

func GetExecutionID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(executionID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrGetExecutionID
	}

	return id, nil
}
