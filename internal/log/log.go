// Package log attaches govlink identifiers to the context logger and writes
// through it, so every line of one request, task or execution shares them.
package log

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	slogctx "github.com/veqryn/slog-context"

	govlinkcontext "github.com/govlink/govlink/utils/context"
)

// InjectRequest tags ctx with the request id and the method and path of r.
func InjectRequest(ctx context.Context, r *http.Request) context.Context {
	requestID, _ := govlinkcontext.GetRequestID(ctx)

	return slogctx.With(ctx,
		slog.String("requestId", requestID),
		slog.Group("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
		),
	)
}

// InjectTask tags ctx with the queue task type and, when the task carries
// one, the id asynq assigned to it.
func InjectTask(ctx context.Context, task *asynq.Task) context.Context {
	attrs := []any{slog.String("taskType", task.Type())}

	if id, ok := asynq.GetTaskID(ctx); ok {
		attrs = append(attrs, slog.String("taskId", id))
	}

	return slogctx.With(ctx, attrs...)
}

// InjectExecution marks ctx as running on behalf of executionID in mode.
func InjectExecution(ctx context.Context, executionID uuid.UUID, mode string) context.Context {
	ctx = govlinkcontext.WithExecutionID(ctx, executionID)

	return slogctx.With(ctx,
		slog.String("executionId", executionID.String()),
		slog.String("mode", mode),
	)
}

func InjectStep(ctx context.Context, step string) context.Context {
	return slogctx.With(ctx, slog.String("step", step))
}

func InjectAccount(ctx context.Context, govCloudAccountID string) context.Context {
	return slogctx.With(ctx, slog.String("govCloudAccountId", govCloudAccountID))
}

// ErrorAttr renders err under the key slogctx uses for errors.
func ErrorAttr(err error) slog.Attr {
	return slog.String(slogctx.ErrKey, err.Error())
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	write(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	write(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	write(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	write(ctx, slog.LevelError, msg, append(attrs, slogctx.Err(err)))
}

func write(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	slogctx.LogAttrs(ctx, level, msg, attrs...)
}
