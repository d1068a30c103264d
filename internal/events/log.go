package events

import (
	"context"
	"log/slog"

	"github.com/govlink/govlink/internal/log"
)

// LogEmitter writes events to the structured log only.
type LogEmitter struct {
	source string
}

func NewLogEmitter(source string) *LogEmitter {
	return &LogEmitter{source: source}
}

func (l *LogEmitter) Emit(ctx context.Context, e Event) error {
	detail, err := e.encode()
	if err != nil {
		return err
	}

	log.Info(ctx, "Domain event",
		slog.String("source", l.source),
		slog.String("eventType", e.Type),
		slog.Time("time", e.Time),
		slog.String("detail", string(detail)),
	)

	return nil
}

func (l *LogEmitter) Close(context.Context) error {
	return nil
}
