package events

import (
	"context"
	"time"
)

// Publisher puts a single event on an event bus.
type Publisher interface {
	PutEvent(ctx context.Context, source, detailType, detail string, at time.Time) error
}

type EventBridgeEmitter struct {
	publisher Publisher
	source    string
}

func NewEventBridgeEmitter(publisher Publisher, source string) *EventBridgeEmitter {
	return &EventBridgeEmitter{publisher: publisher, source: source}
}

func (e *EventBridgeEmitter) Emit(ctx context.Context, ev Event) error {
	detail, err := ev.encode()
	if err != nil {
		return err
	}

	return e.publisher.PutEvent(ctx, e.source, ev.Type, string(detail), ev.Time)
}

func (e *EventBridgeEmitter) Close(context.Context) error {
	return nil
}
