package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
)

// EventBridge is a mock of the AWS EventBridge client.
type EventBridge struct {
	PutEventsFunc func(ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

func (m *EventBridge) PutEvents(
	ctx context.Context,
	params *eventbridge.PutEventsInput,
	optFns ...func(*eventbridge.Options),
) (*eventbridge.PutEventsOutput, error) {
	if m.PutEventsFunc != nil {
		return m.PutEventsFunc(ctx, params, optFns...)
	}

	panic("PutEventsFunc not implemented")
}
