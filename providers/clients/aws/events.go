package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

type eventBridgeClient interface {
	PutEvents(ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

var _ eventBridgeClient = (*eventbridge.Client)(nil)

var (
	ErrPutEventsFailed = errors.New("eventbridge put events failed")
	ErrEventRejected   = errors.New("eventbridge rejected event")
)

// EventBridgeClient publishes single events onto a bus.
type EventBridgeClient struct {
	internalClient eventBridgeClient
	busName        string
}

func NewEventBridgeClient(cfg aws.Config, busName string) *EventBridgeClient {
	return &EventBridgeClient{
		internalClient: eventbridge.NewFromConfig(cfg),
		busName:        busName,
	}
}

// PutEvent publishes detail as a JSON event of detailType.
func (c *EventBridgeClient) PutEvent(ctx context.Context, source, detailType, detail string, at time.Time) error {
	out, err := c.internalClient.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(c.busName),
				Source:       aws.String(source),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(detail),
				Time:         aws.Time(at),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPutEventsFailed, err)
	}

	if out.FailedEntryCount > 0 {
		for _, e := range out.Entries {
			if e.ErrorCode != nil {
				return fmt.Errorf("%w: %s: %s", ErrEventRejected, aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
			}
		}

		return ErrEventRejected
	}

	return nil
}
