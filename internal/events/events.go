package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
)

const (
	TypeAccountRegistered   = "AccountRegistered"
	TypeCostReportGenerated = "CostReportGenerated"
)

var (
	ErrEncodeEvent      = errors.New("failed to encode event detail")
	ErrUnknownEmitter   = errors.New("unknown event emitter type")
	ErrMissingPublisher = errors.New("eventbridge emitter requires a publisher")
)

// Event is a domain event published to downstream consumers.
type Event struct {
	Type   string
	Time   time.Time
	Detail any
}

func (e Event) encode() ([]byte, error) {
	b, err := json.Marshal(e.Detail)
	if err != nil {
		return nil, errs.Wrap(ErrEncodeEvent, err)
	}

	return b, nil
}

// Emitter publishes domain events. Implementations are safe for concurrent use.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
	Close(ctx context.Context) error
}

// AccountRegistered is the detail of TypeAccountRegistered.
type AccountRegistered struct {
	AwsAccountID              string `json:"awsAccountId"`
	CommercialLinkedAccountID string `json:"commercialLinkedAccountId,omitempty"`
	AccountName               string `json:"accountName"`
	Status                    string `json:"status"`
	ExecutionID               string `json:"executionId,omitempty"`
}

// CostReportGenerated is the detail of TypeCostReportGenerated.
type CostReportGenerated struct {
	PeriodStart string  `json:"periodStart"`
	PeriodEnd   string  `json:"periodEnd"`
	Accounts    int     `json:"accounts"`
	Total       float64 `json:"total"`
}

// New builds the emitter selected by cfg. publisher is only used for the
// eventbridge type and may be nil otherwise.
func New(ctx context.Context, cfg *config.Events, publisher Publisher) (Emitter, error) {
	switch cfg.Type {
	case config.EventsTypeLog, "":
		return NewLogEmitter(cfg.Source), nil
	case config.EventsTypeEventBridge:
		if publisher == nil {
			return nil, ErrMissingPublisher
		}

		return NewEventBridgeEmitter(publisher, cfg.Source), nil
	case config.EventsTypeAMQP:
		return NewAMQPEmitter(ctx, &cfg.AMQP, cfg.Source)
	default:
		return nil, errs.Wrapf(ErrUnknownEmitter, cfg.Type)
	}
}
