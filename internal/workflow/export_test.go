package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/govlink/govlink/internal/model"
)

func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// StartRaw persists an execution from an undecoded body. An invalid body
// fails the execution at MODE_DISPATCH.
func (e *Engine) StartRaw(ctx context.Context, input json.RawMessage) (*model.Execution, error) {
	var envelope struct {
		Mode string `json:"mode"`
	}

	_ = json.Unmarshal(input, &envelope)

	return e.start(ctx, envelope.Mode, input)
}
