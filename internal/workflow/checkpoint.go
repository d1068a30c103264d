package workflow

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/steps"
)

// Checkpoint holds the step outputs an execution has accumulated. It is
// persisted with every transition so any worker can resume the execution.
type Checkpoint struct {
	Creation   *steps.CreationOutput    `json:"creation,omitempty"`
	Status     *steps.StatusOutput      `json:"status,omitempty"`
	Pair       *steps.LinkedAccountPair `json:"pair,omitempty"`
	Handshake  *steps.Handshake         `json:"handshake,omitempty"`
	Registered *steps.RegisteredAccount `json:"registered,omitempty"`
}

func decodeCheckpoint(data json.RawMessage) (*Checkpoint, error) {
	cp := &Checkpoint{}
	if len(data) == 0 {
		return cp, nil
	}

	err := json.Unmarshal(data, cp)
	if err != nil {
		return nil, err
	}

	return cp, nil
}

// Result is the payload of a SUCCEEDED execution.
type Result struct {
	ExecutionID         uuid.UUID               `json:"executionId"`
	StartTime           time.Time               `json:"startTime"`
	Input               json.RawMessage         `json:"input"`
	Output              steps.RegisteredAccount `json:"output"`
	GovCloudAccountID   string                  `json:"govCloudAccountId"`
	CommercialAccountID string                  `json:"commercialAccountId"`
}
