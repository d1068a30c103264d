package model

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidExecutionStatus = errors.New("execution status is not valid")

// ExecutionStatus is the externally visible status of a workflow execution.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "RUNNING"
	ExecutionSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionFailed    ExecutionStatus = "FAILED"
	ExecutionTimedOut  ExecutionStatus = "TIMED_OUT"
	ExecutionAborted   ExecutionStatus = "ABORTED"
)

func (s ExecutionStatus) String() string {
	return string(s)
}

func (s ExecutionStatus) Validate() error {
	switch s {
	case ExecutionRunning, ExecutionSucceeded, ExecutionFailed, ExecutionTimedOut, ExecutionAborted:
		return nil
	default:
		return ErrInvalidExecutionStatus
	}
}

// IsTerminal reports whether no further transition may change the execution.
func (s ExecutionStatus) IsTerminal() bool {
	return s != ExecutionRunning
}

// Execution is the durable record of one account creation or join workflow.
// Checkpoint carries the step outputs accumulated so far so any worker can
// resume the execution from its current state.
type Execution struct {
	AutoTimeModel

	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ARN          string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Mode         string          `gorm:"type:varchar(32);not null"`
	State        string          `gorm:"type:varchar(50);not null"`
	Status       ExecutionStatus `gorm:"type:varchar(20);not null;index"`
	Input        json.RawMessage `gorm:"type:jsonb;not null"`
	Checkpoint   json.RawMessage `gorm:"type:jsonb"`
	Result       json.RawMessage `gorm:"type:jsonb"`
	FailureError string          `gorm:"type:varchar(255)"`
	FailureCause string          `gorm:"type:text"`
	StartTime    time.Time       `gorm:"not null"`
	StopTime     *time.Time
	ResumeAt     *time.Time
	PollCount    int `gorm:"not null"`
	Version      int `gorm:"not null"`
}

func (Execution) TableName() string { return "executions" }

func (e Execution) IsTerminal() bool {
	return e.Status.IsTerminal()
}

// ExecutionEvent is one entry of the append-only execution history.
type ExecutionEvent struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ExecutionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_execution_events_sequence"`
	Sequence    int             `gorm:"not null;uniqueIndex:idx_execution_events_sequence"`
	Transition  string          `gorm:"type:varchar(50);not null"`
	FromState   string          `gorm:"type:varchar(50);not null"`
	ToState     string          `gorm:"type:varchar(50);not null"`
	Output      json.RawMessage `gorm:"type:jsonb"`
	Error       string          `gorm:"type:text"`
	Timestamp   time.Time       `gorm:"not null"`
}

func (ExecutionEvent) TableName() string { return "execution_events" }
