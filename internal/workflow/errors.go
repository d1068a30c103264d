package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMode         = errors.New("invalid workflow mode")
	ErrInvalidRequest      = errors.New("invalid account creation request")
	ErrExecutionNotFound   = errors.New("execution not found")
	ErrExecutionTerminal   = errors.New("execution already finished")
	ErrGetExecution        = errors.New("failed to get execution")
	ErrListExecutions      = errors.New("failed to list executions")
	ErrStartExecution      = errors.New("failed to start execution")
	ErrUpdateExecution     = errors.New("failed to update execution state")
	ErrConcurrentUpdate    = errors.New("execution was updated concurrently")
	ErrTransitionExecution = errors.New("failed to execute transition")
	ErrCorruptCheckpoint   = errors.New("execution checkpoint is missing step output")
	ErrStepPanic           = errors.New("step panicked")
	ErrInvalidState        = errors.New("invalid workflow state")
)

// NewTransitionError creates an error when a transition fails.
func NewTransitionError(transition Transition) error {
	return fmt.Errorf("%w %s", ErrTransitionExecution, transition)
}
