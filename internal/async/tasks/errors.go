package tasks

import "errors"

var (
	ErrRunningTask     = errors.New("failed to run task")
	ErrEnqueueNextStep = errors.New("failed to enqueue next workflow step")
)
