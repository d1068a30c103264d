package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
)

type TimeoutSweeper interface {
	TimeOutExpired(ctx context.Context) (int, error)
}

// WorkflowTimeoutProcessor enforces the overall execution timeout for
// executions no worker is advancing.
type WorkflowTimeoutProcessor struct {
	sweeper TimeoutSweeper
}

func NewWorkflowTimeoutProcessor(sweeper TimeoutSweeper) *WorkflowTimeoutProcessor {
	return &WorkflowTimeoutProcessor{sweeper: sweeper}
}

func (p *WorkflowTimeoutProcessor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	log.Info(ctx, "Started processing workflow timeout task")

	count, err := p.sweeper.TimeOutExpired(ctx)
	if err != nil {
		log.Error(ctx, "Running workflow timeout sweep", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	log.Info(ctx, "Workflow timeout task completed", slog.Int("timedOut", count))

	return nil
}

func (p *WorkflowTimeoutProcessor) TaskType() string {
	return config.TypeWorkflowTimeout
}
