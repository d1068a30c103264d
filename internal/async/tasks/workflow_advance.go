package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/workflow"
	asyncUtils "github.com/govlink/govlink/utils/async"
)

const (
	advanceMaxRetry   = 5
	enqueueRetryDelay = 100 * time.Millisecond
)

type Advancer interface {
	Advance(ctx context.Context, id uuid.UUID) (workflow.Schedule, error)
}

// Enqueuer submits tasks to the queue.
type Enqueuer interface {
	EnqueueTask(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewAdvanceTask(ctx context.Context, id uuid.UUID) (*asynq.Task, error) {
	payload := asyncUtils.NewTaskPayload(ctx, id, nil)

	data, err := payload.ToBytes()
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(config.TypeWorkflowAdvance, data,
		asynq.MaxRetry(advanceMaxRetry),
		asynq.Queue(config.QueueFor(config.TypeWorkflowAdvance)),
	), nil
}

// ScheduleAdvance enqueues the next Advance of the execution after delay.
func ScheduleAdvance(ctx context.Context, enqueuer Enqueuer, id uuid.UUID, delay time.Duration, attempts uint) error {
	task, err := NewAdvanceTask(ctx, id)
	if err != nil {
		return errs.Wrap(ErrEnqueueNextStep, err)
	}

	var opts []asynq.Option
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	if attempts == 0 {
		attempts = 1
	}

	err = retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(enqueueRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		_, err := enqueuer.EnqueueTask(ctx, task, opts...)
		return err
	})
	if err != nil {
		return errs.Wrap(ErrEnqueueNextStep, err)
	}

	return nil
}

// WorkflowAdvancer runs one state of an execution per task and enqueues the
// next one. Wait states are expressed as a delayed task, never a sleep.
type WorkflowAdvancer struct {
	engine   Advancer
	enqueuer Enqueuer
	attempts uint
}

func NewWorkflowAdvancer(engine Advancer, enqueuer Enqueuer, cfg *config.Workflow) *WorkflowAdvancer {
	return &WorkflowAdvancer{
		engine:   engine,
		enqueuer: enqueuer,
		attempts: cfg.EnqueueRetries,
	}
}

func (w *WorkflowAdvancer) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := asyncUtils.ParseTaskPayload(task.Payload())
	if err != nil {
		log.Error(ctx, "Failed to parse task payload", err)
		return errs.Wrap(err, asynq.SkipRetry)
	}

	ctx = payload.InjectContext(ctx)

	schedule, err := w.engine.Advance(ctx, payload.ExecutionID)

	switch {
	case errors.Is(err, workflow.ErrConcurrentUpdate):
		log.Warn(ctx, "Execution advanced concurrently, dropping task",
			slog.String("executionId", payload.ExecutionID.String()))

		return nil
	case errors.Is(err, workflow.ErrExecutionNotFound):
		log.Error(ctx, "Execution to advance does not exist", err)
		return errs.Wrap(err, asynq.SkipRetry)
	case err != nil:
		log.Error(ctx, "Failed to advance execution", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	if schedule.Done {
		return nil
	}

	return ScheduleAdvance(ctx, w.enqueuer, payload.ExecutionID, schedule.Delay, w.attempts)
}

func (w *WorkflowAdvancer) TaskType() string {
	return config.TypeWorkflowAdvance
}
