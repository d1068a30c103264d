package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/metrics"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/repo"
	"github.com/govlink/govlink/internal/steps"
)

const (
	abortAttempts   = 3
	abortRetryDelay = 50 * time.Millisecond
)

// Executor runs one workflow step.
type Executor[In, Out any] interface {
	Execute(ctx context.Context, in In) (Out, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

func (f ExecutorFunc[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	return f(ctx, in)
}

// Steps are the executors sequenced by the engine.
type Steps struct {
	InitiateCreation Executor[steps.CreationInput, steps.CreationOutput]
	CheckStatus      Executor[steps.StatusInput, steps.StatusOutput]
	SendInvitation   Executor[steps.LinkedAccountPair, steps.Handshake]
	AcceptInvitation Executor[steps.Handshake, steps.Handshake]
	MoveToEntryOU    Executor[steps.LinkedAccountPair, steps.LinkedAccountPair]
	RegisterInISB    Executor[steps.RegistrationInput, steps.RegisteredAccount]
}

// Engine drives account executions through the state machine, one state per
// Advance call. All execution state lives in the repository.
type Engine struct {
	repo  repo.Repo
	steps Steps
	cfg   config.Workflow
	now   func() time.Time
}

func NewEngine(r repo.Repo, s Steps, cfg *config.Workflow) *Engine {
	return &Engine{
		repo:  r,
		steps: s,
		cfg:   *cfg,
		now:   time.Now,
	}
}

// Start persists a new RUNNING execution positioned at MODE_DISPATCH.
// The caller schedules the first Advance.
func (e *Engine) Start(ctx context.Context, req Request) (*model.Execution, error) {
	err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Wrap(ErrStartExecution, err)
	}

	return e.start(ctx, req.Mode().String(), input)
}

func (e *Engine) start(ctx context.Context, mode string, input json.RawMessage) (*model.Execution, error) {
	now := e.now().UTC()
	id := uuid.New()

	exec := &model.Execution{
		ID:         id,
		ARN:        e.cfg.ExecutionARNPrefix + ":" + id.String(),
		Mode:       mode,
		State:      StateModeDispatch.String(),
		Status:     model.ExecutionRunning,
		Input:      input,
		Checkpoint: json.RawMessage(`{}`),
		StartTime:  now,
	}

	err := e.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		err := r.Create(ctx, exec)
		if err != nil {
			return err
		}

		return r.Create(ctx, &model.ExecutionEvent{
			ID:          uuid.New(),
			ExecutionID: id,
			Sequence:    0,
			Transition:  TransitionStart.String(),
			ToState:     StateModeDispatch.String(),
			Output:      input,
			Timestamp:   now,
		})
	})
	if err != nil {
		return nil, errs.Wrap(ErrStartExecution, err)
	}

	metrics.ExecutionsStarted.WithLabelValues(mode).Inc()

	log.Info(log.InjectExecution(ctx, id, mode), "Execution started", slog.String("arn", exec.ARN))

	return exec, nil
}

// Advance runs the handler of the current state and persists the resulting
// transition. Terminal executions are left untouched.
func (e *Engine) Advance(ctx context.Context, id uuid.UUID) (Schedule, error) {
	exec, err := e.get(ctx, id)
	if err != nil {
		return Schedule{}, err
	}

	ctx = log.InjectExecution(ctx, exec.ID, exec.Mode)

	if exec.IsTerminal() {
		log.Debug(ctx, "Execution already terminal", slog.String("status", exec.Status.String()))
		return Schedule{Done: true}, nil
	}

	now := e.now()

	if e.expired(exec, now) {
		err = e.apply(ctx, &run{exec: exec}, timeoutOutcome(e.cfg.Timeout))
		if err != nil {
			return Schedule{}, err
		}

		return Schedule{Done: true}, nil
	}

	if exec.ResumeAt != nil && now.Before(*exec.ResumeAt) {
		return Schedule{Delay: exec.ResumeAt.Sub(now)}, nil
	}

	r := &run{exec: exec}

	var o outcome

	r.checkpoint, err = decodeCheckpoint(exec.Checkpoint)
	if err != nil {
		o = fail(FailureCorruptCheckpoint, errs.Wrap(ErrCorruptCheckpoint, err))
	} else {
		o = e.runStep(ctx, r)
	}

	err = e.apply(ctx, r, o)
	if err != nil {
		return Schedule{}, err
	}

	if exec.IsTerminal() {
		return Schedule{Done: true}, nil
	}

	return Schedule{Delay: e.delayFor(State(exec.State))}, nil
}

func (e *Engine) runStep(ctx context.Context, r *run) outcome {
	state := r.exec.State

	stepCtx, cancel := context.WithTimeout(log.InjectStep(ctx, state), e.cfg.StepTimeout)
	defer cancel()

	start := time.Now()
	o := e.handle(stepCtx, r)

	metrics.StepDuration.WithLabelValues(state, o.label()).Observe(time.Since(start).Seconds())

	return o
}

// Abort moves a running execution to ABORTED. Side effects of completed steps
// are kept. Aborting a terminal execution returns it unchanged.
func (e *Engine) Abort(ctx context.Context, id uuid.UUID, reason string) (*model.Execution, error) {
	var exec *model.Execution

	err := retry.New(
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrConcurrentUpdate)
		}),
		retry.Attempts(abortAttempts),
		retry.Delay(abortRetryDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		var err error

		exec, err = e.get(ctx, id)
		if err != nil {
			return err
		}

		if exec.IsTerminal() {
			return errs.Wrapf(ErrExecutionTerminal, exec.Status.String())
		}

		return e.apply(log.InjectExecution(ctx, exec.ID, exec.Mode), &run{exec: exec}, fail(FailureAborted, errors.New(reason)).as(TransitionAbort))
	})
	if err != nil {
		return nil, err
	}

	return exec, nil
}

// TimeOutExpired moves RUNNING executions older than the workflow timeout to
// TIMED_OUT and returns how many were changed. Executions advanced
// concurrently are left to the next sweep.
func (e *Engine) TimeOutExpired(ctx context.Context) (int, error) {
	deadline := e.now().UTC().Add(-e.cfg.Timeout)

	var executions []*model.Execution

	_, err := e.repo.List(ctx, model.Execution{}, &executions, *repo.NewQuery().
		Where(repo.NewCompositeKeyGroup(repo.NewCompositeKey().
			Where(repo.StatusField, model.ExecutionRunning).
			Where(repo.StartTimeField, deadline, repo.Lt))).
		Order(repo.OrderField{Field: repo.StartTimeField, Direction: repo.Asc}).
		SetLimit(repo.DefaultLimit))
	if err != nil {
		return 0, errs.Wrap(ErrListExecutions, err)
	}

	timedOut := 0

	for _, exec := range executions {
		ctx := log.InjectExecution(ctx, exec.ID, exec.Mode)

		err = e.apply(ctx, &run{exec: exec}, timeoutOutcome(e.cfg.Timeout))
		if err != nil {
			if errors.Is(err, ErrConcurrentUpdate) {
				log.Warn(ctx, "Execution changed while timing out, skipping")
				continue
			}

			return timedOut, err
		}

		timedOut++
	}

	return timedOut, nil
}

// Describe returns the execution and its transition history in order.
func (e *Engine) Describe(ctx context.Context, id uuid.UUID) (*model.Execution, []*model.ExecutionEvent, error) {
	exec, err := e.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var history []*model.ExecutionEvent

	_, err = e.repo.List(ctx, model.ExecutionEvent{}, &history, *repo.NewQuery().
		Where(repo.NewCompositeKeyGroup(repo.NewCompositeKey().Where(repo.ExecutionIDField, id))).
		Order(repo.OrderField{Field: repo.SequenceField, Direction: repo.Asc}).
		SetLimit(exec.Version + 1))
	if err != nil {
		return nil, nil, errs.Wrap(ErrListExecutions, err)
	}

	return exec, history, nil
}

func (e *Engine) get(ctx context.Context, id uuid.UUID) (*model.Execution, error) {
	exec := &model.Execution{ID: id}

	_, err := e.repo.First(ctx, exec, *repo.NewQuery())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errs.Wrapf(ErrExecutionNotFound, id.String())
		}

		return nil, errs.Wrap(ErrGetExecution, err)
	}

	return exec, nil
}

func (e *Engine) expired(exec *model.Execution, now time.Time) bool {
	return now.Sub(exec.StartTime) >= e.cfg.Timeout
}

func (e *Engine) delayFor(s State) time.Duration {
	switch s {
	case StateWaitShort:
		return e.cfg.PollInterval
	case StateWaitFixed:
		return e.cfg.StackSetWait
	default:
		return 0
	}
}

// apply fires o on the state machine and persists the new state, checkpoint
// and history entry in one transaction guarded by the execution version.
func (e *Engine) apply(ctx context.Context, r *run, o outcome) error {
	exec := r.exec
	from := State(exec.State)

	sm := newStateMachine(from)

	err := sm.Event(ctx, o.transition.String())
	if err != nil {
		return errs.Wrap(NewTransitionError(o.transition), err)
	}

	to := State(sm.Current())
	now := e.now().UTC()
	version := exec.Version

	if r.checkpoint != nil {
		exec.Checkpoint, err = json.Marshal(r.checkpoint)
		if err != nil {
			return errs.Wrap(ErrUpdateExecution, err)
		}
	}

	event := &model.ExecutionEvent{
		ID:          uuid.New(),
		ExecutionID: exec.ID,
		Sequence:    version + 1,
		Transition:  o.transition.String(),
		FromState:   from.String(),
		ToState:     to.String(),
		Timestamp:   now,
	}

	if r.output != nil {
		event.Output, err = json.Marshal(r.output)
		if err != nil {
			return errs.Wrap(ErrUpdateExecution, err)
		}
	}

	if r.result != nil {
		exec.Result, err = json.Marshal(r.result)
		if err != nil {
			return errs.Wrap(ErrUpdateExecution, err)
		}
	}

	if o.failure != nil {
		exec.FailureError = o.failure.name
		exec.FailureCause = o.failure.cause
		event.Error = o.failure.name + ": " + o.failure.cause
	}

	exec.State = to.String()
	exec.Version = version + 1
	exec.PollCount += r.polls
	exec.ResumeAt = nil

	if d := e.delayFor(to); d > 0 {
		resumeAt := now.Add(d)
		exec.ResumeAt = &resumeAt
	}

	status, terminal := terminalStatus[to]
	if terminal {
		exec.Status = status
		exec.StopTime = &now
	}

	err = e.persist(ctx, exec, version, event)
	if err != nil {
		return err
	}

	attrs := []slog.Attr{
		slog.String("transition", o.transition.String()),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	}

	if o.failure != nil {
		attrs = append(attrs,
			slog.String("error", o.failure.name),
			slog.String("cause", o.failure.cause),
		)
		if o.failure.code != "" {
			attrs = append(attrs, slog.String("awsErrorCode", o.failure.code))
		}

		log.Warn(ctx, "Execution failed", attrs...)
	} else {
		log.Info(ctx, "Execution transitioned", attrs...)
	}

	if terminal {
		metrics.ExecutionsFinished.WithLabelValues(status.String()).Inc()
	}

	return nil
}

func (e *Engine) persist(ctx context.Context, exec *model.Execution, version int, event *model.ExecutionEvent) error {
	err := e.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		patched, err := r.Patch(ctx, exec, *repo.NewQuery().
			UpdateAll(true).
			Where(repo.NewCompositeKeyGroup(repo.NewCompositeKey().Where(repo.VersionField, version))))
		if err != nil {
			return err
		}

		if !patched {
			return ErrConcurrentUpdate
		}

		return r.Create(ctx, event)
	})
	if err != nil {
		if errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, repo.ErrUniqueConstraint) {
			return ErrConcurrentUpdate
		}

		return errs.Wrap(ErrUpdateExecution, err)
	}

	return nil
}
