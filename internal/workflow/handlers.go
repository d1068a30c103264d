package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/steps"
)

// Step names recorded as FailureError when an executor returns an error.
const (
	StepInitiateCreation = "InitiateCreation"
	StepCheckStatus      = "CheckStatus"
	StepSendInvitation   = "SendInvitation"
	StepAcceptInvitation = "AcceptInvitation"
	StepMoveToEntryOU    = "MoveToEntryOU"
	StepRegisterInISB    = "RegisterInISB"
)

// run is the mutable view of one execution during a single Advance.
type run struct {
	exec       *model.Execution
	checkpoint *Checkpoint
	output     any
	result     *Result
	polls      int
}

type failure struct {
	name  string
	cause string
	code  string
}

type outcome struct {
	transition Transition
	failure    *failure
}

func advance(t Transition) outcome {
	return outcome{transition: t}
}

func fail(name string, err error) outcome {
	return outcome{
		transition: TransitionFail,
		failure:    &failure{name: name, cause: err.Error(), code: steps.APIErrorCode(err)},
	}
}

func timeoutOutcome(timeout time.Duration) outcome {
	return outcome{
		transition: TransitionTimeOut,
		failure:    &failure{name: FailureTimedOut, cause: fmt.Sprintf("execution exceeded %s", timeout)},
	}
}

func (o outcome) as(t Transition) outcome {
	o.transition = t
	return o
}

func (o outcome) label() string {
	if o.failure != nil {
		return "failure"
	}

	return "success"
}

// handle runs the handler of the current state. A panicking step fails the
// execution instead of the worker.
func (e *Engine) handle(ctx context.Context, r *run) (o outcome) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%w: %v", ErrStepPanic, p)
			log.Error(ctx, "Recovered from panic in workflow step", err)

			o = fail(FailurePanic, err)
		}
	}()

	switch State(r.exec.State) {
	case StateModeDispatch:
		return e.dispatch(ctx, r)
	case StateInitiateCreation:
		return e.initiateCreation(ctx, r)
	case StateWaitShort:
		return advance(TransitionWaitElapsed)
	case StateCheckStatus:
		return e.checkStatus(ctx, r)
	case StateSendInvitation:
		return e.sendInvitation(ctx, r)
	case StateAcceptInvitation:
		return e.acceptInvitation(ctx, r)
	case StateMoveToEntryOU:
		return e.moveToEntryOU(ctx, r)
	case StateWaitFixed:
		return advance(TransitionStackSetWaitElapsed)
	case StateRegisterInISB:
		return e.registerInISB(ctx, r)
	case StateAttachExecutionMetadata:
		return e.attachMetadata(r)
	default:
		return fail(FailureCorruptCheckpoint, errs.Wrapf(ErrInvalidState, r.exec.State))
	}
}

func (e *Engine) dispatch(ctx context.Context, r *run) outcome {
	req, err := DecodeRequest(r.exec.Input)
	if err != nil {
		if errors.Is(err, ErrInvalidMode) {
			return fail(FailureInvalidMode, err)
		}

		return fail(FailureInvalidRequest, err)
	}

	switch req := req.(type) {
	case CreateRequest:
		return advance(TransitionDispatchCreate)
	case JoinExistingRequest:
		r.checkpoint.Pair = &steps.LinkedAccountPair{
			GovCloudAccountID:   req.GovCloudAccountID,
			CommercialAccountID: req.CommercialAccountID,
			AccountName:         req.AccountName,
		}

		log.Info(ctx, "Joining existing account", slog.String("govCloudAccountId", req.GovCloudAccountID))

		return advance(TransitionDispatchJoin)
	default:
		return fail(FailureInvalidMode, errs.Wrapf(ErrInvalidMode, "%T", req))
	}
}

func (e *Engine) initiateCreation(ctx context.Context, r *run) outcome {
	req, err := DecodeRequest(r.exec.Input)
	if err != nil {
		return fail(FailureInvalidRequest, err)
	}

	create, ok := req.(CreateRequest)
	if !ok {
		return fail(FailureInvalidMode, errs.Wrapf(ErrInvalidMode, "%s cannot create an account", req.Mode()))
	}

	out, err := e.steps.InitiateCreation.Execute(ctx, steps.CreationInput{
		AccountName: create.AccountName,
		Email:       create.Email,
	})
	if err != nil {
		return fail(StepInitiateCreation, err)
	}

	r.checkpoint.Creation = &out
	r.output = out

	return advance(TransitionCreationInitiated)
}

func (e *Engine) checkStatus(ctx context.Context, r *run) outcome {
	if r.checkpoint.Creation == nil {
		return fail(FailureCorruptCheckpoint, errs.Wrapf(ErrCorruptCheckpoint, "creation request"))
	}

	out, err := e.steps.CheckStatus.Execute(ctx, steps.StatusInput{RequestID: r.checkpoint.Creation.RequestID})
	if err != nil {
		return fail(StepCheckStatus, err)
	}

	r.checkpoint.Status = &out
	r.output = out
	r.polls = 1

	switch out.Status {
	case bridge.StatusSucceeded:
		r.checkpoint.Pair = &steps.LinkedAccountPair{
			GovCloudAccountID:   out.GovCloudAccountID,
			CommercialAccountID: out.CommercialAccountID,
			AccountName:         r.checkpoint.Creation.AccountName,
		}

		return advance(TransitionCreationSucceeded)
	case bridge.StatusFailed:
		o := fail(FailureAccountCreationFailed, errors.New(out.Message))
		return o.as(TransitionCreationFailed)
	default:
		return advance(TransitionCreationPending)
	}
}

func (e *Engine) sendInvitation(ctx context.Context, r *run) outcome {
	if r.checkpoint.Pair == nil {
		return fail(FailureCorruptCheckpoint, errs.Wrapf(ErrCorruptCheckpoint, "account pair"))
	}

	out, err := e.steps.SendInvitation.Execute(log.InjectAccount(ctx, r.checkpoint.Pair.GovCloudAccountID), *r.checkpoint.Pair)
	if err != nil {
		return fail(StepSendInvitation, err)
	}

	r.checkpoint.Handshake = &out
	r.output = out

	return advance(TransitionInvitationSent)
}

func (e *Engine) acceptInvitation(ctx context.Context, r *run) outcome {
	if r.checkpoint.Handshake == nil {
		return fail(FailureCorruptCheckpoint, errs.Wrapf(ErrCorruptCheckpoint, "handshake"))
	}

	out, err := e.steps.AcceptInvitation.Execute(log.InjectAccount(ctx, r.checkpoint.Handshake.GovCloudAccountID), *r.checkpoint.Handshake)
	if err != nil {
		return fail(StepAcceptInvitation, err)
	}

	r.output = out

	return advance(TransitionInvitationAccepted)
}

func (e *Engine) moveToEntryOU(ctx context.Context, r *run) outcome {
	if r.checkpoint.Pair == nil {
		return fail(FailureCorruptCheckpoint, errs.Wrapf(ErrCorruptCheckpoint, "account pair"))
	}

	out, err := e.steps.MoveToEntryOU.Execute(log.InjectAccount(ctx, r.checkpoint.Pair.GovCloudAccountID), *r.checkpoint.Pair)
	if err != nil {
		return fail(StepMoveToEntryOU, err)
	}

	r.output = out

	return advance(TransitionAccountMoved)
}

func (e *Engine) registerInISB(ctx context.Context, r *run) outcome {
	if r.checkpoint.Pair == nil {
		return fail(FailureCorruptCheckpoint, errs.Wrapf(ErrCorruptCheckpoint, "account pair"))
	}

	in := steps.RegistrationInput{
		Pair:        *r.checkpoint.Pair,
		ExecutionID: r.exec.ID,
	}
	if r.checkpoint.Creation != nil {
		in.Email = r.checkpoint.Creation.Email
	}

	out, err := e.steps.RegisterInISB.Execute(log.InjectAccount(ctx, r.checkpoint.Pair.GovCloudAccountID), in)
	if err != nil {
		return fail(StepRegisterInISB, err)
	}

	r.checkpoint.Registered = &out
	r.output = out

	return advance(TransitionAccountRegistered)
}

func (e *Engine) attachMetadata(r *run) outcome {
	if r.checkpoint.Registered == nil {
		return fail(FailureCorruptCheckpoint, errs.Wrapf(ErrCorruptCheckpoint, "registered account"))
	}

	r.result = &Result{
		ExecutionID:         r.exec.ID,
		StartTime:           r.exec.StartTime,
		Input:               r.exec.Input,
		Output:              *r.checkpoint.Registered,
		GovCloudAccountID:   r.checkpoint.Registered.AwsAccountID,
		CommercialAccountID: r.checkpoint.Registered.CommercialLinkedAccountID,
	}
	r.output = r.result

	return advance(TransitionMetadataAttached)
}
