package workflow

import (
	"time"

	"github.com/govlink/govlink/internal/model"
)

// State represents the state of an execution in the state-machine.
type State string

func (s State) String() string {
	return string(s)
}

// Transition represents the transition of an execution in the state-machine.
type Transition string

func (t Transition) String() string {
	return string(t)
}

const (
	StateModeDispatch            State = "MODE_DISPATCH"
	StateInitiateCreation        State = "INITIATE_CREATION"
	StateWaitShort               State = "WAIT_SHORT"
	StateCheckStatus             State = "CHECK_STATUS"
	StateSendInvitation          State = "SEND_INVITATION"
	StateAcceptInvitation        State = "ACCEPT_INVITATION"
	StateMoveToEntryOU           State = "MOVE_TO_ENTRY_OU"
	StateWaitFixed               State = "WAIT_FIXED"
	StateRegisterInISB           State = "REGISTER_IN_ISB"
	StateAttachExecutionMetadata State = "ATTACH_EXECUTION_METADATA"
	StateSucceeded               State = "SUCCEEDED"
	StateFailed                  State = "FAILED"
	StateTimedOut                State = "TIMED_OUT"
	StateAborted                 State = "ABORTED"

	TransitionStart               Transition = "START"
	TransitionDispatchCreate      Transition = "DISPATCH_CREATE"
	TransitionDispatchJoin        Transition = "DISPATCH_JOIN"
	TransitionCreationInitiated   Transition = "CREATION_INITIATED"
	TransitionWaitElapsed         Transition = "WAIT_ELAPSED"
	TransitionCreationPending     Transition = "CREATION_PENDING"
	TransitionCreationSucceeded   Transition = "CREATION_SUCCEEDED"
	TransitionCreationFailed      Transition = "CREATION_FAILED"
	TransitionInvitationSent      Transition = "INVITATION_SENT"
	TransitionInvitationAccepted  Transition = "INVITATION_ACCEPTED"
	TransitionAccountMoved        Transition = "ACCOUNT_MOVED"
	TransitionStackSetWaitElapsed Transition = "STACK_SET_WAIT_ELAPSED"
	TransitionAccountRegistered   Transition = "ACCOUNT_REGISTERED"
	TransitionMetadataAttached    Transition = "METADATA_ATTACHED"
	TransitionFail                Transition = "FAIL"
	TransitionTimeOut             Transition = "TIME_OUT"
	TransitionAbort               Transition = "ABORT"
)

// Failure names recorded on executions that did not fail inside a step.
const (
	FailureInvalidMode           = "InvalidMode"
	FailureInvalidRequest        = "InvalidRequest"
	FailureAccountCreationFailed = "AccountCreationFailed"
	FailureCorruptCheckpoint     = "CorruptCheckpoint"
	FailurePanic                 = "Panic"
	FailureTimedOut              = "States.Timeout"
	FailureAborted               = "Aborted"
)

var NonTerminalStates = []State{
	StateModeDispatch,
	StateInitiateCreation,
	StateWaitShort,
	StateCheckStatus,
	StateSendInvitation,
	StateAcceptInvitation,
	StateMoveToEntryOU,
	StateWaitFixed,
	StateRegisterInISB,
	StateAttachExecutionMetadata,
}

var TerminalStates = []State{
	StateSucceeded,
	StateFailed,
	StateTimedOut,
	StateAborted,
}

// terminalStatus maps a terminal state to the status exposed to clients.
var terminalStatus = map[State]model.ExecutionStatus{
	StateSucceeded: model.ExecutionSucceeded,
	StateFailed:    model.ExecutionFailed,
	StateTimedOut:  model.ExecutionTimedOut,
	StateAborted:   model.ExecutionAborted,
}

// Schedule tells the host when to advance an execution next.
type Schedule struct {
	Done  bool
	Delay time.Duration
}
