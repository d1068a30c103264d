package workflow

import (
	"github.com/looplab/fsm"
)

// convertEvent converts Transition and State types to string
// and creates an EventDesc object for the state machine.
func convertEvent(
	transition Transition,
	sourceStates []State,
	destinationState State,
) fsm.EventDesc {
	src := make([]string, len(sourceStates))
	for i, state := range sourceStates {
		src[i] = state.String()
	}

	return fsm.EventDesc{
		Name: transition.String(),
		Src:  src,
		Dst:  destinationState.String(),
	}
}

// newStateMachine returns the transition table positioned at current.
// FAIL, TIME_OUT and ABORT are valid from every non-terminal state; no
// transition leaves a terminal state.
//
//nolint:funlen
func newStateMachine(current State) *fsm.FSM {
	return fsm.NewFSM(
		current.String(),
		fsm.Events{
			convertEvent(TransitionDispatchCreate, []State{StateModeDispatch}, StateInitiateCreation),
			convertEvent(TransitionDispatchJoin, []State{StateModeDispatch}, StateSendInvitation),

			convertEvent(TransitionCreationInitiated, []State{StateInitiateCreation}, StateWaitShort),
			convertEvent(TransitionWaitElapsed, []State{StateWaitShort}, StateCheckStatus),
			convertEvent(TransitionCreationPending, []State{StateCheckStatus}, StateWaitShort),
			convertEvent(TransitionCreationSucceeded, []State{StateCheckStatus}, StateSendInvitation),
			convertEvent(TransitionCreationFailed, []State{StateCheckStatus}, StateFailed),

			convertEvent(TransitionInvitationSent, []State{StateSendInvitation}, StateAcceptInvitation),
			convertEvent(TransitionInvitationAccepted, []State{StateAcceptInvitation}, StateMoveToEntryOU),
			convertEvent(TransitionAccountMoved, []State{StateMoveToEntryOU}, StateWaitFixed),
			convertEvent(TransitionStackSetWaitElapsed, []State{StateWaitFixed}, StateRegisterInISB),
			convertEvent(TransitionAccountRegistered, []State{StateRegisterInISB}, StateAttachExecutionMetadata),
			convertEvent(TransitionMetadataAttached, []State{StateAttachExecutionMetadata}, StateSucceeded),

			convertEvent(TransitionFail, NonTerminalStates, StateFailed),
			convertEvent(TransitionTimeOut, NonTerminalStates, StateTimedOut),
			convertEvent(TransitionAbort, NonTerminalStates, StateAborted),
		},
		fsm.Callbacks{},
	)
}
