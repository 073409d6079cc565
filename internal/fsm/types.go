package fsm

import "context"

// StateID is a unique identifier of a state within a machine.
type StateID string

// State is a long-lived state value owned by a Machine.
type State interface {
	// ID identifies the state.
	ID() StateID
	// Entry runs once every time the machine enters the state.
	Entry(ctx context.Context)
	// Exit runs once every time the machine leaves the state.
	Exit(ctx context.Context)
}

// Event is delivered to the current state of a Machine.
// Deliver selects the reaction of state for this kind of event, so adding an
// event kind means adding a reaction to the state contract of S.
type Event[S State] interface {
	// Name is a human-readable event kind.
	Name() string
	// Deliver invokes the reaction of state for this event.
	Deliver(tx *Tx, state S)
}

// TransitionHook is called after every completed transition.
type TransitionHook func(from, to StateID)

// NopState implements the Entry and Exit actions as no-ops.
// Embed it in states that have nothing to do on entry or exit.
type NopState struct{}

// Entry does nothing.
func (NopState) Entry(context.Context) {}

// Exit does nothing.
func (NopState) Exit(context.Context) {}
