package fsm

import "errors"

var (
	// ErrNotStarted is returned when a machine is used before Start.
	ErrNotStarted = errors.New("machine is not started")
	// ErrAlreadyStarted is returned by a second Start call.
	ErrAlreadyStarted = errors.New("machine is already started")
	// ErrNoStates is returned when a machine is built without states.
	ErrNoStates = errors.New("machine has no states")
	// ErrDuplicateState is returned when two states share an identifier.
	ErrDuplicateState = errors.New("duplicate state")
	// ErrUnknownState is returned for an identifier the machine does not own.
	ErrUnknownState = errors.New("unknown state")
	// ErrNilEvent is returned when a nil event is dispatched.
	ErrNilEvent = errors.New("event is nil")
	// ErrTransitOutsideReaction is returned when a Tx is used after its reaction returned.
	ErrTransitOutsideReaction = errors.New("transit outside of a reaction")
)
