package fsm

import (
	"context"
	"fmt"
)

// Tx is handed to a reaction for the duration of a single dispatch.
// It is the only way for a state to request a transition.
type Tx struct {
	// ctx is the context of the dispatch that created the Tx.
	ctx context.Context
	// event names the event being dispatched.
	event string
	// transit performs the transition while the dispatch lock is held.
	transit func(ctx context.Context, to StateID) error
	// closed is set once the reaction returned.
	closed bool
	// err is the first transit error, reported by Dispatch.
	err error
}

// Context returns the context of the current dispatch.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Event returns the name of the event being dispatched.
func (tx *Tx) Event() string {
	return tx.event
}

// Transit leaves the current state and enters the state identified by to.
// Transiting to the current state runs both its exit and entry actions.
func (tx *Tx) Transit(to StateID) error {
	if tx.closed {
		return fmt.Errorf("transit to %q: %w", to, ErrTransitOutsideReaction)
	}

	err := tx.transit(tx.ctx, to)
	if err != nil && tx.err == nil {
		tx.err = err
	}

	return err
}
