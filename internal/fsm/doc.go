// Package fsm implements a small single-owner state machine.
//
// A Machine owns a fixed set of long-lived state values and exactly one
// current state. Events are delivered to the current state under a mutex,
// so callers on different goroutines never observe a half-completed
// transition. A state reacts to an event through a Tx and may request a
// transition with Tx.Transit, which runs the exit action of the current
// state, swaps the current state and runs the entry action of the target
// before Dispatch returns.
//
// Reactions must not call Dispatch on their own machine: the dispatch lock
// is not reentrant.
package fsm
