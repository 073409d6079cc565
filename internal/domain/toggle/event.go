package toggle

import "github.com/oshokin/timer-toggle/internal/fsm"

// Toggle is issued by the user to flip the switch.
type Toggle struct{}

// Name returns the event kind.
func (Toggle) Name() string { return "toggle" }

// Deliver calls the toggle reaction of s.
func (Toggle) Deliver(tx *fsm.Tx, s State) { s.OnToggle(tx) }

// TimerExpired is issued by the timer driver once the switch stayed on too long.
type TimerExpired struct{}

// Name returns the event kind.
func (TimerExpired) Name() string { return "timer_expired" }

// Deliver calls the timer reaction of s.
func (TimerExpired) Deliver(tx *fsm.Tx, s State) { s.OnTimerExpired(tx) }
