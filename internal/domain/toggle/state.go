package toggle

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/timer-toggle/internal/fsm"
	"github.com/oshokin/timer-toggle/internal/logger"
)

// State identifiers.
const (
	StateOff fsm.StateID = "off"
	StateOn  fsm.StateID = "on"
)

// State is the contract of a switch state: one reaction per event kind.
type State interface {
	fsm.State

	// OnToggle reacts to Toggle.
	OnToggle(tx *fsm.Tx)
	// OnTimerExpired reacts to TimerExpired.
	OnTimerExpired(tx *fsm.Tx)
}

// ignoreAll makes every reaction a no-op; states override what they handle.
type ignoreAll struct {
	fsm.NopState
}

// OnToggle ignores the event.
func (ignoreAll) OnToggle(*fsm.Tx) {}

// OnTimerExpired ignores the event.
func (ignoreAll) OnTimerExpired(*fsm.Tx) {}

// Off is the initial state.
type Off struct {
	ignoreAll
}

// ID returns StateOff.
func (*Off) ID() fsm.StateID { return StateOff }

// Entry reports the switch is off.
func (*Off) Entry(ctx context.Context) {
	logger.Info(ctx, "Switch is OFF")
}

// OnToggle turns the switch on.
func (*Off) OnToggle(tx *fsm.Tx) {
	_ = tx.Transit(StateOn)
}

// On is the state that expires after a timeout.
type On struct {
	ignoreAll

	// clock stamps every activation.
	clock clockwork.Clock
	// armed is signalled on entry so the timer driver starts sampling.
	armed chan struct{}
	// startedAt is when the current activation began.
	startedAt time.Time
	// timerRunning is true from entry until exit of the current activation.
	timerRunning bool
}

// ID returns StateOn.
func (*On) ID() fsm.StateID { return StateOn }

// Entry reports the switch is on, starts the activation timer and arms the driver.
func (s *On) Entry(ctx context.Context) {
	logger.Info(ctx, "Switch is ON")

	s.startedAt = s.clock.Now()
	s.timerRunning = true

	select {
	case s.armed <- struct{}{}:
	default:
	}
}

// Exit stops the activation timer before the next state is entered.
func (s *On) Exit(context.Context) {
	s.timerRunning = false
}

// OnToggle turns the switch off.
func (*On) OnToggle(tx *fsm.Tx) {
	_ = tx.Transit(StateOff)
}

// OnTimerExpired turns the switch off because it stayed on too long.
func (*On) OnTimerExpired(tx *fsm.Tx) {
	logger.Info(tx.Context(), "Switch is turned off due to timeout")

	_ = tx.Transit(StateOff)
}
