package toggle

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/timer-toggle/internal/fsm"
)

// Switch is the automaton shared by the drivers.
type Switch struct {
	// machine serializes every dispatch.
	machine *fsm.Machine[State]
	// clock measures activations.
	clock clockwork.Clock
	// armed carries one pending "switch turned on" signal.
	armed chan struct{}
}

// TimerSnapshot is a consistent view of the activation timer.
type TimerSnapshot struct {
	// StartedAt is when the switch was last turned on.
	StartedAt time.Time
	// Elapsed is the time spent on so far.
	Elapsed time.Duration
	// Running is true while the switch is on.
	Running bool
}

// Option configures a Switch.
type Option func(*switchOptions)

// switchOptions collects Switch settings.
type switchOptions struct {
	// clock defaults to the real clock.
	clock clockwork.Clock
	// hooks are passed to the machine.
	machineOptions []fsm.Option
}

// WithClock replaces the clock used to stamp activations.
func WithClock(clock clockwork.Clock) Option {
	return func(o *switchOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithTransitionHook observes every completed transition.
func WithTransitionHook(fn fsm.TransitionHook) Option {
	return func(o *switchOptions) {
		o.machineOptions = append(o.machineOptions, fsm.WithTransitionHook(fn))
	}
}

// New builds a switch in the Off state. It still has to be started.
func New(opts ...Option) (*Switch, error) {
	cfg := &switchOptions{
		clock: clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	armed := make(chan struct{}, 1)
	states := []State{
		new(Off),
		&On{
			clock: cfg.clock,
			armed: armed,
		},
	}

	machine, err := fsm.New(StateOff, states, cfg.machineOptions...)
	if err != nil {
		return nil, fmt.Errorf("build switch: %w", err)
	}

	return &Switch{
		machine: machine,
		clock:   cfg.clock,
		armed:   armed,
	}, nil
}

// Start enters the Off state.
func (s *Switch) Start(ctx context.Context) error {
	return s.machine.Start(ctx)
}

// Dispatch delivers an event to the current state.
func (s *Switch) Dispatch(ctx context.Context, event fsm.Event[State]) error {
	return s.machine.Dispatch(ctx, event)
}

// Toggle dispatches a Toggle event.
func (s *Switch) Toggle(ctx context.Context) error {
	return s.Dispatch(ctx, Toggle{})
}

// Expire dispatches a TimerExpired event.
func (s *Switch) Expire(ctx context.Context) error {
	return s.Dispatch(ctx, TimerExpired{})
}

// ExpireActivation dispatches TimerExpired only if the activation that began
// at startedAt is still running, so a stale expiry never turns off a newer
// activation. It reports whether the event was delivered.
func (s *Switch) ExpireActivation(ctx context.Context, startedAt time.Time) (bool, error) {
	sameActivation := func(current State) bool {
		on, ok := current.(*On)

		return ok && on.timerRunning && on.startedAt.Equal(startedAt)
	}

	return s.machine.DispatchIf(ctx, sameActivation, TimerExpired{})
}

// IsOn reports whether the switch is on.
func (s *Switch) IsOn() bool {
	return s.machine.IsInState(StateOn)
}

// IsInState reports whether the current state is id.
func (s *Switch) IsInState(id fsm.StateID) bool {
	return s.machine.IsInState(id)
}

// Current returns the current state identifier.
func (s *Switch) Current() fsm.StateID {
	return s.machine.CurrentState()
}

// Armed is signalled every time the switch is turned on.
func (s *Switch) Armed() <-chan struct{} {
	return s.armed
}

// Snapshot reads the activation timer while no dispatch can run.
// The snapshot is zero unless the switch is currently on.
func (s *Switch) Snapshot() (TimerSnapshot, error) {
	var snapshot TimerSnapshot

	err := s.machine.InspectCurrent(func(current State) {
		on, ok := current.(*On)
		if !ok || !on.timerRunning {
			return
		}

		snapshot = TimerSnapshot{
			StartedAt: on.startedAt,
			Elapsed:   s.clock.Since(on.startedAt),
			Running:   true,
		}
	})
	if err != nil {
		return TimerSnapshot{}, fmt.Errorf("snapshot timer: %w", err)
	}

	return snapshot, nil
}
