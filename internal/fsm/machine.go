package fsm

import (
	"context"
	"fmt"
	"sync"

	"github.com/oshokin/timer-toggle/internal/logger"
)

// Machine is the runtime instance of a state machine over states of type S.
type Machine[S State] struct {
	// states holds every state value by identifier.
	states map[StateID]S
	// initial is entered by Start.
	initial StateID
	// current is the active state; meaningful only once started.
	current S
	// started reports whether Start has run.
	started bool
	// onTransition is notified after each transition.
	onTransition TransitionHook
	// mu serializes dispatches and guards current and the state values.
	mu sync.RWMutex
}

// Option configures a Machine.
type Option func(*options)

// options collects non-generic machine settings.
type options struct {
	// onTransition is copied into the machine.
	onTransition TransitionHook
}

// WithTransitionHook sets a callback invoked after each transition,
// while the dispatch lock is still held.
func WithTransitionHook(fn TransitionHook) Option {
	return func(o *options) {
		o.onTransition = fn
	}
}

// New builds a machine owning states that starts in initial.
func New[S State](initial StateID, states []S, opts ...Option) (*Machine[S], error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	cfg := new(options)
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Machine[S]{
		states:       make(map[StateID]S, len(states)),
		initial:      initial,
		onTransition: cfg.onTransition,
	}

	for _, s := range states {
		id := s.ID()
		if _, ok := m.states[id]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, id)
		}

		m.states[id] = s
	}

	if _, ok := m.states[initial]; !ok {
		return nil, fmt.Errorf("initial state %q: %w", initial, ErrUnknownState)
	}

	return m, nil
}

// Start enters the initial state and runs its entry action.
// It must be called exactly once before Dispatch.
func (m *Machine[S]) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	m.current = m.states[m.initial]
	m.started = true

	logger.DebugKV(ctx, "Entering initial state", "state", m.initial)
	m.current.Entry(ctx)

	return nil
}

// Dispatch delivers event to the current state. Concurrent calls are
// serialized end to end, including any transition the reaction requests.
func (m *Machine[S]) Dispatch(ctx context.Context, event Event[S]) error {
	_, err := m.DispatchIf(ctx, nil, event)

	return err
}

// DispatchIf delivers event only if guard accepts the current state.
// The guard and the reaction run in the same critical section, so the state
// the guard saw is the state the event reaches. A nil guard accepts any state.
func (m *Machine[S]) DispatchIf(ctx context.Context, guard func(S) bool, event Event[S]) (bool, error) {
	if event == nil {
		return false, ErrNilEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return false, fmt.Errorf("dispatch %s: %w", event.Name(), ErrNotStarted)
	}

	if guard != nil && !guard(m.current) {
		logger.DebugKV(ctx, "Guard rejected event", "event", event.Name(), "state", m.current.ID())

		return false, nil
	}

	logger.DebugKV(ctx, "Processing event", "event", event.Name(), "state", m.current.ID())

	tx := &Tx{
		ctx:     ctx,
		event:   event.Name(),
		transit: m.transit,
	}
	event.Deliver(tx, m.current)
	tx.closed = true

	if tx.err != nil {
		return true, fmt.Errorf("dispatch %s: %w", event.Name(), tx.err)
	}

	return true, nil
}

// transit runs exit, swap and entry. The caller holds mu.
func (m *Machine[S]) transit(ctx context.Context, to StateID) error {
	target, ok := m.states[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, to)
	}

	from := m.current.ID()

	logger.DebugKV(ctx, "Executing transition", "from", from, "to", to)

	m.current.Exit(ctx)
	m.current = target
	m.current.Entry(ctx)

	if m.onTransition != nil {
		m.onTransition(from, to)
	}

	return nil
}

// IsInState reports whether the machine is started and its current state is id.
func (m *Machine[S]) IsInState(id StateID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.started && m.current.ID() == id
}

// CurrentState returns the identifier of the current state,
// or an empty identifier before Start.
func (m *Machine[S]) CurrentState() StateID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.started {
		return ""
	}

	return m.current.ID()
}

// Inspect calls fn with the state identified by id while no dispatch can run.
// fn must not retain the state or call back into the machine.
func (m *Machine[S]) Inspect(id StateID, fn func(S)) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.states[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, id)
	}

	fn(s)

	return nil
}

// InspectCurrent calls fn with the current state while no dispatch can run.
// It gives a consistent view of "which state" and "what data" in one step.
func (m *Machine[S]) InspectCurrent(fn func(S)) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.started {
		return ErrNotStarted
	}

	fn(m.current)

	return nil
}
