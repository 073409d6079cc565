package toggle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/timer-toggle/internal/fsm"
	"github.com/oshokin/timer-toggle/internal/logger"
)

// observedContext returns a context whose logger records every line.
func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)

	return logger.ToContext(context.Background(), zap.New(core).Sugar()), logs
}

// transitionLog records transitions reported by the machine hook.
type transitionLog struct {
	mu    sync.Mutex
	pairs [][2]fsm.StateID
}

func (l *transitionLog) hook(from, to fsm.StateID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pairs = append(l.pairs, [2]fsm.StateID{from, to})
}

func (l *transitionLog) all() [][2]fsm.StateID {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([][2]fsm.StateID(nil), l.pairs...)
}

// TestSwitch_StartsOff checks the initial state and its entry log.
func TestSwitch_StartsOff(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	sw, err := New()
	require.NoError(t, err)
	require.NoError(t, sw.Start(ctx))

	require.True(t, sw.IsInState(StateOff))
	require.False(t, sw.IsOn())
	require.Equal(t, StateOff, sw.Current())
	require.Equal(t, 1, logs.FilterMessage("Switch is OFF").Len())
}

// TestSwitch_DispatchBeforeStart fails fast instead of acting on an undefined state.
func TestSwitch_DispatchBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	sw, err := New()
	require.NoError(t, err)

	require.ErrorIs(t, sw.Toggle(ctx), fsm.ErrNotStarted)
	require.ErrorIs(t, sw.Expire(ctx), fsm.ErrNotStarted)

	_, err = sw.Snapshot()
	require.ErrorIs(t, err, fsm.ErrNotStarted)
	require.Zero(t, logs.Len())
}

// TestSwitch_ToggleOnAndOff walks Off -> On -> Off and checks entry logs and hooks.
func TestSwitch_ToggleOnAndOff(t *testing.T) {
	t.Parallel()

	var (
		ctx, logs = observedContext()
		clock     = clockwork.NewFakeClock()
		seen      = new(transitionLog)
	)

	sw, err := New(WithClock(clock), WithTransitionHook(seen.hook))
	require.NoError(t, err)
	require.NoError(t, sw.Start(ctx))

	require.NoError(t, sw.Toggle(ctx))
	require.True(t, sw.IsOn())
	require.Equal(t, 1, logs.FilterMessage("Switch is ON").Len())

	select {
	case <-sw.Armed():
	default:
		require.Fail(t, "entering On must arm the timer")
	}

	startedAt := clock.Now()
	clock.Advance(2 * time.Second)

	snapshot, err := sw.Snapshot()
	require.NoError(t, err)
	require.True(t, snapshot.Running)
	require.Equal(t, startedAt, snapshot.StartedAt)
	require.Equal(t, 2*time.Second, snapshot.Elapsed)

	require.NoError(t, sw.Toggle(ctx))
	require.True(t, sw.IsInState(StateOff))
	require.Equal(t, 2, logs.FilterMessage("Switch is OFF").Len())
	require.Equal(t, [][2]fsm.StateID{{StateOff, StateOn}, {StateOn, StateOff}}, seen.all())

	snapshot, err = sw.Snapshot()
	require.NoError(t, err)
	require.Equal(t, TimerSnapshot{}, snapshot)
}

// TestSwitch_TimerExpiredWhileOff is ignored without entry or exit actions.
func TestSwitch_TimerExpiredWhileOff(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()
	seen := new(transitionLog)

	sw, err := New(WithTransitionHook(seen.hook))
	require.NoError(t, err)
	require.NoError(t, sw.Start(ctx))

	require.NoError(t, sw.Expire(ctx))
	require.NoError(t, sw.Expire(ctx))

	require.True(t, sw.IsInState(StateOff))
	require.Empty(t, seen.all())
	require.Equal(t, 1, logs.Len())
}

// TestSwitch_TimerExpiredWhileOn turns the switch off and reports the timeout.
func TestSwitch_TimerExpiredWhileOn(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	sw, err := New(WithClock(clockwork.NewFakeClock()))
	require.NoError(t, err)
	require.NoError(t, sw.Start(ctx))
	require.NoError(t, sw.Toggle(ctx))

	require.NoError(t, sw.Expire(ctx))

	require.True(t, sw.IsInState(StateOff))
	require.Equal(t, 1, logs.FilterMessage("Switch is turned off due to timeout").Len())

	snapshot, err := sw.Snapshot()
	require.NoError(t, err)
	require.False(t, snapshot.Running)
}

// TestSwitch_ReentryResetsTimer checks a new activation restarts the clock.
func TestSwitch_ReentryResetsTimer(t *testing.T) {
	t.Parallel()

	ctx, _ := observedContext()
	clock := clockwork.NewFakeClock()

	sw, err := New(WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, sw.Start(ctx))

	require.NoError(t, sw.Toggle(ctx))
	clock.Advance(5 * time.Second)
	require.NoError(t, sw.Toggle(ctx))
	require.NoError(t, sw.Toggle(ctx))

	snapshot, err := sw.Snapshot()
	require.NoError(t, err)
	require.True(t, snapshot.Running)
	require.Zero(t, snapshot.Elapsed)
}

// TestSwitch_ConcurrentToggles applies every toggle exactly once across two drivers.
func TestSwitch_ConcurrentToggles(t *testing.T) {
	t.Parallel()

	for _, total := range []int{200, 201} {
		ctx, logs := observedContext()
		seen := new(transitionLog)

		sw, err := New(WithTransitionHook(seen.hook))
		require.NoError(t, err)
		require.NoError(t, sw.Start(ctx))

		var wg sync.WaitGroup

		for _, n := range []int{total / 2, total - total/2} {
			n := n

			wg.Add(1)

			go func() {
				defer wg.Done()

				for i := 0; i < n; i++ {
					if err := sw.Toggle(ctx); err != nil {
						t.Error(err)
					}
				}
			}()
		}

		wg.Wait()

		require.Equal(t, total%2 == 1, sw.IsOn())
		require.Len(t, seen.all(), total)
		// Entries plus the initial Off entry.
		require.Equal(t, total+1, logs.FilterMessage("Switch is ON").Len()+logs.FilterMessage("Switch is OFF").Len())
	}
}

// TestSwitch_ExpireActivation ignores an expiry meant for an earlier activation.
func TestSwitch_ExpireActivation(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()
	clock := clockwork.NewFakeClock()

	sw, err := New(WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, sw.Start(ctx))
	require.NoError(t, sw.Toggle(ctx))

	first, err := sw.Snapshot()
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.NoError(t, sw.Toggle(ctx))
	require.NoError(t, sw.Toggle(ctx))

	delivered, err := sw.ExpireActivation(ctx, first.StartedAt)
	require.NoError(t, err)
	require.False(t, delivered)
	require.True(t, sw.IsOn())

	second, err := sw.Snapshot()
	require.NoError(t, err)

	delivered, err = sw.ExpireActivation(ctx, second.StartedAt)
	require.NoError(t, err)
	require.True(t, delivered)
	require.False(t, sw.IsOn())
	require.Equal(t, 1, logs.FilterMessage("Switch is turned off due to timeout").Len())
}
