package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/timer-toggle/internal/domain/toggle"
	"github.com/oshokin/timer-toggle/internal/logger"
)

// Switch is the part of the automaton the timer driver depends on.
type Switch interface {
	Snapshot() (toggle.TimerSnapshot, error)
	ExpireActivation(ctx context.Context, startedAt time.Time) (bool, error)
	Armed() <-chan struct{}
}

// Options controls the timer driver.
type Options struct {
	// Timeout is how long the switch may stay on.
	Timeout time.Duration
	// PollInterval is the sampling cadence while the switch is on.
	PollInterval time.Duration
	// Clock drives the ticker; the real clock is used when nil.
	Clock clockwork.Clock
}

// Driver synthesizes timer expiry events.
type Driver struct {
	// sw is the automaton being watched.
	sw Switch
	// clock creates tickers.
	clock clockwork.Clock
	// timeout is the expiry threshold.
	timeout time.Duration
	// pollInterval is the ticker period.
	pollInterval time.Duration
}

var (
	// errSwitchRequired is returned when no automaton is provided.
	errSwitchRequired = errors.New("switch must be provided")
	// errInvalidDuration is returned for non-positive timings.
	errInvalidDuration = errors.New("timeout and poll interval must be positive")
)

// New creates a timer driver for sw.
func New(sw Switch, opts *Options) (*Driver, error) {
	if sw == nil {
		return nil, errSwitchRequired
	}

	if opts == nil || opts.Timeout <= 0 || opts.PollInterval <= 0 {
		return nil, errInvalidDuration
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Driver{
		sw:           sw,
		clock:        clock,
		timeout:      opts.Timeout,
		pollInterval: opts.PollInterval,
	}, nil
}

// Run blocks until ctx is canceled or reading the switch fails.
func (d *Driver) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "timer")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.sw.Armed():
		}

		if err := d.watch(ctx); err != nil {
			return err
		}
	}
}

// watch samples one activation until it expires, ends, or ctx is canceled.
func (d *Driver) watch(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}

		snapshot, err := d.sw.Snapshot()
		if err != nil {
			return fmt.Errorf("read timer: %w", err)
		}

		if !snapshot.Running {
			logger.Debug(ctx, "Timer disarmed")

			return nil
		}

		logger.Infof(ctx, "Timer: %dms", snapshot.Elapsed.Milliseconds())

		if snapshot.Elapsed < d.timeout {
			continue
		}

		logger.Info(ctx, "Timer expired!")

		if _, err := d.sw.ExpireActivation(ctx, snapshot.StartedAt); err != nil {
			return fmt.Errorf("dispatch timer expiry: %w", err)
		}

		return nil
	}
}
