package toggler

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"

	"github.com/oshokin/timer-toggle/internal/config"
	"github.com/oshokin/timer-toggle/internal/domain/toggle"
	"github.com/oshokin/timer-toggle/internal/driver/interaction"
	"github.com/oshokin/timer-toggle/internal/driver/timer"
	"github.com/oshokin/timer-toggle/internal/logger"
)

// Options controls the timer-toggle process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// EnvFile specifies an optional dotenv file with overrides.
	EnvFile string
	// LogLevel overrides the configured level when not empty.
	LogLevel string
	// Input supplies user commands.
	Input io.Reader
	// Output receives log lines and the prompt; the global logger and stdout are used when nil.
	Output io.Writer
	// Clock is used by the automaton and the timer driver; the real clock when nil.
	Clock clockwork.Clock
}

// Run starts the switch and blocks until both drivers stop.
// It returns nil after a quit command, end of input or ctx cancellation.
func Run(ctx context.Context, opts *Options) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	ctx = withLogger(ctx, settings, opts.Output)

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sw, err := toggle.New(toggle.WithClock(clock))
	if err != nil {
		return fmt.Errorf("create switch: %w", err)
	}

	// The exit flag shared by both drivers.
	runCtx, exit := context.WithCancel(ctx)
	defer exit()

	timerDriver, err := timer.New(sw, &timer.Options{
		Timeout:      settings.Timeout,
		PollInterval: settings.PollInterval,
		Clock:        clock,
	})
	if err != nil {
		return fmt.Errorf("create timer driver: %w", err)
	}

	prompt := opts.Output
	if prompt == nil {
		prompt = os.Stdout
	}

	interactionDriver, err := interaction.New(sw, &interaction.Options{
		Input:  opts.Input,
		Prompt: prompt,
		OnQuit: exit,
	})
	if err != nil {
		return fmt.Errorf("create interaction driver: %w", err)
	}

	logger.DebugKV(ctx, "Starting switch", "timeout", settings.Timeout, "poll_interval", settings.PollInterval)

	if err := sw.Start(ctx); err != nil {
		return fmt.Errorf("start switch: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)

	launch := func(name string, run func(context.Context) error) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := run(runCtx); err != nil {
				// A failed driver stops the other one as well.
				exit()

				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s driver: %w", name, err))
				mu.Unlock()
			}
		}()
	}

	launch("interaction", interactionDriver.Run)
	launch("timer", timerDriver.Run)

	wg.Wait()

	logger.Debug(ctx, "Switch stopped")

	return errs
}

// loadSettings reads YAML settings, then applies the dotenv file, the
// environment and finally the log level override.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(settings, os.LookupEnv); err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel

		if err := config.Validate(settings); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// withLogger stores a logger honoring the configured level in ctx.
func withLogger(ctx context.Context, settings *config.Config, output io.Writer) context.Context {
	// Validated by config.Validate.
	level, _ := logger.ParseLogLevel(settings.LogLevel)

	if output != nil {
		return logger.ToContext(ctx, logger.New(output, level))
	}

	return logger.ToContext(ctx, logger.FromContext(ctx).WithOptions(logger.WithLevel(level)))
}
