package toggler

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/timer-toggle/internal/config"
	"github.com/oshokin/timer-toggle/internal/driver/interaction"
)

const waitFor = 2 * time.Second

// lockedBuffer is shared by the log sink and the prompt writer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

// writeConfig stores settings in a temporary YAML file.
func writeConfig(t *testing.T, settings *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timer-toggle.yaml")
	require.NoError(t, config.Save(path, settings))

	return path
}

// runAsync starts Run and returns the channel receiving its result.
func runAsync(ctx context.Context, opts *Options) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, opts)
	}()

	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(waitFor):
		require.Fail(t, "run did not return")

		return nil
	}
}

// TestRun_QuitCommand toggles, reports invalid input and exits cleanly on 'q'.
func TestRun_QuitCommand(t *testing.T) {
	t.Parallel()

	output := new(lockedBuffer)

	err := Run(context.Background(), &Options{
		ConfigPath: writeConfig(t, config.Default()),
		Input:      strings.NewReader("t\nx\nq\n"),
		Output:     output,
		Clock:      clockwork.NewFakeClock(),
	})
	require.NoError(t, err)

	text := output.String()
	require.Equal(t, 1, strings.Count(text, "Switch is OFF"))
	require.Equal(t, 1, strings.Count(text, "Toggling switch..."))
	require.Equal(t, 1, strings.Count(text, "Switch is ON"))
	require.Equal(t, 1, strings.Count(text, "Invalid input"))
	require.Equal(t, 3, strings.Count(text, interaction.Prompt))
	require.NotContains(t, text, "DEBUG")
}

// TestRun_TimerExpiry lets the timer turn the switch off before quitting.
func TestRun_TimerExpiry(t *testing.T) {
	t.Parallel()

	var (
		ctx           = context.Background()
		clock         = clockwork.NewFakeClock()
		output        = new(lockedBuffer)
		input, writer = io.Pipe()
	)

	t.Cleanup(func() { _ = writer.Close() })

	done := runAsync(ctx, &Options{
		ConfigPath: writeConfig(t, config.Default()),
		Input:      input,
		Output:     output,
		Clock:      clock,
	})

	_, err := io.WriteString(writer, "t\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(output.String(), "Switch is ON")
	}, waitFor, 5*time.Millisecond)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(config.DefaultTimeout)

	require.Eventually(t, func() bool {
		return strings.Contains(output.String(), "Switch is turned off due to timeout")
	}, waitFor, 5*time.Millisecond)

	_, err = io.WriteString(writer, "q\n")
	require.NoError(t, err)
	require.NoError(t, waitDone(t, done))

	text := output.String()
	require.Equal(t, 1, strings.Count(text, "Timer expired!"))
	require.Equal(t, 2, strings.Count(text, "Switch is OFF"))
}

// TestRun_Cancel stops both drivers while input is still pending.
func TestRun_Cancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	input, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })

	done := runAsync(ctx, &Options{
		ConfigPath: writeConfig(t, config.Default()),
		Input:      input,
		Output:     io.Discard,
	})

	cancel()
	require.NoError(t, waitDone(t, done))
}

// TestRun_Settings rejects unreadable settings and bad overrides.
func TestRun_Settings(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Input:      strings.NewReader("q"),
	})
	require.ErrorIs(t, err, os.ErrNotExist)

	err = Run(context.Background(), &Options{
		ConfigPath: writeConfig(t, config.Default()),
		LogLevel:   "loud",
		Input:      strings.NewReader("q"),
	})
	require.Error(t, err)
}

// TestRun_DebugLevel honors the log level override.
func TestRun_DebugLevel(t *testing.T) {
	t.Parallel()

	output := new(lockedBuffer)

	err := Run(context.Background(), &Options{
		ConfigPath: writeConfig(t, config.Default()),
		LogLevel:   "debug",
		Input:      strings.NewReader("q"),
		Output:     output,
		Clock:      clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	require.Contains(t, output.String(), "Switch stopped")
}
