package interaction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/oshokin/timer-toggle/internal/logger"
)

// Recognized commands.
const (
	CommandToggle = 't'
	CommandQuit   = 'q'
)

// Prompt is written before every read.
const Prompt = "t=Toggle, q=Quit ? "

// Switch is the part of the automaton the interaction driver depends on.
type Switch interface {
	Toggle(ctx context.Context) error
}

// Options controls the interaction driver.
type Options struct {
	// Input supplies commands.
	Input io.Reader
	// Prompt receives the prompt; it is discarded when nil.
	Prompt io.Writer
	// OnQuit raises the shared exit flag.
	OnQuit func()
}

// Driver synthesizes toggle events from user commands.
type Driver struct {
	// sw receives toggle events.
	sw Switch
	// input is read one rune at a time.
	input *bufio.Reader
	// prompt receives the prompt.
	prompt io.Writer
	// onQuit is called once on quit or end of input.
	onQuit func()
}

// token is one non-space rune read from the input, or the read error.
type token struct {
	// command is the rune that was read.
	command rune
	// err ends the stream.
	err error
}

var (
	// errSwitchRequired is returned when no automaton is provided.
	errSwitchRequired = errors.New("switch must be provided")
	// errInputRequired is returned when no input is provided.
	errInputRequired = errors.New("input must be provided")
)

// New creates an interaction driver for sw.
func New(sw Switch, opts *Options) (*Driver, error) {
	if sw == nil {
		return nil, errSwitchRequired
	}

	if opts == nil || opts.Input == nil {
		return nil, errInputRequired
	}

	d := &Driver{
		sw:     sw,
		input:  bufio.NewReader(opts.Input),
		prompt: opts.Prompt,
		onQuit: opts.OnQuit,
	}

	if d.prompt == nil {
		d.prompt = io.Discard
	}

	if d.onQuit == nil {
		d.onQuit = func() {}
	}

	return d, nil
}

// Run reads commands until 'q', end of input, or ctx cancellation.
// End of input counts as 'q'.
func (d *Driver) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "interaction")

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	tokens := d.read(readCtx)

	for {
		_, _ = fmt.Fprint(d.prompt, Prompt)

		var next token

		select {
		case <-ctx.Done():
			return nil
		case next = <-tokens:
		}

		if next.err != nil {
			if errors.Is(next.err, io.EOF) {
				logger.Debug(ctx, "Input closed")
				d.onQuit()

				return nil
			}

			return fmt.Errorf("read command: %w", next.err)
		}

		quit, err := d.handle(ctx, next.command)
		if err != nil {
			return err
		}

		if quit {
			d.onQuit()

			return nil
		}
	}
}

// handle executes one command and reports whether the driver should stop.
func (d *Driver) handle(ctx context.Context, command rune) (bool, error) {
	switch command {
	case CommandToggle:
		logger.Info(ctx, "Toggling switch...")

		if err := d.sw.Toggle(ctx); err != nil {
			return false, fmt.Errorf("toggle switch: %w", err)
		}
	case CommandQuit:
		return true, nil
	default:
		logger.Info(ctx, "Invalid input")
	}

	return false, nil
}

// read forwards non-space runes until an error or ctx cancellation.
// A read blocked on the input is not interrupted; its goroutine ends with the input.
func (d *Driver) read(ctx context.Context) <-chan token {
	tokens := make(chan token)

	go func() {
		for {
			command, _, err := d.input.ReadRune()
			if err == nil && unicode.IsSpace(command) {
				continue
			}

			select {
			case tokens <- token{command: command, err: err}:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}
		}
	}()

	return tokens
}
