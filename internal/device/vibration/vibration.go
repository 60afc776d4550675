package vibration

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
)

// durationPlaceholder is replaced by the pulse length in milliseconds.
const durationPlaceholder = "{duration_ms}"

var (
	// ErrUnsupported indicates there is no vibration motor.
	ErrUnsupported = errors.New("vibration unsupported")
	// errEmptyWaveform is returned for a waveform without segments.
	errEmptyWaveform = errors.New("waveform is empty")
)

// Motor turns the vibration motor on for a duration without blocking.
type Motor interface {
	Pulse(ctx context.Context, d time.Duration) error
}

// CommandMotor starts an external command for every pulse.
type CommandMotor struct {
	// command is the executable; empty means no motor.
	command string
	// args may contain the duration placeholder.
	args []string
}

// NewCommandMotor creates a motor from configuration.
func NewCommandMotor(cfg config.VibrationConfig) *CommandMotor {
	return &CommandMotor{
		command: cfg.Command,
		args:    cfg.Args,
	}
}

// Available reports whether a motor command is configured.
func (m *CommandMotor) Available() bool {
	return m.command != ""
}

// Pulse starts the motor command; the OS takes over the rest.
func (m *CommandMotor) Pulse(ctx context.Context, d time.Duration) error {
	if m.command == "" {
		return ErrUnsupported
	}

	ms := strconv.FormatInt(d.Milliseconds(), 10)

	args := make([]string, len(m.args))
	for i, arg := range m.args {
		args[i] = strings.ReplaceAll(arg, durationPlaceholder, ms)
	}

	//nolint:gosec // The motor command comes from the operator's configuration.
	cmd := exec.CommandContext(ctx, m.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start motor command: %w", err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// Vibrator drives a motor through repeating waveforms.
type Vibrator struct {
	// motor receives the "on" segments.
	motor Motor
}

// New creates a vibrator over the provided motor.
func New(motor Motor) *Vibrator {
	return &Vibrator{motor: motor}
}

var _ runner.Vibrator = (*Vibrator)(nil)

// Vibrate starts repeating the waveform. Even segments are off, odd segments are on.
func (v *Vibrator) Vibrate(ctx context.Context, waveform []time.Duration) (runner.Handle, error) {
	if v.motor == nil {
		return nil, ErrUnsupported
	}

	if m, ok := v.motor.(interface{ Available() bool }); ok && !m.Available() {
		return nil, ErrUnsupported
	}

	if len(waveform) == 0 {
		return nil, errEmptyWaveform
	}

	loopCtx, cancel := context.WithCancel(logger.WithName(ctx, "vibration"))

	w := &Waveform{
		cancel:   cancel,
		done:     make(chan struct{}),
		segments: append([]time.Duration(nil), waveform...),
	}

	go w.loop(loopCtx, v.motor)

	return w, nil
}

// Waveform is a running vibration loop.
type Waveform struct {
	// cancel stops the loop.
	cancel context.CancelFunc
	// done is closed when the loop exits.
	done chan struct{}
	// segments alternate off and on durations.
	segments []time.Duration
	// mu protects pulses.
	mu sync.Mutex
	// pulses counts started "on" segments.
	pulses int
}

// pulseCount returns how many "on" segments have started.
func (w *Waveform) pulseCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.pulses
}

// Release stops the loop and waits for it to exit.
func (w *Waveform) Release(ctx context.Context) error {
	w.cancel()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for vibration: %w", ctx.Err())
	}
}

// loop walks the segments until cancelled or the motor turns out to be unsupported.
func (w *Waveform) loop(ctx context.Context, motor Motor) {
	defer close(w.done)

	warned := false

	for {
		for i, d := range w.segments {
			if i%2 == 1 && d > 0 {
				err := motor.Pulse(ctx, d)

				switch {
				case errors.Is(err, ErrUnsupported):
					logger.Warn(ctx, "Vibration motor unsupported, stopping waveform")

					return
				case err != nil && !warned:
					logger.WarnKV(ctx, "Vibration pulse failed", "error", err)

					warned = true
				case err == nil:
					w.mu.Lock()
					w.pulses++
					w.mu.Unlock()
				}
			}

			if !wait(ctx, d) {
				return
			}
		}
	}
}

// wait sleeps for d and reports false when ctx is cancelled first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
