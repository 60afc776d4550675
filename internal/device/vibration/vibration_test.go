package vibration

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
)

// fakeMotor records pulse start times relative to the first pulse.
type fakeMotor struct {
	// mu protects the fields below.
	mu sync.Mutex
	// starts are the pulse start times.
	starts []time.Time
	// lengths are the pulse durations.
	lengths []time.Duration
	// err is returned by Pulse when set.
	err error
}

func (m *fakeMotor) Pulse(_ context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.starts = append(m.starts, time.Now())
	m.lengths = append(m.lengths, d)

	return nil
}

func (m *fakeMotor) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.starts)
}

// TestVibrator_Waveform verifies the alarm pattern timing and repetition.
func TestVibrator_Waveform(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		motor := new(fakeMotor)
		start := time.Now()

		handle, err := New(motor).Vibrate(context.Background(), runner.Waveform)
		require.NoError(t, err)

		// One cycle is 0 + 600 + 250 + 600 = 1450ms; run three cycles.
		time.Sleep(3*1450*time.Millisecond - time.Millisecond)
		synctest.Wait()

		require.Equal(t, 6, motor.count())

		motor.mu.Lock()
		require.Equal(t, start, motor.starts[0])
		require.Equal(t, start.Add(850*time.Millisecond), motor.starts[1])
		require.Equal(t, start.Add(1450*time.Millisecond), motor.starts[2])
		require.Equal(t, []time.Duration{600 * time.Millisecond, 600 * time.Millisecond}, motor.lengths[:2])
		motor.mu.Unlock()

		require.Equal(t, 6, handle.(*Waveform).pulseCount()) //nolint:forcetypeassert // Vibrate returns *Waveform.

		require.NoError(t, handle.Release(context.Background()))

		time.Sleep(time.Minute)
		synctest.Wait()
		require.Equal(t, 6, motor.count(), "no pulses after release")

		require.NoError(t, handle.Release(context.Background()))
	})
}

// TestVibrator_Unsupported verifies missing motors are reported and unsupported pulses end the loop.
func TestVibrator_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Vibrate(context.Background(), runner.Waveform)
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = New(NewCommandMotor(config.VibrationConfig{})).Vibrate(context.Background(), runner.Waveform)
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = New(new(fakeMotor)).Vibrate(context.Background(), nil)
	require.ErrorIs(t, err, errEmptyWaveform)

	synctest.Test(t, func(t *testing.T) {
		handle, err := New(&fakeMotor{err: ErrUnsupported}).Vibrate(context.Background(), runner.Waveform)
		require.NoError(t, err)

		synctest.Wait()

		select {
		case <-handle.(*Waveform).done: //nolint:forcetypeassert // Vibrate returns *Waveform.
		default:
			t.Fatal("loop still running with an unsupported motor")
		}
	})
}

// TestCommandMotor_Pulse verifies the duration placeholder reaches the command.
func TestCommandMotor_Pulse(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, NewCommandMotor(config.VibrationConfig{}).Pulse(context.Background(), time.Second), ErrUnsupported)

	motor := NewCommandMotor(config.VibrationConfig{Command: "definitely-not-a-motor", Args: []string{"--ms={duration_ms}"}})
	require.True(t, motor.Available())
	require.Error(t, motor.Pulse(context.Background(), 600*time.Millisecond))
}
