package runner

import (
	"context"
	"time"
)

// Alert is the content of the visible alert.
type Alert struct {
	// Title is the primary line.
	Title string
	// Text is the secondary line.
	Text string
}

// Handle releases one running side effect.
type Handle interface {
	Release(ctx context.Context) error
}

// playing is implemented by handles whose effect can end on its own.
type playing interface {
	Playing() bool
}

// Notifier shows a persistent, non-expiring, high-priority alert.
type Notifier interface {
	Show(ctx context.Context, alert Alert) (Handle, error)
}

// Player loops a sound until released. An empty asset selects the default alert sound.
type Player interface {
	Play(ctx context.Context, asset string) (Handle, error)
}

// Vibrator repeats an off/on waveform until released.
type Vibrator interface {
	Vibrate(ctx context.Context, waveform []time.Duration) (Handle, error)
}

// Waveform is the alarm vibration pattern: off, on, off, on, repeating from the start.
var Waveform = []time.Duration{
	0,
	600 * time.Millisecond,
	250 * time.Millisecond,
	600 * time.Millisecond,
}
