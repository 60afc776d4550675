package timer

import (
	"strings"
	"time"
)

const (
	// DefaultTitle is used when a start request carries no title.
	DefaultTitle = "Pomodoro"
	// DefaultSound selects the platform default alert sound.
	DefaultSound = "default"
	// AlertText is the fixed secondary text of the visible alert.
	AlertText = "Time's up"

	// assetPrefix marks a sound reference that names a bundled asset.
	assetPrefix = "assets/"
	// silenceMarker marks a sound reference that disables audio.
	silenceMarker = "silence"
)

// Payload is the data a trigger carries to the alarm it causes.
type Payload struct {
	// Title is shown on the visible alert.
	Title string `json:"title"`
	// Vibrate enables the repeating vibration waveform.
	Vibrate bool `json:"vibrate"`
	// SoundRef is "default", a bundled asset path ("assets/bell.mp3") or a silence marker.
	SoundRef string `json:"sound"`
}

// Normalize returns a copy with defaults applied to empty fields.
func (p Payload) Normalize() Payload {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle
	}

	if strings.TrimSpace(p.SoundRef) == "" {
		p.SoundRef = DefaultSound
	}

	return p
}

// IsSilent reports whether the sound reference disables audio playback.
func (p Payload) IsSilent() bool {
	ref := strings.ToLower(strings.TrimSpace(p.SoundRef))

	return strings.Contains(ref, silenceMarker) || ref == "silent" || ref == "none"
}

// AssetPath returns the bundled asset named by the sound reference,
// or an empty string when the default alert sound should be used.
func (p Payload) AssetPath() string {
	ref := strings.TrimSpace(p.SoundRef)
	if !strings.HasPrefix(ref, assetPrefix) {
		return ""
	}

	return ref
}

// PendingTrigger is the one scheduled future point in time at which an alarm fires.
type PendingTrigger struct {
	// FireAt is the absolute wall-clock time of the trigger, millisecond precision.
	FireAt time.Time
	// Payload is delivered to the action runner when the trigger fires.
	Payload Payload
	// ScheduledAt is when the trigger was registered.
	ScheduledAt time.Time
}

// NewPendingTrigger builds a trigger from an epoch-milliseconds fire time.
func NewPendingTrigger(fireAtEpochMillis int64, payload Payload, now time.Time) *PendingTrigger {
	return &PendingTrigger{
		FireAt:      time.UnixMilli(fireAtEpochMillis),
		Payload:     payload.Normalize(),
		ScheduledAt: now,
	}
}

// FireAtEpochMillis returns the fire time as epoch milliseconds.
func (t *PendingTrigger) FireAtEpochMillis() int64 {
	return t.FireAt.UnixMilli()
}

// Due reports whether the trigger should fire at the given instant.
func (t *PendingTrigger) Due(now time.Time) bool {
	return !now.Before(t.FireAt)
}

// Clone returns a copy of the trigger, nil-safe.
func (t *PendingTrigger) Clone() *PendingTrigger {
	if t == nil {
		return nil
	}

	cloned := *t

	return &cloned
}
