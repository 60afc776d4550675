package timer

import "time"

// SessionInfo is a read-only snapshot of the ringing alarm session.
type SessionInfo struct {
	// ID identifies the session for logs and push notifications.
	ID string
	// Payload is the trigger payload that started the session.
	Payload Payload
	// StartedAt is when the side effects were started.
	StartedAt time.Time
	// Sound reports whether audio playback was started.
	Sound bool
	// Vibration reports whether the vibration waveform was started.
	Vibration bool
	// Alert reports whether the visible alert was shown.
	Alert bool
}

// Clone returns a copy of the snapshot, nil-safe.
func (s *SessionInfo) Clone() *SessionInfo {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// Status combines both independent slots of the daemon.
type Status struct {
	// Pending is the scheduled trigger, nil when nothing is scheduled.
	Pending *PendingTrigger
	// Session is the ringing alarm, nil when idle.
	Session *SessionInfo
	// Exact reports whether the OS wake-up could be armed for exact delivery.
	Exact bool
}
