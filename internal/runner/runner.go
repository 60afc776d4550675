package runner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
)

// EventType names a session lifecycle change.
type EventType string

// Session lifecycle events.
const (
	EventFired   EventType = "fired"
	EventStopped EventType = "stopped"
)

// Event is emitted to observers after a session starts or stops.
type Event struct {
	// Type is the lifecycle change.
	Type EventType
	// Session is the affected session snapshot.
	Session *timer.SessionInfo
}

// Observer receives session events. It must not block.
type Observer func(ctx context.Context, event Event)

// Session is the live alarm with the handles of its side effects.
type Session struct {
	// info is the public snapshot.
	info timer.SessionInfo
	// sound is the looping player, nil when not started.
	sound Handle
	// vibration is the waveform loop, nil when not started.
	vibration Handle
	// alert is the visible alert, nil when not shown.
	alert Handle
	// cancel ends the session context that devices run under.
	cancel context.CancelFunc
}

// Runner owns the single live alarm session.
type Runner struct {
	// notifier shows the visible alert; nil disables it.
	notifier Notifier
	// player plays the sound; nil disables it.
	player Player
	// vibrator runs the waveform; nil disables it.
	vibrator Vibrator
	// mu serializes Run and Stop and protects session.
	mu sync.Mutex
	// session is the live session, nil when idle.
	session *Session
	// observersMu protects observers.
	observersMu sync.RWMutex
	// observers receive lifecycle events.
	observers []Observer
}

// New creates a runner over the provided devices. Any device may be nil.
func New(notifier Notifier, player Player, vibrator Vibrator) *Runner {
	return &Runner{
		notifier: notifier,
		player:   player,
		vibrator: vibrator,
	}
}

// Subscribe registers an observer for session events.
func (r *Runner) Subscribe(observer Observer) {
	r.observersMu.Lock()
	defer r.observersMu.Unlock()

	r.observers = append(r.observers, observer)
}

// Run tears down any live session and starts a new one for the payload.
func (r *Runner) Run(ctx context.Context, payload timer.Payload) *timer.SessionInfo {
	payload = payload.Normalize()

	r.mu.Lock()

	previous := r.releaseLocked(ctx)
	session := r.startLocked(ctx, payload)
	r.session = session
	info := session.info.Clone()

	r.mu.Unlock()

	if previous != nil {
		r.emit(ctx, Event{Type: EventStopped, Session: previous})
	}

	r.emit(ctx, Event{Type: EventFired, Session: info})

	return info
}

// Stop releases the live session. It reports whether a session was stopped.
func (r *Runner) Stop(ctx context.Context) bool {
	r.mu.Lock()
	stopped := r.releaseLocked(ctx)
	r.mu.Unlock()

	if stopped == nil {
		logger.Debug(ctx, "Stop requested with no active alarm")

		return false
	}

	r.emit(ctx, Event{Type: EventStopped, Session: stopped})

	return true
}

// Active returns the live session snapshot, nil when idle.
// Sound turns false once the player has given up.
func (r *Runner) Active() *timer.SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil
	}

	info := r.session.info.Clone()

	if sound, ok := r.session.sound.(playing); ok && !sound.Playing() {
		info.Sound = false
	}

	return info
}

// startLocked starts every side effect independently.
func (r *Runner) startLocked(ctx context.Context, payload timer.Payload) *Session {
	id := uuid.NewString()

	// Devices outlive the request that fired them.
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sessionCtx = logger.WithFields(logger.WithName(sessionCtx, "runner"), "session_id", id)

	session := &Session{
		info: timer.SessionInfo{
			ID:        id,
			Payload:   payload,
			StartedAt: time.Now(),
		},
		cancel: cancel,
	}

	// Step 1: persistent alert.
	if r.notifier != nil {
		handle, err := r.notifier.Show(sessionCtx, Alert{Title: payload.Title, Text: timer.AlertText})
		if err != nil {
			logger.WarnKV(sessionCtx, "Failed to show alert", "error", err)
		} else {
			session.alert = handle
			session.info.Alert = true
		}
	}

	// Step 2: looping sound unless silenced.
	if r.player != nil && !payload.IsSilent() {
		handle, err := r.player.Play(sessionCtx, payload.AssetPath())
		if err != nil {
			logger.WarnKV(sessionCtx, "Failed to start sound", "error", err, "sound", payload.SoundRef)
		} else {
			session.sound = handle
			session.info.Sound = true
		}
	}

	// Step 3: repeating vibration.
	if r.vibrator != nil && payload.Vibrate {
		handle, err := r.vibrator.Vibrate(sessionCtx, Waveform)
		if err != nil {
			logger.WarnKV(sessionCtx, "Failed to start vibration", "error", err)
		} else {
			session.vibration = handle
			session.info.Vibration = true
		}
	}

	logger.InfoKV(sessionCtx, "Alarm started",
		"title", payload.Title,
		"sound", session.info.Sound,
		"vibration", session.info.Vibration,
		"alert", session.info.Alert)

	return session
}

// releaseLocked releases the live session in order: sound, vibration, alert.
// It returns the released snapshot, nil when idle.
func (r *Runner) releaseLocked(ctx context.Context) *timer.SessionInfo {
	session := r.session
	if session == nil {
		return nil
	}

	r.session = nil

	ctx = logger.WithFields(logger.WithName(ctx, "runner"), "session_id", session.info.ID)

	release(ctx, "sound", session.sound)
	release(ctx, "vibration", session.vibration)
	release(ctx, "alert", session.alert)
	session.cancel()

	logger.Info(ctx, "Alarm stopped")

	return session.info.Clone()
}

// release frees one handle and logs the outcome.
func release(ctx context.Context, effect string, handle Handle) {
	if handle == nil {
		return
	}

	if err := handle.Release(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to release effect", "effect", effect, "error", err)

		return
	}

	logger.DebugKV(ctx, "Effect released", "effect", effect)
}

// emit notifies observers outside the runner lock.
func (r *Runner) emit(ctx context.Context, event Event) {
	r.observersMu.RLock()
	observers := append([]Observer(nil), r.observers...)
	r.observersMu.RUnlock()

	for _, observer := range observers {
		observer(ctx, event)
	}
}
