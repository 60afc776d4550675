package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/repository/trigger"
)

// maxSleepCap bounds every sleep so wall-clock steps and suspend are re-evaluated.
const maxSleepCap = 60 * time.Second

// errNilTrigger is returned when Schedule is called without a trigger.
var errNilTrigger = errors.New("trigger is not set")

// Waker programs an OS-level wake-up for exact delivery.
type Waker interface {
	Arm(ctx context.Context, at time.Time) error
	Disarm(ctx context.Context) error
}

// FireFunc receives the payload of a fired trigger.
type FireFunc func(ctx context.Context, payload timer.Payload)

// Scheduler holds the single pending trigger and fires it when due.
type Scheduler struct {
	// store is the system of record for the pending slot.
	store trigger.Store
	// waker arms the OS wake-up; nil means inexact delivery only.
	waker Waker
	// fire is invoked outside the lock, once per claimed trigger.
	fire FireFunc
	// rearm wakes the timer loop after the slot changes.
	rearm chan struct{}
	// mu protects pending and exact.
	mu sync.Mutex
	// pending is the in-memory mirror of the stored slot.
	pending *timer.PendingTrigger
	// exact tracks whether the last wake-up request succeeded.
	exact bool
}

// New creates a scheduler. Call Restore to load a persisted trigger and Run to start firing.
func New(store trigger.Store, waker Waker, fire FireFunc) *Scheduler {
	return &Scheduler{
		store: store,
		waker: waker,
		fire:  fire,
		rearm: make(chan struct{}, 1),
		exact: waker != nil,
	}
}

// Restore loads the persisted trigger, if any, and re-arms it.
// A trigger whose time passed while the daemon was down fires on the next loop pass.
func (s *Scheduler) Restore(ctx context.Context) error {
	ctx = logger.WithName(ctx, "scheduler")

	stored, err := s.store.Load(ctx)

	switch {
	case errors.Is(err, trigger.ErrNotFound):
		logger.Debug(ctx, "No pending trigger to restore")

		return nil
	case err != nil:
		return fmt.Errorf("load trigger: %w", err)
	}

	s.mu.Lock()
	s.pending = stored
	s.armLocked(ctx, stored.FireAt)
	s.mu.Unlock()

	logger.InfoKV(ctx, "Pending trigger restored", "fire_at", stored.FireAt, "title", stored.Payload.Title)

	s.kick()

	return nil
}

// Schedule persists the trigger and replaces the pending slot.
// On a store failure the previous slot is kept.
func (s *Scheduler) Schedule(ctx context.Context, next *timer.PendingTrigger) error {
	if next == nil {
		return errNilTrigger
	}

	ctx = logger.WithName(ctx, "scheduler")

	s.mu.Lock()

	if err := s.store.Save(ctx, next); err != nil {
		s.mu.Unlock()

		return fmt.Errorf("persist trigger: %w", err)
	}

	replaced := s.pending != nil
	s.pending = next.Clone()
	s.armLocked(ctx, next.FireAt)
	s.mu.Unlock()

	logger.InfoKV(ctx, "Trigger scheduled",
		"fire_at", next.FireAt,
		"title", next.Payload.Title,
		"replaced", replaced)

	s.kick()

	return nil
}

// Cancel disarms the pending trigger. Cancelling an empty slot is a no-op.
func (s *Scheduler) Cancel(ctx context.Context) error {
	ctx = logger.WithName(ctx, "scheduler")

	s.mu.Lock()

	if s.pending == nil {
		s.mu.Unlock()
		logger.Debug(ctx, "Cancel requested with no pending trigger")

		return nil
	}

	if err := s.store.Clear(ctx); err != nil {
		s.mu.Unlock()

		return fmt.Errorf("clear trigger: %w", err)
	}

	s.pending = nil
	s.disarmLocked(ctx)
	s.mu.Unlock()

	logger.Info(ctx, "Pending trigger cancelled")

	s.kick()

	return nil
}

// Pending returns a copy of the pending trigger, nil when the slot is empty.
func (s *Scheduler) Pending() *timer.PendingTrigger {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending.Clone()
}

// Exact reports whether the OS wake-up is available for exact delivery.
func (s *Scheduler) Exact() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exact
}

// Run is the timer loop. It blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "scheduler")

	var clock *time.Timer

	defer func() {
		if clock != nil {
			clock.Stop()
		}
	}()

	for {
		var wakeup <-chan time.Time

		if clock != nil {
			clock.Stop()
		}

		wait, ok := s.nextWait()

		switch {
		case ok && wait == 0:
			s.fireDue(ctx)

			continue
		case ok:
			clock = time.NewTimer(wait)
			wakeup = clock.C
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.rearm:
		case <-wakeup:
			s.fireDue(ctx)
		}
	}
}

// nextWait returns how long to sleep before re-checking the slot.
func (s *Scheduler) nextWait() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return 0, false
	}

	wait := min(max(time.Until(s.pending.FireAt), 0), maxSleepCap)

	return wait, true
}

// fireDue claims the slot if its time has come and delivers the payload.
func (s *Scheduler) fireDue(ctx context.Context) {
	s.mu.Lock()

	// Capped sleeps wake early; the slot may also have changed meanwhile.
	if s.pending == nil || !s.pending.Due(time.Now()) {
		s.mu.Unlock()

		return
	}

	claimed := s.pending
	s.pending = nil

	if err := s.store.Clear(ctx); err != nil {
		logger.ErrorKV(ctx, "Failed to clear fired trigger", "error", err)
	}

	s.disarmLocked(ctx)
	s.mu.Unlock()

	logger.InfoKV(ctx, "Trigger fired",
		"fire_at", claimed.FireAt,
		"late_by", time.Since(claimed.FireAt).Round(time.Millisecond),
		"title", claimed.Payload.Title)

	if s.fire != nil {
		s.fire(ctx, claimed.Payload)
	}
}

// armLocked requests an OS wake-up; failures degrade to inexact delivery.
func (s *Scheduler) armLocked(ctx context.Context, at time.Time) {
	if s.waker == nil {
		s.exact = false

		return
	}

	if err := s.waker.Arm(ctx, at); err != nil {
		if s.exact {
			logger.WarnKV(ctx, "Wake alarm unavailable, delivery is inexact", "error", err)
		}

		s.exact = false

		return
	}

	s.exact = true
}

// disarmLocked clears the OS wake-up.
func (s *Scheduler) disarmLocked(ctx context.Context) {
	if s.waker == nil {
		return
	}

	if err := s.waker.Disarm(ctx); err != nil {
		logger.DebugKV(ctx, "Failed to disarm wake alarm", "error", err)
	}
}

// kick wakes the timer loop without blocking.
func (s *Scheduler) kick() {
	select {
	case s.rearm <- struct{}{}:
	default:
	}
}
