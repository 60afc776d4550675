package server

import (
	"context"
	"fmt"
	"time"

	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
)

// slot is the part of the scheduler the control surface drives.
type slot interface {
	Schedule(ctx context.Context, next *domain.PendingTrigger) error
	Cancel(ctx context.Context) error
	Pending() *domain.PendingTrigger
	Exact() bool
}

// ringer is the part of the runner the control surface drives.
type ringer interface {
	Stop(ctx context.Context) bool
	Active() *domain.SessionInfo
}

// service implements the control surface shared by the gRPC and JSON-RPC transports.
type service struct {
	// slot holds the single pending trigger.
	slot slot
	// ringer owns the currently ringing session.
	ringer ringer
	// platform answers capability queries and opens settings screens.
	platform *platform
	// now returns the current time.
	now func() time.Time
}

// newService wires the scheduler, runner and platform into a control surface.
func newService(slot slot, ringer ringer, platform *platform) *service {
	return &service{
		slot:     slot,
		ringer:   ringer,
		platform: platform,
		now:      time.Now,
	}
}

// Start validates the request and replaces the pending trigger.
func (s *service) Start(ctx context.Context, req *domain.StartRequest) (*domain.PendingTrigger, error) {
	next, err := req.Trigger(s.now())
	if err != nil {
		return nil, err
	}

	if err := s.slot.Schedule(ctx, next); err != nil {
		return nil, fmt.Errorf("schedule trigger: %w", err)
	}

	logger.InfoKV(ctx, "Pomodoro started", "fire_at", next.FireAt, "title", next.Payload.Title)

	return next.Clone(), nil
}

// Cancel disarms the pending trigger. A ringing session is left alone.
func (s *service) Cancel(ctx context.Context) error {
	if err := s.slot.Cancel(ctx); err != nil {
		return fmt.Errorf("cancel trigger: %w", err)
	}

	return nil
}

// Stop ends the ringing session, if any. The pending trigger is left alone.
func (s *service) Stop(ctx context.Context) bool {
	return s.ringer.Stop(ctx)
}

// Status reports the pending trigger, the ringing session and delivery exactness.
func (s *service) Status(context.Context) *domain.Status {
	return &domain.Status{
		Pending: s.slot.Pending(),
		Session: s.ringer.Active(),
		Exact:   s.slot.Exact(),
	}
}

// OpenExactAlarmSettings opens the screen that grants exact alarm capability.
func (s *service) OpenExactAlarmSettings(ctx context.Context) (bool, error) {
	return s.platform.OpenExactAlarmSettings(ctx)
}

// OpenNotificationSettings opens the system notification settings.
func (s *service) OpenNotificationSettings(ctx context.Context) (bool, error) {
	return s.platform.OpenNotificationSettings(ctx)
}

// AreNotificationsEnabled reports whether visible alerts can be shown.
func (s *service) AreNotificationsEnabled(ctx context.Context) bool {
	return s.platform.NotificationsEnabled(ctx)
}

// RequestPostNotifications asks for permission to show alerts.
// Desktop sessions grant it implicitly, so the answer is the current capability.
func (s *service) RequestPostNotifications(ctx context.Context) bool {
	return s.platform.NotificationsEnabled(ctx)
}
