package server

import (
	"context"
	"fmt"

	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
)

// availability reports whether the notification server is reachable.
type availability func(ctx context.Context) bool

// launcher starts a detached command.
type launcher func(ctx context.Context, command []string) error

// platform answers capability queries and opens system settings screens.
type platform struct {
	// exactSettings opens the exact alarm settings screen; empty means there is none.
	exactSettings []string
	// notificationSettings opens the notification settings screen.
	notificationSettings []string
	// notifications reports whether visible alerts can be shown.
	notifications availability
	// launch starts settings commands.
	launch launcher
}

// OpenExactAlarmSettings launches the exact alarm settings command.
// It reports false without error when the system has no such screen.
func (p *platform) OpenExactAlarmSettings(ctx context.Context) (bool, error) {
	if len(p.exactSettings) == 0 {
		logger.Debug(ctx, "No exact alarm settings screen on this system")

		return false, nil
	}

	if err := p.open(ctx, p.exactSettings); err != nil {
		return false, err
	}

	return true, nil
}

// OpenNotificationSettings launches the notification settings command.
func (p *platform) OpenNotificationSettings(ctx context.Context) (bool, error) {
	if err := p.open(ctx, p.notificationSettings); err != nil {
		return false, err
	}

	return true, nil
}

// NotificationsEnabled reports whether the notification server can show alerts.
func (p *platform) NotificationsEnabled(ctx context.Context) bool {
	if p.notifications == nil {
		return false
	}

	return p.notifications(ctx)
}

func (p *platform) open(ctx context.Context, command []string) error {
	if err := p.launch(ctx, command); err != nil {
		logger.WarnKV(ctx, "Failed to open settings", "command", command, "error", err)

		return fmt.Errorf("%w: %w", domain.ErrOpenSettingsFailed, err)
	}

	logger.InfoKV(ctx, "Settings opened", "command", command)

	return nil
}
