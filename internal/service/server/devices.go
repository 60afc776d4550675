package server

import (
	"context"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/device/notify"
	"github.com/oshokin/pomodoro-alarm/internal/device/sound"
	"github.com/oshokin/pomodoro-alarm/internal/device/vibration"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
	"github.com/oshokin/pomodoro-alarm/internal/service/wake"
)

// devices holds the concrete side-effect drivers of an alarm session.
type devices struct {
	// notifier shows the visible alert.
	notifier runner.Notifier
	// dbus is set when alerts go through the session bus.
	dbus *notify.DBusNotifier
	// player loops the alarm sound.
	player runner.Player
	// vibrator runs the waveform; nil when no motor is configured.
	vibrator runner.Vibrator
}

// newDevices builds the drivers. Missing hardware degrades to a nil driver or a log-only alert.
func newDevices(ctx context.Context, settings *config.Config) *devices {
	ctx = logger.WithName(ctx, "devices")
	d := new(devices)

	player := sound.New(settings.Sound)
	if killed, err := player.ReapOrphan(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to reap orphaned sound player", "error", err)
	} else if killed {
		logger.Info(ctx, "Orphaned sound player from a previous run stopped")
	}

	d.player = player

	motor := vibration.NewCommandMotor(settings.Vibration)
	if motor.Available() {
		d.vibrator = vibration.New(motor)
	} else {
		logger.Debug(ctx, "No vibration motor configured")
	}

	d.notifier = notify.LogNotifier{}

	if settings.Notification.Backend == config.NotifyDBus {
		n, err := notify.NewDBusNotifier(ctx, settings.Notification.AppName, settings.Notification.OpenCommand)
		if err != nil {
			logger.WarnKV(ctx, "Desktop notifications unavailable, alerts go to the log", "error", err)
		} else {
			d.dbus = n
			d.notifier = n
		}
	}

	return d
}

// newRunner creates the action runner over the drivers.
func (d *devices) newRunner() *runner.Runner {
	return runner.New(d.notifier, d.player, d.vibrator)
}

// notificationsAvailable reports whether desktop alerts can be shown.
func (d *devices) notificationsAvailable(ctx context.Context) bool {
	if d.dbus == nil {
		return false
	}

	return d.dbus.Available(ctx)
}

// launch starts a settings command.
func (d *devices) launch(ctx context.Context, command []string) error {
	return notify.Launch(ctx, command)
}

// close releases the session bus connection.
func (d *devices) close(ctx context.Context) {
	if d.dbus == nil {
		return
	}

	if err := d.dbus.Close(); err != nil {
		logger.WarnKV(ctx, "Failed to close session bus", "error", err)
	}
}

// newWaker returns the RTC wake alarm, or nil when exact delivery is disabled or impossible.
func newWaker(ctx context.Context, cfg config.AlarmConfig) *wake.RTCAlarm {
	ctx = logger.WithName(ctx, "wake")

	if cfg.DisableWake {
		logger.Info(ctx, "RTC wake-up disabled, delivery is inexact")

		return nil
	}

	alarm := wake.NewRTCAlarm(cfg.RTCDevice)
	if !alarm.Available() {
		logger.WarnKV(ctx, "RTC wake-up unavailable, delivery is inexact", "device", cfg.RTCDevice)

		return nil
	}

	return alarm
}
