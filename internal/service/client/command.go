package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/service/common"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// Options configures how pomodoro-ctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string
}

// Settings screens that OpenSettings can open.
const (
	ScreenExactAlarm    = "exact-alarm"
	ScreenNotifications = "notifications"
)

// errUnknownScreen is returned for an unsupported settings screen name.
var errUnknownScreen = errors.New("unknown settings screen")

// Cancel disarms the pending pomodoro.
func Cancel(ctx context.Context, opts *Options, out io.Writer) error {
	return withClient(ctx, opts, "pomodoro-ctl cancel", func(ctx context.Context, client *common.Client) error {
		if err := client.CancelPomodoro(ctx); err != nil {
			return err
		}

		_, err := fmt.Fprintln(out, "Pending pomodoro cancelled")

		return err
	})
}

// Stop silences the ringing alarm. A pending pomodoro stays scheduled.
func Stop(ctx context.Context, opts *Options, out io.Writer) error {
	return withClient(ctx, opts, "pomodoro-ctl stop", func(ctx context.Context, client *common.Client) error {
		stopped, err := client.StopRingtone(ctx)
		if err != nil {
			return err
		}

		message := "No alarm is ringing"
		if stopped {
			message = "Alarm stopped"
		}

		_, err = fmt.Fprintln(out, message)

		return err
	})
}

// Status prints the pending pomodoro, the ringing alarm and the daemon capabilities.
func Status(ctx context.Context, opts *Options, out io.Writer) error {
	return withClient(ctx, opts, "pomodoro-ctl status", func(ctx context.Context, client *common.Client) error {
		status, err := client.GetStatus(ctx)
		if err != nil {
			return err
		}

		notifications, err := client.AreNotificationsEnabled(ctx)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(out, FormatStatus(status, notifications, time.Now()))

		return err
	})
}

// OpenSettings asks the daemon to open a system settings screen.
func OpenSettings(ctx context.Context, opts *Options, screen string, out io.Writer) error {
	return withClient(ctx, opts, "pomodoro-ctl settings", func(ctx context.Context, client *common.Client) error {
		var (
			opened bool
			err    error
		)

		switch screen {
		case ScreenExactAlarm:
			opened, err = client.OpenExactAlarmSettings(ctx)
		case ScreenNotifications:
			opened, err = client.OpenNotificationSettings(ctx)
		default:
			return fmt.Errorf("%q: %w", screen, errUnknownScreen)
		}

		if err != nil {
			return err
		}

		message := "Settings opened"
		if !opened {
			message = "This system has no such settings screen"
		}

		_, err = fmt.Fprintln(out, message)

		return err
	})
}

// withClient loads settings, connects to the server and runs fn with a named logger.
func withClient(
	ctx context.Context,
	opts *Options,
	name string,
	fn func(ctx context.Context, client *common.Client) error,
) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, name)

	cfg, err := loadSettings(opts)
	if err != nil {
		return err
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to pomodoro server", "server_address", serverAddress)

	return fn(ctx, client)
}

// loadSettings reads the config file. A missing file is tolerated when the address is given explicitly.
func loadSettings(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err == nil {
		return cfg, nil
	}

	if opts.ServerAddress != "" && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}

	return nil, err
}

// FormatStatus renders the daemon status for the terminal.
func FormatStatus(status *wire.StatusResponse, notifications bool, now time.Time) string {
	pending := "none"
	if status.Pending != nil {
		fireAt := status.Pending.FireTime()
		pending = fmt.Sprintf("%q at %s (in %s)",
			status.Pending.Title,
			fireAt.Format(time.RFC3339),
			max(fireAt.Sub(now), 0).Round(time.Second))
	}

	ringing := "no"
	if session := status.Session; session != nil {
		ringing = fmt.Sprintf("%q since %s (sound: %t, vibration: %t, alert: %t)",
			session.Title,
			time.UnixMilli(session.StartedAt).Format(time.RFC3339),
			session.Playing,
			session.Vibrating,
			session.Alerting)
	}

	return fmt.Sprintf(
		"Pending:       %s\nRinging:       %s\nExact:         %t\nNotifications: %t\n",
		pending,
		ringing,
		status.Exact,
		notifications,
	)
}

// actor returns the requester for the audit log, or nil when it cannot be detected.
func actor(ctx context.Context) *wire.Actor {
	a, err := common.DetectActor()
	if err != nil {
		logger.DebugKV(ctx, "Failed to detect actor", "error", err)

		return nil
	}

	return a
}
