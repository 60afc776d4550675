package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/service/common"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// StartOptions describes a pomodoro to schedule. Exactly one fire time source must be set.
type StartOptions struct {
	// At is an absolute RFC3339 fire time.
	At string
	// In is a fire time relative to now.
	In time.Duration
	// AtMillis is an absolute fire time in epoch milliseconds.
	AtMillis int64
	// Cron fires at the next tick of a cron expression.
	Cron string
	// Given holds the fire time flags passed on the command line, so zero values still count as set.
	Given map[string]bool

	// Title is shown on the alert.
	Title string
	// Vibrate enables the vibration waveform.
	Vibrate bool
	// Sound is "default", "assets/..." or a silence marker.
	Sound string

	// Wait keeps the command running with a countdown until the alarm rings.
	Wait bool
}

// Fire time flag names.
const (
	flagAt       = "at"
	flagIn       = "in"
	flagAtMillis = "at-ms"
	flagCron     = "cron"
)

// FireTimeFlags lists the fire time flag names.
var FireTimeFlags = []string{flagAt, flagIn, flagAtMillis, flagCron}

var (
	// errNoFireTime is returned when no fire time source is given.
	errNoFireTime = errors.New("one of --at, --in, --at-ms or --cron is required")
	// errConflictingFireTime is returned when several fire time sources are given.
	errConflictingFireTime = errors.New("only one of --at, --in, --at-ms or --cron may be used")
)

// Start schedules a pomodoro, replacing any pending one.
func Start(ctx context.Context, opts *Options, start *StartOptions, out io.Writer) error {
	fireAt, err := ResolveFireTime(time.Now(), start)
	if err != nil {
		return err
	}

	return withClient(ctx, opts, "pomodoro-ctl start", func(ctx context.Context, client *common.Client) error {
		scheduled, err := client.StartPomodoro(ctx, &wire.StartPomodoroRequest{
			EndAt:   domain.EpochMillis(fireAt),
			Title:   start.Title,
			Vibrate: start.Vibrate,
			Sound:   start.Sound,
			Actor:   actor(ctx),
		})
		if err != nil {
			return err
		}

		if scheduled == nil {
			return nil
		}

		if _, err = fmt.Fprintf(out, "Pomodoro %q scheduled for %s\n",
			scheduled.Title, scheduled.FireTime().Format(time.RFC3339)); err != nil {
			return err
		}

		if !start.Wait {
			return nil
		}

		return countdown(ctx, client, scheduled, out)
	})
}

// ResolveFireTime turns the flag combination into one absolute fire time.
// Past times are returned as is; the server fires them immediately.
func ResolveFireTime(now time.Time, start *StartOptions) (time.Time, error) {
	var (
		fireAt  time.Time
		sources int
	)

	if start.At != "" || start.Given[flagAt] {
		parsed, err := time.Parse(time.RFC3339, start.At)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse --at: %w", err)
		}

		fireAt = parsed
		sources++
	}

	if start.In != 0 || start.Given[flagIn] {
		fireAt = now.Add(start.In)
		sources++
	}

	if start.AtMillis != 0 || start.Given[flagAtMillis] {
		fireAt = time.UnixMilli(start.AtMillis)
		sources++
	}

	if start.Cron != "" || start.Given[flagCron] {
		next, err := domain.NextCronTick(start.Cron, now)
		if err != nil {
			return time.Time{}, err
		}

		fireAt = next
		sources++
	}

	switch sources {
	case 0:
		return time.Time{}, errNoFireTime
	case 1:
		return fireAt, nil
	default:
		return time.Time{}, errConflictingFireTime
	}
}

// waitOutcome is how a countdown ended.
type waitOutcome int

const (
	// outcomeRang means the scheduled pomodoro fired.
	outcomeRang waitOutcome = iota
	// outcomeCancelled means the pomodoro was cancelled before firing.
	outcomeCancelled
	// outcomeReplaced means another start replaced the pomodoro.
	outcomeReplaced
)

// observe classifies the daemon status relative to the awaited trigger.
// The second result is false while the trigger is still pending.
// An empty slot after the fire time counts as rung even if the alarm was already stopped.
func observe(awaited *wire.PendingTrigger, status *wire.StatusResponse, now time.Time) (waitOutcome, bool) {
	pending := status.Pending

	switch {
	case pending != nil && *pending == *awaited:
		return outcomeRang, false
	case pending != nil:
		return outcomeReplaced, true
	case status.Session != nil, !now.Before(awaited.FireTime()):
		return outcomeRang, true
	default:
		return outcomeCancelled, true
	}
}

// describe returns the terminal message for a countdown outcome.
func (o waitOutcome) describe(title string) string {
	switch o {
	case outcomeCancelled:
		return "Pomodoro cancelled"
	case outcomeReplaced:
		return "Pomodoro replaced by a newer one"
	default:
		return fmt.Sprintf("%s: %s", title, domain.AlertText)
	}
}

// countdown polls the daemon until the trigger fires or leaves the slot.
func countdown(ctx context.Context, client *common.Client, awaited *wire.PendingTrigger, out io.Writer) error {
	bar := newCountdownBar(ctx, awaited, out)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			bar.abort()

			return nil
		case now := <-ticker.C:
			bar.update(now)

			status, err := client.GetStatus(ctx)
			if err != nil {
				logger.WarnKV(ctx, "Status poll failed", "error", err)

				continue
			}

			outcome, done := observe(awaited, status, now)
			if !done {
				continue
			}

			if outcome == outcomeRang {
				bar.complete()
			} else {
				bar.abort()
			}

			_, err = fmt.Fprintln(out, outcome.describe(awaited.Title))

			return err
		}
	}
}
