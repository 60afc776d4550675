package notify

import (
	"context"

	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
)

// LogNotifier writes alerts to the log instead of the desktop.
type LogNotifier struct{}

var _ runner.Notifier = LogNotifier{}

// Show logs the alert.
func (LogNotifier) Show(ctx context.Context, alert runner.Alert) (runner.Handle, error) {
	logger.WarnKV(ctx, "ALARM", "title", alert.Title, "text", alert.Text)

	return loggedAlert{title: alert.Title}, nil
}

// loggedAlert is the handle of a logged alert.
type loggedAlert struct {
	// title identifies the alert in the dismissal log.
	title string
}

// Release logs the dismissal.
func (a loggedAlert) Release(ctx context.Context) error {
	logger.InfoKV(ctx, "Alert dismissed", "title", a.title)

	return nil
}
