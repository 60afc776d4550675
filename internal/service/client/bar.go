package client

import (
	"context"
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// pollInterval is how often a waiting start refreshes the countdown and polls the daemon.
const pollInterval = time.Second

// countdownBar renders the time left until a trigger fires.
type countdownBar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	// start is where the bar begins; the trigger's scheduling time.
	start time.Time
	// fireAt is where the bar ends.
	fireAt time.Time
}

// newCountdownBar draws a bar spanning from the trigger's scheduling time to its fire time.
func newCountdownBar(ctx context.Context, trigger *wire.PendingTrigger, out io.Writer) *countdownBar {
	start := time.UnixMilli(trigger.ScheduledAt)
	fireAt := trigger.FireTime()
	total := max(int64(fireAt.Sub(start).Seconds()), 1)

	progress := mpb.NewWithContext(ctx,
		mpb.WithOutput(out),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(pollInterval/2),
	)

	name := trigger.Title

	bar := progress.New(total,
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.OnComplete(
				decor.Any(func(decor.Statistics) string {
					return remaining(fireAt, time.Now()).String()
				}, decor.WC{W: 8}),
				domain.AlertText,
			),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
		),
	)

	b := &countdownBar{
		progress: progress,
		bar:      bar,
		start:    start,
		fireAt:   fireAt,
	}
	b.update(time.Now())

	return b
}

// update moves the bar to the elapsed share of the countdown.
func (b *countdownBar) update(now time.Time) {
	elapsed := int64(now.Sub(b.start).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	total := max(int64(b.fireAt.Sub(b.start).Seconds()), 1)
	b.bar.SetCurrent(min(elapsed, total-1))
}

// complete fills the bar and waits for the final render.
func (b *countdownBar) complete() {
	b.bar.SetTotal(-1, true)
	b.progress.Wait()
}

// abort removes the bar and waits for the final render.
func (b *countdownBar) abort() {
	b.bar.Abort(true)
	b.progress.Wait()
}

// remaining is the countdown text, rounded to whole seconds.
func remaining(fireAt, now time.Time) time.Duration {
	return max(fireAt.Sub(now), 0).Round(time.Second)
}
