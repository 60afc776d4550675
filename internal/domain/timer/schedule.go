package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// errInvalidCron is returned for unparsable cron expressions.
var errInvalidCron = errors.New("invalid cron expression")

// NextCronTick resolves the next occurrence of a cron expression strictly after from.
// The result is used as a one-shot fire time; the trigger does not recur.
func NextCronTick(expr string, from time.Time) (time.Time, error) {
	if !gronx.IsValid(expr) {
		return time.Time{}, fmt.Errorf("%q: %w", expr, errInvalidCron)
	}

	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("next tick of %q: %w", expr, err)
	}

	return next, nil
}

// EpochMillis returns a pointer to the epoch-milliseconds form of t, as start requests expect.
func EpochMillis(t time.Time) *int64 {
	ms := t.UnixMilli()

	return &ms
}
