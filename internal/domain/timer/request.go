package timer

import (
	"errors"
	"time"
)

var (
	// ErrFireAtRequired is returned when a start request has no fire time.
	ErrFireAtRequired = errors.New("fire time is required")
	// ErrOpenSettingsFailed is returned when a system settings screen cannot be launched.
	ErrOpenSettingsFailed = errors.New("open settings failed")
)

// StartRequest is the transport-independent form of a start command.
type StartRequest struct {
	// FireAtEpochMillis is the absolute fire time; nil is an invalid request.
	FireAtEpochMillis *int64
	// Payload is what the alarm shows and plays.
	Payload Payload
}

// Validate rejects requests without a fire time. Past fire times are accepted.
func (r *StartRequest) Validate() error {
	if r == nil || r.FireAtEpochMillis == nil {
		return ErrFireAtRequired
	}

	return nil
}

// Trigger converts a validated request into a pending trigger.
func (r *StartRequest) Trigger(now time.Time) (*PendingTrigger, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	return NewPendingTrigger(*r.FireAtEpochMillis, r.Payload, now), nil
}
