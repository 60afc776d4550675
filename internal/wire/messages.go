package wire

import (
	"time"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
)

// Empty is the request or response of operations without data.
type Empty = emptypb.Empty

// BoolResponse carries a capability answer or whether a ringing alarm was stopped.
type BoolResponse = wrapperspb.BoolValue

// Actor identifies who issued a command, for audit logs.
type Actor struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
}

// StartPomodoroRequest schedules the single trigger.
type StartPomodoroRequest struct {
	// EndAt is the fire time in epoch milliseconds; required.
	EndAt *int64 `json:"endAt,omitempty"`
	// Title defaults to "Pomodoro".
	Title string `json:"title,omitempty"`
	// Vibrate enables vibration.
	Vibrate bool `json:"vibrate,omitempty"`
	// Sound is "default", "assets/...", or a silence marker.
	Sound string `json:"sound,omitempty"`
	// Actor is the optional requester.
	Actor *Actor `json:"actor,omitempty"`
}

// PendingTrigger is the scheduled trigger.
type PendingTrigger struct {
	FireAt      int64  `json:"fireAt"`
	Title       string `json:"title"`
	Vibrate     bool   `json:"vibrate"`
	Sound       string `json:"sound"`
	ScheduledAt int64  `json:"scheduledAt"`
}

// StartPomodoroResponse returns the trigger that was scheduled.
type StartPomodoroResponse struct {
	Trigger *PendingTrigger `json:"trigger"`
}

// Session is the ringing alarm.
type Session struct {
	ID        string `json:"sessionId"`
	Title     string `json:"title"`
	Sound     string `json:"sound"`
	StartedAt int64  `json:"startedAt"`
	Playing   bool   `json:"playing"`
	Vibrating bool   `json:"vibrating"`
	Alerting  bool   `json:"alerting"`
}

// StatusResponse combines the pending trigger and the ringing alarm.
type StatusResponse struct {
	Pending *PendingTrigger `json:"pending"`
	Session *Session        `json:"session"`
	Exact   bool            `json:"exact"`
}

// ToStartRequest converts the message into the domain request.
func (r *StartPomodoroRequest) ToStartRequest() *timer.StartRequest {
	if r == nil {
		return &timer.StartRequest{}
	}

	return &timer.StartRequest{
		FireAtEpochMillis: r.EndAt,
		Payload: timer.Payload{
			Title:    r.Title,
			Vibrate:  r.Vibrate,
			SoundRef: r.Sound,
		},
	}
}

// FromTrigger converts the domain trigger, nil-safe.
func FromTrigger(t *timer.PendingTrigger) *PendingTrigger {
	if t == nil {
		return nil
	}

	return &PendingTrigger{
		FireAt:      t.FireAtEpochMillis(),
		Title:       t.Payload.Title,
		Vibrate:     t.Payload.Vibrate,
		Sound:       t.Payload.SoundRef,
		ScheduledAt: t.ScheduledAt.UnixMilli(),
	}
}

// FromSession converts the domain session snapshot, nil-safe.
func FromSession(s *timer.SessionInfo) *Session {
	if s == nil {
		return nil
	}

	return &Session{
		ID:        s.ID,
		Title:     s.Payload.Title,
		Sound:     s.Payload.SoundRef,
		StartedAt: s.StartedAt.UnixMilli(),
		Playing:   s.Sound,
		Vibrating: s.Vibration,
		Alerting:  s.Alert,
	}
}

// FromStatus converts the domain status, nil-safe.
func FromStatus(s *timer.Status) *StatusResponse {
	if s == nil {
		return &StatusResponse{}
	}

	return &StatusResponse{
		Pending: FromTrigger(s.Pending),
		Session: FromSession(s.Session),
		Exact:   s.Exact,
	}
}

// FireTime returns the trigger fire time.
func (t *PendingTrigger) FireTime() time.Time {
	return time.UnixMilli(t.FireAt)
}
