package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// TestResolveFireTime covers every fire time source and their conflicts.
func TestResolveFireTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 9, 0, 30, 0, time.UTC)

	tests := []struct {
		name    string
		start   StartOptions
		want    time.Time
		wantErr error
	}{
		{
			name:  "relative",
			start: StartOptions{In: 25 * time.Minute},
			want:  now.Add(25 * time.Minute),
		},
		{
			name:  "rfc3339",
			start: StartOptions{At: "2026-03-02T10:00:00Z"},
			want:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "epoch millis",
			start: StartOptions{AtMillis: now.Add(time.Hour).UnixMilli()},
			want:  time.UnixMilli(now.Add(time.Hour).UnixMilli()),
		},
		{
			name:  "cron next tick",
			start: StartOptions{Cron: "*/15 * * * *"},
			want:  time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC),
		},
		{
			name:  "past time is kept",
			start: StartOptions{In: -time.Minute},
			want:  now.Add(-time.Minute),
		},
		{
			name:    "missing",
			start:   StartOptions{Title: "Focus"},
			wantErr: errNoFireTime,
		},
		{
			name:  "zero duration given",
			start: StartOptions{Given: map[string]bool{flagIn: true}},
			want:  now,
		},
		{
			name:  "zero epoch given",
			start: StartOptions{Given: map[string]bool{flagAtMillis: true}},
			want:  time.UnixMilli(0),
		},
		{
			name:    "zero duration conflicts with at",
			start:   StartOptions{At: "2026-03-02T10:00:00Z", Given: map[string]bool{flagAt: true, flagIn: true}},
			wantErr: errConflictingFireTime,
		},
		{
			name:    "unset flags are ignored",
			start:   StartOptions{Given: map[string]bool{flagIn: false, flagAtMillis: false}},
			wantErr: errNoFireTime,
		},
		{
			name:    "conflicting",
			start:   StartOptions{In: time.Minute, AtMillis: 1},
			wantErr: errConflictingFireTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveFireTime(now, &tt.start)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err := ResolveFireTime(now, &StartOptions{At: "tomorrow"})
	require.Error(t, err)

	_, err = ResolveFireTime(now, &StartOptions{Cron: "not a cron"})
	require.Error(t, err)
}

// TestObserve checks how a waiting start interprets status polls.
func TestObserve(t *testing.T) {
	t.Parallel()

	fireAt := time.UnixMilli(60_000)
	awaited := &wire.PendingTrigger{FireAt: fireAt.UnixMilli(), Title: "Focus", ScheduledAt: 1_000}
	before := fireAt.Add(-time.Second)

	_, done := observe(awaited, &wire.StatusResponse{Pending: &wire.PendingTrigger{
		FireAt: awaited.FireAt, Title: "Focus", ScheduledAt: 1_000,
	}}, before)
	require.False(t, done)

	outcome, done := observe(awaited, &wire.StatusResponse{Pending: &wire.PendingTrigger{
		FireAt: awaited.FireAt + 1, Title: "Break",
	}}, before)
	require.True(t, done)
	require.Equal(t, outcomeReplaced, outcome)

	outcome, done = observe(awaited, &wire.StatusResponse{Session: &wire.Session{Title: "Focus"}}, before)
	require.True(t, done)
	require.Equal(t, outcomeRang, outcome)

	outcome, done = observe(awaited, &wire.StatusResponse{}, before)
	require.True(t, done)
	require.Equal(t, outcomeCancelled, outcome)

	// Already stopped by the time the poll arrives.
	outcome, done = observe(awaited, &wire.StatusResponse{}, fireAt)
	require.True(t, done)
	require.Equal(t, outcomeRang, outcome)

	require.Equal(t, "Focus: Time's up", outcomeRang.describe("Focus"))
}

// TestFormatStatus renders idle and busy daemons.
func TestFormatStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	idle := FormatStatus(&wire.StatusResponse{}, false, now)
	require.Contains(t, idle, "Pending:       none")
	require.Contains(t, idle, "Ringing:       no")
	require.Contains(t, idle, "Notifications: false")

	busy := FormatStatus(&wire.StatusResponse{
		Pending: &wire.PendingTrigger{FireAt: now.Add(25 * time.Minute).UnixMilli(), Title: "Focus"},
		Session: &wire.Session{Title: "Break", StartedAt: now.UnixMilli(), Playing: true},
		Exact:   true,
	}, true, now)
	require.Contains(t, busy, `"Focus"`)
	require.Contains(t, busy, "in 25m0s")
	require.Contains(t, busy, `"Break"`)
	require.Contains(t, busy, "sound: true, vibration: false")
	require.Contains(t, busy, "Exact:         true")
}

// TestOpenSettings_UnknownScreen asserts screen names are validated before dialing.
func TestOpenSettings_UnknownScreen(t *testing.T) {
	t.Parallel()

	err := OpenSettings(context.Background(), &Options{ServerAddress: "127.0.0.1:1"}, "display", nil)
	require.ErrorIs(t, err, errUnknownScreen)
}

// TestRemaining rounds and clamps the countdown text.
func TestRemaining(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(0)

	require.Equal(t, 90*time.Second, remaining(now.Add(90*time.Second+300*time.Millisecond), now))
	require.Zero(t, remaining(now.Add(-time.Minute), now))
}
