package timer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

var errDisk = errors.New("disk full")

// fakeService implements the Service interface for unit testing the transport.
type fakeService struct {
	// startErr is returned by Start when set.
	startErr error
	// settingsErr is returned by the settings launchers when set.
	settingsErr error
	// pending holds the scheduled trigger.
	pending *domain.PendingTrigger
	// ringing reports whether a session is active.
	ringing bool
}

func (f *fakeService) Start(_ context.Context, req *domain.StartRequest) (*domain.PendingTrigger, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}

	trigger, err := req.Trigger(time.Now())
	if err != nil {
		return nil, err
	}

	f.pending = trigger

	return trigger, nil
}

func (f *fakeService) Cancel(context.Context) error {
	f.pending = nil

	return nil
}

func (f *fakeService) Stop(context.Context) bool {
	stopped := f.ringing
	f.ringing = false

	return stopped
}

func (f *fakeService) Status(context.Context) *domain.Status {
	return &domain.Status{Pending: f.pending, Exact: true}
}

func (f *fakeService) OpenExactAlarmSettings(context.Context) (bool, error) {
	return f.settingsErr == nil, f.settingsErr
}

func (f *fakeService) OpenNotificationSettings(context.Context) (bool, error) {
	return f.settingsErr == nil, f.settingsErr
}

func (f *fakeService) AreNotificationsEnabled(context.Context) bool { return true }

func (f *fakeService) RequestPostNotifications(context.Context) bool { return true }

// TestServer_StartPomodoro_Validation ensures invalid requests return InvalidArgument errors.
func TestServer_StartPomodoro_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	_, err := s.StartPomodoro(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.StartPomodoro(context.Background(), &wire.StartPomodoroRequest{Title: "Focus"})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_Roundtrip exercises start, status, cancel and stop on the server implementation.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	svc := &fakeService{ringing: true}
	s := NewServer(svc)

	endAt := time.Now().Add(25 * time.Minute).UnixMilli()

	resp, err := s.StartPomodoro(context.Background(), &wire.StartPomodoroRequest{
		EndAt:   &endAt,
		Title:   "Focus",
		Vibrate: true,
		Sound:   "assets/bell.mp3",
		Actor:   &wire.Actor{Hostname: "desk", Username: "o.shokin"},
	})
	require.NoError(t, err)
	require.Equal(t, endAt, resp.Trigger.FireAt)
	require.Equal(t, "Focus", resp.Trigger.Title)

	st, err := s.GetStatus(context.Background(), &wire.Empty{})
	require.NoError(t, err)
	require.NotNil(t, st.Pending)
	require.Nil(t, st.Session)
	require.True(t, st.Exact)

	stopped, err := s.StopRingtone(context.Background(), &wire.Empty{})
	require.NoError(t, err)
	require.True(t, stopped.Value)

	stopped, err = s.StopRingtone(context.Background(), &wire.Empty{})
	require.NoError(t, err)
	require.False(t, stopped.Value)

	_, err = s.CancelPomodoro(context.Background(), &wire.Empty{})
	require.NoError(t, err)

	st, err = s.GetStatus(context.Background(), &wire.Empty{})
	require.NoError(t, err)
	require.Nil(t, st.Pending)
}

// TestServer_ErrorMapping verifies domain errors become the documented codes.
func TestServer_ErrorMapping(t *testing.T) {
	t.Parallel()

	endAt := time.Now().UnixMilli()

	s := NewServer(&fakeService{startErr: fmt.Errorf("persist trigger: %w", errDisk)})
	_, err := s.StartPomodoro(context.Background(), &wire.StartPomodoroRequest{EndAt: &endAt})
	require.Equal(t, codes.Internal, status.Code(err))

	s = NewServer(&fakeService{settingsErr: fmt.Errorf("launch: %w", domain.ErrOpenSettingsFailed)})

	_, err = s.OpenExactAlarmSettings(context.Background(), &wire.Empty{})
	require.Equal(t, codes.Unavailable, status.Code(err))

	_, err = s.OpenNotificationSettings(context.Background(), &wire.Empty{})
	require.Equal(t, codes.Unavailable, status.Code(err))

	enabled, err := s.AreNotificationsEnabled(context.Background(), &wire.Empty{})
	require.NoError(t, err)
	require.True(t, enabled.Value)

	granted, err := s.RequestPostNotifications(context.Background(), &wire.Empty{})
	require.NoError(t, err)
	require.True(t, granted.Value)
}
