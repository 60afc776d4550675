package timer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/creachadair/jrpc2"

	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// JSON-RPC error codes.
const (
	codeInvalidParams      = jrpc2.Code(-32602)
	codeOpenSettingsFailed = jrpc2.Code(-32010)
)

// Method names.
const (
	methodStartPomodoro            = "startPomodoro"
	methodCancelPomodoro           = "cancelPomodoro"
	methodStopRingtone             = "stopRingtone"
	methodOpenExactAlarmSettings   = "openExactAlarmSettings"
	methodOpenNotificationSettings = "openNotificationSettings"
	methodAreNotificationsEnabled  = "areNotificationsEnabled"
	methodRequestPostNotifications = "requestPostNotifications"
	methodGetStatus                = "getStatus"
)

// Service abstracts the control-surface operations the method channel depends on.
type Service interface {
	Start(ctx context.Context, req *domain.StartRequest) (*domain.PendingTrigger, error)
	Cancel(ctx context.Context) error
	Stop(ctx context.Context) bool
	Status(ctx context.Context) *domain.Status
	OpenExactAlarmSettings(ctx context.Context) (bool, error)
	OpenNotificationSettings(ctx context.Context) (bool, error)
	AreNotificationsEnabled(ctx context.Context) bool
	RequestPostNotifications(ctx context.Context) bool
}

var errUnexpectedParams = errors.New("method takes no parameters")

// noParams accepts an absent, null, empty object or empty array parameter value.
// Object members are ignored.
type noParams struct{}

// UnmarshalJSON implements json.Unmarshaler.
func (*noParams) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '{':
		var members map[string]json.RawMessage

		return json.Unmarshal(data, &members)
	case data[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}

		if len(items) != 0 {
			return errUnexpectedParams
		}

		return nil
	default:
		return errUnexpectedParams
	}
}

// startPomodoro schedules the single trigger.
func (s *Server) startPomodoro(ctx context.Context, p *wire.StartPomodoroRequest) (bool, error) {
	ctx = logger.WithName(ctx, "jsonrpc")

	if _, err := s.service.Start(ctx, p.ToStartRequest()); err != nil {
		if errors.Is(err, domain.ErrFireAtRequired) {
			return false, &jrpc2.Error{Code: codeInvalidParams, Message: "endAt is required"}
		}

		logger.ErrorKV(ctx, "Failed to start pomodoro", "error", err)

		return false, err
	}

	return true, nil
}

// cancelPomodoro disarms the pending trigger.
func (s *Server) cancelPomodoro(ctx context.Context, _ *noParams) (bool, error) {
	if err := s.service.Cancel(ctx); err != nil {
		logger.ErrorKV(ctx, "Failed to cancel pomodoro", "error", err)

		return false, err
	}

	return true, nil
}

// stopRingtone stops the ringing alarm; stopping an idle alarm succeeds.
func (s *Server) stopRingtone(ctx context.Context, _ *noParams) (bool, error) {
	s.service.Stop(ctx)

	return true, nil
}

// openExactAlarmSettings opens the exact alarm capability screen.
func (s *Server) openExactAlarmSettings(ctx context.Context, _ *noParams) (bool, error) {
	supported, err := s.service.OpenExactAlarmSettings(ctx)
	if err != nil {
		return false, openSettingsError(err)
	}

	return supported, nil
}

// openNotificationSettings opens the notification settings screen.
func (s *Server) openNotificationSettings(ctx context.Context, _ *noParams) (bool, error) {
	if _, err := s.service.OpenNotificationSettings(ctx); err != nil {
		return false, openSettingsError(err)
	}

	return true, nil
}

func (s *Server) areNotificationsEnabled(ctx context.Context, _ *noParams) (bool, error) {
	return s.service.AreNotificationsEnabled(ctx), nil
}

func (s *Server) requestPostNotifications(ctx context.Context, _ *noParams) (bool, error) {
	return s.service.RequestPostNotifications(ctx), nil
}

// getStatus returns the pending trigger and the ringing alarm.
func (s *Server) getStatus(ctx context.Context, _ *noParams) (*wire.StatusResponse, error) {
	return wire.FromStatus(s.service.Status(ctx)), nil
}

// openSettingsError wraps a launch failure into the OPEN_SETTINGS_FAILED code.
func openSettingsError(err error) error {
	return &jrpc2.Error{Code: codeOpenSettingsFailed, Message: "OPEN_SETTINGS_FAILED: " + err.Error()}
}
