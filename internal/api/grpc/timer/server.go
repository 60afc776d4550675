package timer

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// Service abstracts the control-surface operations the transport layer depends on.
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

// Server implements the TimerService gRPC API.
type Server struct {
	// service provides the control-surface operations.
	service Service
}

var _ wire.TimerServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// StartPomodoro schedules the single trigger, replacing any previous one.
func (s *Server) StartPomodoro(ctx context.Context, req *wire.StartPomodoroRequest) (*wire.StartPomodoroResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if req.Actor != nil {
		ctx = logger.WithFields(ctx, "hostname", req.Actor.Hostname, "username", req.Actor.Username)
	}

	trigger, err := s.service.Start(ctx, req.ToStartRequest())
	if err != nil {
		return nil, toStatus(err)
	}

	return &wire.StartPomodoroResponse{Trigger: wire.FromTrigger(trigger)}, nil
}

// CancelPomodoro disarms the pending trigger.
func (s *Server) CancelPomodoro(ctx context.Context, _ *wire.Empty) (*wire.Empty, error) {
	if err := s.service.Cancel(ctx); err != nil {
		return nil, toStatus(err)
	}

	return &wire.Empty{}, nil
}

// StopRingtone stops the ringing alarm.
func (s *Server) StopRingtone(ctx context.Context, _ *wire.Empty) (*wire.BoolResponse, error) {
	return &wire.BoolResponse{Value: s.service.Stop(ctx)}, nil
}

// GetStatus returns the pending trigger and the ringing alarm.
func (s *Server) GetStatus(ctx context.Context, _ *wire.Empty) (*wire.StatusResponse, error) {
	return wire.FromStatus(s.service.Status(ctx)), nil
}

// OpenExactAlarmSettings opens the exact alarm capability screen.
func (s *Server) OpenExactAlarmSettings(ctx context.Context, _ *wire.Empty) (*wire.BoolResponse, error) {
	supported, err := s.service.OpenExactAlarmSettings(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &wire.BoolResponse{Value: supported}, nil
}

// OpenNotificationSettings opens the notification settings screen.
func (s *Server) OpenNotificationSettings(ctx context.Context, _ *wire.Empty) (*wire.BoolResponse, error) {
	opened, err := s.service.OpenNotificationSettings(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &wire.BoolResponse{Value: opened}, nil
}

// AreNotificationsEnabled reports whether alerts can be shown.
func (s *Server) AreNotificationsEnabled(ctx context.Context, _ *wire.Empty) (*wire.BoolResponse, error) {
	return &wire.BoolResponse{Value: s.service.AreNotificationsEnabled(ctx)}, nil
}

// RequestPostNotifications requests the notification capability.
func (s *Server) RequestPostNotifications(ctx context.Context, _ *wire.Empty) (*wire.BoolResponse, error) {
	return &wire.BoolResponse{Value: s.service.RequestPostNotifications(ctx)}, nil
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrFireAtRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrOpenSettingsFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "unable to persist trigger")
	}
}
