package wire

import (
	"context"

	"google.golang.org/grpc"
)

// TimerServiceClient is the client API of the timer service.
type TimerServiceClient struct {
	// cc is the underlying connection.
	cc grpc.ClientConnInterface
}

// NewTimerServiceClient creates a client over the connection.
func NewTimerServiceClient(cc grpc.ClientConnInterface) *TimerServiceClient {
	return &TimerServiceClient{cc: cc}
}

// StartPomodoro schedules the trigger.
func (c *TimerServiceClient) StartPomodoro(
	ctx context.Context,
	in *StartPomodoroRequest,
	opts ...grpc.CallOption,
) (*StartPomodoroResponse, error) {
	return invoke[StartPomodoroResponse](ctx, c.cc, MethodStartPomodoro, in, opts)
}

// CancelPomodoro disarms the trigger.
func (c *TimerServiceClient) CancelPomodoro(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodCancelPomodoro, &Empty{}, opts)
}

// StopRingtone stops the ringing alarm.
func (c *TimerServiceClient) StopRingtone(ctx context.Context, opts ...grpc.CallOption) (*BoolResponse, error) {
	return invoke[BoolResponse](ctx, c.cc, MethodStopRingtone, &Empty{}, opts)
}

// GetStatus returns the daemon status.
func (c *TimerServiceClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodGetStatus, &Empty{}, opts)
}

// OpenExactAlarmSettings asks the daemon to open the exact alarm settings.
func (c *TimerServiceClient) OpenExactAlarmSettings(ctx context.Context, opts ...grpc.CallOption) (*BoolResponse, error) {
	return invoke[BoolResponse](ctx, c.cc, MethodOpenExactAlarmSettings, &Empty{}, opts)
}

// OpenNotificationSettings asks the daemon to open the notification settings.
func (c *TimerServiceClient) OpenNotificationSettings(ctx context.Context, opts ...grpc.CallOption) (*BoolResponse, error) {
	return invoke[BoolResponse](ctx, c.cc, MethodOpenNotificationSettings, &Empty{}, opts)
}

// AreNotificationsEnabled queries notification availability.
func (c *TimerServiceClient) AreNotificationsEnabled(ctx context.Context, opts ...grpc.CallOption) (*BoolResponse, error) {
	return invoke[BoolResponse](ctx, c.cc, MethodAreNotificationsEnabled, &Empty{}, opts)
}

// RequestPostNotifications requests the notification capability.
func (c *TimerServiceClient) RequestPostNotifications(ctx context.Context, opts ...grpc.CallOption) (*BoolResponse, error) {
	return invoke[BoolResponse](ctx, c.cc, MethodRequestPostNotifications, &Empty{}, opts)
}

// invoke performs a unary call with the JSON codec.
func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)

	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, callOpts...); err != nil {
		return nil, err
	}

	return out, nil
}
