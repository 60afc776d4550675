package wire

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "pomodoro.v1.TimerService"

// Method names.
const (
	MethodStartPomodoro            = "StartPomodoro"
	MethodCancelPomodoro           = "CancelPomodoro"
	MethodStopRingtone             = "StopRingtone"
	MethodGetStatus                = "GetStatus"
	MethodOpenExactAlarmSettings   = "OpenExactAlarmSettings"
	MethodOpenNotificationSettings = "OpenNotificationSettings"
	MethodAreNotificationsEnabled  = "AreNotificationsEnabled"
	MethodRequestPostNotifications = "RequestPostNotifications"
)

// TimerServiceServer is the server API of the timer service.
type TimerServiceServer interface {
	StartPomodoro(ctx context.Context, req *StartPomodoroRequest) (*StartPomodoroResponse, error)
	CancelPomodoro(ctx context.Context, req *Empty) (*Empty, error)
	StopRingtone(ctx context.Context, req *Empty) (*BoolResponse, error)
	GetStatus(ctx context.Context, req *Empty) (*StatusResponse, error)
	OpenExactAlarmSettings(ctx context.Context, req *Empty) (*BoolResponse, error)
	OpenNotificationSettings(ctx context.Context, req *Empty) (*BoolResponse, error)
	AreNotificationsEnabled(ctx context.Context, req *Empty) (*BoolResponse, error)
	RequestPostNotifications(ctx context.Context, req *Empty) (*BoolResponse, error)
}

// TimerServiceDesc describes the timer service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var TimerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TimerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodStartPomodoro, TimerServiceServer.StartPomodoro),
		unary(MethodCancelPomodoro, TimerServiceServer.CancelPomodoro),
		unary(MethodStopRingtone, TimerServiceServer.StopRingtone),
		unary(MethodGetStatus, TimerServiceServer.GetStatus),
		unary(MethodOpenExactAlarmSettings, TimerServiceServer.OpenExactAlarmSettings),
		unary(MethodOpenNotificationSettings, TimerServiceServer.OpenNotificationSettings),
		unary(MethodAreNotificationsEnabled, TimerServiceServer.AreNotificationsEnabled),
		unary(MethodRequestPostNotifications, TimerServiceServer.RequestPostNotifications),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterTimerServiceServer registers the implementation on the gRPC server.
func RegisterTimerServiceServer(s grpc.ServiceRegistrar, srv TimerServiceServer) {
	s.RegisterService(&TimerServiceDesc, srv)
}

// FullMethod returns the "/service/method" path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary builds a method descriptor that decodes Req and dispatches to call.
func unary[Req, Resp any](
	method string,
	call func(TimerServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			server, _ := srv.(TimerServiceServer)

			if interceptor == nil {
				return call(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}

			handler := func(ctx context.Context, req any) (any, error) {
				typed, _ := req.(*Req)

				return call(server, ctx, typed)
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}
