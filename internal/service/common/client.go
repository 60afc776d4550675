//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// Client wraps the gRPC TimerService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the pomodoro server.
	conn *grpc.ClientConn
	// api is the TimerService client.
	api *wire.TimerServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errRequestRequired is returned when a start request is not provided.
	errRequestRequired = errors.New("start request must be provided")
)

// Dial establishes a gRPC connection to the pomodoro server.
// Note: this uses insecure transport credentials; the daemon is meant to listen on loopback.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(wire.CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("dial pomodoro server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         wire.NewTimerServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// StartPomodoro schedules the trigger, replacing any pending one.
func (c *Client) StartPomodoro(ctx context.Context, request *wire.StartPomodoroRequest) (*wire.PendingTrigger, error) {
	if request == nil {
		return nil, errRequestRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.StartPomodoro(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("start pomodoro: %w", err)
	}

	return response.Trigger, nil
}

// CancelPomodoro disarms the pending trigger.
func (c *Client) CancelPomodoro(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.CancelPomodoro(callCtx); err != nil {
		return fmt.Errorf("cancel pomodoro: %w", err)
	}

	return nil
}

// StopRingtone stops the ringing alarm and reports whether one was ringing.
func (c *Client) StopRingtone(ctx context.Context) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.StopRingtone(callCtx)
	if err != nil {
		return false, fmt.Errorf("stop ringtone: %w", err)
	}

	return response.Value, nil
}

// GetStatus retrieves the pending trigger and the ringing alarm.
func (c *Client) GetStatus(ctx context.Context) (*wire.StatusResponse, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.GetStatus(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return response, nil
}

// OpenExactAlarmSettings asks the daemon to open the exact alarm settings screen.
func (c *Client) OpenExactAlarmSettings(ctx context.Context) (bool, error) {
	return c.capability(ctx, "open exact alarm settings", c.api.OpenExactAlarmSettings)
}

// OpenNotificationSettings asks the daemon to open the notification settings screen.
func (c *Client) OpenNotificationSettings(ctx context.Context) (bool, error) {
	return c.capability(ctx, "open notification settings", c.api.OpenNotificationSettings)
}

// AreNotificationsEnabled reports whether the daemon can show desktop alerts.
func (c *Client) AreNotificationsEnabled(ctx context.Context) (bool, error) {
	return c.capability(ctx, "query notifications", c.api.AreNotificationsEnabled)
}

// RequestPostNotifications asks the daemon for the notification capability.
func (c *Client) RequestPostNotifications(ctx context.Context) (bool, error) {
	return c.capability(ctx, "request notifications", c.api.RequestPostNotifications)
}

func (c *Client) capability(
	ctx context.Context,
	operation string,
	call func(context.Context, ...grpc.CallOption) (*wire.BoolResponse, error),
) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := call(callCtx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", operation, err)
	}

	return response.Value, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
