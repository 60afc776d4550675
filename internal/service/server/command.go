package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"google.golang.org/grpc"

	grpcapi "github.com/oshokin/pomodoro-alarm/internal/api/grpc/timer"
	rpcapi "github.com/oshokin/pomodoro-alarm/internal/api/jsonrpc/timer"
	"github.com/oshokin/pomodoro-alarm/internal/config"
	domain "github.com/oshokin/pomodoro-alarm/internal/domain/timer"
	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/repository/trigger"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
	"github.com/oshokin/pomodoro-alarm/internal/scheduler"
	"github.com/oshokin/pomodoro-alarm/internal/wire"
)

// Options controls the pomodoro-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// RPCAddress provides an optional listen address override for the JSON-RPC channel.
	RPCAddress string
	// StoreFile overrides the trigger store path of the file and sqlite backends.
	StoreFile string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// shutdownTimeout bounds how long in-flight HTTP requests may take on exit.
const shutdownTimeout = 5 * time.Second

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the daemon and blocks until context is canceled or a server stops.
// The ringing session is stopped on exit; the pending trigger survives for the next start.
//
//nolint:funlen // Startup wiring reads best as one sequence.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "pomodoro-server")

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	store, err := trigger.Open(ctx, settings.Store)
	if err != nil {
		return fmt.Errorf("open trigger store: %w", err)
	}

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close trigger store", "error", closeErr)
		}
	}()

	drivers := newDevices(ctx, settings)
	defer drivers.close(ctx)

	ringer := drivers.newRunner()

	var waker scheduler.Waker
	if w := newWaker(ctx, settings.Alarm); w != nil {
		waker = w
	}

	slot := scheduler.New(store, waker, func(ctx context.Context, payload domain.Payload) {
		ringer.Run(ctx, payload)
	})

	if err = slot.Restore(ctx); err != nil {
		return fmt.Errorf("restore trigger: %w", err)
	}

	svc := newService(slot, ringer, &platform{
		exactSettings:        settings.Alarm.SettingsCommand,
		notificationSettings: settings.Notification.SettingsCommand,
		notifications:        drivers.notificationsAvailable,
		launch:               drivers.launch,
	})

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	wire.RegisterTimerServiceServer(grpcServer, grpcapi.NewServer(svc))

	httpServer, err := startRPC(ctx, settings, svc, ringer)
	if err != nil {
		_ = lis.Close()

		return err
	}

	var loops sync.WaitGroup

	loops.Go(func() {
		_ = slot.Run(ctx)
	})

	logger.InfoKV(ctx, "Pomodoro server listening",
		"listen_address", listenAddress,
		"rpc_address", settings.RPCAddress,
		"store", settings.Store.Backend,
		"exact", slot.Exact())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down servers")
		grpcServer.GracefulStop()
		shutdownRPC(ctx, httpServer)
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	loops.Wait()

	if ringer.Stop(context.WithoutCancel(ctx)) {
		logger.Info(ctx, "Ringing session stopped on shutdown")
	}

	logger.Info(ctx, "Pomodoro server stopped")

	return nil
}

// loadSettings reads configuration and applies command line overrides.
func loadSettings(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.RPCAddress != "" {
		settings.RPCAddress = opts.RPCAddress
	}

	if opts.StoreFile != "" {
		settings.Store.Path = opts.StoreFile
	}

	level := settings.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	if err := logger.Setup(level); err != nil {
		return nil, fmt.Errorf("set log level: %w", err)
	}

	return settings, nil
}

// startRPC serves the JSON-RPC method channel when an address is configured.
func startRPC(ctx context.Context, settings *config.Config, svc *service, ringer *runner.Runner) (*http.Server, error) {
	if settings.RPCAddress == "" {
		return nil, nil //nolint:nilnil // A disabled channel is not an error.
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.RPCAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", settings.RPCAddress, err)
	}

	rpc := rpcapi.NewServer(svc, settings.RPCSecret)
	ringer.Subscribe(rpc.Notifier().OnEvent)

	if settings.RPCSecret == "" {
		logger.Warn(ctx, "JSON-RPC channel has no secret, any local client may control the alarm")
	}

	httpServer := &http.Server{
		Handler:           rpc.Handler(),
		ReadHeaderTimeout: settings.Timeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	httpServer.RegisterOnShutdown(func() {
		_ = rpc.Close()
	})

	go func() {
		if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "JSON-RPC server failed", "error", err)
		}
	}()

	return httpServer, nil
}

// shutdownRPC drains the JSON-RPC channel, if it was started.
func shutdownRPC(ctx context.Context, httpServer *http.Server) {
	if httpServer == nil {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WarnKV(ctx, "JSON-RPC shutdown incomplete", "error", err)
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise the configured address is used as is,
// so a loopback host keeps the daemon local.
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
