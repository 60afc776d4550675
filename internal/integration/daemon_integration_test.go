package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/service/server"
)

// daemon describes a pomodoro-server started for a test.
type daemon struct {
	// addr is the gRPC address.
	addr string
	// rpcAddr is the JSON-RPC address.
	rpcAddr string
	// stop cancels the daemon and waits for Run to return.
	stop func()
}

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startDaemon runs pomodoro-server with a file store at storePath and log-only devices.
func startDaemon(t *testing.T, storePath, secret string) *daemon {
	t.Helper()

	dir := t.TempDir()
	d := &daemon{
		addr:    reservePort(t),
		rpcAddr: reservePort(t),
	}

	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: d.addr,
		RPCAddress:    d.rpcAddr,
		RPCSecret:     secret,
		Timeout:       3 * time.Second,
		LogLevel:      "warn",
		Store:         config.StoreConfig{Backend: config.BackendFile, Path: storePath},
		Alarm:         config.AlarmConfig{DisableWake: true},
		Sound: config.SoundConfig{
			Command: "true",
			PIDFile: filepath.Join(dir, "player.pid"),
		},
		Notification: config.NotificationConfig{Backend: config.NotifyLog},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: cfgPath})
	}()

	// Wait until both listeners accept connections.
	require.Eventually(t, func() bool {
		for _, addr := range []string{d.addr, d.rpcAddr} {
			conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
			if err != nil {
				return false
			}

			_ = conn.Close()
		}

		return true
	}, 5*time.Second, 20*time.Millisecond)

	d.stop = func() {
		cancel()
		require.NoError(t, <-done)
	}

	return d
}
