package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing socket.
	require.ErrorIs(t, Validate(new(Config)), errServerSocketRequired)

	// Nil settings.
	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	// Bad socket.
	require.Error(t, Validate(&Config{ServerAddress: "bad:address"}))

	// Bad rpc socket.
	require.Error(t, Validate(&Config{ServerAddress: "127.0.0.1:0", RPCAddress: "nope:nope"}))

	// Unknown backends.
	settings := &Config{
		ServerAddress: "127.0.0.1:0",
		Store:         StoreConfig{Backend: "etcd"},
	}
	require.ErrorIs(t, Validate(settings), errUnknownBackend)

	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Notification:  NotificationConfig{Backend: "sms"},
	}
	require.ErrorIs(t, Validate(settings), errUnknownNotifier)

	// Redis requires an address.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
		Store:         StoreConfig{Backend: BackendRedis},
	}
	require.ErrorIs(t, Validate(settings), errRedisAddressRequired)
}

// TestValidate_FillsDefaults ensures optional sections receive their defaults.
func TestValidate_FillsDefaults(t *testing.T) {
	t.Parallel()

	settings := &Config{ServerAddress: "127.0.0.1:50061"}
	require.NoError(t, Validate(settings))

	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, BackendFile, settings.Store.Backend)
	require.Equal(t, DefaultStateFilename, settings.Store.Path)
	require.Equal(t, DefaultRTCDevice, settings.Alarm.RTCDevice)
	require.Equal(t, DefaultSoundCommand, settings.Sound.Command)
	require.Equal(t, DefaultSound, settings.Sound.DefaultSound)
	require.Equal(t, DefaultPIDFilename, settings.Sound.PIDFile)
	require.Equal(t, NotifyDBus, settings.Notification.Backend)
	require.Equal(t, DefaultAppName, settings.Notification.AppName)

	sqlite := &Config{
		ServerAddress: "127.0.0.1:50061",
		Store:         StoreConfig{Backend: BackendSQLite},
	}
	require.NoError(t, Validate(sqlite))
	require.Equal(t, DefaultDatabaseFilename, sqlite.Store.Path)

	redis := &Config{
		ServerAddress: "127.0.0.1:50061",
		Store:         StoreConfig{Backend: BackendRedis, RedisAddress: "127.0.0.1:6379"},
	}
	require.NoError(t, Validate(redis))
	require.Equal(t, DefaultRedisKey, redis.Store.RedisKey)
}

// TestDefault returns a valid local configuration.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.False(t, cfg.Alarm.DisableWake)
	require.Equal(t, BackendFile, cfg.Store.Backend)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50061",
		RPCAddress:    "127.0.0.1:50062",
		RPCSecret:     "s3cret",
		Timeout:       3 * time.Second,
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join(dir, "pomodoro.db"),
		},
		Sound: SoundConfig{
			Command: "mpv",
			Args:    []string{"--no-video"},
		},
		Vibration: VibrationConfig{
			Command: "vibrate",
			Args:    []string{"--ms", "{duration_ms}"},
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ServerAddress, loaded.ServerAddress)
	require.Equal(t, settings.RPCAddress, loaded.RPCAddress)
	require.Equal(t, settings.RPCSecret, loaded.RPCSecret)
	require.Equal(t, settings.Timeout, loaded.Timeout)
	require.Equal(t, settings.Store, loaded.Store)
	require.Equal(t, settings.Sound.Args, loaded.Sound.Args)
	require.Equal(t, settings.Vibration, loaded.Vibration)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestSave_Nil rejects nil settings.
func TestSave_Nil(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil), errConfigIsNotSet)
}

// TestLoad_Missing reports a read error for a missing file.
func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
