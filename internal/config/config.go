package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by pomodoro-server and pomodoro-ctl.
type Config struct {
	// ServerAddress is the gRPC address the daemon listens on and the CLI dials.
	ServerAddress string `yaml:"server_addr"`
	// RPCAddress is the optional HTTP address of the JSON-RPC method channel. Empty disables it.
	RPCAddress string `yaml:"rpc_addr"`
	// RPCSecret is the bearer token required by the JSON-RPC endpoints. Empty means no auth.
	RPCSecret string `yaml:"rpc_secret"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level written by the daemon logger.
	LogLevel string `yaml:"log_level"`
	// Store selects where the pending trigger is persisted.
	Store StoreConfig `yaml:"store"`
	// Alarm controls the OS-level wake-up used to deliver triggers on time.
	Alarm AlarmConfig `yaml:"alarm"`
	// Sound configures the external audio player.
	Sound SoundConfig `yaml:"sound"`
	// Vibration configures the vibration motor driver.
	Vibration VibrationConfig `yaml:"vibration"`
	// Notification configures the visible alert.
	Notification NotificationConfig `yaml:"notification"`
}

// StoreConfig selects and parameterizes the trigger store backend.
type StoreConfig struct {
	// Backend is one of "file", "sqlite" or "redis".
	Backend string `yaml:"backend"`
	// Path is the JSON file (file backend) or database file (sqlite backend).
	Path string `yaml:"path"`
	// RedisAddress is the redis server address for the redis backend.
	RedisAddress string `yaml:"redis_addr"`
	// RedisDB is the redis database index.
	RedisDB int `yaml:"redis_db"`
	// RedisKey is the hash key holding the trigger.
	RedisKey string `yaml:"redis_key"`
}

// AlarmConfig controls exact delivery.
type AlarmConfig struct {
	// DisableWake skips the RTC wake-up; triggers are then delivered inexactly
	// (a suspended machine fires on resume).
	DisableWake bool `yaml:"disable_wake"`
	// RTCDevice is the sysfs wakealarm file of the real-time clock.
	RTCDevice string `yaml:"rtc_device"`
	// SettingsCommand opens the system screen that grants exact alarm capability, if any.
	SettingsCommand []string `yaml:"settings_command"`
}

// SoundConfig describes how alarm audio is played.
type SoundConfig struct {
	// Command is the player executable; it receives the sound file as its last argument.
	Command string `yaml:"command"`
	// Args are extra arguments placed before the sound file.
	Args []string `yaml:"args"`
	// AssetsDir is the directory that "assets/..." sound references are resolved against.
	AssetsDir string `yaml:"assets_dir"`
	// DefaultSound is the platform default alert sound file.
	DefaultSound string `yaml:"default_sound"`
	// PIDFile records the running player so a restarted daemon can reap it.
	PIDFile string `yaml:"pid_file"`
}

// VibrationConfig describes the vibration motor driver.
type VibrationConfig struct {
	// Command is run for every "on" segment of the waveform. Empty means no vibrator.
	Command string `yaml:"command"`
	// Args are passed to Command; "{duration_ms}" is replaced by the pulse length.
	Args []string `yaml:"args"`
}

// NotificationConfig describes the visible alert.
type NotificationConfig struct {
	// Backend is "dbus" for freedesktop notifications or "log" for log-only alerts.
	Backend string `yaml:"backend"`
	// AppName is shown as the notification sender.
	AppName string `yaml:"app_name"`
	// OpenCommand runs when the alert is clicked, returning the user to the controlling app.
	OpenCommand []string `yaml:"open_command"`
	// SettingsCommand opens the system notification settings.
	SettingsCommand []string `yaml:"settings_command"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "pomodoro-settings.yaml"

	// DefaultStateFilename is the default filename of the file trigger store.
	DefaultStateFilename = "pomodoro-trigger.json"

	// DefaultDatabaseFilename is the default filename of the sqlite trigger store.
	DefaultDatabaseFilename = "pomodoro.db"

	// DefaultPIDFilename is the default sound player pid file.
	DefaultPIDFilename = "pomodoro-player.pid"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	// DefaultRTCDevice is the wakealarm file of the first real-time clock on Linux.
	DefaultRTCDevice = "/sys/class/rtc/rtc0/wakealarm"

	// DefaultSoundCommand plays a sound file through PulseAudio/PipeWire.
	DefaultSoundCommand = "paplay"

	// DefaultSound is the freedesktop alarm sound shipped by most Linux desktops.
	DefaultSound = "/usr/share/sounds/freedesktop/stereo/alarm-clock-elapsed.oga"

	// DefaultRedisKey is the hash key of the redis trigger store.
	DefaultRedisKey = "pomodoro:trigger"

	// DefaultAppName is the notification sender name.
	DefaultAppName = "Pomodoro"
)

// Trigger store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Notification backends.
const (
	NotifyDBus = "dbus"
	NotifyLog  = "log"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownBackend is returned for an unsupported store backend.
	errUnknownBackend = errors.New("unknown store backend")
	// errUnknownNotifier is returned for an unsupported notification backend.
	errUnknownNotifier = errors.New("unknown notification backend")
	// errRedisAddressRequired is returned when the redis backend has no address.
	errRedisAddressRequired = errors.New("redis address must be provided")
)

// Default returns settings suitable for a local desktop daemon.
func Default() *Config {
	cfg := &Config{
		ServerAddress: "127.0.0.1:50061",
	}

	// Defaults cannot fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may carry the RPC secret.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
//
//nolint:cyclop // A flat list of defaults reads better than helper indirection.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.RPCAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.RPCAddress); err != nil {
			return fmt.Errorf("invalid rpc socket: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if err := validateStore(&settings.Store); err != nil {
		return err
	}

	if settings.Alarm.RTCDevice == "" {
		settings.Alarm.RTCDevice = DefaultRTCDevice
	}

	if settings.Sound.Command == "" {
		settings.Sound.Command = DefaultSoundCommand
	}

	if settings.Sound.AssetsDir == "" {
		settings.Sound.AssetsDir = "."
	}

	if settings.Sound.DefaultSound == "" {
		settings.Sound.DefaultSound = DefaultSound
	}

	if settings.Sound.PIDFile == "" {
		settings.Sound.PIDFile = DefaultPIDFilename
	}

	if settings.Notification.Backend == "" {
		settings.Notification.Backend = NotifyDBus
	}

	if !slices.Contains([]string{NotifyDBus, NotifyLog}, settings.Notification.Backend) {
		return fmt.Errorf("%q: %w", settings.Notification.Backend, errUnknownNotifier)
	}

	if settings.Notification.AppName == "" {
		settings.Notification.AppName = DefaultAppName
	}

	return nil
}

// validateStore fills store defaults per backend.
func validateStore(store *StoreConfig) error {
	if store.Backend == "" {
		store.Backend = BackendFile
	}

	switch store.Backend {
	case BackendFile:
		if store.Path == "" {
			store.Path = DefaultStateFilename
		}
	case BackendSQLite:
		if store.Path == "" {
			store.Path = DefaultDatabaseFilename
		}
	case BackendRedis:
		if store.RedisAddress == "" {
			return errRedisAddressRequired
		}

		if store.RedisKey == "" {
			store.RedisKey = DefaultRedisKey
		}
	default:
		return fmt.Errorf("%q: %w", store.Backend, errUnknownBackend)
	}

	return nil
}
