package wake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// clearValue resets the wake alarm; the kernel refuses a new time while one is set.
const clearValue = "0"

var (
	// ErrUnsupportedOS indicates the current OS has no sysfs wake alarm.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// ErrUnavailable indicates the wake alarm device is missing or not writable.
	ErrUnavailable = errors.New("wake alarm unavailable")
)

// RTCAlarm drives the Linux sysfs wakealarm file of a real-time clock.
type RTCAlarm struct {
	// fs is the filesystem the device lives on; tests use an in-memory one.
	fs afero.Fs
	// device is the wakealarm file path.
	device string
	// goos is the operating system name, overridable in tests.
	goos string
}

// NewRTCAlarm creates an alarm writing to the device file on the OS filesystem.
func NewRTCAlarm(device string) *RTCAlarm {
	return NewRTCAlarmFs(afero.NewOsFs(), device)
}

// NewRTCAlarmFs creates an alarm on the provided filesystem.
func NewRTCAlarmFs(fs afero.Fs, device string) *RTCAlarm {
	return &RTCAlarm{
		fs:     fs,
		device: device,
		goos:   runtime.GOOS,
	}
}

// Available reports whether the device exists and the OS supports it.
func (a *RTCAlarm) Available() bool {
	if !strings.Contains(strings.ToLower(a.goos), "linux") {
		return false
	}

	_, err := a.fs.Stat(a.device)

	return err == nil
}

// Arm programs a wake-up at the given wall-clock time.
// Times in the past are not armed; the in-process timer handles them.
func (a *RTCAlarm) Arm(_ context.Context, at time.Time) error {
	if err := a.check(); err != nil {
		return err
	}

	if err := a.write(clearValue); err != nil {
		return err
	}

	if !at.After(time.Now()) {
		return nil
	}

	return a.write(strconv.FormatInt(at.Unix(), 10))
}

// Disarm clears any programmed wake-up.
func (a *RTCAlarm) Disarm(_ context.Context) error {
	if err := a.check(); err != nil {
		return err
	}

	return a.write(clearValue)
}

// armed returns the programmed wake-up time, zero when none is set.
func (a *RTCAlarm) armed() (time.Time, error) {
	contents, err := afero.ReadFile(a.fs, a.device)
	if err != nil {
		return time.Time{}, fmt.Errorf("read wake alarm: %w", err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" || value == clearValue {
		return time.Time{}, nil
	}

	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse wake alarm %q: %w", value, err)
	}

	return time.Unix(seconds, 0), nil
}

// check verifies the OS and the device before any write.
func (a *RTCAlarm) check() error {
	if !strings.Contains(strings.ToLower(a.goos), "linux") {
		return fmt.Errorf("wake alarm on %s: %w", a.goos, ErrUnsupportedOS)
	}

	if _, err := a.fs.Stat(a.device); err != nil {
		return fmt.Errorf("stat %s: %w", a.device, ErrUnavailable)
	}

	return nil
}

// write replaces the device contents; sysfs files are written in place, never created.
func (a *RTCAlarm) write(value string) error {
	f, err := a.fs.OpenFile(a.device, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", a.device, ErrUnavailable, err)
	}

	if _, err = f.WriteString(value); err != nil {
		_ = f.Close()

		return fmt.Errorf("write %s: %w", a.device, err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", a.device, err)
	}

	return nil
}
