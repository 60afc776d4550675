package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
)

// Freedesktop notification service coordinates.
const (
	busName       = "org.freedesktop.Notifications"
	objectPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	methodNotify  = busName + ".Notify"
	methodClose   = busName + ".CloseNotification"
	signalAction  = "ActionInvoked"
	defaultAction = "default"

	// urgencyCritical keeps the alert on screen until dismissed.
	urgencyCritical = byte(2)
	// neverExpire asks the server not to time the alert out.
	neverExpire = int32(0)
)

// errEmptyCommand is returned when there is nothing to launch.
var errEmptyCommand = errors.New("empty command")

// caller is the part of a dbus object the notifier uses.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Launcher starts the open command when an alert is activated.
type Launcher func(ctx context.Context, command []string) error

// DBusNotifier shows alerts through the session bus.
type DBusNotifier struct {
	// conn is the session bus connection; nil in tests.
	conn *dbus.Conn
	// obj is the notification server object.
	obj caller
	// appName is the notification sender.
	appName string
	// openCommand runs on activation.
	openCommand []string
	// launch starts openCommand.
	launch Launcher
	// mu protects shown.
	mu sync.Mutex
	// shown holds the ids of alerts currently on screen.
	shown map[uint32]struct{}
}

// NewDBusNotifier connects to the session bus and subscribes to alert activations.
func NewDBusNotifier(ctx context.Context, appName string, openCommand []string) (*DBusNotifier, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	n := newDBusNotifier(conn.Object(busName, objectPath), appName, openCommand, Launch)
	n.conn = conn

	if err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(busName),
		dbus.WithMatchMember(signalAction),
	); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("subscribe to alert actions: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	go n.listen(logger.WithName(ctx, "notify"), signals)

	return n, nil
}

// newDBusNotifier builds a notifier over an arbitrary object.
func newDBusNotifier(obj caller, appName string, openCommand []string, launch Launcher) *DBusNotifier {
	return &DBusNotifier{
		obj:         obj,
		appName:     appName,
		openCommand: openCommand,
		launch:      launch,
		shown:       make(map[uint32]struct{}),
	}
}

var _ runner.Notifier = (*DBusNotifier)(nil)

// Available reports whether a notification server owns the bus name.
func (n *DBusNotifier) Available(ctx context.Context) bool {
	if n.conn == nil {
		return true
	}

	var owned bool
	if err := n.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, busName).Store(&owned); err != nil {
		logger.DebugKV(ctx, "Failed to query notification server", "error", err)

		return false
	}

	return owned
}

// Show displays a critical, resident, non-expiring alert with a default action.
func (n *DBusNotifier) Show(ctx context.Context, alert runner.Alert) (runner.Handle, error) {
	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(urgencyCritical),
		"resident": dbus.MakeVariant(true),
		"category": dbus.MakeVariant("alarm"),
	}

	var id uint32

	err := n.obj.CallWithContext(ctx, methodNotify, 0,
		n.appName,
		uint32(0),
		"alarm-symbolic",
		alert.Title,
		alert.Text,
		[]string{defaultAction, "Open"},
		hints,
		neverExpire,
	).Store(&id)
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	n.mu.Lock()
	n.shown[id] = struct{}{}
	n.mu.Unlock()

	return &shownAlert{notifier: n, id: id}, nil
}

// dismiss closes the alert with the given id.
func (n *DBusNotifier) dismiss(ctx context.Context, id uint32) error {
	n.mu.Lock()
	_, ok := n.shown[id]
	delete(n.shown, id)
	n.mu.Unlock()

	if !ok {
		return nil
	}

	if err := n.obj.CallWithContext(ctx, methodClose, 0, id).Err; err != nil {
		return fmt.Errorf("close notification %d: %w", id, err)
	}

	return nil
}

// listen runs the open command when one of our alerts is activated.
func (n *DBusNotifier) listen(ctx context.Context, signals <-chan *dbus.Signal) {
	for signal := range signals {
		n.handleSignal(ctx, signal)
	}
}

// handleSignal processes one ActionInvoked signal.
func (n *DBusNotifier) handleSignal(ctx context.Context, signal *dbus.Signal) {
	if signal == nil || signal.Name != busName+"."+signalAction || len(signal.Body) < 2 {
		return
	}

	id, ok := signal.Body[0].(uint32)
	if !ok {
		return
	}

	action, _ := signal.Body[1].(string)
	if action != defaultAction {
		return
	}

	n.mu.Lock()
	_, ours := n.shown[id]
	n.mu.Unlock()

	if !ours || len(n.openCommand) == 0 {
		return
	}

	if err := n.launch(ctx, n.openCommand); err != nil {
		logger.WarnKV(ctx, "Failed to open app from alert", "error", err)
	}
}

// Close disconnects from the session bus.
func (n *DBusNotifier) Close() error {
	if n.conn == nil {
		return nil
	}

	return n.conn.Close()
}

// shownAlert is the handle of one alert.
type shownAlert struct {
	// notifier owns the alert.
	notifier *DBusNotifier
	// id is the server-assigned notification id.
	id uint32
}

// Release dismisses the alert.
func (a *shownAlert) Release(ctx context.Context) error {
	return a.notifier.dismiss(ctx, a.id)
}

// Launch starts a command detached from the caller; the OS takes over the rest.
func Launch(_ context.Context, command []string) error {
	if len(command) == 0 {
		return errEmptyCommand
	}

	//nolint:gosec,noctx // The command comes from configuration and must outlive the request.
	cmd := exec.Command(command[0], command[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", command[0], err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}
