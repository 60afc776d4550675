package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/pomodoro-alarm/internal/runner"
)

var errBusDown = errors.New("bus down")

// recordedCall is one method call received by fakeObject.
type recordedCall struct {
	method string
	args   []any
}

// fakeObject stands in for the notification server object.
type fakeObject struct {
	// mu protects calls.
	mu sync.Mutex
	// calls lists received calls.
	calls []recordedCall
	// nextID is returned by Notify.
	nextID uint32
	// err fails every call when set.
	err error
}

func (o *fakeObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...any) *dbus.Call {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls = append(o.calls, recordedCall{method: method, args: args})

	if o.err != nil {
		return &dbus.Call{Err: o.err}
	}

	if method == methodNotify {
		o.nextID++

		return &dbus.Call{Body: []any{o.nextID}}
	}

	return &dbus.Call{}
}

func (o *fakeObject) methods() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	methods := make([]string, 0, len(o.calls))
	for _, c := range o.calls {
		methods = append(methods, c.method)
	}

	return methods
}

// TestDBusNotifier_ShowAndRelease verifies the Notify arguments and dismissal.
func TestDBusNotifier_ShowAndRelease(t *testing.T) {
	t.Parallel()

	obj := new(fakeObject)
	n := newDBusNotifier(obj, "Pomodoro", nil, Launch)

	handle, err := n.Show(context.Background(), runner.Alert{Title: "Focus", Text: "Time's up"})
	require.NoError(t, err)

	call := obj.calls[0]
	require.Equal(t, methodNotify, call.method)
	require.Equal(t, "Pomodoro", call.args[0])
	require.Equal(t, "Focus", call.args[3])
	require.Equal(t, "Time's up", call.args[4])
	require.Equal(t, []string{defaultAction, "Open"}, call.args[5])
	require.Equal(t, neverExpire, call.args[7])

	hints, ok := call.args[6].(map[string]dbus.Variant)
	require.True(t, ok)
	require.Equal(t, urgencyCritical, hints["urgency"].Value())
	require.Equal(t, true, hints["resident"].Value())

	require.NoError(t, handle.Release(context.Background()))
	require.NoError(t, handle.Release(context.Background()))
	require.Equal(t, []string{methodNotify, methodClose}, obj.methods(), "second release is a no-op")
	require.Equal(t, uint32(1), obj.calls[1].args[0])
}

// TestDBusNotifier_Errors verifies bus failures surface from Show and Release.
func TestDBusNotifier_Errors(t *testing.T) {
	t.Parallel()

	obj := &fakeObject{err: errBusDown}
	n := newDBusNotifier(obj, "Pomodoro", nil, Launch)

	_, err := n.Show(context.Background(), runner.Alert{Title: "Focus"})
	require.ErrorIs(t, err, errBusDown)

	obj.err = nil

	handle, err := n.Show(context.Background(), runner.Alert{Title: "Focus"})
	require.NoError(t, err)

	obj.err = errBusDown
	require.ErrorIs(t, handle.Release(context.Background()), errBusDown)
}

// TestDBusNotifier_Activation verifies only the default action on our own alerts opens the app.
func TestDBusNotifier_Activation(t *testing.T) {
	t.Parallel()

	var launched [][]string

	launch := func(_ context.Context, command []string) error {
		launched = append(launched, command)

		return nil
	}

	obj := new(fakeObject)
	n := newDBusNotifier(obj, "Pomodoro", []string{"xdg-open", "pomodoro://"}, launch)

	_, err := n.Show(context.Background(), runner.Alert{Title: "Focus"})
	require.NoError(t, err)

	signal := func(id uint32, action string) *dbus.Signal {
		return &dbus.Signal{Name: busName + "." + signalAction, Body: []any{id, action}}
	}

	n.handleSignal(context.Background(), signal(99, defaultAction))
	n.handleSignal(context.Background(), signal(1, "dismiss"))
	n.handleSignal(context.Background(), &dbus.Signal{Name: "other.Signal", Body: []any{uint32(1), defaultAction}})
	n.handleSignal(context.Background(), nil)
	require.Empty(t, launched)

	n.handleSignal(context.Background(), signal(1, defaultAction))
	require.Equal(t, [][]string{{"xdg-open", "pomodoro://"}}, launched)
}

// TestLaunch verifies command validation.
func TestLaunch(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Launch(context.Background(), nil), errEmptyCommand)
	require.Error(t, Launch(context.Background(), []string{"definitely-not-a-command"}))
}

// TestLogNotifier verifies the fallback never fails.
func TestLogNotifier(t *testing.T) {
	t.Parallel()

	handle, err := LogNotifier{}.Show(context.Background(), runner.Alert{Title: "Focus", Text: "Time's up"})
	require.NoError(t, err)
	require.NoError(t, handle.Release(context.Background()))
}
