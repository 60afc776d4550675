package timer

import (
	"context"
	"sync"

	"github.com/creachadair/jrpc2"

	"github.com/oshokin/pomodoro-alarm/internal/logger"
	"github.com/oshokin/pomodoro-alarm/internal/runner"
)

// Push notification methods.
const (
	pushAlarmFired   = "alarmFired"
	pushAlarmStopped = "alarmStopped"
)

// AlarmFiredNotification is pushed when an alarm starts ringing.
type AlarmFiredNotification struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title"`
	StartedAt int64  `json:"startedAt"`
}

// AlarmStoppedNotification is pushed when a ringing alarm stops.
type AlarmStoppedNotification struct {
	SessionID string `json:"sessionId"`
}

// Notifier maintains the connected WebSocket sessions and broadcasts to them.
type Notifier struct {
	// mu protects servers.
	mu sync.RWMutex
	// servers is the broadcast set.
	servers map[*jrpc2.Server]struct{}
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		servers: make(map[*jrpc2.Server]struct{}),
	}
}

// Register adds a session to the broadcast set.
func (n *Notifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.servers[srv] = struct{}{}
}

// Unregister removes a session from the broadcast set.
func (n *Notifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.servers, srv)
}

// count returns the number of connected sessions.
func (n *Notifier) count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return len(n.servers)
}

// Broadcast pushes a notification to every session, dropping those that fail.
func (n *Notifier) Broadcast(ctx context.Context, method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))

	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server

	for _, srv := range servers {
		if err := srv.Notify(context.WithoutCancel(ctx), method, params); err != nil {
			logger.DebugKV(ctx, "Push failed", "method", method, "error", err)

			failed = append(failed, srv)
		}
	}

	if len(failed) == 0 {
		return
	}

	n.mu.Lock()
	for _, srv := range failed {
		delete(n.servers, srv)
	}
	n.mu.Unlock()
}

// OnEvent is a runner observer that pushes session lifecycle events.
func (n *Notifier) OnEvent(ctx context.Context, event runner.Event) {
	if event.Session == nil {
		return
	}

	switch event.Type {
	case runner.EventFired:
		n.Broadcast(ctx, pushAlarmFired, &AlarmFiredNotification{
			SessionID: event.Session.ID,
			Title:     event.Session.Payload.Title,
			StartedAt: event.Session.StartedAt.UnixMilli(),
		})
	case runner.EventStopped:
		n.Broadcast(ctx, pushAlarmStopped, &AlarmStoppedNotification{SessionID: event.Session.ID})
	}
}
