package timer

import (
	"net/http"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/oshokin/pomodoro-alarm/internal/logger"
)

// Server serves the method channel over HTTP and WebSocket.
type Server struct {
	// service provides the control-surface operations.
	service Service
	// methods is shared by the HTTP bridge and every WebSocket session.
	methods handler.Map
	// bridge serves POST /jsonrpc.
	bridge jhttp.Bridge
	// secret is the bearer token; empty disables auth.
	secret string
	// notifier pushes session events to WebSocket clients.
	notifier *Notifier
}

// NewServer creates the method channel over the service.
func NewServer(service Service, secret string) *Server {
	s := &Server{
		service:  service,
		secret:   secret,
		notifier: NewNotifier(),
	}

	s.methods = handler.Map{
		methodStartPomodoro:            handler.New(s.startPomodoro),
		methodCancelPomodoro:           handler.New(s.cancelPomodoro),
		methodStopRingtone:             handler.New(s.stopRingtone),
		methodOpenExactAlarmSettings:   handler.New(s.openExactAlarmSettings),
		methodOpenNotificationSettings: handler.New(s.openNotificationSettings),
		methodAreNotificationsEnabled:  handler.New(s.areNotificationsEnabled),
		methodRequestPostNotifications: handler.New(s.requestPostNotifications),
		methodGetStatus:                handler.New(s.getStatus),
	}

	s.bridge = jhttp.NewBridge(s.methods, nil)

	return s
}

// Notifier returns the push broadcaster.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

// Handler returns the HTTP handler serving both endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /jsonrpc", requireToken(s.secret, s.bridge))
	mux.Handle("GET /jsonrpc/ws", requireToken(s.secret, http.HandlerFunc(s.serveWebSocket)))

	return mux
}

// Close shuts down the HTTP bridge.
func (s *Server) Close() error {
	return s.bridge.Close()
}

// serveWebSocket runs one push-enabled JSON-RPC session per connection.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithName(r.Context(), "jsonrpc")

	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		logger.DebugKV(ctx, "WebSocket upgrade failed", "error", err)

		return
	}

	srv := jrpc2.NewServer(s.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(&wsChannel{conn: conn, ctx: ctx})

	s.notifier.Register(srv)
	defer s.notifier.Unregister(srv)

	logger.Debug(ctx, "WebSocket client connected")

	if err = srv.Wait(); err != nil {
		logger.DebugKV(ctx, "WebSocket session ended", "error", err)
	}
}
