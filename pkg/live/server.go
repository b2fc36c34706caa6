package live

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/scheduler"
)

// Server exposes a document owned by a frame loop over HTTP.
type Server struct {
	doc    *memhost.Document
	loop   *scheduler.FrameLoop
	config Config
	hub    *hub
	router chi.Router

	upgrader websocket.Upgrader
	metrics  *serverMetrics
}

// Config configures a Server.
type Config struct {
	// Title is the page title (default: "didact").
	Title string

	// Logger receives request and connection logs.
	// Default: slog.Default().With("component", "live")
	Logger *slog.Logger

	// Registerer registers the server's own metrics.
	// Default: prometheus.DefaultRegisterer
	Registerer prometheus.Registerer

	// Gatherer is served on /metrics.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// CheckOrigin validates websocket origins. Default: allow all.
	CheckOrigin func(*http.Request) bool
}

type serverMetrics struct {
	clients        prometheus.Gauge
	messagesSent   prometheus.Counter
	eventsReceived *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)
	return &serverMetrics{
		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "didact",
			Subsystem: "live",
			Name:      "clients",
			Help:      "Number of connected websocket clients",
		}),
		messagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "didact",
			Subsystem: "live",
			Name:      "messages_sent_total",
			Help:      "Total number of websocket messages queued for clients",
		}),
		eventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "didact",
			Subsystem: "live",
			Name:      "events_received_total",
			Help:      "Total number of browser events received by event name",
		}, []string{"event"}),
	}
}

// New creates a server for doc. The document's OnFlush is taken over to
// stream commits, so doc must only be mutated on loop.
func New(doc *memhost.Document, loop *scheduler.FrameLoop, config Config) *Server {
	if config.Title == "" {
		config.Title = "didact"
	}
	if config.Logger == nil {
		config.Logger = slog.Default().With("component", "live")
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = func(*http.Request) bool { return true }
	}

	s := &Server{
		doc:     doc,
		loop:    loop,
		config:  config,
		metrics: newServerMetrics(config.Registerer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	s.hub = newHub(config.Logger, s.metrics)
	doc.OnFlush = func(ops []memhost.Op) {
		s.hub.broadcast(Message{Type: MessageOps, Ops: ops})
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.handleWebSocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	return s.hub.count()
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.config.Logger.Info("live server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.config.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="didact-mount">{{.Body}}</div>
{{.Script}}
</body>
</html>
`))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var body string
	if err := s.loop.Call(r.Context(), func() {
		body = memhost.RenderHTML(s.doc.Root(), memhost.HTMLOptions{IDs: true})
	}); err != nil {
		s.config.Logger.Warn("render page", "error", err)
		http.Error(w, "runtime unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, struct {
		Title  string
		Body   template.HTML
		Script template.HTML
	}{
		Title:  s.config.Title,
		Body:   template.HTML(body),
		Script: template.HTML(ClientScript),
	})
	if err != nil {
		s.config.Logger.Warn("write page", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.config.Logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	go c.writePump(s.config.Logger)

	// Snapshot and registration happen on the loop so no commit falls
	// between them.
	err = s.loop.Call(r.Context(), func() {
		s.hub.register(c)
		s.hub.send(c, Message{Type: MessageSnapshot, Root: s.doc.Snapshot()})
	})
	if err != nil {
		s.config.Logger.Warn("websocket snapshot", "error", err)
		if errors.Is(err, scheduler.ErrLoopNotRunning) || errors.Is(err, scheduler.ErrLoopTerminated) {
			close(c.send)
		} else {
			s.hub.unregister(c)
		}
		return
	}
	defer s.hub.unregister(c)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.config.Logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		if msg.Type != MessageEvent {
			s.hub.send(c, Message{Type: MessageError, Error: fmt.Sprintf("unexpected message type %q", msg.Type)})
			continue
		}
		s.metrics.eventsReceived.WithLabelValues(msg.Event).Inc()
		s.dispatch(c, msg)
	}
}

// dispatch delivers a browser event on the loop goroutine.
func (s *Server) dispatch(c *client, msg Message) {
	err := s.loop.Submit(func() {
		if err := s.doc.Dispatch(msg.Node, msg.Event, msg.Value); err != nil {
			s.config.Logger.Warn("dispatch event", "node", msg.Node, "event", msg.Event, "error", err)
			s.hub.send(c, Message{Type: MessageError, Error: err.Error()})
		}
	})
	if err != nil {
		s.hub.send(c, Message{Type: MessageError, Error: err.Error()})
	}
}
