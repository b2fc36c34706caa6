package live

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/didact/internal/demo"
	"github.com/vango-dev/didact/pkg/fiber"
	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/scheduler"
)

type liveFixture struct {
	srv  *Server
	ts   *httptest.Server
	loop *scheduler.FrameLoop
	doc  *memhost.Document
	rt   *fiber.Runtime
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLiveFixture(t *testing.T) *liveFixture {
	t.Helper()
	logger := discardLogger()
	reg := prometheus.NewRegistry()

	loop := scheduler.NewFrameLoop(
		scheduler.WithFrameInterval(5*time.Millisecond),
		scheduler.WithFrameBudget(4*time.Millisecond),
		scheduler.WithLoopLogger(logger),
	)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	doc := memhost.New(memhost.WithLogger(logger))
	rt := fiber.New(doc, loop,
		fiber.WithLogger(logger),
		fiber.WithMetrics(fiber.NewMetrics(fiber.WithRegistry(reg))),
	)
	srv := New(doc, loop, Config{Logger: logger, Registerer: reg, Gatherer: reg})

	f := &liveFixture{srv: srv, loop: loop, doc: doc, rt: rt}
	f.waitRunning(t)
	f.call(t, func() { rt.Render(demo.Root("live"), doc.Root()) })
	f.waitFor(t, func() bool { return rt.Idle() && rt.CurrentRoot() != nil })

	f.ts = httptest.NewServer(srv.Handler())
	t.Cleanup(f.ts.Close)
	return f
}

func (f *liveFixture) waitRunning(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := f.loop.Submit(func() {}); err == nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("frame loop did not start")
}

func (f *liveFixture) call(t *testing.T, fn func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.loop.Call(ctx, fn); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
}

func (f *liveFixture) waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var ok bool
		f.call(t, func() { ok = cond() })
		if ok {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func (f *liveFixture) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func (f *liveFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func findSnapshot(n *memhost.SnapshotNode, name string) *memhost.SnapshotNode {
	if n.Attrs["name"] == name {
		return n
	}
	for _, c := range n.Children {
		if found := findSnapshot(c, name); found != nil {
			return found
		}
	}
	return nil
}

func TestHealthz(t *testing.T) {
	f := newLiveFixture(t)
	code, body := f.get(t, "/healthz")
	if code != http.StatusOK || body != "ok" {
		t.Errorf("GET /healthz = %d %q, want 200 ok", code, body)
	}
}

func TestPage(t *testing.T) {
	f := newLiveFixture(t)
	code, body := f.get(t, "/")
	if code != http.StatusOK {
		t.Fatalf("GET / status = %d", code)
	}
	for _, want := range []string{
		"<title>didact</title>",
		`<div id="didact-mount"><div data-didact-id="1">`,
		"Count: 0",
		`data-didact-on="click"`,
		"new WebSocket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newLiveFixture(t)
	code, body := f.get(t, "/metrics")
	if code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", code)
	}
	for _, want := range []string{"didact_commits_total 1", "didact_live_clients 0"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestWebSocketSnapshotThenOps(t *testing.T) {
	f := newLiveFixture(t)
	conn := f.dial(t)

	msg := readMessage(t, conn)
	if msg.Type != MessageSnapshot || msg.Root == nil {
		t.Fatalf("first message = %+v, want snapshot", msg)
	}
	button := findSnapshot(msg.Root, "increment")
	if button == nil {
		t.Fatal("snapshot has no increment button")
	}
	if f.srv.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", f.srv.ClientCount())
	}

	if err := conn.WriteJSON(Message{Type: MessageEvent, Node: button.ID, Event: "click"}); err != nil {
		t.Fatal(err)
	}

	for {
		msg := readMessage(t, conn)
		if msg.Type != MessageOps {
			t.Fatalf("message = %+v, want ops", msg)
		}
		for _, op := range msg.Ops {
			if op.Kind == memhost.OpText && op.Value == "Count: 1" {
				return
			}
		}
	}
}

func TestWebSocketErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "unexpected type",
			msg:  Message{Type: MessageOps},
			want: `unexpected message type "ops"`,
		},
		{
			name: "unknown node",
			msg:  Message{Type: MessageEvent, Node: 99999, Event: "click"},
			want: "node 99999 not found",
		},
	}

	f := newLiveFixture(t)
	conn := f.dial(t)
	readMessage(t, conn)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteJSON(tt.msg); err != nil {
				t.Fatal(err)
			}
			got := readMessage(t, conn)
			if got.Type != MessageError || !strings.Contains(got.Error, tt.want) {
				t.Errorf("reply = %+v, want error containing %q", got, tt.want)
			}
		})
	}
}
