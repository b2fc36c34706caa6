package fiber

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/scheduler"
)

// harness drives a Runtime over an in-memory document with a manual
// scheduler.
type harness struct {
	t       *testing.T
	doc     *memhost.Document
	sched   *scheduler.Manual
	rt      *Runtime
	commits []CommitInfo
	errs    []error
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, doc: memhost.New(), sched: scheduler.NewManual()}
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithCommitHook(func(info CommitInfo) { h.commits = append(h.commits, info) }),
		WithErrorHandler(func(err error) { h.errs = append(h.errs, err) }),
	}
	h.rt = New(h.doc, h.sched, append(base, opts...)...)
	return h
}

func (h *harness) render(el *element.Element) {
	h.t.Helper()
	h.rt.Render(el, h.doc.Root())
	h.flush()
}

// flush runs slices with unlimited time until nothing is in flight.
func (h *harness) flush() {
	h.t.Helper()
	for i := 0; !h.rt.Idle(); i++ {
		if i > 100 {
			h.t.Fatal("runtime did not settle")
		}
		if !h.sched.RunNext(scheduler.Unlimited()) {
			h.t.Fatal("render in flight but no callback armed")
		}
	}
}

func (h *harness) html() string {
	return h.doc.InnerHTML()
}

func (h *harness) lastCommit() CommitInfo {
	h.t.Helper()
	if len(h.commits) == 0 {
		h.t.Fatal("no commit recorded")
	}
	return h.commits[len(h.commits)-1]
}

func (h *harness) click(n *memhost.Node) {
	h.t.Helper()
	if err := h.doc.Dispatch(n.ID, "click", ""); err != nil {
		h.t.Fatalf("Dispatch(%d) error = %v", n.ID, err)
	}
}

// child returns the host node at path below the container.
func (h *harness) child(path ...int) *memhost.Node {
	h.t.Helper()
	n := h.doc.Root()
	for _, i := range path {
		if i >= len(n.Children) {
			h.t.Fatalf("node %d has %d children, want index %d", n.ID, len(n.Children), i)
		}
		n = n.Children[i]
	}
	return n
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", code)
	}
	if got := errors.Code(err); got != code {
		t.Errorf("error code = %q, want %s (error: %v)", got, code, err)
	}
}

// recordingTracer records the names of started spans.
type recordingTracer struct {
	noop.Tracer
	names []string
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.names = append(r.names, name)
	return r.Tracer.Start(ctx, name, opts...)
}
