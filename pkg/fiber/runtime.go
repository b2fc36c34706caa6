package fiber

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
	"github.com/vango-dev/didact/pkg/scheduler"
)

// DefaultYieldThreshold is the remaining slice time below which the work
// loop yields.
const DefaultYieldThreshold = time.Millisecond

// Phase is the work loop state.
type Phase uint8

const (
	PhaseIdle          Phase = iota // no render in flight
	PhaseRendering                  // units of work left
	PhaseCommitPending              // tree built, not yet committed
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseRendering:
		return "Rendering"
	case PhaseCommitPending:
		return "CommitPending"
	default:
		return "Unknown"
	}
}

// CommitInfo describes a finished commit.
type CommitInfo struct {
	Generation uint64
	Root       *Fiber
	Placements int
	Updates    int
	Deletions  int
	Duration   time.Duration
}

// rootRequest is a Render call waiting for the in-flight render.
type rootRequest struct {
	element   *element.Element
	container host.Node
}

// Runtime owns the render generations of one host tree.
type Runtime struct {
	host           host.Adapter
	sched          scheduler.Scheduler
	logger         *slog.Logger
	metrics        *Metrics
	tracer         trace.Tracer
	yieldThreshold time.Duration
	onError        func(error)
	onCommit       func(CommitInfo)

	currentRoot    *Fiber
	wipRoot        *Fiber
	nextUnitOfWork *Fiber
	deletions      []*Fiber

	// Hook cursor for the component being rendered.
	wipFiber  *Fiber
	hookIndex int
	wipHooks  []*hook

	armed       bool
	dirty       bool
	pendingRoot *rootRequest

	generation uint64
	renderCtx  context.Context
	renderSpan trace.Span
	lastErr    error
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records runtime metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithTracer sets the tracer for render and commit spans.
// Default: otel.Tracer("didact") from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runtime) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithYieldThreshold sets the remaining slice time below which the work
// loop yields to the scheduler.
func WithYieldThreshold(d time.Duration) Option {
	return func(r *Runtime) {
		r.yieldThreshold = d
	}
}

// WithErrorHandler is called with every error that aborts a render.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Runtime) {
		r.onError = fn
	}
}

// WithCommitHook is called after every successful commit.
func WithCommitHook(fn func(CommitInfo)) Option {
	return func(r *Runtime) {
		r.onCommit = fn
	}
}

// New creates a runtime mutating h and slicing work through s.
// The work loop is armed by the first Render call.
func New(h host.Adapter, s scheduler.Scheduler, opts ...Option) *Runtime {
	r := &Runtime{
		host:           h,
		sched:          s,
		logger:         slog.Default().With("component", "fiber"),
		tracer:         otel.Tracer("didact"),
		yieldThreshold: DefaultYieldThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render requests that container show el. If a render is in flight the
// request waits for it to commit; of several waiting requests the last wins.
func (r *Runtime) Render(el *element.Element, container host.Node) {
	if r.wipRoot != nil {
		r.logger.Debug("render request queued behind in-flight render", "generation", r.generation)
		r.pendingRoot = &rootRequest{element: el, container: container}
		return
	}
	r.startRender(&Fiber{
		Node:      container,
		Props:     element.Props{element.PropChildren: []*element.Element{el}},
		Alternate: r.currentRoot,
	}, "render")
}

// scheduleUpdate re-renders the whole tree from the current root.
func (r *Runtime) scheduleUpdate() {
	if r.wipRoot != nil {
		r.dirty = true
		return
	}
	if r.currentRoot == nil {
		return
	}
	r.startRender(&Fiber{
		Node:      r.currentRoot.Node,
		Props:     r.currentRoot.Props,
		Alternate: r.currentRoot,
	}, "update")
}

func (r *Runtime) startRender(root *Fiber, trigger string) {
	r.generation++
	r.wipRoot = root
	r.nextUnitOfWork = root
	r.deletions = nil
	r.wipHooks = nil

	r.renderCtx, r.renderSpan = r.tracer.Start(context.Background(), "didact.render",
		trace.WithAttributes(
			attribute.Int64("didact.generation", int64(r.generation)),
			attribute.String("didact.trigger", trigger),
		),
	)
	r.logger.Debug("render started", "generation", r.generation, "trigger", trigger)

	if !r.armed {
		r.armed = true
		r.sched.ScheduleCallback(r.workLoop)
	}
}

// startPending starts the render requested while the last one was in flight.
func (r *Runtime) startPending() {
	if req := r.pendingRoot; req != nil {
		r.pendingRoot = nil
		r.dirty = false
		r.Render(req.element, req.container)
		return
	}
	if r.dirty {
		r.dirty = false
		r.scheduleUpdate()
	}
}

// Phase returns the work loop state.
func (r *Runtime) Phase() Phase {
	switch {
	case r.wipRoot == nil:
		return PhaseIdle
	case r.nextUnitOfWork != nil:
		return PhaseRendering
	default:
		return PhaseCommitPending
	}
}

// Idle reports whether no render is in flight or waiting.
func (r *Runtime) Idle() bool {
	return r.wipRoot == nil && r.pendingRoot == nil && !r.dirty
}

// CurrentRoot returns the root of the last committed tree.
func (r *Runtime) CurrentRoot() *Fiber {
	return r.currentRoot
}

// WorkInProgress returns the root of the tree being built, or nil.
func (r *Runtime) WorkInProgress() *Fiber {
	return r.wipRoot
}

// NextUnitOfWork returns the fiber the work loop will process next.
func (r *Runtime) NextUnitOfWork() *Fiber {
	return r.nextUnitOfWork
}

// Deletions returns the fibers slated for removal in the in-flight render.
func (r *Runtime) Deletions() []*Fiber {
	out := make([]*Fiber, len(r.deletions))
	copy(out, r.deletions)
	return out
}

// Generation returns the number of renders started so far.
func (r *Runtime) Generation() uint64 {
	return r.generation
}

// LastError returns the error that aborted the most recent failed render.
func (r *Runtime) LastError() error {
	return r.lastErr
}
