package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/didact/internal/errors"
)

var (
	// ErrLoopNotRunning is returned when work is submitted before Run.
	ErrLoopNotRunning = errors.New(errors.CodeLoopNotRunning)

	// ErrLoopTerminated is returned when work is submitted after Run returned.
	ErrLoopTerminated = errors.New(errors.CodeLoopTerminated)
)

// Default frame timing, roughly one 60Hz frame with headroom.
const (
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultFrameBudget   = 12 * time.Millisecond
)

const (
	loopIdle int32 = iota
	loopRunning
	loopTerminated
)

// FrameLoop is a Scheduler driven by a single goroutine. Every frame it
// runs the tasks submitted from other goroutines, then each callback armed
// before the frame started, with a wall-clock deadline of FrameBudget.
//
// Everything the loop runs executes on the goroutine that called Run, so
// a runtime driven by a FrameLoop needs no locking as long as all other
// access goes through Submit or Call.
type FrameLoop struct {
	interval time.Duration
	budget   time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	callbacks []func(Deadline)
	tasks     []func()

	wake  chan struct{}
	state atomic.Int32
	done  chan struct{}
}

// LoopOption configures a FrameLoop.
type LoopOption func(*FrameLoop)

// WithFrameInterval sets the time between frames.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *FrameLoop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithFrameBudget sets how much of a frame the armed callbacks may use.
func WithFrameBudget(d time.Duration) LoopOption {
	return func(l *FrameLoop) {
		if d > 0 {
			l.budget = d
		}
	}
}

// WithLoopLogger sets the loop's logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *FrameLoop) {
		l.logger = logger
	}
}

// NewFrameLoop creates a frame loop. Call Run to start it.
func NewFrameLoop(opts ...LoopOption) *FrameLoop {
	l := &FrameLoop{
		interval: DefaultFrameInterval,
		budget:   DefaultFrameBudget,
		logger:   slog.Default().With("component", "frameloop"),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ScheduleCallback implements Scheduler. It may be called from any goroutine.
func (l *FrameLoop) ScheduleCallback(cb func(Deadline)) {
	l.mu.Lock()
	l.callbacks = append(l.callbacks, cb)
	l.mu.Unlock()
}

// Submit queues fn to run on the loop goroutine before the next frame's
// callbacks.
func (l *FrameLoop) Submit(fn func()) error {
	switch l.state.Load() {
	case loopIdle:
		return ErrLoopNotRunning
	case loopTerminated:
		return ErrLoopTerminated
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Call runs fn on the loop goroutine and waits for it to return.
func (l *FrameLoop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopTerminated
	}
}

// Run drives the loop until ctx is cancelled. It returns ctx.Err().
func (l *FrameLoop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(loopIdle, loopRunning) {
		return ErrLoopTerminated
	}
	defer func() {
		l.state.Store(loopTerminated)
		close(l.done)
	}()

	l.logger.Debug("frame loop started", "interval", l.interval, "budget", l.budget)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("frame loop stopped")
			return ctx.Err()
		case <-l.wake:
			l.runTasks()
		case now := <-ticker.C:
			l.runTasks()
			l.runFrame(now)
		}
	}
}

// Done is closed when Run returns.
func (l *FrameLoop) Done() <-chan struct{} {
	return l.done
}

func (l *FrameLoop) runTasks() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}
}

func (l *FrameLoop) runFrame(start time.Time) {
	l.mu.Lock()
	callbacks := l.callbacks
	l.callbacks = nil
	l.mu.Unlock()

	deadline := WallClock(start.Add(l.budget))
	for _, cb := range callbacks {
		cb(deadline)
	}
}
