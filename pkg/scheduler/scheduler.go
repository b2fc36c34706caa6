// Package scheduler provides the clock/yield collaborators consumed by the
// fiber runtime: a Scheduler that re-arms the work loop on the next
// cooperative slice, and Deadlines that report how much of the slice is
// left.
package scheduler

import (
	"sync"
	"time"
)

// Deadline reports the time left in the current cooperative slice.
type Deadline interface {
	TimeRemaining() time.Duration
}

// Scheduler arms a callback for the next available slice.
type Scheduler interface {
	ScheduleCallback(cb func(Deadline))
}

// DeadlineFunc adapts a function to Deadline.
type DeadlineFunc func() time.Duration

// TimeRemaining implements Deadline.
func (f DeadlineFunc) TimeRemaining() time.Duration {
	return f()
}

// Unlimited returns a deadline that never runs out.
func Unlimited() Deadline {
	return DeadlineFunc(func() time.Duration { return time.Hour })
}

// Exhausted returns a deadline with no time left.
func Exhausted() Deadline {
	return DeadlineFunc(func() time.Duration { return 0 })
}

// Units returns a deadline that allows exactly n probes to report time
// left: the k-th call reports n-k milliseconds. With the runtime's default
// one-millisecond yield threshold a slice processes n units of work.
func Units(n int) Deadline {
	remaining := n
	return DeadlineFunc(func() time.Duration {
		remaining--
		if remaining < 0 {
			remaining = 0
		}
		return time.Duration(remaining) * time.Millisecond
	})
}

// WallClock returns a deadline that expires at end.
func WallClock(end time.Time) Deadline {
	return DeadlineFunc(func() time.Duration {
		if d := time.Until(end); d > 0 {
			return d
		}
		return 0
	})
}

// Manual queues callbacks until the test runs them. It is safe for
// concurrent use, but callbacks run on the caller of RunNext.
type Manual struct {
	mu    sync.Mutex
	queue []func(Deadline)
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// ScheduleCallback implements Scheduler.
func (m *Manual) ScheduleCallback(cb func(Deadline)) {
	m.mu.Lock()
	m.queue = append(m.queue, cb)
	m.mu.Unlock()
}

// Pending returns the number of armed callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// RunNext runs the oldest armed callback with d. It reports whether a
// callback was run.
func (m *Manual) RunNext(d Deadline) bool {
	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return false
	}
	cb := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	cb(d)
	return true
}
