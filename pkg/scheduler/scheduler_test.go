package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/didact/internal/errors"
)

func TestUnits(t *testing.T) {
	d := Units(3)
	want := []time.Duration{2 * time.Millisecond, 1 * time.Millisecond, 0, 0}
	for i, w := range want {
		if got := d.TimeRemaining(); got != w {
			t.Errorf("probe %d = %v, want %v", i, got, w)
		}
	}
}

func TestFixedDeadlines(t *testing.T) {
	if Unlimited().TimeRemaining() < time.Minute {
		t.Error("Unlimited should report plenty of time")
	}
	if Exhausted().TimeRemaining() != 0 {
		t.Error("Exhausted should report zero")
	}
	if WallClock(time.Now().Add(-time.Second)).TimeRemaining() != 0 {
		t.Error("past wall clock deadline should report zero")
	}
	if WallClock(time.Now().Add(time.Hour)).TimeRemaining() <= 0 {
		t.Error("future wall clock deadline should report time left")
	}
}

func TestManual(t *testing.T) {
	m := NewManual()
	if m.RunNext(Unlimited()) {
		t.Error("RunNext on empty queue should report false")
	}

	var order []int
	m.ScheduleCallback(func(Deadline) { order = append(order, 1) })
	m.ScheduleCallback(func(Deadline) { order = append(order, 2) })
	if m.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", m.Pending())
	}

	m.RunNext(Unlimited())
	m.RunNext(Unlimited())
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestFrameLoopSubmitBeforeRun(t *testing.T) {
	l := NewFrameLoop()
	if err := l.Submit(func() {}); !errors.Is(err, ErrLoopNotRunning) {
		t.Errorf("Submit before Run = %v, want ErrLoopNotRunning", err)
	}
}

func TestFrameLoopRunsCallbacksAndTasks(t *testing.T) {
	l := NewFrameLoop(WithFrameInterval(time.Millisecond), WithFrameBudget(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go l.Run(ctx)

	var frames atomic.Int32
	var rearm func(Deadline)
	rearm = func(d Deadline) {
		if d.TimeRemaining() > time.Millisecond {
			t.Error("deadline exceeds frame budget")
		}
		if frames.Add(1) < 3 {
			l.ScheduleCallback(rearm)
		}
	}

	// Call waits for the loop to be running and executes on it.
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := l.Call(ctx, func() { l.ScheduleCallback(rearm) })
		if err == nil {
			break
		}
		if !errors.Is(err, ErrLoopNotRunning) || time.Now().After(deadline) {
			t.Fatalf("Call() error = %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	for frames.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d frames ran", frames.Load())
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-l.Done()
	if err := l.Submit(func() {}); !errors.Is(err, ErrLoopTerminated) {
		t.Errorf("Submit after stop = %v, want ErrLoopTerminated", err)
	}
	if err := l.Run(context.Background()); !errors.Is(err, ErrLoopTerminated) {
		t.Errorf("second Run = %v, want ErrLoopTerminated", err)
	}
}
