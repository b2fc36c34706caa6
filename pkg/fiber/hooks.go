package fiber

import (
	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
)

// hook is one positional state cell of a component fiber.
//
// A cell rendered from a previous cell links both ways: prev points back
// until the render commits, next forwards actions queued against an old
// cell to the newest generation.
type hook struct {
	kind  element.HookKind
	state any
	queue []element.Action

	prev *hook
	next *hook

	// dead cells belong to unmounted fibers and drop actions.
	dead bool
}

// scope is the element.Scope bound to one component fiber for one render.
type scope struct {
	r *Runtime
	f *Fiber
}

// State implements element.Scope.
func (s *scope) State(kind element.HookKind, initial any) (any, func(element.Action)) {
	r := s.r
	if r.wipFiber != s.f {
		panic(errors.New(errors.CodeHookOutsideScope).
			WithDetailf("%s hook called after %s returned", kind, s.f.Type))
	}

	idx := r.hookIndex
	var old *hook
	if alt := s.f.Alternate; alt != nil {
		if idx >= len(alt.hooks) {
			panic(errors.New(errors.CodeHookOrder).
				WithDetailf("%s: extra %s hook at index %d", s.f.Type, kind, idx))
		}
		old = alt.hooks[idx]
		if old.kind != kind {
			panic(errors.New(errors.CodeHookOrder).
				WithDetailf("%s: hook %d was %s, now %s", s.f.Type, idx, old.kind, kind))
		}
	}

	h := &hook{kind: kind, state: initial}
	if old != nil {
		h.state = old.state
		for _, action := range old.queue {
			h.state = action(h.state)
		}
		h.prev = old
		old.next = h
	}

	s.f.hooks = append(s.f.hooks, h)
	r.wipHooks = append(r.wipHooks, h)
	r.hookIndex++

	return h.state, func(action element.Action) {
		r.enqueue(h, action)
	}
}

// enqueue queues action on the newest generation of h and schedules a
// re-render.
func (r *Runtime) enqueue(h *hook, action element.Action) {
	for h.next != nil {
		h = h.next
	}
	if h.dead {
		r.logger.Debug("state update on unmounted component dropped", "kind", h.kind)
		return
	}
	h.queue = append(h.queue, action)
	r.scheduleUpdate()
}

// UseState returns the state of the current hook cell and a setter. The
// setter queues fn and re-renders the tree; queued functions are applied
// in order on the next render.
//
//	count, setCount := fiber.UseState(s, 0)
//	setCount(func(n int) int { return n + 1 })
func UseState[T any](s element.Scope, initial T) (T, func(fn func(T) T)) {
	v, update := s.State(element.HookState, initial)
	return valueOf[T](v), func(fn func(T) T) {
		update(func(prev any) any { return fn(valueOf[T](prev)) })
	}
}

// Set returns an update function replacing the state with v.
func Set[T any](v T) func(T) T {
	return func(T) T { return v }
}

// UseReducer is UseState with the transition given by reducer.
func UseReducer[S, A any](s element.Scope, reducer func(S, A) S, initial S) (S, func(A)) {
	v, update := s.State(element.HookReducer, initial)
	return valueOf[S](v), func(a A) {
		update(func(prev any) any { return reducer(valueOf[S](prev), a) })
	}
}

// Ref is a mutable cell that keeps its identity across renders and does
// not trigger re-renders.
type Ref[T any] struct {
	Current T
}

// UseRef returns the component's Ref for the current hook position.
func UseRef[T any](s element.Scope, initial T) *Ref[T] {
	v, _ := s.State(element.HookRef, &Ref[T]{Current: initial})
	return valueOf[*Ref[T]](v)
}

func valueOf[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		panic(errors.New(errors.CodeHookOrder).
			WithDetailf("state has type %T, hook expects %T", v, zero))
	}
	return t
}
