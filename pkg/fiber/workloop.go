package fiber

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/scheduler"
)

// workLoop is the scheduler callback. It drains units of work until the
// deadline runs low, commits a finished tree, and always re-arms itself.
func (r *Runtime) workLoop(deadline scheduler.Deadline) {
	defer r.sched.ScheduleCallback(r.workLoop)

	if r.nextUnitOfWork == nil && r.wipRoot == nil {
		return
	}

	start := time.Now()
	units := 0
	shouldYield := false
	for r.nextUnitOfWork != nil && !shouldYield {
		next, err := r.performUnitOfWork(r.nextUnitOfWork)
		units++
		if err != nil {
			r.abort(err)
			break
		}
		r.nextUnitOfWork = next
		shouldYield = deadline.TimeRemaining() < r.yieldThreshold
	}
	r.metrics.observeSlice(units, shouldYield && r.nextUnitOfWork != nil, time.Since(start))

	if shouldYield && r.nextUnitOfWork != nil {
		r.logger.Debug("slice yielded", "generation", r.generation, "units", units)
	}

	if r.nextUnitOfWork == nil && r.wipRoot != nil {
		r.commitRoot()
	}
}

// performUnitOfWork processes one fiber and returns the next one.
func (r *Runtime) performUnitOfWork(f *Fiber) (*Fiber, error) {
	var err error
	if f.Type.IsComponent() {
		err = r.updateFunctionComponent(f)
	} else {
		err = r.updateHostComponent(f)
	}
	if err != nil {
		return nil, err
	}
	return nextFiber(f, r.wipRoot), nil
}

func (r *Runtime) updateFunctionComponent(f *Fiber) error {
	r.wipFiber = f
	r.hookIndex = 0
	f.hooks = nil
	defer func() { r.wipFiber = nil }()

	child, err := r.renderComponent(f)
	if err != nil {
		return err
	}
	if f.Alternate != nil && len(f.Alternate.hooks) != len(f.hooks) {
		return errors.New(errors.CodeHookOrder).
			WithDetailf("%s rendered %d hooks, previous render had %d",
				f.Type, len(f.hooks), len(f.Alternate.hooks))
	}

	var children []*element.Element
	if child != nil {
		children = []*element.Element{child}
	}
	r.reconcileChildren(f, children)
	return nil
}

// renderComponent runs the component, turning panics into errors.
func (r *Runtime) renderComponent(f *Fiber) (child *element.Element, err error) {
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(*errors.Error); ok {
				err = e
				return
			}
			perr, _ := v.(error)
			err = errors.New(errors.CodeComponentPanic).
				WithDetailf("%s: %v", f.Type, v).
				Wrap(perr)
		}
	}()
	return f.Type.Comp.Render(&scope{r: r, f: f}, f.Props), nil
}

func (r *Runtime) updateHostComponent(f *Fiber) error {
	if f.Node == nil {
		node, err := r.host.CreateNode(f.Type)
		if err != nil {
			return errors.New(errors.CodeHostRender).WithDetailf("create %s", f.Type).Wrap(err)
		}
		if err := r.host.UpdateProps(node, nil, f.Props); err != nil {
			return errors.New(errors.CodeHostRender).WithDetailf("initial props of %s", f.Type).Wrap(err)
		}
		f.Node = node
	}
	r.reconcileChildren(f, f.Props.Children())
	return nil
}

// abort drops the in-flight render. The current tree stays authoritative,
// and hook actions queued against the dropped tree move back to the
// committed hooks so they apply on the next render.
func (r *Runtime) abort(err error) {
	r.lastErr = err
	r.logger.Warn("render aborted", "generation", r.generation, "error", err)
	r.metrics.observeAbort(err)

	if r.renderSpan != nil {
		r.renderSpan.RecordError(err)
		r.renderSpan.SetStatus(codes.Error, fmt.Sprintf("render aborted: %s", errors.Code(err)))
		r.renderSpan.End()
		r.renderSpan = nil
	}

	for _, h := range r.wipHooks {
		if h.prev == nil {
			h.dead = true
			continue
		}
		h.prev.next = nil
		h.prev.queue = append(h.prev.queue, h.queue...)
		h.queue = nil
		h.next = h.prev
	}

	r.wipRoot = nil
	r.nextUnitOfWork = nil
	r.deletions = nil
	r.wipHooks = nil
	r.wipFiber = nil
	r.dirty = false

	if r.onError != nil {
		r.onError(err)
	}
	if req := r.pendingRoot; req != nil {
		r.pendingRoot = nil
		r.Render(req.element, req.container)
	}
}
