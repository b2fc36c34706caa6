package fiber

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/host"
)

// commitRoot applies the finished WIP tree to the host in one pass. On a
// host failure the current tree stays as it was, and a transactional host
// is rolled back.
func (r *Runtime) commitRoot() {
	start := time.Now()
	_, span := r.tracer.Start(r.renderCtx, "didact.commit",
		trace.WithAttributes(attribute.Int("didact.deletions", len(r.deletions))))

	tx, _ := r.host.(host.Transactional)
	if tx != nil {
		if err := tx.Begin(); err != nil {
			span.End()
			r.abort(errors.New(errors.CodeHostCommit).WithDetail("begin transaction").Wrap(err))
			return
		}
	}

	info, err := r.applyEffects()
	if err != nil {
		if tx != nil {
			if rerr := tx.Rollback(); rerr != nil {
				r.logger.Error("rollback failed", "generation", r.generation, "error", rerr)
			}
		}
		span.RecordError(err)
		span.End()
		r.abort(errors.New(errors.CodeHostCommit).Wrap(err))
		return
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			span.End()
			r.abort(errors.New(errors.CodeHostCommit).WithDetail("commit transaction").Wrap(err))
			return
		}
	}

	info.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("didact.placements", info.Placements),
		attribute.Int("didact.updates", info.Updates),
	)
	span.End()
	r.finishCommit(info)
}

// applyEffects flushes deletions, then walks the WIP tree in pre-order
// applying placements and updates.
func (r *Runtime) applyEffects() (CommitInfo, error) {
	info := CommitInfo{Generation: r.generation, Root: r.wipRoot}

	for _, f := range r.deletions {
		if err := r.commitDeletion(f); err != nil {
			return info, err
		}
		info.Deletions++
	}

	for f := r.wipRoot.Child; f != nil; f = nextFiber(f, r.wipRoot) {
		if f.Node == nil {
			continue
		}
		switch f.EffectTag {
		case EffectPlacement:
			if err := r.host.AppendChild(hostParent(f), f.Node); err != nil {
				return info, fmt.Errorf("place %s: %w", f.Type, err)
			}
			info.Placements++
		case EffectUpdate:
			if err := r.host.UpdateProps(f.Node, f.Alternate.Props, f.Props); err != nil {
				return info, fmt.Errorf("update %s: %w", f.Type, err)
			}
			info.Updates++
		}
	}
	return info, nil
}

// commitDeletion detaches the host nodes of f's subtree. A fiber with a
// host node is removed as a whole; component fibers are descended until
// host nodes are found.
func (r *Runtime) commitDeletion(f *Fiber) error {
	parent := hostParent(f)
	var err error
	f.Walk(func(n *Fiber) bool {
		if err != nil {
			return false
		}
		if n.Node == nil {
			return true
		}
		if rerr := r.host.RemoveChild(parent, n.Node); rerr != nil {
			err = fmt.Errorf("remove %s: %w", n.Type, rerr)
		}
		return false
	})
	return err
}

// finishCommit promotes the WIP tree and settles its hooks.
func (r *Runtime) finishCommit(info CommitInfo) {
	root := r.wipRoot

	root.Walk(func(f *Fiber) bool {
		f.Alternate = nil
		return true
	})
	for _, h := range r.wipHooks {
		if h.prev != nil {
			h.prev.queue = nil
			h.prev = nil
		}
	}
	for _, f := range r.deletions {
		f.Walk(func(n *Fiber) bool {
			for _, h := range n.hooks {
				h.dead = true
			}
			return true
		})
	}

	r.currentRoot = root
	r.wipRoot = nil
	r.nextUnitOfWork = nil
	r.deletions = nil
	r.wipHooks = nil
	r.lastErr = nil

	r.metrics.observeCommit(info)
	if r.renderSpan != nil {
		r.renderSpan.End()
		r.renderSpan = nil
	}
	r.logger.Debug("commit",
		"generation", info.Generation,
		"placements", info.Placements,
		"updates", info.Updates,
		"deletions", info.Deletions,
		"duration", info.Duration,
	)

	if r.onCommit != nil {
		r.onCommit(info)
	}
	r.startPending()
}
