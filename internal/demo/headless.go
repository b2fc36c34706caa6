package demo

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/fiber"
	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/scheduler"
)

// maxSlices bounds Settle so a component that updates itself forever
// cannot hang the driver.
const maxSlices = 10000

// Headless runs components against an in-memory document with a manual
// scheduler. SliceUnits > 0 limits each slice to that many units of work.
type Headless struct {
	Doc        *memhost.Document
	Runtime    *fiber.Runtime
	SliceUnits int

	sched   *scheduler.Manual
	slices  int
	commits []fiber.CommitInfo
	errs    []error
}

// NewHeadless creates a driver. opts are passed to fiber.New after the
// driver's own commit and error hooks.
func NewHeadless(logger *slog.Logger, opts ...fiber.Option) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Headless{
		Doc:   memhost.New(memhost.WithLogger(logger.With("component", "memhost"))),
		sched: scheduler.NewManual(),
	}
	base := []fiber.Option{
		fiber.WithLogger(logger.With("component", "fiber")),
		fiber.WithCommitHook(func(info fiber.CommitInfo) { h.commits = append(h.commits, info) }),
		fiber.WithErrorHandler(func(err error) { h.errs = append(h.errs, err) }),
	}
	h.Runtime = fiber.New(h.Doc, h.sched, append(base, opts...)...)
	return h
}

// Mount renders el into the document root and settles.
func (h *Headless) Mount(el *element.Element) error {
	h.Runtime.Render(el, h.Doc.Root())
	return h.Settle()
}

// Settle runs slices until no render is in flight. It returns the first
// error that aborted a render since the last call.
func (h *Headless) Settle() error {
	for i := 0; !h.Runtime.Idle(); i++ {
		if i >= maxSlices {
			return fmt.Errorf("demo: render did not settle after %d slices", maxSlices)
		}
		d := scheduler.Unlimited()
		if h.SliceUnits > 0 {
			d = scheduler.Units(h.SliceUnits)
		}
		if !h.sched.RunNext(d) {
			return fmt.Errorf("demo: render in flight but no callback armed")
		}
		h.slices++
	}
	if len(h.errs) > 0 {
		err := h.errs[0]
		h.errs = nil
		return err
	}
	return nil
}

// Click dispatches a click on the element named name and settles.
func (h *Headless) Click(name string) error {
	return h.dispatch(name, "click", "")
}

// Input dispatches an input event carrying value and settles.
func (h *Headless) Input(name, value string) error {
	return h.dispatch(name, "input", value)
}

func (h *Headless) dispatch(name, event, value string) error {
	n := h.Doc.Root().Find(memhost.ByAttr("name", name))
	if n == nil {
		return errors.New(errors.CodeCLIUsage).WithDetailf("no element named %q", name)
	}
	if err := h.Doc.Dispatch(n.ID, event, value); err != nil {
		return err
	}
	return h.Settle()
}

// Stats summarizes the work done so far.
type Stats struct {
	Slices     int
	Commits    int
	Placements int
	Updates    int
	Deletions  int
}

// Stats returns totals over every commit.
func (h *Headless) Stats() Stats {
	s := Stats{Slices: h.slices, Commits: len(h.commits)}
	for _, c := range h.commits {
		s.Placements += c.Placements
		s.Updates += c.Updates
		s.Deletions += c.Deletions
	}
	return s
}

// HTML returns the rendered markup below the document root.
func (h *Headless) HTML() string {
	return h.Doc.InnerHTML()
}
