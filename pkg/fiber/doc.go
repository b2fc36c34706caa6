// Package fiber implements the incremental reconciler: the fiber tree, the
// positional child diff, the cooperative work loop, the commit phase and
// the hook store backing function component state.
//
// # Render generations
//
// A Runtime holds two fiber trees: the current tree, last committed to the
// host, and the work-in-progress (WIP) tree being built. Render and state
// updates create a WIP root whose Alternate is the current root. The work
// loop then processes one fiber per unit of work:
//
//   - component fibers run their component with a Scope bound to the fiber
//     and reconcile the single element it returns
//   - host and text fibers create their host node on first visit and
//     reconcile props["children"]
//
// Between units the loop asks the scheduler's Deadline how much time is
// left and yields when it drops below the yield threshold. When no unit is
// left the WIP tree is committed in one go: deletions first, then
// placements and prop updates in tree order. The WIP root then becomes the
// current root.
//
// # State
//
//	var Counter = element.Define("Counter", func(s element.Scope, p element.Props) *element.Element {
//	    count, setCount := fiber.UseState(s, 1)
//	    return element.H("button", element.Props{
//	        "onClick": func() { setCount(func(n int) int { return n + 1 }) },
//	    }, count)
//	})
//
// Hooks are matched by call order. A component must call the same hooks in
// the same order on every render; a mismatch aborts the render with a
// D010 error.
//
// # Threading
//
// A Runtime is single-threaded. All calls, including hook setters invoked
// by host listeners, must come from the goroutine that runs the scheduler
// callbacks (see scheduler.FrameLoop.Submit).
package fiber
