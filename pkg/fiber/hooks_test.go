package fiber

import (
	"testing"

	"github.com/vango-dev/didact/internal/errors"
	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/scheduler"
)

var counter = element.Define("Counter", func(s element.Scope, _ element.Props) *element.Element {
	count, setCount := UseState(s, 1)
	return element.H("button", element.Props{
		"onClick": func() { setCount(func(n int) int { return n + 1 }) },
	}, count)
})

func TestUseStateSurvivesRerender(t *testing.T) {
	h := newHarness(t)
	h.render(element.C(counter, nil))
	if got := h.html(); got != "<button>1</button>" {
		t.Fatalf("html = %s, want <button>1</button>", got)
	}

	h.click(h.child(0))
	h.flush()
	if got := h.html(); got != "<button>2</button>" {
		t.Errorf("after click html = %s, want <button>2</button>", got)
	}

	h.render(element.C(counter, nil))
	if got := h.html(); got != "<button>2</button>" {
		t.Errorf("after re-render html = %s, want <button>2</button>", got)
	}
	if n := h.rt.CurrentRoot().Child.HookCount(); n != 1 {
		t.Errorf("HookCount() = %d, want 1", n)
	}
}

func TestUseStateActionsFoldInOrder(t *testing.T) {
	var set func(func(string) string)
	comp := element.Define("Log", func(s element.Scope, _ element.Props) *element.Element {
		v, setV := UseState(s, "")
		set = setV
		return element.Text(v)
	})

	h := newHarness(t)
	h.render(element.C(comp, nil))
	set(func(s string) string { return s + "a" })
	set(func(s string) string { return s + "b" })
	set(Set("x"))
	set(func(s string) string { return s + "c" })
	h.flush()

	if got := h.html(); got != "xc" {
		t.Errorf("html = %q, want xc", got)
	}
}

func TestUpdateDuringRenderIsMerged(t *testing.T) {
	h := newHarness(t)
	h.render(element.C(counter, nil))
	button := h.child(0)

	h.click(button)
	// root, Counter and button: the Counter cell of this render exists.
	h.sched.RunNext(scheduler.Units(3))
	if h.rt.Phase() != PhaseRendering {
		t.Fatalf("Phase() = %v, want Rendering", h.rt.Phase())
	}
	h.click(button)
	if h.rt.Idle() {
		t.Fatal("update during render was not recorded")
	}
	h.flush()

	if got := h.html(); got != "<button>3</button>" {
		t.Errorf("html = %s, want <button>3</button>", got)
	}
	if h.rt.Generation() != 3 {
		t.Errorf("Generation() = %d, want 3", h.rt.Generation())
	}
}

func TestUpdateBeforeComponentRenderedJoinsRender(t *testing.T) {
	h := newHarness(t)
	h.render(element.H("div", nil, element.C(counter, nil)))
	button := h.child(0, 0)

	h.click(button)
	h.sched.RunNext(scheduler.Units(1))
	h.click(button)
	h.flush()

	if got := h.html(); got != "<div><button>3</button></div>" {
		t.Errorf("html = %s, want <div><button>3</button></div>", got)
	}
}

func TestAbortKeepsQueuedActions(t *testing.T) {
	explode := false
	var set func(func(int) int)
	comp := element.Define("Fragile", func(s element.Scope, _ element.Props) *element.Element {
		n, setN := UseState(s, 0)
		set = setN
		if explode {
			panic("fragile")
		}
		return element.Text(n)
	})

	h := newHarness(t)
	el := element.C(comp, nil)
	h.render(el)

	explode = true
	set(func(n int) int { return n + 5 })
	h.flush()
	wantCode(t, h.rt.LastError(), errors.CodeComponentPanic)
	if got := h.html(); got != "0" {
		t.Fatalf("html = %q, want 0", got)
	}

	// The setter bound by the aborted render still reaches the cell.
	set(func(n int) int { return n * 2 })
	explode = false
	h.flush()
	h.render(el)

	if got := h.html(); got != "10" {
		t.Errorf("html = %q, want 10", got)
	}
}

func TestStateUpdateAfterUnmountIsDropped(t *testing.T) {
	var set func(func(int) int)
	child := element.Define("Child", func(s element.Scope, _ element.Props) *element.Element {
		n, setN := UseState(s, 0)
		set = setN
		return element.Text(n)
	})

	h := newHarness(t)
	h.render(element.H("div", nil, element.C(child, nil)))
	h.render(element.H("div", nil))
	gen := h.rt.Generation()

	set(func(n int) int { return n + 1 })

	if !h.rt.Idle() || h.rt.Generation() != gen {
		t.Errorf("update on unmounted component started a render")
	}
}

type todoAction struct {
	add    string
	remove int
}

var todos = element.Define("Todos", func(s element.Scope, _ element.Props) *element.Element {
	items, dispatch := UseReducer(s, func(items []string, a todoAction) []string {
		if a.add != "" {
			return append(append([]string(nil), items...), a.add)
		}
		out := append([]string(nil), items[:a.remove]...)
		return append(out, items[a.remove+1:]...)
	}, []string{"a"})

	kids := make([]*element.Element, len(items))
	for i, it := range items {
		kids[i] = element.H("li", nil, it)
	}
	return element.H("ul", element.Props{
		"onAdd":    func(v string) { dispatch(todoAction{add: v}) },
		"onRemove": func() { dispatch(todoAction{remove: 0}) },
	}, kids)
})

func TestUseReducer(t *testing.T) {
	h := newHarness(t)
	h.render(element.C(todos, nil))
	ul := h.child(0)

	for _, v := range []string{"b", "c"} {
		if err := h.doc.Dispatch(ul.ID, "add", v); err != nil {
			t.Fatal(err)
		}
	}
	h.flush()
	if got := h.html(); got != "<ul><li>a</li><li>b</li><li>c</li></ul>" {
		t.Errorf("html = %s", got)
	}

	if err := h.doc.Dispatch(ul.ID, "remove", ""); err != nil {
		t.Fatal(err)
	}
	h.flush()
	if got := h.html(); got != "<ul><li>b</li><li>c</li></ul>" {
		t.Errorf("html = %s", got)
	}
	if info := h.lastCommit(); info.Deletions != 1 {
		t.Errorf("deletions = %d, want 1", info.Deletions)
	}
}

func TestUseRefKeepsIdentity(t *testing.T) {
	var refs []*Ref[int]
	comp := element.Define("Refs", func(s element.Scope, _ element.Props) *element.Element {
		ref := UseRef(s, 7)
		ref.Current++
		refs = append(refs, ref)
		return nil
	})

	h := newHarness(t)
	h.render(element.C(comp, nil))
	h.render(element.C(comp, nil))

	if len(refs) != 2 || refs[0] != refs[1] {
		t.Fatalf("UseRef returned different refs across renders")
	}
	if refs[1].Current != 9 {
		t.Errorf("ref.Current = %d, want 9", refs[1].Current)
	}
	if h.sched.Pending() != 1 || !h.rt.Idle() {
		t.Error("ref mutation scheduled a render")
	}
}

func TestHookOrderViolation(t *testing.T) {
	comp := element.Define("Conditional", func(s element.Scope, p element.Props) *element.Element {
		switch p["mode"] {
		case "extra":
			UseState(s, 0)
			UseState(s, 0)
		case "ref":
			UseRef(s, 0)
		case "none":
		case "string":
			UseState(s, "")
		default:
			UseState(s, 0)
		}
		return nil
	})

	tests := []struct {
		name string
		mode string
	}{
		{"more hooks", "extra"},
		{"fewer hooks", "none"},
		{"different kind", "ref"},
		{"different state type", "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.render(element.C(comp, nil))
			current := h.rt.CurrentRoot()

			h.render(element.C(comp, element.Props{"mode": tt.mode}))

			wantCode(t, h.rt.LastError(), errors.CodeHookOrder)
			if h.rt.CurrentRoot() != current {
				t.Error("current root replaced after hook order violation")
			}
		})
	}
}

func TestHookOutsideRender(t *testing.T) {
	var saved element.Scope
	comp := element.Define("Leaky", func(s element.Scope, _ element.Props) *element.Element {
		saved = s
		return nil
	})

	h := newHarness(t)
	h.render(element.C(comp, nil))

	defer func() {
		v := recover()
		err, ok := v.(error)
		if !ok {
			t.Fatalf("recover() = %v, want error", v)
		}
		wantCode(t, err, errors.CodeHookOutsideScope)
	}()
	UseState(saved, 0)
}

func TestSetterFromRenderSchedulesFollowUp(t *testing.T) {
	comp := element.Define("Settle", func(s element.Scope, _ element.Props) *element.Element {
		n, setN := UseState(s, 0)
		if n < 3 {
			setN(func(n int) int { return n + 1 })
		}
		return element.Text(n)
	})

	h := newHarness(t)
	h.render(element.C(comp, nil))

	if got := h.html(); got != "3" {
		t.Errorf("html = %q, want 3", got)
	}
}
