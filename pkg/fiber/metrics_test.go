package fiber

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/scheduler"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))
	h := newHarness(t, WithMetrics(m))

	// root, ul, li and its text: four units over two slices.
	h.rt.Render(list("ul", "a"), h.doc.Root())
	h.sched.RunNext(scheduler.Units(2))
	h.flush()

	if got := testutil.ToFloat64(m.unitsOfWork); got != 4 {
		t.Errorf("units_of_work_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.slices); got != 2 {
		t.Errorf("slices_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.yields); got != 1 {
		t.Errorf("yields_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.commits); got != 1 {
		t.Errorf("commits_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.effects.WithLabelValues("Placement")); got != 3 {
		t.Errorf("effects_total{effect=Placement} = %v, want 3", got)
	}

	h.render(element.C(bomb, element.Props{"explode": true}))
	if got := testutil.ToFloat64(m.aborts.WithLabelValues("D030")); got != 1 {
		t.Errorf("render_aborts_total{code=D030} = %v, want 1", got)
	}

	if n, err := testutil.GatherAndCount(reg, "test_commits_total"); err != nil || n != 1 {
		t.Errorf("GatherAndCount(test_commits_total) = %d, %v", n, err)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.observeSlice(1, true, 0)
	m.observeCommit(CommitInfo{})
	m.observeAbort(nil)
}
