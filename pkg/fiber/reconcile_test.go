package fiber

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host/memhost"
	"github.com/vango-dev/didact/pkg/scheduler"
)

func TestReconcileChildren(t *testing.T) {
	div, span, p := element.Host("div"), element.Host("span"), element.Host("p")

	tests := []struct {
		name      string
		old       []element.Type
		new       []element.Type
		want      []EffectTag
		deletions []element.Type
	}{
		{
			name: "mount",
			new:  []element.Type{div, span},
			want: []EffectTag{EffectPlacement, EffectPlacement},
		},
		{
			name: "same types",
			old:  []element.Type{div, span, p},
			new:  []element.Type{div, span, p},
			want: []EffectTag{EffectUpdate, EffectUpdate, EffectUpdate},
		},
		{
			name:      "type change",
			old:       []element.Type{div, span},
			new:       []element.Type{div, p},
			want:      []EffectTag{EffectUpdate, EffectPlacement},
			deletions: []element.Type{span},
		},
		{
			name:      "shrink",
			old:       []element.Type{div, span, p},
			new:       []element.Type{div},
			want:      []EffectTag{EffectUpdate},
			deletions: []element.Type{span, p},
		},
		{
			name: "grow",
			old:  []element.Type{div},
			new:  []element.Type{div, span},
			want: []EffectTag{EffectUpdate, EffectPlacement},
		},
		{
			name:      "clear",
			old:       []element.Type{div, span},
			deletions: []element.Type{div, span},
		},
		{
			name:      "text to element",
			old:       []element.Type{element.TextType},
			new:       []element.Type{span},
			want:      []EffectTag{EffectPlacement},
			deletions: []element.Type{element.TextType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(memhost.New(), scheduler.NewManual())

			oldParent := &Fiber{}
			var prev *Fiber
			for i, typ := range tt.old {
				f := &Fiber{Type: typ, Parent: oldParent, Node: fmt.Sprintf("node-%d", i)}
				if prev == nil {
					oldParent.Child = f
				} else {
					prev.Sibling = f
				}
				prev = f
			}
			oldChildren := oldParent.Children()

			var elements []*element.Element
			for _, typ := range tt.new {
				elements = append(elements, element.Must(element.New(typ, nil)))
			}

			wip := &Fiber{Alternate: oldParent}
			r.reconcileChildren(wip, elements)

			var got []EffectTag
			for i, c := range wip.Children() {
				got = append(got, c.EffectTag)
				if c.Parent != wip {
					t.Errorf("child %d parent not linked to wip fiber", i)
				}
				if c.Props == nil || c.Type != elements[i].Type {
					t.Errorf("child %d = %s, want %s", i, c.Type, elements[i].Type)
				}
				switch c.EffectTag {
				case EffectUpdate:
					if c.Alternate != oldChildren[i] || c.Node != oldChildren[i].Node {
						t.Errorf("update fiber %d does not reuse old fiber node", i)
					}
				case EffectPlacement:
					if c.Alternate != nil || c.Node != nil {
						t.Errorf("placement fiber %d has alternate or node", i)
					}
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("effect tags mismatch (-want +got):\n%s", diff)
			}

			var deleted []element.Type
			for _, f := range r.Deletions() {
				if f.EffectTag != EffectDeletion {
					t.Errorf("deleted fiber %s tag = %v, want Deletion", f.Type, f.EffectTag)
				}
				deleted = append(deleted, f.Type)
			}
			if diff := cmp.Diff(tt.deletions, deleted); diff != "" {
				t.Errorf("deletions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconcileChildrenTypeChangeAtSameIndex(t *testing.T) {
	r := New(memhost.New(), scheduler.NewManual())
	old := &Fiber{}
	old.Child = &Fiber{Type: element.Host("div"), Parent: old}

	wip := &Fiber{Alternate: old}
	r.reconcileChildren(wip, []*element.Element{element.H("span", nil)})

	if wip.Child == nil || wip.Child.Sibling != nil {
		t.Fatalf("wip children = %v, want exactly one", wip.Children())
	}
	if wip.Child.EffectTag != EffectPlacement {
		t.Errorf("new child tag = %v, want Placement", wip.Child.EffectTag)
	}
	if old.Child.EffectTag != EffectDeletion {
		t.Errorf("old child tag = %v, want Deletion", old.Child.EffectTag)
	}
}
