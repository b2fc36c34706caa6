package fiber

import "github.com/vango-dev/didact/pkg/element"

// reconcileChildren diffs wip's previous child chain against elements by
// position and links the resulting fibers under wip. Old fibers without a
// same-typed counterpart are marked for deletion.
func (r *Runtime) reconcileChildren(wip *Fiber, elements []*element.Element) {
	var old *Fiber
	if wip.Alternate != nil {
		old = wip.Alternate.Child
	}

	wip.Child = nil
	var prev *Fiber
	for index := 0; index < len(elements) || old != nil; index++ {
		var el *element.Element
		if index < len(elements) {
			el = elements[index]
		}

		var fiber *Fiber
		sameType := old != nil && el != nil && el.Type == old.Type

		if sameType {
			fiber = &Fiber{
				Type:      old.Type,
				Props:     el.Props,
				Node:      old.Node,
				Parent:    wip,
				Alternate: old,
				EffectTag: EffectUpdate,
			}
		}
		if el != nil && !sameType {
			fiber = &Fiber{
				Type:      el.Type,
				Props:     el.Props,
				Parent:    wip,
				EffectTag: EffectPlacement,
			}
		}
		if old != nil && !sameType {
			old.EffectTag = EffectDeletion
			r.deletions = append(r.deletions, old)
		}

		if old != nil {
			old = old.Sibling
		}

		if fiber == nil {
			continue
		}
		if prev == nil {
			wip.Child = fiber
		} else {
			prev.Sibling = fiber
		}
		prev = fiber
	}
}
