package fiber

import (
	"fmt"
	"strings"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
)

// EffectTag classifies what a fiber does to the host tree at commit.
type EffectTag uint8

const (
	EffectNone EffectTag = iota
	EffectPlacement
	EffectUpdate
	EffectDeletion
)

// String returns the string representation of the EffectTag.
func (e EffectTag) String() string {
	switch e {
	case EffectNone:
		return "None"
	case EffectPlacement:
		return "Placement"
	case EffectUpdate:
		return "Update"
	case EffectDeletion:
		return "Deletion"
	default:
		return "Unknown"
	}
}

// Fiber is the unit of work for one tree position in one render generation.
type Fiber struct {
	Type  element.Type
	Props element.Props

	// Node is the host node; nil for component fibers.
	Node host.Node

	Parent  *Fiber
	Child   *Fiber
	Sibling *Fiber

	// Alternate is the fiber at the same position in the previously
	// committed tree. It is non-owning and cleared once the fiber commits.
	Alternate *Fiber

	EffectTag EffectTag

	hooks []*hook
}

// Children returns the fiber's child chain as a slice.
func (f *Fiber) Children() []*Fiber {
	var out []*Fiber
	for c := f.Child; c != nil; c = c.Sibling {
		out = append(out, c)
	}
	return out
}

// HookCount returns the number of hooks the fiber used in its last render.
func (f *Fiber) HookCount() int {
	return len(f.hooks)
}

// Walk visits f's subtree in pre-order without recursion. Returning false
// from fn skips the fiber's children.
func (f *Fiber) Walk(fn func(*Fiber) bool) {
	n := f
	for n != nil {
		if fn(n) && n.Child != nil {
			n = n.Child
			continue
		}
		for n != f && n.Sibling == nil {
			n = n.Parent
		}
		if n == f {
			return
		}
		n = n.Sibling
	}
}

// String renders the subtree for debugging, e.g. #root(div(#text)).
func (f *Fiber) String() string {
	var b strings.Builder
	f.write(&b)
	return b.String()
}

func (f *Fiber) write(b *strings.Builder) {
	b.WriteString(f.Type.String())
	if f.Type.Kind == element.KindText {
		fmt.Fprintf(b, " %q", fmt.Sprint(f.Props[element.PropNodeValue]))
		return
	}
	if f.Child == nil {
		return
	}
	b.WriteString("(")
	for c := f.Child; c != nil; c = c.Sibling {
		if c != f.Child {
			b.WriteString(" ")
		}
		c.write(b)
	}
	b.WriteString(")")
}

// nextFiber returns the fiber after f in pre-order: its child, else the
// nearest sibling of f or of an ancestor below root, else nil.
func nextFiber(f, root *Fiber) *Fiber {
	if f.Child != nil {
		return f.Child
	}
	for n := f; n != nil && n != root; n = n.Parent {
		if n.Sibling != nil {
			return n.Sibling
		}
	}
	return nil
}

// hostParent returns the host node of f's nearest ancestor that has one.
func hostParent(f *Fiber) host.Node {
	p := f.Parent
	for p != nil && p.Node == nil {
		p = p.Parent
	}
	if p == nil {
		return nil
	}
	return p.Node
}
