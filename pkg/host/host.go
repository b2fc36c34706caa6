// Package host defines the capability set the reconciler uses to mutate a
// host tree, plus the ordered prop diff every adapter applies.
package host

import "github.com/vango-dev/didact/pkg/element"

// Node is an opaque handle to a host node owned by an Adapter.
type Node any

// Adapter creates and mutates host nodes.
//
// All methods are called from the runtime's single thread of control.
// An error aborts the current render (CreateNode, UpdateProps during
// render) or the current commit.
type Adapter interface {
	// CreateNode creates a detached host node for t.
	CreateNode(t element.Type) (Node, error)

	// UpdateProps moves node from prev to next props. Implementations
	// apply the changes in DiffProps order. prev is nil for a new node.
	UpdateProps(node Node, prev, next element.Props) error

	// AppendChild appends child as the last child of parent.
	AppendChild(parent, child Node) error

	// RemoveChild detaches child from parent.
	RemoveChild(parent, child Node) error
}

// Transactional is implemented by adapters that can undo every mutation
// made since Begin. The runtime wraps each commit in a transaction so a
// failing commit leaves the host tree untouched.
type Transactional interface {
	Begin() error
	Commit() error
	Rollback() error
}

// Event is delivered to listeners by hosts that dispatch events.
type Event struct {
	Type   string
	Target Node
	Value  string
}

// Invoke calls listener with ev. Supported listener forms are func(),
// func(Event) and func(string) (receives ev.Value). It reports whether the
// listener had a supported form.
func Invoke(listener any, ev Event) bool {
	switch fn := listener.(type) {
	case func():
		fn()
	case func(Event):
		fn(ev)
	case func(string):
		fn(ev.Value)
	default:
		return false
	}
	return true
}
