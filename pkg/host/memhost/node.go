package memhost

import "sort"

// Node is a host node. Text nodes have an empty Tag.
type Node struct {
	ID       int
	Tag      string
	Text     string
	Parent   *Node
	Children []*Node

	attrs     map[string]any
	listeners map[string]any
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == ""
}

// Attr returns the attribute value for name.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// AttrNames returns the attribute names in sorted order.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Listener returns the listener bound to event, or nil.
func (n *Node) Listener(event string) any {
	return n.listeners[event]
}

// Events returns the bound event names in sorted order.
func (n *Node) Events() []string {
	events := make([]string, 0, len(n.listeners))
	for k := range n.listeners {
		events = append(events, k)
	}
	sort.Strings(events)
	return events
}

// TextContent returns the concatenated text of n's subtree.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var s string
	for _, c := range n.Children {
		s += c.TextContent()
	}
	return s
}

// Find returns the first node of n's subtree, in document order, for
// which match returns true.
func (n *Node) Find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// ByAttr matches nodes whose attribute name has the string form value.
func ByAttr(name, value string) func(*Node) bool {
	return func(n *Node) bool {
		v, ok := n.attrs[name]
		return ok && valueString(v) == value
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) insertAt(i int, child *Node) {
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	child.Parent = n
}

func (n *Node) removeAt(i int) *Node {
	child := n.Children[i]
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	child.Parent = nil
	return child
}
