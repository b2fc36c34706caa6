package memhost

// SnapshotNode is a serializable copy of a node subtree.
type SnapshotNode struct {
	ID       int               `json:"id"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Events   []string          `json:"events,omitempty"`
	Children []*SnapshotNode   `json:"children,omitempty"`
}

// Snapshot returns a serializable copy of the document tree.
func (d *Document) Snapshot() *SnapshotNode {
	return snapshot(d.root)
}

func snapshot(n *Node) *SnapshotNode {
	s := &SnapshotNode{ID: n.ID, Tag: n.Tag, Text: n.Text}
	if len(n.attrs) > 0 {
		s.Attrs = make(map[string]string, len(n.attrs))
		for k, v := range n.attrs {
			s.Attrs[k] = valueString(v)
		}
	}
	if len(n.listeners) > 0 {
		s.Events = n.Events()
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, snapshot(c))
	}
	return s
}
