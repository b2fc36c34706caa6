package memhost

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/host"
)

// Document is an in-memory host tree.
type Document struct {
	root   *Node
	nextID int

	// attached maps IDs of nodes reachable from root.
	attached map[int]*Node

	journal []Op
	txStart int
	undo    []func()
	inTx    bool

	failOn func(Op) error
	logger *slog.Logger

	// OnFlush receives the ops of every committed transaction, including
	// ops recorded outside a transaction since the previous flush.
	OnFlush func(ops []Op)
}

// Option configures a Document.
type Option func(*Document)

// WithRootTag sets the tag of the container node (default "div").
func WithRootTag(tag string) Option {
	return func(d *Document) {
		d.root.Tag = tag
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// New creates an empty document with a container root node.
func New(opts ...Option) *Document {
	d := &Document{
		attached: make(map[int]*Node),
		logger:   slog.Default().With("component", "memhost"),
	}
	d.root = d.newNode("div")
	d.attached[d.root.ID] = d.root
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the container node. Pass it to Runtime.Render.
func (d *Document) Root() *Node {
	return d.root
}

// Lookup returns the attached node with the given ID.
func (d *Document) Lookup(id int) (*Node, bool) {
	n, ok := d.attached[id]
	return n, ok
}

// FailOn installs a fault injector consulted before each mutation. A
// non-nil error aborts the mutation and is returned by the adapter method.
// Pass nil to remove it.
func (d *Document) FailOn(fn func(Op) error) {
	d.failOn = fn
}

// Journal returns the ops recorded since the last flush.
func (d *Document) Journal() []Op {
	out := make([]Op, len(d.journal))
	copy(out, d.journal)
	return out
}

// ResetJournal discards recorded ops.
func (d *Document) ResetJournal() {
	d.journal = d.journal[:0]
	d.txStart = 0
}

func (d *Document) newNode(tag string) *Node {
	d.nextID++
	return &Node{
		ID:        d.nextID,
		Tag:       tag,
		attrs:     make(map[string]any),
		listeners: make(map[string]any),
	}
}

func (d *Document) node(n host.Node) (*Node, error) {
	nd, ok := n.(*Node)
	if !ok || nd == nil {
		return nil, fmt.Errorf("memhost: foreign node handle %T", n)
	}
	return nd, nil
}

// apply runs the fault injector, journals op and registers its inverse.
func (d *Document) apply(op Op, undo func()) error {
	if d.failOn != nil {
		if err := d.failOn(op); err != nil {
			return err
		}
	}
	d.journal = append(d.journal, op)
	if d.inTx && undo != nil {
		d.undo = append(d.undo, undo)
	}
	return nil
}

// CreateNode implements host.Adapter.
func (d *Document) CreateNode(t element.Type) (host.Node, error) {
	tag := t.Tag
	if t.Kind == element.KindText {
		tag = ""
	} else if t.Kind != element.KindHost {
		return nil, fmt.Errorf("memhost: cannot create node for %s", t)
	}
	n := d.newNode(tag)
	if err := d.apply(Op{Kind: OpCreate, Node: n.ID, Tag: tag}, nil); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateProps implements host.Adapter.
func (d *Document) UpdateProps(hn host.Node, prev, next element.Props) error {
	n, err := d.node(hn)
	if err != nil {
		return err
	}
	for _, c := range host.DiffProps(prev, next) {
		if err := d.applyChange(n, c); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) applyChange(n *Node, c host.PropChange) error {
	switch c.Op {
	case host.OpRemoveListener:
		old, had := n.listeners[c.Name]
		if err := d.apply(Op{Kind: OpUnlisten, Node: n.ID, Name: c.Name}, func() {
			if had {
				n.listeners[c.Name] = old
			}
		}); err != nil {
			return err
		}
		delete(n.listeners, c.Name)

	case host.OpAddListener:
		old, had := n.listeners[c.Name]
		if err := d.apply(Op{Kind: OpListen, Node: n.ID, Name: c.Name}, func() {
			if had {
				n.listeners[c.Name] = old
			} else {
				delete(n.listeners, c.Name)
			}
		}); err != nil {
			return err
		}
		n.listeners[c.Name] = c.Value

	case host.OpRemoveAttr:
		if n.IsText() && c.Name == element.PropNodeValue {
			return d.setText(n, "")
		}
		old, had := n.attrs[c.Name]
		if err := d.apply(Op{Kind: OpRemoveAttr, Node: n.ID, Name: c.Name}, func() {
			if had {
				n.attrs[c.Name] = old
			}
		}); err != nil {
			return err
		}
		delete(n.attrs, c.Name)

	case host.OpSetAttr:
		if n.IsText() && c.Name == element.PropNodeValue {
			return d.setText(n, valueString(c.Value))
		}
		old, had := n.attrs[c.Name]
		if err := d.apply(Op{Kind: OpSetAttr, Node: n.ID, Name: c.Name, Value: valueString(c.Value)}, func() {
			if had {
				n.attrs[c.Name] = old
			} else {
				delete(n.attrs, c.Name)
			}
		}); err != nil {
			return err
		}
		n.attrs[c.Name] = c.Value
	}
	return nil
}

func (d *Document) setText(n *Node, text string) error {
	old := n.Text
	if err := d.apply(Op{Kind: OpText, Node: n.ID, Value: text}, func() { n.Text = old }); err != nil {
		return err
	}
	n.Text = text
	return nil
}

// AppendChild implements host.Adapter. A child that is already attached
// elsewhere is moved.
func (d *Document) AppendChild(hp, hc host.Node) error {
	parent, err := d.node(hp)
	if err != nil {
		return err
	}
	child, err := d.node(hc)
	if err != nil {
		return err
	}
	if parent.IsText() {
		return fmt.Errorf("memhost: text node %d cannot have children", parent.ID)
	}

	oldParent := child.Parent
	oldIndex := -1
	if oldParent != nil {
		oldIndex = oldParent.indexOf(child)
	}
	if err := d.apply(Op{Kind: OpAppend, Node: child.ID, Parent: parent.ID}, func() {
		parent.removeAt(parent.indexOf(child))
		d.detach(child)
		if oldParent != nil {
			oldParent.insertAt(oldIndex, child)
			d.attach(child)
		}
	}); err != nil {
		return err
	}

	if oldParent != nil {
		oldParent.removeAt(oldIndex)
		d.detach(child)
	}
	parent.Children = append(parent.Children, child)
	child.Parent = parent
	d.attach(child)
	return nil
}

// RemoveChild implements host.Adapter.
func (d *Document) RemoveChild(hp, hc host.Node) error {
	parent, err := d.node(hp)
	if err != nil {
		return err
	}
	child, err := d.node(hc)
	if err != nil {
		return err
	}
	i := parent.indexOf(child)
	if i < 0 {
		return fmt.Errorf("memhost: node %d is not a child of %d", child.ID, parent.ID)
	}
	if err := d.apply(Op{Kind: OpRemove, Node: child.ID, Parent: parent.ID}, func() {
		parent.insertAt(i, child)
		d.attach(child)
	}); err != nil {
		return err
	}
	parent.removeAt(i)
	d.detach(child)
	return nil
}

// attach registers child's subtree if it is reachable from the root.
func (d *Document) attach(n *Node) {
	if !d.reachable(n) {
		return
	}
	walk(n, func(x *Node) { d.attached[x.ID] = x })
}

func (d *Document) detach(n *Node) {
	walk(n, func(x *Node) { delete(d.attached, x.ID) })
}

func (d *Document) reachable(n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		walk(c, fn)
	}
}

// Begin implements host.Transactional.
func (d *Document) Begin() error {
	if d.inTx {
		return fmt.Errorf("memhost: transaction already open")
	}
	d.inTx = true
	d.txStart = len(d.journal)
	d.undo = d.undo[:0]
	return nil
}

// Commit implements host.Transactional. Recorded ops are flushed to OnFlush.
func (d *Document) Commit() error {
	if !d.inTx {
		return fmt.Errorf("memhost: no open transaction")
	}
	d.inTx = false
	d.undo = d.undo[:0]
	if d.OnFlush != nil && len(d.journal) > 0 {
		d.OnFlush(d.Journal())
		d.ResetJournal()
	}
	return nil
}

// Rollback implements host.Transactional. Every mutation since Begin is
// undone in reverse order and dropped from the journal.
func (d *Document) Rollback() error {
	if !d.inTx {
		return fmt.Errorf("memhost: no open transaction")
	}
	for i := len(d.undo) - 1; i >= 0; i-- {
		d.undo[i]()
	}
	d.undo = d.undo[:0]
	d.journal = d.journal[:d.txStart]
	d.inTx = false
	return nil
}

// Dispatch delivers an event to the listener bound on node id.
func (d *Document) Dispatch(id int, event, value string) error {
	n, ok := d.attached[id]
	if !ok {
		return fmt.Errorf("memhost: node %d not found", id)
	}
	listener := n.listeners[event]
	if listener == nil {
		d.logger.Debug("no listener", "node", id, "event", event)
		return nil
	}
	if !host.Invoke(listener, host.Event{Type: event, Target: n, Value: value}) {
		return fmt.Errorf("memhost: unsupported listener %T for %q", listener, event)
	}
	return nil
}

// valueString converts an attribute value to its journal/HTML form.
func valueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
