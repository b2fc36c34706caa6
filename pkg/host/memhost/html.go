package memhost

import (
	"strconv"
	"strings"
)

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTMLOptions controls HTML rendering.
type HTMLOptions struct {
	// IDs adds data-didact-id and data-didact-on attributes to elements so
	// a remote mirror can map nodes and bound events.
	IDs bool
}

// HTML renders the whole document, container included.
func (d *Document) HTML() string {
	return RenderHTML(d.root, HTMLOptions{})
}

// InnerHTML renders the children of the container.
func (d *Document) InnerHTML() string {
	var b strings.Builder
	for _, c := range d.root.Children {
		writeNode(&b, c, HTMLOptions{})
	}
	return b.String()
}

// RenderHTML renders n and its subtree.
func RenderHTML(n *Node, opts HTMLOptions) string {
	var b strings.Builder
	writeNode(&b, n, opts)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, opts HTMLOptions) {
	if n.IsText() {
		b.WriteString(escapeHTML(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	if opts.IDs {
		b.WriteString(` data-didact-id="`)
		b.WriteString(strconv.Itoa(n.ID))
		b.WriteByte('"')
	}
	for _, name := range n.AttrNames() {
		v := n.attrs[name]
		if bv, ok := v.(bool); ok {
			if bv {
				b.WriteByte(' ')
				b.WriteString(name)
			}
			continue
		}
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(valueString(v)))
		b.WriteByte('"')
	}
	if opts.IDs && len(n.listeners) > 0 {
		b.WriteString(` data-didact-on="`)
		b.WriteString(escapeAttr(strings.Join(n.Events(), " ")))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if voidElements[n.Tag] {
		return
	}
	for _, c := range n.Children {
		writeNode(b, c, opts)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}
