package element

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/didact/internal/errors"
)

// Kind is the element type discriminator.
type Kind uint8

const (
	KindHost      Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text leaf
	KindComponent             // Function component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "Host"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Reserved prop names.
const (
	PropChildren  = "children"
	PropNodeValue = "nodeValue"
)

// Type identifies what an element renders to. It is comparable; two
// elements have the same type exactly when their Types are ==.
type Type struct {
	Kind Kind
	Tag  string     // KindHost only
	Comp *Component // KindComponent only
}

// TextType is the type of every text element.
var TextType = Type{Kind: KindText}

// Host returns the type of a host element with the given tag.
func Host(tag string) Type {
	return Type{Kind: KindHost, Tag: tag}
}

// ComponentType returns the type of elements rendered by c.
func ComponentType(c *Component) Type {
	return Type{Kind: KindComponent, Comp: c}
}

// IsComponent reports whether the type is a function component.
func (t Type) IsComponent() bool {
	return t.Kind == KindComponent
}

// String returns a short debug name ("div", "#text", "<Counter>").
func (t Type) String() string {
	switch t.Kind {
	case KindText:
		return "#text"
	case KindComponent:
		if t.Comp == nil {
			return "<nil>"
		}
		return "<" + t.Comp.Name + ">"
	default:
		if t.Tag == "" {
			return "#root"
		}
		return t.Tag
	}
}

// Props holds attributes, event listeners and children.
type Props map[string]any

// Children returns the ordered child elements.
func (p Props) Children() []*Element {
	if p == nil {
		return nil
	}
	children, _ := p[PropChildren].([]*Element)
	return children
}

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Element is an immutable description of a desired tree node.
// Elements must not be modified after construction.
type Element struct {
	Type  Type
	Props Props
}

// Children returns the element's children.
func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	return e.Props.Children()
}

// String renders a compact debug form, e.g. div(h1(#text "hi")).
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Element) write(b *strings.Builder) {
	b.WriteString(e.Type.String())
	if e.Type.Kind == KindText {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(fmt.Sprint(e.Props[PropNodeValue])))
		return
	}
	children := e.Children()
	if len(children) == 0 {
		return
	}
	b.WriteString("(")
	for i, c := range children {
		if i > 0 {
			b.WriteString(" ")
		}
		c.write(b)
	}
	b.WriteString(")")
}

// New creates an element of type t. The props map is copied; children are
// normalized into props["children"].
func New(t Type, props Props, children ...any) (*Element, error) {
	switch t.Kind {
	case KindHost:
		if t.Tag == "" {
			return nil, errors.New(errors.CodeMalformedElement).WithDetail("host element with empty tag")
		}
	case KindComponent:
		if t.Comp == nil || t.Comp.Render == nil {
			return nil, errors.New(errors.CodeNilComponent)
		}
	case KindText:
	default:
		return nil, errors.New(errors.CodeMalformedElement).WithDetailf("unknown kind %d", t.Kind)
	}

	p := make(Props, len(props)+1)
	for k, v := range props {
		if k == PropChildren {
			continue
		}
		p[k] = v
	}

	kids := make([]*Element, 0, len(children))
	for i, child := range children {
		var bad any
		kids, bad = appendChild(kids, child)
		if bad != nil {
			return nil, errors.New(errors.CodeBadChild).
				WithDetailf("%s child %d has type %T", t, i, bad)
		}
	}
	if t.Kind == KindText && len(kids) > 0 {
		return nil, errors.New(errors.CodeMalformedElement).WithDetail("text elements cannot have children")
	}
	p[PropChildren] = kids

	return &Element{Type: t, Props: p}, nil
}

// appendChild lifts a single child argument into elements. It returns the
// offending value when child cannot be lifted.
func appendChild(kids []*Element, child any) ([]*Element, any) {
	switch v := child.(type) {
	case nil:
		return kids, nil
	case *Element:
		if v == nil {
			return kids, nil
		}
		return append(kids, v), nil
	case []*Element:
		for _, c := range v {
			if c != nil {
				kids = append(kids, c)
			}
		}
		return kids, nil
	case []any:
		var bad any
		for _, c := range v {
			if kids, bad = appendChild(kids, c); bad != nil {
				return kids, bad
			}
		}
		return kids, nil
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, fmt.Stringer:
		return append(kids, Text(v)), nil
	default:
		return kids, child
	}
}

// Text creates a text element holding v as its node value.
func Text(v any) *Element {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(v)
	}
	return &Element{
		Type: TextType,
		Props: Props{
			PropNodeValue: s,
			PropChildren:  []*Element{},
		},
	}
}

// Textf creates a formatted text element.
func Textf(format string, args ...any) *Element {
	return Text(fmt.Sprintf(format, args...))
}

// H creates a host element, panicking on malformed input.
func H(tag string, props Props, children ...any) *Element {
	return Must(New(Host(tag), props, children...))
}

// C creates a component element, panicking on malformed input.
func C(c *Component, props Props, children ...any) *Element {
	return Must(New(ComponentType(c), props, children...))
}

// Must panics if err is non-nil.
func Must(e *Element, err error) *Element {
	if err != nil {
		panic(err)
	}
	return e
}
