// Package element provides the immutable element model consumed by the
// didact reconciler.
//
// An Element describes one desired tree node: a Type and a Props map whose
// "children" entry is always an ordered []*Element. Types are a small tagged
// variant decided once at construction:
//
//	element.Host("div")        // a host node with a tag
//	element.TextType           // a text leaf, value in props["nodeValue"]
//	element.ComponentType(c)   // a function component defined with Define
//
// Types are comparable with ==, which is exactly the positional "same type"
// test the reconciler performs.
//
// # Building trees
//
//	var Counter = element.Define("Counter", func(s element.Scope, p element.Props) *element.Element {
//	    ...
//	})
//
//	app := element.H("div", element.Props{"id": "root"},
//	    element.H("h1", nil, "Hello"),
//	    element.C(Counter, element.Props{"start": 1}),
//	)
//
// Primitive children (strings, numbers, booleans, fmt.Stringer) are lifted
// into text elements and nil children are dropped. New reports malformed
// input as an error; H and C panic instead, for literal trees in code.
package element
