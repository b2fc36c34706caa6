package demo

import (
	"strings"

	"github.com/vango-dev/didact/pkg/element"
	"github.com/vango-dev/didact/pkg/fiber"
)

// Counter shows a count with increment and reset buttons. Props: "start" (int).
var Counter = element.Define("Counter", func(s element.Scope, p element.Props) *element.Element {
	start, _ := p["start"].(int)
	count, setCount := fiber.UseState(s, start)

	return element.H("div", element.Props{"class": "counter"},
		element.H("span", element.Props{"class": "count"}, element.Textf("Count: %d", count)),
		element.H("button", element.Props{
			"name":    "increment",
			"onClick": func() { setCount(func(n int) int { return n + 1 }) },
		}, "+1"),
		element.H("button", element.Props{
			"name":    "reset",
			"onClick": func() { setCount(fiber.Set(start)) },
		}, "Reset"),
	)
})

// Toggle switches between a div and a span, replacing the host node.
var Toggle = element.Define("Toggle", func(s element.Scope, _ element.Props) *element.Element {
	on, setOn := fiber.UseState(s, false)

	var body *element.Element
	if on {
		body = element.H("span", element.Props{"class": "on"}, "ON")
	} else {
		body = element.H("div", element.Props{"class": "off"}, "OFF")
	}
	return element.H("section", element.Props{"class": "toggle"},
		element.H("button", element.Props{
			"name":    "toggle",
			"onClick": func() { setOn(func(v bool) bool { return !v }) },
		}, "Toggle"),
		body,
	)
})

type todoOp uint8

const (
	todoAdd todoOp = iota
	todoRemove
	todoClear
)

type todoAction struct {
	op    todoOp
	text  string
	index int
}

func reduceTodos(items []string, a todoAction) []string {
	switch a.op {
	case todoAdd:
		text := strings.TrimSpace(a.text)
		if text == "" {
			return items
		}
		return append(append([]string(nil), items...), text)
	case todoRemove:
		if a.index < 0 || a.index >= len(items) {
			return items
		}
		out := append([]string(nil), items[:a.index]...)
		return append(out, items[a.index+1:]...)
	case todoClear:
		return nil
	}
	return items
}

// Todos is a list that grows and shrinks. Props: "items" ([]string).
var Todos = element.Define("Todos", func(s element.Scope, p element.Props) *element.Element {
	initial, _ := p["items"].([]string)
	items, dispatch := fiber.UseReducer(s, reduceTodos, initial)
	draft, setDraft := fiber.UseState(s, "")

	rows := make([]*element.Element, len(items))
	for i, it := range items {
		rows[i] = element.H("li", nil,
			it,
			element.H("button", element.Props{
				"name":    "remove-" + it,
				"onClick": func() { dispatch(todoAction{op: todoRemove, index: i}) },
			}, "x"),
		)
	}

	var footer *element.Element
	if len(items) > 0 {
		footer = element.H("button", element.Props{
			"name":    "clear",
			"onClick": func() { dispatch(todoAction{op: todoClear}) },
		}, "Clear")
	}

	return element.H("div", element.Props{"class": "todos"},
		element.H("input", element.Props{
			"name":    "draft",
			"value":   draft,
			"onInput": func(v string) { setDraft(fiber.Set(v)) },
		}),
		element.H("button", element.Props{
			"name": "add",
			"onClick": func() {
				dispatch(todoAction{op: todoAdd, text: draft})
				setDraft(fiber.Set(""))
			},
		}, "Add"),
		element.H("ul", nil, rows),
		footer,
	)
})

// App composes the demo components.
var App = element.Define("App", func(_ element.Scope, p element.Props) *element.Element {
	title, _ := p["title"].(string)
	if title == "" {
		title = "didact"
	}
	return element.H("main", element.Props{"class": "demo"},
		element.H("h1", nil, title),
		element.C(Counter, element.Props{"start": 0}),
		element.C(Toggle, nil),
		element.C(Todos, element.Props{"items": []string{"write reconciler"}}),
	)
})

// Root returns the demo app element.
func Root(title string) *element.Element {
	return element.C(App, element.Props{"title": title})
}
