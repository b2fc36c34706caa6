package element

// Action transforms the previous state of a hook into the next one.
type Action func(prev any) any

// Scope is the hook surface handed to a component while it renders. It is
// only valid for the duration of that render call.
type Scope interface {
	// State resolves the next positional state cell. The returned function
	// queues an action against the cell and schedules a re-render.
	State(kind HookKind, initial any) (state any, update func(Action))
}

// HookKind identifies the kind of hook call for order validation.
type HookKind uint8

const (
	HookState HookKind = iota + 1
	HookReducer
	HookRef
)

// String returns a human-readable name for the hook kind.
func (h HookKind) String() string {
	switch h {
	case HookState:
		return "State"
	case HookReducer:
		return "Reducer"
	case HookRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// ComponentFunc renders props to a single child element (or nil for none).
type ComponentFunc func(s Scope, props Props) *Element

// Component is a named function component. Identity is the pointer:
// define each component once, at package level.
type Component struct {
	Name   string
	Render ComponentFunc
}

// Define creates a component.
func Define(name string, render ComponentFunc) *Component {
	return &Component{Name: name, Render: render}
}
