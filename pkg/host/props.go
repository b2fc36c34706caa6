package host

import (
	"reflect"
	"sort"
	"strings"

	"github.com/vango-dev/didact/pkg/element"
)

// PropOp is one kind of prop change.
type PropOp uint8

const (
	OpRemoveListener PropOp = iota + 1
	OpRemoveAttr
	OpSetAttr
	OpAddListener
)

// String returns the string representation of the PropOp.
func (o PropOp) String() string {
	switch o {
	case OpRemoveListener:
		return "RemoveListener"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetAttr:
		return "SetAttr"
	case OpAddListener:
		return "AddListener"
	default:
		return "Unknown"
	}
}

// PropChange is a single change produced by DiffProps. For listener ops
// Name is the event name ("click"), for attribute ops the prop key.
type PropChange struct {
	Op    PropOp
	Name  string
	Key   string
	Value any
}

// IsEvent returns true if the prop key names an event listener ("onClick").
// Case-insensitive to catch onclick, ONCLICK, onClick.
func IsEvent(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventName converts a listener key to its event name: onClick → click.
func EventName(key string) string {
	return strings.ToLower(key[2:])
}

// isAttr reports whether key is a plain host attribute.
func isAttr(key string) bool {
	return key != element.PropChildren && !IsEvent(key)
}

// DiffProps returns the changes that move a host node from prev to next, in
// the order they must be applied:
//
//  1. listeners that are gone or changed are detached
//  2. attributes that are gone are cleared
//  3. attributes that are new or changed are set
//  4. listeners that are new or changed are attached
//
// so a listener is never left dangling and a changed listener is never bound
// twice. Keys are sorted within each step. Function values never compare
// equal, so listeners recreated on every render are rebound.
func DiffProps(prev, next element.Props) []PropChange {
	var changes []PropChange

	for _, key := range sortedKeys(prev) {
		if !IsEvent(key) {
			continue
		}
		nv, ok := next[key]
		if !ok || !PropsEqual(prev[key], nv) {
			changes = append(changes, PropChange{Op: OpRemoveListener, Name: EventName(key), Key: key, Value: prev[key]})
		}
	}

	for _, key := range sortedKeys(prev) {
		if !isAttr(key) {
			continue
		}
		if _, ok := next[key]; !ok {
			changes = append(changes, PropChange{Op: OpRemoveAttr, Name: key, Key: key})
		}
	}

	for _, key := range sortedKeys(next) {
		if !isAttr(key) {
			continue
		}
		pv, ok := prev[key]
		if !ok || !PropsEqual(pv, next[key]) {
			changes = append(changes, PropChange{Op: OpSetAttr, Name: key, Key: key, Value: next[key]})
		}
	}

	for _, key := range sortedKeys(next) {
		if !IsEvent(key) {
			continue
		}
		pv, ok := prev[key]
		if !ok || !PropsEqual(pv, next[key]) {
			changes = append(changes, PropChange{Op: OpAddListener, Name: EventName(key), Key: key, Value: next[key]})
		}
	}

	return changes
}

func sortedKeys(p element.Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PropsEqual compares two prop values for equality.
func PropsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	// reflect.DeepEqual treats non-nil funcs as unequal.
	return reflect.DeepEqual(a, b)
}
