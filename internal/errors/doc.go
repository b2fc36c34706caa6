// Package errors provides structured, coded errors for the didact runtime.
//
// Every failure the runtime can report has a registered code (e.g., "D010")
// that maps to a category, a short message and a longer explanation. Call
// sites attach details, a fix suggestion or a wrapped cause:
//
//	err := errors.New(errors.CodeHookOrder).
//	    WithDetail("Counter rendered 2 hooks, previous render had 1").
//	    WithSuggestion("Call hooks unconditionally at the top of the component")
//
// Errors compare by code, so callers can test for a kind without caring about
// the attached detail:
//
//	if errors.Is(err, errors.New(errors.CodeHookOrder)) { ... }
//
// # Categories
//
//   - element: malformed element trees, rejected at construction
//   - hook: hook misuse inside components
//   - host: failures reported by the host adapter
//   - render: component panics and aborted renders
//   - scheduler: frame loop lifecycle errors
//   - config: configuration file problems
//   - cli: command line usage errors
package errors
