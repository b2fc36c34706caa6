package errors

// Registered error codes.
const (
	CodeMalformedElement = "D001"
	CodeNilComponent     = "D002"
	CodeBadChild         = "D003"

	CodeHookOrder        = "D010"
	CodeHookOutsideScope = "D011"

	CodeHostRender = "D020"
	CodeHostCommit = "D021"

	CodeComponentPanic = "D030"

	CodeLoopNotRunning = "D040"
	CodeLoopTerminated = "D041"

	CodeConfigParse   = "D050"
	CodeConfigInvalid = "D051"

	CodeCLIUsage = "D060"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Element Errors (D001-D009)
	// ============================================

	CodeMalformedElement: {
		Category:   CategoryElement,
		Message:    "Malformed element",
		Suggestion: "Host elements need a non-empty tag, components need a render function.",
	},
	CodeNilComponent: {
		Category:   CategoryElement,
		Message:    "Component has no render function",
		Suggestion: "Create components with element.Define(name, fn) and a non-nil fn.",
	},
	CodeBadChild: {
		Category:   CategoryElement,
		Message:    "Unsupported child value",
		Suggestion: "Children must be *element.Element, strings, numbers or booleans.",
	},

	// ============================================
	// Hook Errors (D010-D019)
	// ============================================

	CodeHookOrder: {
		Category:   CategoryHook,
		Message:    "Hook order changed between renders",
		Suggestion: "Call hooks unconditionally, in the same order, on every render.",
	},
	CodeHookOutsideScope: {
		Category:   CategoryHook,
		Message:    "Hook used outside a component render",
		Suggestion: "Only call UseState/UseReducer with the Scope passed to the component.",
	},

	// ============================================
	// Host Errors (D020-D029)
	// ============================================

	CodeHostRender: {
		Category: CategoryHost,
		Message:  "Host adapter failed during render",
	},
	CodeHostCommit: {
		Category: CategoryHost,
		Message:  "Host adapter failed during commit",
	},

	// ============================================
	// Render Errors (D030-D039)
	// ============================================

	CodeComponentPanic: {
		Category: CategoryRender,
		Message:  "Component panicked during render",
	},

	// ============================================
	// Scheduler Errors (D040-D049)
	// ============================================

	CodeLoopNotRunning: {
		Category: CategoryScheduler,
		Message:  "Frame loop is not running",
	},
	CodeLoopTerminated: {
		Category: CategoryScheduler,
		Message:  "Frame loop has been terminated",
	},

	// ============================================
	// Config Errors (D050-D059)
	// ============================================

	CodeConfigParse: {
		Category:   CategoryConfig,
		Message:    "Failed to parse configuration",
		Suggestion: "Check that didact.yaml is valid YAML and durations look like \"16ms\".",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// CLI Errors (D060-D069)
	// ============================================

	CodeCLIUsage: {
		Category: CategoryCLI,
		Message:  "Invalid command usage",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
