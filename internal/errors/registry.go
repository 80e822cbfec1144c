package errors

import "sort"

// Template defines a registered error code.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

var registry = map[string]Template{
	// Configuration (E100-E199)
	"E100": {
		Category:   CategoryConfig,
		Message:    "Configuration file not readable",
		Suggestion: "Check the path passed with --config and its permissions.",
	},
	"E101": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "The file must be a JSON object; see sakinah.json in the repository root.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Invalid environment override",
		Suggestion: "SAKINAH_* variables must parse as the field type (numbers, booleans, durations).",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Invalid screen geometry",
		Suggestion: "Screen, reference and pixel ratio must all be positive.",
	},

	// Persistence (E200-E299)
	"E200": {
		Category: CategoryPersist,
		Message:  "Storage backend unavailable",
	},
	"E201": {
		Category:   CategoryPersist,
		Message:    "Stored state could not be loaded",
		Suggestion: "Run `sakinah state reset` to discard the stored snapshot.",
	},
	"E202": {
		Category:   CategoryPersist,
		Message:    "Stored state has an unsupported version",
		Suggestion: "Run `sakinah state reset` or upgrade sakinah.",
	},
	"E203": {
		Category: CategoryPersist,
		Message:  "State could not be saved",
	},

	// Command line (E300-E399)
	"E300": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
	"E301": {
		Category:   CategoryCLI,
		Message:    "Unknown store",
		Suggestion: "Run `sakinah state show` to list stores.",
	},
	"E302": {
		Category: CategoryCLI,
		Message:  "Code generation failed",
	},
	"E303": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
}

// Codes returns all registered error codes in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
