// Package errors provides coded, actionable errors for the sakinah CLI and
// its configuration layer.
//
// Each code maps to a category, a short message and a longer detail:
//   - E1xx: configuration loading and validation
//   - E2xx: state persistence
//   - E3xx: command line usage
//
// # Usage
//
//	err := errors.New("E102").
//	    WithDetail(`persist.backend "redis" is not supported`).
//	    WithSuggestion("Use one of: memory, file, sqlite, s3")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E102: Invalid configuration value
//	//
//	//   persist.backend "redis" is not supported
//	//
//	//   Hint: Use one of: memory, file, sqlite, s3
package errors
