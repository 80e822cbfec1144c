// Package appstate defines the application's stores and wires them into an
// App composition root.
package appstate

//go:generate go run ../../cmd/sakinah gen selectors --type GlobalState,PreferencesState --output selectors_gen.go
