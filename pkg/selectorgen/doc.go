// Package selectorgen generates compile-time-checked selector structs for
// store state types.
//
// For a state struct T it emits a TSelectors struct holding one
// store.Accessor per exported field and a NewTSelectors constructor built
// on store.Bind. Use it from go:generate:
//
//	//go:generate go run github.com/sakinah-dev/sakinah/cmd/sakinah gen selectors -type GlobalState,Preferences -o selectors_gen.go
package selectorgen
