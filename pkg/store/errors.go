package store

import "errors"

var (
	// ErrUnknownField is returned when a patch or lookup names a field the
	// state struct does not declare.
	ErrUnknownField = errors.New("store: unknown field")

	// ErrFieldType is returned when a patch value cannot be assigned to the
	// field it targets, or an accessor is requested with the wrong type.
	ErrFieldType = errors.New("store: field type mismatch")

	// ErrReentrantSet is returned when a Setter is called while the same
	// goroutine is already committing or notifying on that store.
	ErrReentrantSet = errors.New("store: re-entrant set from subscriber")

	// ErrDetached is returned by a zero Setter that is not bound to a store.
	ErrDetached = errors.New("store: setter is not bound to a store")

	// ErrDuplicateStore is returned when a registry already holds a store
	// with the same name.
	ErrDuplicateStore = errors.New("store: duplicate store name")
)
