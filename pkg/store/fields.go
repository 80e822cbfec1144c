package store

import "reflect"

// field describes one top-level key of the state struct.
type field struct {
	name  string
	index int
	typ   reflect.Type
}

// deriveFields lists the exported fields of t in declaration order.
// Anything other than a struct has no top-level keys.
func deriveFields(t reflect.Type) []field {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fields = append(fields, field{name: sf.Name, index: i, typ: sf.Type})
	}
	return fields
}

// shallowEqual reports whether two values are the same for change detection.
// Comparable scalars compare by value; slices, maps, pointers and chans by
// identity; structs and arrays element by element with the same rules.
// Funcs are only equal when both are nil.
func shallowEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Slice:
		if a.IsNil() != b.IsNil() || a.Len() != b.Len() {
			return false
		}
		return a.Len() == 0 || a.Pointer() == b.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return shallowEqual(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !shallowEqual(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !shallowEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	default:
		return a.Equal(b)
	}
}
