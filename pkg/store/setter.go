package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
)

// Patch is a partial state keyed by field name, shallow-merged by
// Setter.Merge. A nil value resets the field to its zero value.
type Patch map[string]any

// Setter is the mutation handle of a store. It is handed to the store's
// initializer and captured by the store's actions.
//
// Setter is a small value; Named and WithContext return modified copies.
type Setter[S any] struct {
	store  *Store[S]
	action string
	ctx    context.Context
}

// Named returns a setter whose commits are reported under action.
func (p Setter[S]) Named(action string) Setter[S] {
	p.action = action
	return p
}

// WithContext returns a setter whose commits carry ctx to observers.
func (p Setter[S]) WithContext(ctx context.Context) Setter[S] {
	p.ctx = ctx
	return p
}

// Current returns the store's current state without subscribing.
func (p Setter[S]) Current() S {
	if p.store == nil {
		var zero S
		return zero
	}
	return p.store.Peek()
}

// Replace swaps the whole state for next.
func (p Setter[S]) Replace(next S) error {
	return p.run("replace", func(S) (S, error) {
		return next, nil
	})
}

// Update computes the next state from the current one.
func (p Setter[S]) Update(fn func(S) S) error {
	return p.run("update", func(cur S) (S, error) {
		return fn(cur), nil
	})
}

// Merge shallow-merges patch into the current state. Either every field in
// the patch is applied or, on error, none is.
func (p Setter[S]) Merge(patch Patch) error {
	return p.run("merge", func(cur S) (S, error) {
		return p.store.applyPatch(cur, patch)
	})
}

// Reset restores the declared defaults, then merges overrides on top.
func (p Setter[S]) Reset(overrides Patch) error {
	return p.run("reset", func(S) (S, error) {
		return p.store.applyPatch(p.store.defaults, overrides)
	})
}

func (p Setter[S]) run(kind string, next func(S) (S, error)) error {
	if p.store == nil {
		return ErrDetached
	}
	action := p.action
	if action == "" {
		action = kind
	}
	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return p.store.commit(ctx, action, next)
}

// applyPatch returns cur with the patch fields assigned.
func (s *Store[S]) applyPatch(cur S, patch Patch) (S, error) {
	if len(patch) == 0 {
		return cur, nil
	}

	next := cur
	rv := reflect.ValueOf(&next).Elem()

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		i, ok := s.index[k]
		if !ok {
			return cur, fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
		f := s.fields[i]
		dst := rv.Field(f.index)

		v := patch[k]
		if v == nil {
			dst.SetZero()
			continue
		}

		val, err := assignable(reflect.ValueOf(v), f.typ)
		if err != nil {
			return cur, fmt.Errorf("field %q: %w", k, err)
		}
		dst.Set(val)
	}
	return next, nil
}

// assignable converts v to typ when v is assignable, or when both share a
// kind and only differ by name (string to a named string enum).
func assignable(v reflect.Value, typ reflect.Type) (reflect.Value, error) {
	if v.Type().AssignableTo(typ) {
		return v, nil
	}
	if v.Kind() == typ.Kind() && v.Type().ConvertibleTo(typ) {
		return v.Convert(typ), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", ErrFieldType, v.Type(), typ)
}
