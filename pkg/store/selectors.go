package store

import (
	"fmt"
	"reflect"

	"github.com/sakinah-dev/sakinah/pkg/reactive"
)

// Selector reads one field of a store's state.
type Selector func() any

// Selectors maps each top-level field name to its selector.
type Selectors map[string]Selector

// deriveSelectors builds one selector per field. The set is fixed at
// creation time from the state type.
func (s *Store[S]) deriveSelectors() Selectors {
	sel := make(Selectors, len(s.fields))
	for i, f := range s.fields {
		i := i
		src := s.sources[i]
		sel[f.name] = func() any {
			src.Track()
			return s.fieldValue(i)
		}
	}
	return sel
}

// Selectors returns the store's per-field selectors. Calling a selector
// inside a reactive context subscribes to that field only; outside one it is
// a one-shot read. An empty map means the state has no top-level fields.
func (s *Store[S]) Selectors() Selectors {
	out := make(Selectors, len(s.selectors))
	for k, v := range s.selectors {
		out[k] = v
	}
	return out
}

// Select reads one field by name without subscribing.
func (s *Store[S]) Select(name string) (any, error) {
	i, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return s.fieldValue(i), nil
}

// Subscribe calls fn after every commit that changes the named field.
func (s *Store[S]) Subscribe(name string, fn func(Change)) (Unsubscribe, error) {
	i, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return s.subscribeField(i, fn), nil
}

func (s *Store[S]) subscribeField(i int, fn func(Change)) Unsubscribe {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.fieldSubs[i] = append(s.fieldSubs[i], changeSub{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.fieldSubs[i] = removeChangeSub(s.fieldSubs[i], id)
	}
}

// SubscribeChanges calls fn once per changed field after every commit.
func (s *Store[S]) SubscribeChanges(fn func(Change)) Unsubscribe {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.changeSubs = append(s.changeSubs, changeSub{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.changeSubs = removeChangeSub(s.changeSubs, id)
	}
}

// SubscribeState calls fn with the previous and next state after every
// commit that changed something.
func (s *Store[S]) SubscribeState(fn func(prev, next S)) Unsubscribe {
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.stateSubs = append(s.stateSubs, stateSub[S]{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.stateSubs {
			if sub.id == id {
				s.stateSubs = append(s.stateSubs[:i:i], s.stateSubs[i+1:]...)
				return
			}
		}
	}
}

func removeChangeSub(subs []changeSub, id uint64) []changeSub {
	for i, sub := range subs {
		if sub.id == id {
			// Full slice expression so in-flight notification copies stay intact.
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

// Accessor is a typed handle on one field of a store.
type Accessor[V any] struct {
	name      string
	src       *reactive.Source
	read      func() V
	subscribe func(func(Change)) Unsubscribe
}

// Name returns the field name.
func (a Accessor[V]) Name() string {
	return a.name
}

// Get returns the field value and, inside a reactive context, subscribes
// the current listener to changes of this field only.
func (a Accessor[V]) Get() V {
	a.src.Track()
	return a.read()
}

// Peek returns the field value without subscribing.
func (a Accessor[V]) Peek() V {
	return a.read()
}

// Subscribe calls fn with the old and new value after every commit that
// changes this field.
func (a Accessor[V]) Subscribe(fn func(prev, next V)) Unsubscribe {
	return a.subscribe(func(c Change) {
		o, _ := c.Old.(V)
		n, _ := c.New.(V)
		fn(o, n)
	})
}

// Bind returns an accessor for the named field using get to read it.
// The getter is checked by the compiler; Bind panics when name is not a
// field of S or get's result type differs from the field type. Generated
// selector structs are built on Bind.
func Bind[S, V any](s *Store[S], name string, get func(S) V) Accessor[V] {
	i, err := s.lookup(name)
	if err != nil {
		panic(err)
	}
	if want, got := s.fields[i].typ, reflect.TypeOf((*V)(nil)).Elem(); want != got {
		panic(fmt.Errorf("store %s: %w: field %q is %s, accessor is %s", s.name, ErrFieldType, name, want, got))
	}
	return Accessor[V]{
		name:      name,
		src:       s.sources[i],
		read:      func() V { return get(s.Peek()) },
		subscribe: func(fn func(Change)) Unsubscribe { return s.subscribeField(i, fn) },
	}
}

// Field returns a typed accessor for the named field, checking the type at
// runtime. V must be the field type or an interface it implements.
func Field[V, S any](s *Store[S], name string) (Accessor[V], error) {
	i, err := s.lookup(name)
	if err != nil {
		return Accessor[V]{}, err
	}
	ft, vt := s.fields[i].typ, reflect.TypeOf((*V)(nil)).Elem()
	if ft != vt && !(vt.Kind() == reflect.Interface && ft.Implements(vt)) {
		return Accessor[V]{}, fmt.Errorf("store %s: %w: field %q is %s, accessor is %s", s.name, ErrFieldType, name, ft, vt)
	}
	return Accessor[V]{
		name: name,
		src:  s.sources[i],
		read: func() V {
			v, _ := s.fieldValue(i).(V)
			return v
		},
		subscribe: func(fn func(Change)) Unsubscribe { return s.subscribeField(i, fn) },
	}, nil
}

// MustField is like Field but panics on error.
func MustField[V, S any](s *Store[S], name string) Accessor[V] {
	a, err := Field[V](s, name)
	if err != nil {
		panic(err)
	}
	return a
}
