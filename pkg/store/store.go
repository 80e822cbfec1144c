package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sakinah-dev/sakinah/pkg/reactive"
)

// Unsubscribe removes a subscription. Calling it more than once is safe.
type Unsubscribe func()

// Change describes one field that changed during a commit.
type Change struct {
	Store  string `json:"store"`
	Action string `json:"action"`
	Field  string `json:"field"`
	Old    any    `json:"old"`
	New    any    `json:"new"`
}

// Store is a named state container. S is normally a struct whose exported
// fields are the store's top-level keys.
type Store[S any] struct {
	name string

	// mu guards state. It is never held while subscribers run.
	mu       sync.RWMutex
	state    S
	defaults S

	// commitMu serializes transitions; committer is the goroutine holding it.
	commitMu  sync.Mutex
	committer atomic.Uint64

	fields  []field
	index   map[string]int
	sources []*reactive.Source
	whole   *reactive.Source

	subMu      sync.RWMutex
	nextSub    uint64
	fieldSubs  [][]changeSub
	changeSubs []changeSub
	stateSubs  []stateSub[S]

	selectors Selectors
	observers []Observer
	logger    *slog.Logger
}

type changeSub struct {
	id uint64
	fn func(Change)
}

type stateSub[S any] struct {
	id uint64
	fn func(prev, next S)
}

// Create builds a store from an initializer. The initializer receives the
// store's Setter and returns the initial state and the store's actions.
// The initial state is kept as the declared defaults used by Setter.Reset.
//
// The initializer must not call the Setter; the state does not exist yet.
func Create[S, A any](name string, init func(set Setter[S]) (S, A), opts ...Option) (*Store[S], A) {
	s := newStore[S](name, opts)
	set := Setter[S]{store: s}
	initial, actions := init(set)
	s.state = initial
	s.defaults = initial
	return s, actions
}

// New builds a store with a plain initial state and returns its Setter.
func New[S any](name string, initial S, opts ...Option) (*Store[S], Setter[S]) {
	return Create(name, func(set Setter[S]) (S, Setter[S]) {
		return initial, set
	}, opts...)
}

func newStore[S any](name string, opts []Option) *Store[S] {
	o := applyOptions(opts)

	fields := deriveFields(reflect.TypeOf((*S)(nil)).Elem())
	s := &Store[S]{
		name:      name,
		fields:    fields,
		index:     make(map[string]int, len(fields)),
		sources:   make([]*reactive.Source, len(fields)),
		whole:     reactive.NewSource(),
		fieldSubs: make([][]changeSub, len(fields)),
		observers: o.observers,
		logger:    o.logger.With("store", name),
	}
	for i, f := range fields {
		s.index[f.name] = i
		s.sources[i] = reactive.NewSource()
	}
	s.selectors = s.deriveSelectors()
	return s
}

// Name returns the store name.
func (s *Store[S]) Name() string {
	return s.name
}

// Fields returns the top-level field names in declaration order.
func (s *Store[S]) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Get returns the current state and, inside a reactive context, subscribes
// the current listener to every change of the store.
func (s *Store[S]) Get() S {
	s.whole.Track()
	return s.Peek()
}

// Peek returns the current state without subscribing.
func (s *Store[S]) Peek() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// State returns the current state as an untyped value.
func (s *Store[S]) State() any {
	return s.Peek()
}

// MarshalState encodes the current state as JSON.
func (s *Store[S]) MarshalState() ([]byte, error) {
	return json.Marshal(s.Peek())
}

// Defaults returns the declared initial state.
func (s *Store[S]) Defaults() S {
	return s.defaults
}

// fieldValue reads field i of the current state.
func (s *Store[S]) fieldValue(i int) any {
	state := s.Peek()
	return reflect.ValueOf(&state).Elem().Field(s.fields[i].index).Interface()
}

// lookup returns the index of a field by name.
func (s *Store[S]) lookup(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, fmt.Errorf("store %s: %w: %q", s.name, ErrUnknownField, name)
	}
	return i, nil
}

// commit computes the next state from the current one, applies it and
// notifies subscribers of every changed field. next runs with the commit
// lock held; a Setter call from inside it or from a subscriber on the same
// goroutine fails with ErrReentrantSet.
func (s *Store[S]) commit(ctx context.Context, action string, next func(S) (S, error)) error {
	gid := reactive.GoroutineID()
	if s.committer.Load() == gid {
		return fmt.Errorf("store %s: %s: %w", s.name, action, ErrReentrantSet)
	}

	s.commitMu.Lock()
	s.committer.Store(gid)
	defer func() {
		s.committer.Store(0)
		s.commitMu.Unlock()
	}()

	start := time.Now()
	prev := s.Peek()

	updated, err := next(prev)
	if err != nil {
		err = fmt.Errorf("store %s: %s: %w", s.name, action, err)
		s.observe(ctx, Commit{Store: s.name, Action: action, Start: start, Duration: time.Since(start), Err: err})
		return err
	}

	changed := s.diff(prev, updated)

	s.mu.Lock()
	s.state = updated
	s.mu.Unlock()

	notified := 0
	if len(changed) > 0 || (len(s.fields) == 0 && !shallowEqual(reflect.ValueOf(&prev).Elem(), reflect.ValueOf(&updated).Elem())) {
		notified = s.notify(action, prev, updated, changed)
	}

	names := make([]string, len(changed))
	for i, idx := range changed {
		names[i] = s.fields[idx].name
	}
	s.observe(ctx, Commit{
		Store:    s.name,
		Action:   action,
		Changed:  names,
		Start:    start,
		Duration: time.Since(start),
		Notified: notified,
	})
	return nil
}

// diff returns the indexes of fields whose value changed.
func (s *Store[S]) diff(prev, next S) []int {
	if len(s.fields) == 0 {
		return nil
	}
	pv := reflect.ValueOf(&prev).Elem()
	nv := reflect.ValueOf(&next).Elem()

	var changed []int
	for i, f := range s.fields {
		if !shallowEqual(pv.Field(f.index), nv.Field(f.index)) {
			changed = append(changed, i)
		}
	}
	return changed
}

// notify runs field subscribers, change-stream subscribers, state
// subscribers and finally reactive listeners. The new state is already
// visible to every reader.
func (s *Store[S]) notify(action string, prev, next S, changed []int) int {
	pv := reflect.ValueOf(&prev).Elem()
	nv := reflect.ValueOf(&next).Elem()

	changes := make([]Change, len(changed))
	s.subMu.RLock()
	perField := make([][]changeSub, len(changed))
	for i, idx := range changed {
		f := s.fields[idx]
		changes[i] = Change{
			Store:  s.name,
			Action: action,
			Field:  f.name,
			Old:    pv.Field(f.index).Interface(),
			New:    nv.Field(f.index).Interface(),
		}
		perField[i] = append([]changeSub(nil), s.fieldSubs[idx]...)
	}
	changeSubs := append([]changeSub(nil), s.changeSubs...)
	stateSubs := append([]stateSub[S](nil), s.stateSubs...)
	s.subMu.RUnlock()

	count := 0
	for i, c := range changes {
		for _, sub := range perField[i] {
			sub.fn(c)
			count++
		}
	}
	for _, c := range changes {
		for _, sub := range changeSubs {
			sub.fn(c)
			count++
		}
	}
	for _, sub := range stateSubs {
		sub.fn(prev, next)
		count++
	}

	reactive.Batch(func() {
		for _, idx := range changed {
			count += s.sources[idx].Notify()
		}
		count += s.whole.Notify()
	})
	return count
}

func (s *Store[S]) observe(ctx context.Context, c Commit) {
	if c.Err != nil {
		s.logger.Warn("store commit rejected", "action", c.Action, "error", c.Err)
	} else {
		s.logger.Debug("store commit",
			"action", c.Action,
			"changed", c.Changed,
			"notified", c.Notified,
			"duration", c.Duration,
		)
	}
	for _, obs := range s.observers {
		obs.ObserveCommit(ctx, c)
	}
}
