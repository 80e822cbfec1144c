package store

import (
	"fmt"
	"sort"
	"sync"
)

// Inspectable is the untyped view of a store used by registries, devtools
// and persistence tooling.
type Inspectable interface {
	Name() string
	Fields() []string
	State() any
	MarshalState() ([]byte, error)
	SubscribeChanges(fn func(Change)) Unsubscribe
}

var _ Inspectable = (*Store[struct{}])(nil)

// Registry indexes the live stores of a composition root by name.
// A name can be registered once, so every store definition has exactly one
// live instance per registry.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]Inspectable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Inspectable)}
}

// Register adds a store. It fails with ErrDuplicateStore when the name is
// already taken.
func (r *Registry) Register(s Inspectable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStore, name)
	}
	r.stores[name] = s
	return nil
}

// Lookup returns the store registered under name.
func (r *Registry) Lookup(name string) (Inspectable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[name]
	return s, ok
}

// Names returns the registered store names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
