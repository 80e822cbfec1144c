package reactive

import "sync"

// Source is a type-erased subscriber list for one reactive value.
// Stores keep one Source per field plus one for the whole state.
type Source struct {
	id   uint64
	mu   sync.RWMutex
	subs []Listener
}

// NewSource creates an empty source.
func NewSource() *Source {
	return &Source{id: NextID()}
}

// ID returns the unique identifier for this source.
func (s *Source) ID() uint64 {
	return s.id
}

// Track subscribes the current listener, if any, to this source.
// It reports whether a listener was subscribed.
func (s *Source) Track() bool {
	l := CurrentListener()
	if l == nil {
		return false
	}
	s.subscribe(l)
	if t, ok := l.(sourceTracker); ok {
		t.addSource(s)
	}
	return true
}

// subscribe adds a listener, deduplicating by listener ID.
func (s *Source) subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

// Unsubscribe removes a listener from this source.
func (s *Source) Unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of subscribed listeners.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Notify marks every subscriber dirty. Inside a Batch the subscribers are
// queued instead and notified when the outermost batch completes.
// It returns the number of listeners notified or queued.
func (s *Source) Notify() int {
	// Copy-before-notify: listeners may unsubscribe while re-running.
	s.mu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	if len(subs) == 0 {
		return 0
	}

	if ctx := peekTrackingContext(); ctx != nil && ctx.batchDepth > 0 {
		ctx.pendingUpdates = append(ctx.pendingUpdates, subs...)
		return len(subs)
	}

	for _, sub := range subs {
		sub.MarkDirty()
	}
	return len(subs)
}
