package reactive

// Listener is anything that can be notified when a dependency changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during subscription and batch processing.
	ID() uint64
}

// ListenerFunc adapts a function into a Listener with a fresh ID.
type ListenerFunc struct {
	id uint64
	fn func()
}

// NewListenerFunc wraps fn as a Listener.
func NewListenerFunc(fn func()) *ListenerFunc {
	return &ListenerFunc{id: NextID(), fn: fn}
}

// MarkDirty calls the wrapped function.
func (l *ListenerFunc) MarkDirty() {
	if l.fn != nil {
		l.fn()
	}
}

// ID returns the listener ID.
func (l *ListenerFunc) ID() uint64 {
	return l.id
}

// sourceTracker is implemented by listeners that need to know which sources
// they read, so they can drop stale subscriptions before re-running.
type sourceTracker interface {
	addSource(s *Source)
}
