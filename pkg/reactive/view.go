package reactive

import (
	"sync"
	"sync/atomic"
)

// maxRerenders bounds how many times a view re-runs when it invalidates
// itself during its own render.
const maxRerenders = 100

// View is a re-runnable render function. It subscribes to every Source read
// during its last render and re-runs when any of them is notified.
type View struct {
	id     uint64
	render func()

	mu      sync.Mutex
	sources []*Source

	// owner is the goroutine currently rendering, 0 when idle.
	owner   atomic.Uint64
	again   atomic.Bool
	renders atomic.Int64

	disposed atomic.Bool
}

// NewView creates a view and performs its first render.
func NewView(render func()) *View {
	v := &View{
		id:     NextID(),
		render: render,
	}
	v.run()
	return v
}

// ID returns the listener ID of the view.
func (v *View) ID() uint64 {
	return v.id
}

// MarkDirty re-runs the render function.
func (v *View) MarkDirty() {
	if v.disposed.Load() {
		return
	}
	if v.owner.Load() == GoroutineID() {
		// Invalidated by its own render; run again once it finishes.
		v.again.Store(true)
		return
	}
	v.run()
}

// Renders returns how many times the render function has run.
func (v *View) Renders() int {
	return int(v.renders.Load())
}

// Dispose unsubscribes the view from every source and stops re-rendering.
func (v *View) Dispose() {
	if v.disposed.Swap(true) {
		return
	}
	if v.owner.Load() == GoroutineID() {
		// Disposed from inside its own render; run drops the sources.
		return
	}
	v.mu.Lock()
	v.dropSources()
	v.mu.Unlock()
}

func (v *View) run() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.owner.Store(GoroutineID())
	defer v.owner.Store(0)
	defer func() {
		if v.disposed.Load() {
			v.dropSources()
		}
	}()

	for i := 0; i < maxRerenders; i++ {
		if v.disposed.Load() {
			return
		}
		v.again.Store(false)
		v.dropSources()
		WithListener(v, v.render)
		v.renders.Add(1)
		if !v.again.Load() {
			return
		}
	}
}

// addSource records a source read during the current render.
func (v *View) addSource(s *Source) {
	for _, existing := range v.sources {
		if existing == s {
			return
		}
	}
	v.sources = append(v.sources, s)
}

func (v *View) dropSources() {
	for _, s := range v.sources {
		s.Unsubscribe(v)
	}
	v.sources = v.sources[:0]
}
