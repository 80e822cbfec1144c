package reactive

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	// currentListener is what's currently tracking dependencies.
	// nil means no tracking (reads don't create subscriptions).
	currentListener Listener

	// batchDepth tracks nested Batch() calls.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when a batch completes.
	pendingUpdates []Listener
}

func (c *trackingContext) empty() bool {
	return c.currentListener == nil && c.batchDepth == 0 && len(c.pendingUpdates) == 0
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

var idCounter atomic.Uint64

// NextID returns a process-unique, non-zero identifier.
func NextID() uint64 {
	return idCounter.Add(1)
}

// GoroutineID returns the identifier of the calling goroutine.
// It parses the header of runtime.Stack ("goroutine <id> [...]").
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating it if needed.
func getTrackingContext() (uint64, *trackingContext) {
	gid := GoroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return gid, ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return gid, ctx
}

// peekTrackingContext returns the context without creating one.
func peekTrackingContext() *trackingContext {
	if ctx, ok := trackingContexts.Load(GoroutineID()); ok {
		return ctx.(*trackingContext)
	}
	return nil
}

// release drops the goroutine's context once it holds no state.
func release(gid uint64, ctx *trackingContext) {
	if ctx.empty() {
		trackingContexts.Delete(gid)
	}
}

// CurrentListener returns the listener tracking reads on this goroutine,
// or nil outside a tracked context.
func CurrentListener() Listener {
	if ctx := peekTrackingContext(); ctx != nil {
		return ctx.currentListener
	}
	return nil
}

// WithListener runs fn with l as the current listener.
// Sources read inside fn subscribe l.
func WithListener(l Listener, fn func()) {
	gid, ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	defer func() {
		ctx.currentListener = old
		release(gid, ctx)
	}()
	fn()
}

// Untracked runs fn without tracking reads as dependencies.
func Untracked(fn func()) {
	WithListener(nil, fn)
}
