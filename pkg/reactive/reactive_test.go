package reactive

import (
	"sync"
	"testing"
)

type testListener struct {
	id    uint64
	mu    sync.Mutex
	dirty int
}

func newTestListener() *testListener {
	return &testListener{id: NextID()}
}

func (l *testListener) MarkDirty() {
	l.mu.Lock()
	l.dirty++
	l.mu.Unlock()
}

func (l *testListener) ID() uint64 { return l.id }

func (l *testListener) getDirtyCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

func TestSourceTrackInsideListener(t *testing.T) {
	src := NewSource()
	listener := newTestListener()

	WithListener(listener, func() {
		if !src.Track() {
			t.Error("expected Track to subscribe the current listener")
		}
	})

	if n := src.Notify(); n != 1 {
		t.Errorf("expected 1 listener notified, got %d", n)
	}
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSourceTrackOutsideListener(t *testing.T) {
	src := NewSource()
	if src.Track() {
		t.Error("Track outside a listener context should not subscribe")
	}
	if src.Len() != 0 {
		t.Errorf("expected no subscribers, got %d", src.Len())
	}
}

func TestSourceDeduplicatesListener(t *testing.T) {
	src := NewSource()
	listener := newTestListener()

	WithListener(listener, func() {
		src.Track()
		src.Track()
		src.Track()
	})

	if src.Len() != 1 {
		t.Errorf("expected 1 subscriber, got %d", src.Len())
	}
}

func TestSourceUnsubscribe(t *testing.T) {
	src := NewSource()
	listener := newTestListener()
	WithListener(listener, func() { src.Track() })

	src.Unsubscribe(listener)
	src.Notify()

	if listener.getDirtyCount() != 0 {
		t.Errorf("unsubscribed listener should not be notified, got %d", listener.getDirtyCount())
	}
}

func TestUntracked(t *testing.T) {
	src := NewSource()
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() {
			src.Track()
		})
	})

	if src.Len() != 0 {
		t.Errorf("Untracked reads should not subscribe, got %d subscribers", src.Len())
	}
}

func TestWithListenerRestoresPrevious(t *testing.T) {
	outer := newTestListener()
	inner := newTestListener()

	WithListener(outer, func() {
		WithListener(inner, func() {
			if CurrentListener() != inner {
				t.Error("expected inner listener")
			}
		})
		if CurrentListener() != outer {
			t.Error("expected outer listener to be restored")
		}
	})

	if CurrentListener() != nil {
		t.Error("expected no listener after WithListener returns")
	}
}

func TestBatchDeduplication(t *testing.T) {
	a := NewSource()
	b := NewSource()
	listener := newTestListener()

	WithListener(listener, func() {
		a.Track()
		b.Track()
	})

	Batch(func() {
		a.Notify()
		b.Notify()
		a.Notify()
		if listener.getDirtyCount() != 0 {
			t.Errorf("listener notified inside batch: %d", listener.getDirtyCount())
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification (batched), got %d", listener.getDirtyCount())
	}
}

func TestNestedBatch(t *testing.T) {
	src := NewSource()
	listener := newTestListener()
	WithListener(listener, func() { src.Track() })

	Batch(func() {
		Batch(func() {
			src.Notify()
		})
		if listener.getDirtyCount() != 0 {
			t.Error("inner batch should not flush")
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestViewRerendersOnNotify(t *testing.T) {
	src := NewSource()
	view := NewView(func() {
		src.Track()
	})

	if view.Renders() != 1 {
		t.Fatalf("expected initial render, got %d", view.Renders())
	}

	src.Notify()
	if view.Renders() != 2 {
		t.Errorf("expected 2 renders, got %d", view.Renders())
	}
}

func TestViewDropsStaleSources(t *testing.T) {
	a := NewSource()
	b := NewSource()
	useA := true

	view := NewView(func() {
		if useA {
			a.Track()
		} else {
			b.Track()
		}
	})

	useA = false
	a.Notify() // re-render now reads b only

	if a.Len() != 0 {
		t.Errorf("expected view to leave source a, got %d subscribers", a.Len())
	}
	if b.Len() != 1 {
		t.Errorf("expected view to subscribe to b, got %d subscribers", b.Len())
	}

	a.Notify()
	if view.Renders() != 2 {
		t.Errorf("stale source should not re-render view, got %d renders", view.Renders())
	}
}

func TestViewSelfInvalidation(t *testing.T) {
	src := NewSource()
	calls := 0

	view := NewView(func() {
		src.Track()
		calls++
		if calls == 1 {
			src.Notify()
		}
	})

	if view.Renders() != 2 {
		t.Errorf("expected the self-invalidated view to render twice, got %d", view.Renders())
	}
}

func TestViewDispose(t *testing.T) {
	src := NewSource()
	view := NewView(func() { src.Track() })

	view.Dispose()
	src.Notify()

	if view.Renders() != 1 {
		t.Errorf("disposed view should not re-render, got %d renders", view.Renders())
	}
	if src.Len() != 0 {
		t.Errorf("disposed view should unsubscribe, got %d subscribers", src.Len())
	}
}

func TestGoroutineIDDistinct(t *testing.T) {
	self := GoroutineID()
	if self == 0 {
		t.Fatal("expected a non-zero goroutine id")
	}

	var other uint64
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		other = GoroutineID()
	}()
	wg.Wait()

	if other == self {
		t.Errorf("expected distinct goroutine ids, both %d", self)
	}
}

func TestListenerIsolationAcrossGoroutines(t *testing.T) {
	src := NewSource()
	listener := newTestListener()

	WithListener(listener, func() {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.Track()
		}()
		wg.Wait()
	})

	if src.Len() != 0 {
		t.Errorf("reads on another goroutine should not subscribe, got %d", src.Len())
	}
}

func TestListenerFunc(t *testing.T) {
	calls := 0
	l := NewListenerFunc(func() { calls++ })
	src := NewSource()
	WithListener(l, func() { src.Track() })

	src.Notify()
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
