// Package reactive provides the dependency-tracking layer used by stores.
//
// A Listener is anything that wants to be told when a value it read has
// changed. Reads performed inside WithListener subscribe that listener to the
// Source being read; writes call Source.Notify, which marks every subscribed
// listener dirty.
//
//	title := reactive.NewView(func() {
//	    render(selectors.Onboarded.Get())
//	})
//
// The View re-runs whenever a Source it read during its last render is
// notified. Reads outside any listener context are plain one-shot reads.
//
// # Batching
//
// Batch defers listener notification until the outermost batch returns and
// deduplicates listeners by ID:
//
//	reactive.Batch(func() {
//	    actions.SetOnboarded(true)
//	    actions.SetColorScheme(appstate.ColorSchemeDark)
//	})
//
// # Goroutines
//
// Tracking state is kept per goroutine. A listener set with WithListener is
// only visible to reads on the same goroutine.
package reactive
