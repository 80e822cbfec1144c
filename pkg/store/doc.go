// Package store provides named, process-wide state containers whose
// top-level fields each get a standalone accessor.
//
// A store is created from an initializer that receives the store's Setter
// and returns the initial state together with the store's actions. The
// Setter is the only way to change state, so actions are the only mutation
// path consumers ever see:
//
//	type Counter struct {
//	    Count int
//	    Label string
//	}
//
//	type CounterActions struct{ set store.Setter[Counter] }
//
//	func (a CounterActions) Inc() error {
//	    return a.set.Named("inc").Update(func(c Counter) Counter {
//	        c.Count++
//	        return c
//	    })
//	}
//
//	counter, actions := store.Create("counter", func(set store.Setter[Counter]) (Counter, CounterActions) {
//	    return Counter{Label: "taps"}, CounterActions{set: set}
//	})
//
// # Selectors
//
// Every exported field of the state struct becomes a selector at creation
// time. Selectors read one field and, inside a reactive context (see package
// reactive), subscribe only to that field:
//
//	count := counter.Selectors()["Count"]
//	view := reactive.NewView(func() { render(count()) })
//
// Typed accessors are available through Field (checked at runtime) and Bind
// (checked by the compiler, used by generated selector structs).
//
// # Transitions
//
// Replace, Update, Merge and Reset commit a new state and notify every
// affected subscriber synchronously before returning. Transitions on one
// store are serialized and readers only ever see a fully applied state.
// Calling a Setter from inside a subscriber of the same store returns
// ErrReentrantSet.
package store
