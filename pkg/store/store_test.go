package store

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"github.com/sakinah-dev/sakinah/pkg/reactive"
)

type pair struct {
	A int
	B string
}

type theme struct {
	Primary string
	Radius  float64
}

type appState struct {
	Onboarded bool
	Scheme    scheme
	Theme     theme
	Favorites []int
	hidden    int
}

type scheme string

type appActions struct {
	set Setter[appState]
}

func (a appActions) SetOnboarded(v bool) error {
	return a.set.Named("setOnboarded").Merge(Patch{"Onboarded": v})
}

func (a appActions) Reset() error {
	return a.set.Named("reset").Reset(Patch{"Onboarded": true})
}

func newAppStore(opts ...Option) (*Store[appState], appActions) {
	return Create("app", func(set Setter[appState]) (appState, appActions) {
		return appState{Scheme: "system", Theme: theme{Primary: "#0f766e", Radius: 8}}, appActions{set: set}
	}, opts...)
}

func TestCreateDerivesSelectorPerField(t *testing.T) {
	s, _ := newAppStore()

	sel := s.Selectors()
	want := []string{"Onboarded", "Scheme", "Theme", "Favorites"}
	if len(sel) != len(want) {
		t.Fatalf("expected %d selectors, got %d", len(want), len(sel))
	}
	for _, name := range want {
		if _, ok := sel[name]; !ok {
			t.Errorf("missing selector for %s", name)
		}
	}
	if _, ok := sel["hidden"]; ok {
		t.Error("unexported field should not get a selector")
	}
	if got := s.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestSelectorsMatchStateAfterTransitions(t *testing.T) {
	s, actions := newAppStore()

	check := func(step string) {
		t.Helper()
		state := s.Peek()
		rv := reflect.ValueOf(state)
		for name, sel := range s.Selectors() {
			want := rv.FieldByName(name).Interface()
			if got := sel(); !reflect.DeepEqual(got, want) {
				t.Errorf("%s: selector %s = %v, state has %v", step, name, got, want)
			}
		}
	}

	check("initial")
	if err := actions.SetOnboarded(true); err != nil {
		t.Fatal(err)
	}
	check("after setOnboarded")
	if err := actions.set.Merge(Patch{"Scheme": scheme("dark"), "Favorites": []int{3, 7}}); err != nil {
		t.Fatal(err)
	}
	check("after merge")
	if err := actions.Reset(); err != nil {
		t.Fatal(err)
	}
	check("after reset")
}

func TestEmptyStateHasNoSelectors(t *testing.T) {
	empty, _ := New("empty", struct{}{})
	if n := len(empty.Selectors()); n != 0 {
		t.Errorf("expected no selectors for an empty struct, got %d", n)
	}

	scalar, set := New("scalar", 1)
	if n := len(scalar.Selectors()); n != 0 {
		t.Errorf("expected no selectors for a non-struct state, got %d", n)
	}

	// Whole-store subscriptions still work.
	var got []int
	scalar.SubscribeState(func(prev, next int) { got = append(got, next) })
	if err := set.Replace(2); err != nil {
		t.Fatal(err)
	}
	if err := set.Replace(2); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("expected one state notification, got %v", got)
	}
}

func TestSelectorOutsideReactiveContextIsOneShot(t *testing.T) {
	s, actions := newAppStore()
	onboarded := s.Selectors()["Onboarded"]

	if onboarded() != false {
		t.Fatal("expected initial false")
	}
	if err := actions.SetOnboarded(true); err != nil {
		t.Fatal(err)
	}
	if onboarded() != true {
		t.Error("expected selector to read the current value")
	}
	if n := s.sources[s.index["Onboarded"]].Len(); n != 0 {
		t.Errorf("one-shot read should not subscribe, got %d listeners", n)
	}
}

func TestFieldIsolation(t *testing.T) {
	s, set := New("pair", pair{A: 1, B: "x"})
	sel := s.Selectors()

	viewB := reactive.NewView(func() { _ = sel["B"]() })
	viewA := reactive.NewView(func() { _ = sel["A"]() })

	if err := set.Merge(Patch{"A": 2}); err != nil {
		t.Fatal(err)
	}

	if viewB.Renders() != 1 {
		t.Errorf("view bound to B re-rendered on A change: %d renders", viewB.Renders())
	}
	if viewA.Renders() != 2 {
		t.Errorf("view bound to A should re-render once, got %d renders", viewA.Renders())
	}

	if err := set.Merge(Patch{"B": "y"}); err != nil {
		t.Fatal(err)
	}
	if viewB.Renders() != 2 {
		t.Errorf("view bound to B should re-render on B change, got %d renders", viewB.Renders())
	}
	if viewA.Renders() != 2 {
		t.Errorf("view bound to A re-rendered on B change: %d renders", viewA.Renders())
	}
}

func TestViewReadingTwoFieldsRendersOncePerCommit(t *testing.T) {
	s, set := New("pair", pair{})
	sel := s.Selectors()
	view := reactive.NewView(func() {
		_ = sel["A"]()
		_ = sel["B"]()
	})

	if err := set.Replace(pair{A: 5, B: "five"}); err != nil {
		t.Fatal(err)
	}
	if view.Renders() != 2 {
		t.Errorf("expected a single re-render for a two-field commit, got %d renders", view.Renders())
	}
}

func TestNotificationSeesCommittedState(t *testing.T) {
	s, set := New("pair", pair{A: 1, B: "one"})

	var seen []pair
	for _, name := range []string{"A", "B"} {
		if _, err := s.Subscribe(name, func(Change) {
			seen = append(seen, s.Peek())
		}); err != nil {
			t.Fatal(err)
		}
	}
	s.SubscribeState(func(prev, next pair) {
		seen = append(seen, s.Peek())
	})

	if err := set.Merge(Patch{"A": 2, "B": "two"}); err != nil {
		t.Fatal(err)
	}

	want := pair{A: 2, B: "two"}
	if len(seen) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(seen))
	}
	for i, got := range seen {
		if got != want {
			t.Errorf("subscriber %d observed %+v, want %+v", i, got, want)
		}
	}
}

func TestNotifyBeforeSetReturns(t *testing.T) {
	s, set := New("pair", pair{})
	notified := false
	if _, err := s.Subscribe("A", func(Change) { notified = true }); err != nil {
		t.Fatal(err)
	}

	if err := set.Update(func(p pair) pair { p.A++; return p }); err != nil {
		t.Fatal(err)
	}
	if !notified {
		t.Error("subscriber should run before Update returns")
	}
}

func TestResetForcesOnboarded(t *testing.T) {
	type onboarding struct {
		Onboarded *bool
		Step      int
	}
	yes, no := true, false

	for _, tc := range []struct {
		name  string
		prior *bool
	}{
		{"false", &no},
		{"true", &yes},
		{"unset", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, set := New("onboarding", onboarding{Onboarded: &no})
			if err := set.Replace(onboarding{Onboarded: tc.prior, Step: 3}); err != nil {
				t.Fatal(err)
			}

			if err := set.Reset(Patch{"Onboarded": &yes}); err != nil {
				t.Fatal(err)
			}

			got := s.Peek()
			if got.Onboarded == nil || !*got.Onboarded {
				t.Errorf("expected onboarded true after reset, got %v", got.Onboarded)
			}
			if got.Step != 0 {
				t.Errorf("expected other fields back at defaults, got step %d", got.Step)
			}
		})
	}
}

func TestMergeUnknownField(t *testing.T) {
	s, set := New("pair", pair{A: 1})

	err := set.Merge(Patch{"A": 9, "C": true})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if s.Peek().A != 1 {
		t.Error("failed merge must not apply any field")
	}
}

func TestMergeTypeMismatch(t *testing.T) {
	s, set := New("pair", pair{A: 1})

	err := set.Merge(Patch{"A": "nine"})
	if !errors.Is(err, ErrFieldType) {
		t.Fatalf("expected ErrFieldType, got %v", err)
	}
	if s.Peek().A != 1 {
		t.Error("failed merge must not change state")
	}

	// int to string shares no kind and must not convert to a rune.
	if err := set.Merge(Patch{"B": 65}); !errors.Is(err, ErrFieldType) {
		t.Errorf("expected ErrFieldType for int into string, got %v", err)
	}
}

func TestMergeConvertsNamedKinds(t *testing.T) {
	s, actions := newAppStore()
	if err := actions.set.Merge(Patch{"Scheme": "dark"}); err != nil {
		t.Fatal(err)
	}
	if s.Peek().Scheme != "dark" {
		t.Errorf("expected dark, got %q", s.Peek().Scheme)
	}
}

func TestMergeNilResetsToZero(t *testing.T) {
	s, actions := newAppStore()
	if err := actions.set.Merge(Patch{"Favorites": []int{1}}); err != nil {
		t.Fatal(err)
	}
	if err := actions.set.Merge(Patch{"Favorites": nil}); err != nil {
		t.Fatal(err)
	}
	if s.Peek().Favorites != nil {
		t.Errorf("expected nil favorites, got %v", s.Peek().Favorites)
	}
}

func TestEqualValueDoesNotNotify(t *testing.T) {
	s, set := New("pair", pair{A: 1, B: "x"})
	calls := 0
	s.SubscribeChanges(func(Change) { calls++ })

	if err := set.Merge(Patch{"A": 1}); err != nil {
		t.Fatal(err)
	}
	if err := set.Replace(pair{A: 1, B: "x"}); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("unchanged values should not notify, got %d", calls)
	}
}

func TestSliceFieldsCompareByIdentity(t *testing.T) {
	favs := []int{1, 2}
	s, set := New("favs", appState{Favorites: favs})
	calls := 0
	if _, err := s.Subscribe("Favorites", func(Change) { calls++ }); err != nil {
		t.Fatal(err)
	}

	if err := set.Merge(Patch{"Favorites": favs}); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("same slice should not notify, got %d", calls)
	}

	if err := set.Merge(Patch{"Favorites": []int{1, 2}}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("new slice identity should notify once, got %d", calls)
	}
}

func TestNestedStructComparesByValue(t *testing.T) {
	s, actions := newAppStore()
	calls := 0
	if _, err := s.Subscribe("Theme", func(Change) { calls++ }); err != nil {
		t.Fatal(err)
	}

	same := s.Peek().Theme
	if err := actions.set.Merge(Patch{"Theme": same}); err != nil {
		t.Fatal(err)
	}
	if err := actions.set.Merge(Patch{"Theme": theme{Primary: "#000", Radius: 8}}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("expected 1 theme notification, got %d", calls)
	}
}

func TestSubscribeUnknownField(t *testing.T) {
	s, _ := New("pair", pair{})
	if _, err := s.Subscribe("Nope", func(Change) {}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if _, err := s.Select("Nope"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	s, set := New("pair", pair{})
	calls := 0
	unsub, err := s.Subscribe("A", func(Change) { calls++ })
	if err != nil {
		t.Fatal(err)
	}

	_ = set.Merge(Patch{"A": 1})
	unsub()
	unsub()
	_ = set.Merge(Patch{"A": 2})

	if calls != 1 {
		t.Errorf("expected 1 call before unsubscribe, got %d", calls)
	}
}

func TestChangeCarriesOldAndNew(t *testing.T) {
	s, set := New("pair", pair{A: 1})
	var got Change
	s.SubscribeChanges(func(c Change) { got = c })

	if err := set.Named("bump").Merge(Patch{"A": 2}); err != nil {
		t.Fatal(err)
	}

	want := Change{Store: "pair", Action: "bump", Field: "A", Old: 1, New: 2}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReentrantSetFromSubscriber(t *testing.T) {
	s, set := New("pair", pair{})
	var inner error
	if _, err := s.Subscribe("A", func(Change) {
		inner = set.Merge(Patch{"B": "loop"})
	}); err != nil {
		t.Fatal(err)
	}

	if err := set.Merge(Patch{"A": 1}); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(inner, ErrReentrantSet) {
		t.Errorf("expected ErrReentrantSet, got %v", inner)
	}
	if s.Peek().B != "" {
		t.Error("re-entrant set must not apply")
	}

	// The store is usable again afterwards.
	if err := set.Merge(Patch{"B": "ok"}); err != nil {
		t.Errorf("expected set to succeed after notification, got %v", err)
	}
}

func TestReentrantSetFromUpdateFunc(t *testing.T) {
	_, set := New("pair", pair{})
	var inner error
	err := set.Update(func(p pair) pair {
		inner = set.Replace(pair{A: 99})
		p.A = 1
		return p
	})
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(inner, ErrReentrantSet) {
		t.Errorf("expected ErrReentrantSet, got %v", inner)
	}
}

func TestDetachedSetter(t *testing.T) {
	var set Setter[pair]
	if err := set.Replace(pair{}); !errors.Is(err, ErrDetached) {
		t.Errorf("expected ErrDetached, got %v", err)
	}
}

func TestObserverReceivesCommits(t *testing.T) {
	var commits []Commit
	obs := ObserverFunc(func(_ context.Context, c Commit) { commits = append(commits, c) })

	s, actions := newAppStore(WithObserver(obs))
	_ = s

	if err := actions.SetOnboarded(true); err != nil {
		t.Fatal(err)
	}
	if err := actions.set.Merge(Patch{"Missing": 1}); err == nil {
		t.Fatal("expected merge error")
	}

	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Action != "setOnboarded" || !reflect.DeepEqual(commits[0].Changed, []string{"Onboarded"}) {
		t.Errorf("unexpected first commit: %+v", commits[0])
	}
	if commits[1].Err == nil || commits[1].Action != "merge" {
		t.Errorf("expected rejected merge commit, got %+v", commits[1])
	}
}

func TestObserverReceivesContext(t *testing.T) {
	type key struct{}
	var got any
	obs := ObserverFunc(func(ctx context.Context, _ Commit) { got = ctx.Value(key{}) })

	_, set := New("pair", pair{}, WithObserver(obs))
	ctx := context.WithValue(context.Background(), key{}, "trace")
	if err := set.WithContext(ctx).Merge(Patch{"A": 1}); err != nil {
		t.Fatal(err)
	}
	if got != "trace" {
		t.Errorf("expected context value, got %v", got)
	}
}

func TestConcurrentActions(t *testing.T) {
	s, set := New("pair", pair{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = set.Update(func(p pair) pair {
					p.A++
					return p
				})
				_ = s.Peek()
			}
		}()
	}
	wg.Wait()

	if got := s.Peek().A; got != 1000 {
		t.Errorf("expected 1000 increments, got %d", got)
	}
}

func TestConcurrentReadersNeverSeeTornState(t *testing.T) {
	// A and B are always written together; readers must see them agree.
	s, set := New("pair", pair{A: 0, B: "0"})
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				p := s.Peek()
				if p.B != strconv.Itoa(p.A) {
					t.Errorf("torn read: %+v", p)
					return
				}
			}
		}()
	}

	for i := 1; i <= 200; i++ {
		_ = set.Replace(pair{A: i, B: strconv.Itoa(i)})
	}
	close(done)
	wg.Wait()
}
