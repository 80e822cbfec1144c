package appstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakinah-dev/sakinah/pkg/persist"
	"github.com/sakinah-dev/sakinah/pkg/store"
)

// SnapshotVersion is the version written with persisted snapshots.
const SnapshotVersion = 1

// App owns one instance of every store. Construct it once in main and pass
// it to whatever needs state.
type App struct {
	Registry *store.Registry

	Global          *store.Store[GlobalState]
	GlobalActions   GlobalActions
	GlobalSelectors GlobalStateSelectors

	Preferences         *store.Store[PreferencesState]
	PreferenceActions   PreferenceActions
	PreferenceSelectors PreferencesStateSelectors

	persisters []*persist.Persister
}

// New creates the stores, their selectors and the registry. opts apply to
// every store.
func New(opts ...store.Option) (*App, error) {
	a := &App{Registry: store.NewRegistry()}

	a.Global, a.GlobalActions = NewGlobalStore(opts...)
	a.GlobalSelectors = NewGlobalStateSelectors(a.Global)

	a.Preferences, a.PreferenceActions = NewPreferencesStore(opts...)
	a.PreferenceSelectors = NewPreferencesStateSelectors(a.Preferences)

	for _, s := range []store.Inspectable{a.Global, a.Preferences} {
		if err := a.Registry.Register(s); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Persist hydrates every store from storage and keeps it saved. Each store
// uses its name as the key. On error no store stays bound.
func (a *App) Persist(ctx context.Context, storage persist.Storage, opts ...persist.Option) error {
	if len(a.persisters) > 0 {
		return fmt.Errorf("appstate: already persisting")
	}
	opts = append([]persist.Option{persist.WithVersion(SnapshotVersion)}, opts...)

	global, err := persist.Bind(ctx, a.Global, a.GlobalActions.set, storage, opts...)
	if err != nil {
		return fmt.Errorf("appstate: persist %s: %w", GlobalStoreName, err)
	}
	prefs, err := persist.Bind(ctx, a.Preferences, a.PreferenceActions.set, storage, opts...)
	if err != nil {
		_ = global.Close(ctx)
		return fmt.Errorf("appstate: persist %s: %w", PreferencesStoreName, err)
	}
	a.persisters = []*persist.Persister{global, prefs}
	return nil
}

// Flush writes every store's current state now.
func (a *App) Flush(ctx context.Context) error {
	var errs []error
	for _, p := range a.persisters {
		errs = append(errs, p.Flush(ctx))
	}
	return errors.Join(errs...)
}

// ClearPersisted deletes the stored snapshots.
func (a *App) ClearPersisted(ctx context.Context) error {
	var errs []error
	for _, p := range a.persisters {
		errs = append(errs, p.Clear(ctx))
	}
	return errors.Join(errs...)
}

// Close flushes and stops persistence.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, p := range a.persisters {
		errs = append(errs, p.Close(ctx))
	}
	a.persisters = nil
	return errors.Join(errs...)
}
