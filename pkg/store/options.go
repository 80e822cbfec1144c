package store

import (
	"context"
	"log/slog"
	"time"
)

// Option configures a store.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	observers []Observer
}

// WithLogger sets the logger used for commit diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver adds an observer that is told about every commit.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Commit describes one attempted state transition.
type Commit struct {
	// Store is the store name.
	Store string

	// Action is the setter's action name ("replace", "merge", ... when unnamed).
	Action string

	// Changed lists the fields whose value changed, in declaration order.
	Changed []string

	// Start is when the transition began.
	Start time.Time

	// Duration covers computing, applying and notifying.
	Duration time.Duration

	// Notified counts subscriber callbacks and reactive listeners reached.
	Notified int

	// Err is set when the transition was rejected. Nothing was applied.
	Err error
}

// Observer is told about every commit after notification has finished.
type Observer interface {
	ObserveCommit(ctx context.Context, c Commit)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(ctx context.Context, c Commit)

// ObserveCommit calls f.
func (f ObserverFunc) ObserveCommit(ctx context.Context, c Commit) {
	f(ctx, c)
}
