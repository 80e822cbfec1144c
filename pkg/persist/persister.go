package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sakinah-dev/sakinah/pkg/store"
)

// HydrateAction is the action name used when a snapshot is applied.
const HydrateAction = "persist/hydrate"

// Migrator upgrades a snapshot's state from an older version to the current
// one.
type Migrator func(from int, state json.RawMessage) (json.RawMessage, error)

// Option configures Bind.
type Option func(*config)

type config struct {
	key     string
	version int
	migrate Migrator
	logger  *slog.Logger
}

// WithKey sets the storage key. Default: the store name.
func WithKey(key string) Option {
	return func(c *config) { c.key = key }
}

// WithVersion sets the snapshot version written and expected on load.
func WithVersion(v int) Option {
	return func(c *config) { c.version = v }
}

// WithMigrate sets the migrator for snapshots of another version.
func WithMigrate(m Migrator) Option {
	return func(c *config) { c.migrate = m }
}

// WithLogger sets the logger for save failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Persister keeps one store's snapshot up to date in a Storage.
type Persister struct {
	key     string
	store   string
	version int
	storage Storage
	logger  *slog.Logger
	encode  func() (json.RawMessage, error)

	unsub   store.Unsubscribe
	pending chan struct{}
	flushes chan flushRequest
	stop    chan struct{}
	done    chan struct{}

	closeOnce sync.Once
	closed    atomic.Bool

	mu       sync.Mutex
	lastErr  error
	revision string
	saves    int
}

type flushRequest struct {
	ctx   context.Context
	reply chan error
}

// Bind hydrates s from storage through set, then saves a snapshot after
// every commit until Close. A missing snapshot leaves the state untouched.
func Bind[S any](ctx context.Context, s *store.Store[S], set store.Setter[S], storage Storage, opts ...Option) (*Persister, error) {
	cfg := config{key: s.Name(), version: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.key == "" {
		return nil, ErrInvalidKey
	}

	p := &Persister{
		key:     cfg.key,
		store:   s.Name(),
		version: cfg.version,
		storage: storage,
		logger:  cfg.logger.With("store", s.Name(), "key", cfg.key),
		encode: func() (json.RawMessage, error) {
			return s.MarshalState()
		},
		pending: make(chan struct{}, 1),
		flushes: make(chan flushRequest),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if err := hydrate(ctx, s, set, storage, cfg); err != nil {
		return nil, err
	}

	p.unsub = s.SubscribeState(func(_, _ S) {
		select {
		case p.pending <- struct{}{}:
		default:
		}
	})
	go p.loop()
	return p, nil
}

// hydrate loads the stored snapshot and applies it on top of the current
// state, so fields absent from the snapshot keep their current values.
// Fields hidden from JSON always keep their current values.
func hydrate[S any](ctx context.Context, s *store.Store[S], set store.Setter[S], storage Storage, cfg config) error {
	data, ok, err := storage.Load(ctx, cfg.key)
	if err != nil {
		return fmt.Errorf("persist: load %q: %w", cfg.key, err)
	}
	if !ok {
		return nil
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("persist: decode %q: %w", cfg.key, err)
	}
	state := snap.State
	if snap.Version != cfg.version {
		if cfg.migrate == nil {
			return fmt.Errorf("%w: %q stored v%d, want v%d", ErrVersionMismatch, cfg.key, snap.Version, cfg.version)
		}
		if state, err = cfg.migrate(snap.Version, state); err != nil {
			return fmt.Errorf("persist: migrate %q from v%d: %w", cfg.key, snap.Version, err)
		}
	}

	// Decode onto a fresh copy of the current state; unmarshalling straight
	// into it would reuse the live state's slice backing arrays.
	base, err := s.MarshalState()
	if err != nil {
		return fmt.Errorf("persist: encode current %q: %w", cfg.key, err)
	}
	var next S
	if err := json.Unmarshal(base, &next); err != nil {
		return fmt.Errorf("persist: copy current %q: %w", cfg.key, err)
	}
	if err := json.Unmarshal(state, &next); err != nil {
		return fmt.Errorf("persist: decode state %q: %w", cfg.key, err)
	}
	return set.Named(HydrateAction).WithContext(ctx).Replace(keepHidden(s.Peek(), next))
}

// keepHidden returns next with the fields JSON never sees (json:"-" and
// unexported) taken from cur.
func keepHidden[S any](cur, next S) S {
	nv := reflect.ValueOf(next)
	if nv.Kind() != reflect.Struct {
		return next
	}
	out := cur
	ov := reflect.ValueOf(&out).Elem()
	t := ov.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}
		ov.Field(i).Set(nv.Field(i))
	}
	return out
}

func (p *Persister) loop() {
	defer close(p.done)
	for {
		select {
		case <-p.pending:
			p.save(context.Background())
		case req := <-p.flushes:
			select {
			case <-p.pending:
			default:
			}
			req.reply <- p.save(req.ctx)
		case <-p.stop:
			select {
			case <-p.pending:
				p.save(context.Background())
			default:
			}
			return
		}
	}
}

func (p *Persister) save(ctx context.Context) error {
	state, err := p.encode()
	if err != nil {
		return p.fail(fmt.Errorf("persist: encode %q: %w", p.key, err))
	}
	snap := Snapshot{
		Store:    p.store,
		Version:  p.version,
		Revision: uuid.NewString(),
		SavedAt:  time.Now().UTC(),
		State:    state,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return p.fail(fmt.Errorf("persist: encode snapshot %q: %w", p.key, err))
	}
	if err := p.storage.Save(ctx, p.key, data); err != nil {
		return p.fail(err)
	}

	p.mu.Lock()
	p.lastErr = nil
	p.revision = snap.Revision
	p.saves++
	p.mu.Unlock()
	return nil
}

func (p *Persister) fail(err error) error {
	p.logger.Error("snapshot save failed", "error", err)
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
	return err
}

// Flush saves the current state now and waits for the write.
func (p *Persister) Flush(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	req := flushRequest{ctx: ctx, reply: make(chan error, 1)}
	select {
	case p.flushes <- req:
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clear deletes the stored snapshot. Later commits save it again.
func (p *Persister) Clear(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.storage.Delete(ctx, p.key)
}

// Close stops saving after writing any pending snapshot.
func (p *Persister) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.unsub()
		close(p.stop)
	})
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Key returns the storage key.
func (p *Persister) Key() string { return p.key }

// Err returns the error of the last failed save, or nil after a success.
func (p *Persister) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Revision returns the revision ID of the last saved snapshot.
func (p *Persister) Revision() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revision
}

// Saves returns the number of successful saves.
func (p *Persister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
