package main

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/sakinah-dev/sakinah/internal/appstate"
	"github.com/sakinah-dev/sakinah/internal/config"
	"github.com/sakinah-dev/sakinah/internal/errors"
	"github.com/sakinah-dev/sakinah/pkg/persist"
	"github.com/sakinah-dev/sakinah/pkg/store"
)

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	return config.Load(".")
}

// openStorage returns the configured backend and a function releasing it.
func openStorage(cfg *config.Config) (persist.Storage, func() error, error) {
	noop := func() error { return nil }
	p := cfg.Persist

	switch p.Backend {
	case config.BackendMemory:
		return persist.NewMemoryStorage(), noop, nil
	case config.BackendFile:
		fs, err := persist.NewFileStorage(p.Path)
		if err != nil {
			return nil, nil, errors.New("E200").WithDetail("file storage at " + p.Path).Wrap(err)
		}
		return fs, noop, nil
	case config.BackendSQLite:
		db, err := persist.OpenSQLite(p.Path)
		if err != nil {
			return nil, nil, errors.New("E200").WithDetail("sqlite database " + p.Path).Wrap(err)
		}
		return db, db.Close, nil
	case config.BackendS3:
		client := persist.NewS3Client(persist.S3ClientConfig{
			Region:          p.Region,
			Endpoint:        p.Endpoint,
			AccessKeyID:     p.AccessKeyID,
			SecretAccessKey: p.SecretAccessKey,
			UsePathStyle:    p.UsePathStyle,
		})
		return persist.NewS3Storage(client, p.Bucket, p.Prefix), noop, nil
	}
	return nil, nil, errors.New("E102").WithDetailf("persist.backend %q is not supported", p.Backend)
}

// openApp builds the stores and hydrates them from the configured storage.
// The returned close function flushes state and releases the storage.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, storeOpts ...store.Option) (*appstate.App, func(context.Context) error, error) {
	storage, release, err := openStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	app, err := appstate.New(append([]store.Option{store.WithLogger(logger)}, storeOpts...)...)
	if err != nil {
		release()
		return nil, nil, err
	}
	if err := app.Persist(ctx, storage, persist.WithLogger(logger)); err != nil {
		release()
		return nil, nil, persistError(err)
	}

	closeFn := func(ctx context.Context) error {
		err := app.Close(ctx)
		if rerr := release(); err == nil {
			err = rerr
		}
		if err != nil {
			return errors.New("E203").Wrap(err)
		}
		return nil
	}
	return app, closeFn, nil
}

func persistError(err error) error {
	if stderrors.Is(err, persist.ErrVersionMismatch) {
		return errors.New("E202").Wrap(err)
	}
	return errors.New("E201").Wrap(err)
}
