// Package persist saves store state to durable storage and restores it at
// startup.
//
// Bind hydrates a store from its last snapshot, then saves a new snapshot
// after every commit. Saving happens on a background worker with
// latest-wins coalescing, so subscribers never wait on I/O:
//
//	storage, err := persist.OpenSQLite("/var/lib/sakinah/state.db")
//	p, err := persist.Bind(ctx, globalStore, globalSetter, storage,
//	    persist.WithVersion(2),
//	    persist.WithMigrate(migrateGlobal),
//	)
//	defer p.Close(ctx)
//
// Storage backends: MemoryStorage, FileStorage, SQLiteStorage, S3Storage.
package persist
