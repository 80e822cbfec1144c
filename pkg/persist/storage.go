package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var (
	// ErrVersionMismatch is returned when a stored snapshot has a different
	// version and no migrator is configured.
	ErrVersionMismatch = errors.New("persist: snapshot version mismatch")

	// ErrClosed is returned by operations on a closed persister.
	ErrClosed = errors.New("persist: persister closed")

	// ErrInvalidKey is returned for empty or unsafe storage keys.
	ErrInvalidKey = errors.New("persist: invalid key")
)

// Storage stores opaque snapshot blobs by key.
type Storage interface {
	// Load returns the blob for key. ok is false when nothing is stored.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Save stores data under key, replacing any previous blob.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Snapshot is the envelope written for each save.
type Snapshot struct {
	Store    string          `json:"store"`
	Version  int             `json:"version"`
	Revision string          `json:"revision"`
	SavedAt  time.Time       `json:"savedAt"`
	State    json.RawMessage `json:"state"`
}

// DecodeSnapshot parses a stored blob.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// MemoryStorage keeps blobs in memory. Intended for tests and ephemeral runs.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
