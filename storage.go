package fideauth

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// Durable storage keys used by SessionManager. One slot for the envelope,
// one for the subject id, one transient marker for "session active this run".
const (
	StorageKeySession = "fideauth.session"
	StorageKeySubject = "fideauth.session.subject"
	StorageKeyActive  = "fideauth.session.active"
)

// SessionStore is durable key/value storage that survives process restarts.
// Every Set is an atomic whole-value overwrite; concurrent writers race with
// last-write-wins semantics and no partial merges.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// TransientStore has the same surface but is scoped to the current run.
type TransientStore interface {
	SessionStore
}

// MemoryStore is a process-scoped store. It backs the transient slot and is
// the usual test double for the durable one.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// FileStore persists each key as a file under dir, surviving restarts.
// Writes go through a temp file plus rename so readers never observe a
// partial value.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session storage directory")
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	// keys are not filesystem safe; hex keeps them flat and reversible
	return filepath.Join(f.dir, hex.EncodeToString([]byte(key)))
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session storage entry")
	}
	return data, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".write-*")
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to stage session storage write")
	}

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session storage entry")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to flush session storage entry")
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to commit session storage entry")
	}

	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete session storage entry")
	}
	return nil
}
