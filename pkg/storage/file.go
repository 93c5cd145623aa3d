package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileBackend stores each key as a JSON file in a directory, with expiry metadata.
type FileBackend struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBackend creates a file-based backend in the given directory.
// The directory will be created if it doesn't exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value from disk. Unreadable and expired entries are
// misses and get removed.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := b.path(key)

	b.mu.RLock()
	data, err := os.ReadFile(path)
	b.mu.RUnlock()
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		b.removeStale(path, data)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		b.removeStale(path, data)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// removeStale deletes path under the write lock, unless a Set replaced the
// file since stale was read.
func (b *FileBackend) removeStale(path string, stale []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(current, stale) {
		return
	}
	_ = os.Remove(path)
}

// Set writes a value to disk, replacing any previous one atomically.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, entryData, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete removes a value from disk.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// Dir returns the backend's base directory.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Clear removes every stored entry and returns how many were deleted.
func (b *FileBackend) Clear() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	err := filepath.Walk(b.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || path == b.dir || info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".json" {
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	return count, err
}

// path converts a key to a file path.
// The first two hash characters pick a subdirectory to keep directories small.
func (b *FileBackend) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(b.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileBackend implements Backend.
var _ Backend = (*FileBackend)(nil)
