// internal/store/file.go
//
// JSON-file visit store.
//
// Context
// -------
// The collection is one JSON array on disk.  Append is a full
// load → append → save round-trip; that cycle is a classic lost-update
// race under concurrency, so every Append holds the store mutex for the
// whole round-trip.  With the lock, N concurrent Appends always yield N
// records.
//
// Durability: save writes to a temp file in the same directory and
// renames it over the target.  A failed save (full disk, bad
// permissions) leaves the previous file—the last-known-good
// collection—untouched.
//
// Notes
// -----
//   - A missing file loads as the empty collection; first Append creates
//     it.
//   - The file is pretty-printed.  Operators read it with less(1) more
//     often than programs parse it.
//   - Oxford commas, two spaces after periods.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/yanizio/beacon/internal/visit"
)

// FileStore keeps the visit collection in a single JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the file at path.  The file
// need not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append loads the collection, appends rec, and saves the result.  The
// mutex serializes the whole cycle so concurrent appends cannot lose
// records.
func (s *FileStore) Append(ctx context.Context, rec visit.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	visits, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(visits, rec))
}

// All returns the stored collection in append order.
func (s *FileStore) All(ctx context.Context) ([]visit.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Close is a no-op; the file is only held open during each operation.
func (s *FileStore) Close() error { return nil }

/*──────────────────────────── internals ───────────────────────────────────*/

// load reads the full collection.  Caller holds the mutex.
func (s *FileStore) load() ([]visit.Record, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []visit.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load visits %s: %w", s.path, err)
	}

	var visits []visit.Record
	if err := json.Unmarshal(raw, &visits); err != nil {
		return nil, fmt.Errorf("parse visits %s: %w", s.path, err)
	}
	return visits, nil
}

// save writes the full collection atomically.  Caller holds the mutex.
func (s *FileStore) save(visits []visit.Record) error {
	raw, err := json.MarshalIndent(visits, "", "  ")
	if err != nil {
		return fmt.Errorf("encode visits: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".visits-*.json")
	if err != nil {
		return fmt.Errorf("save visits %s: %w", s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save visits %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save visits %s: %w", s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save visits %s: %w", s.path, err)
	}
	return nil
}
