// internal/store/file.go
//
// Flat-file Store implementation: the entire registry is serialized as one
// JSON document keyed by room id. Writes replace the whole file; a missing
// file loads as empty state.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists room snapshots to a single JSON file.
type FileStore struct {
	mu   sync.Mutex // serializes file writes
	path string
}

// NewFileStore constructs a FileStore writing to path, creating the parent
// directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return &FileStore{path: path}, nil
}

// Save writes all rooms as one indented JSON document. The write goes to a
// temp file first and renames into place, so a crash mid-write never leaves
// a truncated snapshot.
func (s *FileStore) Save(ctx context.Context, rooms map[string]RoomSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rooms, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rooms: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Load reads the snapshot document. A missing file yields an empty map.
func (s *FileStore) Load(ctx context.Context) (map[string]RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]RoomSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	rooms := map[string]RoomSnapshot{}
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", s.path, err)
	}
	return rooms, nil
}

// Clear deletes the snapshot file.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
