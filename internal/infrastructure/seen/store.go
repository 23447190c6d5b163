// Package seen keeps the cross-run dedup registry: a sorted JSON list of
// content keys already emitted by previous runs.
package seen

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"EdgarScanner/internal/ports"
)

// Store is a file-backed key set. Load errors are not fatal; the scanner
// simply starts with an empty registry and may re-emit old entries.
type Store struct {
	path string
	keys map[string]struct{}
}

var _ ports.SeenStore = (*Store)(nil)

// Load reads the registry at path, tolerating a missing or corrupt file.
func Load(path string) *Store {
	s := &Store{path: path, keys: map[string]struct{}{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return s
	}
	for _, k := range list {
		s.keys[k] = struct{}{}
	}
	return s
}

// Contains reports whether the key was already emitted.
func (s *Store) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Add records a key in memory; Flush persists it.
func (s *Store) Add(key string) {
	s.keys[key] = struct{}{}
}

// Len returns the number of recorded keys.
func (s *Store) Len() int {
	return len(s.keys)
}

// Flush writes the registry back to disk, sorted for stable diffs, via a
// temp file and rename.
func (s *Store) Flush() error {
	list := make([]string, 0, len(s.keys))
	for k := range s.keys {
		list = append(list, k)
	}
	sort.Strings(list)

	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal seen keys: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write seen keys: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace seen keys: %w", err)
	}
	return nil
}
