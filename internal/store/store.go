// Package store persists the first-observed value of every exported database
// field, keyed by `file:index:field`. Freezing makes repeated exports immune
// to prior in-place translation of the live data: once a field is in the
// store, export always reoffers the frozen original regardless of what the
// live object holds.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Store is the original-text store for one game. It only grows; entries are
// never rewritten or removed.
type Store struct {
	path    string
	entries map[string]string
	dirty   bool
}

// Key builds the composite store key for a record field.
func Key(file string, index int, field string) string {
	return fmt.Sprintf("%s:%d:%s", file, index, field)
}

// Load reads the sidecar at path. A missing or unreadable file yields an
// empty store; corruption never aborts an export.
func Load(path string) *Store {
	s := &Store{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Cannot read original-text store, starting empty")
		}
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Corrupt original-text store, starting empty")
		s.entries = make(map[string]string)
	}
	return s
}

// Original returns the frozen original for key, freezing current on first
// sight.
func (s *Store) Original(key, current string) string {
	if v, ok := s.entries[key]; ok {
		return v
	}
	s.entries[key] = current
	s.dirty = true
	return current
}

// Dirty reports whether any entry was added since Load or the last Save.
func (s *Store) Dirty() bool { return s.dirty }

// Len returns the number of frozen entries.
func (s *Store) Len() int { return len(s.entries) }

// Save writes the store when dirty, via write-temp-then-rename. Keys are
// emitted sorted so the sidecar diffs cleanly under version control.
func (s *Store) Save() error {
	if !s.dirty {
		return nil
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode original-text store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write original-text store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace original-text store: %w", err)
	}
	s.dirty = false
	return nil
}
