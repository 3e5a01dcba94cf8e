// Package store holds the monitor's durable state: three small JSON documents
// (seen item keys, target progress, Telegram update cursor) plus the read-only
// prediction targets file. Every document is overwritten whole on save; a
// missing or corrupt file simply yields empty state on load.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// SeenStore is the persistent set of already-processed item keys. Keys are
// never removed, so the set only grows; item volumes are low enough that this
// is an accepted tradeoff. Guarded like TargetStateStore so readers on other
// goroutines stay safe.
type SeenStore struct {
	path string

	mu   sync.RWMutex
	keys map[string]bool
}

// NewSeenStore loads the key set from path. Absent or unreadable state starts
// the store empty rather than failing.
func NewSeenStore(path string) *SeenStore {
	s := &SeenStore{path: path, keys: make(map[string]bool)}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var keys map[string]bool
	if err := json.Unmarshal(data, &keys); err != nil || keys == nil {
		return s
	}
	s.keys = keys
	return s
}

// Seen reports whether the key was ever marked.
func (s *SeenStore) Seen(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}

// MarkSeen records the key. In-memory only; Flush persists.
func (s *SeenStore) MarkSeen(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
}

// Len returns the number of tracked keys.
func (s *SeenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Flush overwrites the state file with the full key set.
func (s *SeenStore) Flush() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.keys, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal seen keys: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
