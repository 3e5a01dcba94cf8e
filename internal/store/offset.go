package store

import (
	"encoding/json"
	"fmt"
	"os"
)

type offsetDoc struct {
	Offset *int `json:"offset"`
}

// OffsetStore persists the Telegram getUpdates cursor so restarts resume
// after the last processed update.
type OffsetStore struct {
	path   string
	offset *int
}

// NewOffsetStore loads the cursor from path; absent or corrupt state means
// no cursor yet.
func NewOffsetStore(path string) *OffsetStore {
	s := &OffsetStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var doc offsetDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return s
	}
	s.offset = doc.Offset
	return s
}

// Get returns the stored cursor, ok=false when none has been saved yet.
func (s *OffsetStore) Get() (int, bool) {
	if s.offset == nil {
		return 0, false
	}
	return *s.offset, true
}

// Put stores the cursor and persists it immediately.
func (s *OffsetStore) Put(offset int) error {
	s.offset = &offset
	data, err := json.MarshalIndent(offsetDoc{Offset: s.offset}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal offset: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
