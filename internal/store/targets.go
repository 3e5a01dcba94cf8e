package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"crypto-watchtower/internal/domain"
)

// TargetStateStore is the persistent map of prediction-target progress,
// keyed by the target's composite key. The monitor goroutine writes while
// HTTP handlers read, so access is guarded.
type TargetStateStore struct {
	path string

	mu     sync.RWMutex
	states map[string]domain.TargetState
}

// NewTargetStateStore loads target progress from path, starting empty when
// the file is absent or corrupt.
func NewTargetStateStore(path string) *TargetStateStore {
	s := &TargetStateStore{path: path, states: make(map[string]domain.TargetState)}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var states map[string]domain.TargetState
	if err := json.Unmarshal(data, &states); err != nil || states == nil {
		return s
	}
	s.states = states
	return s
}

// Get returns the recorded state for a target key, zero state when unknown.
func (s *TargetStateStore) Get(key string) domain.TargetState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[key]
}

// Put records state for a target key. Flags only ever move from false to
// true; Put never clears a previously set flag.
func (s *TargetStateStore) Put(key string, state domain.TargetState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.states[key]
	state.Reached = state.Reached || prev.Reached
	state.Approached = state.Approached || prev.Approached
	s.states[key] = state
}

// All returns a copy of the full state map.
func (s *TargetStateStore) All() map[string]domain.TargetState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.TargetState, len(s.states))
	for k, v := range s.states {
		out[k] = v
	}
	return out
}

// Flush overwrites the state file with the full map.
func (s *TargetStateStore) Flush() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.states, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal target states: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
