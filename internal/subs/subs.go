// Package subs persists which chat sessions receive the scheduled report.
package subs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store keeps the session -> enabled map in a single JSON file, rewritten
// wholesale on every change. A missing or unreadable file reads as empty.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a subscription store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// SetEnabled turns the subscription for session on or off.
func (s *Store) SetEnabled(session string, enabled bool) error {
	if session == "" {
		return fmt.Errorf("empty session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.load()
	m[session] = enabled
	return s.save(m)
}

// IsEnabled reports whether session is subscribed.
func (s *Store) IsEnabled(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[session]
}

// ListEnabled returns every subscribed session, sorted.
func (s *Store) ListEnabled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for session, on := range s.load() {
		if on {
			out = append(out, session)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) load() map[string]bool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]bool{}
	}
	var m map[string]bool
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]bool{}
	}
	return m
}

func (s *Store) save(m map[string]bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create subs dir: %w", err)
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subscriptions: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write subscriptions: %w", err)
	}
	return nil
}
