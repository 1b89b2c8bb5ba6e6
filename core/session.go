package core

import (
	"sync"
	"time"
)

// DefaultSessionHistoryLimit bounds session command history when no explicit
// limit is configured.
const DefaultSessionHistoryLimit = 100

// HistoryEntry records one processed command within a session.
type HistoryEntry struct {
	Command   string    `json:"command"`
	Args      string    `json:"args"`
	Response  string    `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a named, isolated context and history track for a sequence of
// commands. Context is a key/value side-channel for cross-command state;
// History is an append-only, bounded FIFO of processed commands. It is safe
// for concurrent access.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu           sync.RWMutex
	context      map[string]any
	history      []HistoryEntry
	historyLimit int
}

// NewSession creates a session with a generated id and the given history
// limit. A non-positive limit falls back to DefaultSessionHistoryLimit.
func NewSession(historyLimit int) *Session {
	if historyLimit < 1 {
		historyLimit = DefaultSessionHistoryLimit
	}
	return &Session{
		ID:           NewID(),
		CreatedAt:    time.Now().UTC(),
		context:      map[string]any{},
		historyLimit: historyLimit,
	}
}

// GetContext returns the value for a context key and whether it was present.
func (s *Session) GetContext(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.context[key]
	return v, ok
}

// SetContext stores a key/value pair in the session context.
func (s *Session) SetContext(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context[key] = value
}

// AddHistory appends an entry, stamping it with the current time and
// evicting the oldest entry once the limit is exceeded.
func (s *Session) AddHistory(entry HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Timestamp = time.Now().UTC()
	s.history = append(s.history, entry)
	if len(s.history) > s.historyLimit {
		s.history = s.history[len(s.history)-s.historyLimit:]
	}
}

// History returns a defensive copy of the command history, oldest first.
func (s *Session) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryLen returns the number of retained history entries.
func (s *Session) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}
