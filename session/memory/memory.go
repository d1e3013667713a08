// Package memory implements an in-process session.Store, the default when
// no external backend is configured.
package memory

import (
	"context"
	"sync"

	"github.com/docsight/docsight/session"
)

// Store keeps turn history in process memory. Safe for concurrent use;
// history does not survive a restart.
type Store struct {
	mu    sync.RWMutex
	turns map[string][]*session.Turn
}

var _ session.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		turns: make(map[string][]*session.Turn),
	}
}

// Append stores a turn at the end of its session's history.
func (s *Store) Append(ctx context.Context, turn *session.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *turn
	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], &copied)
	return nil
}

// History returns the session's turns in append order.
func (s *Store) History(ctx context.Context, sessionID string) ([]*session.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.turns[sessionID]
	out := make([]*session.Turn, len(stored))
	for i, turn := range stored {
		copied := *turn
		out[i] = &copied
	}
	return out, nil
}

// Clear removes all turns for a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.turns, sessionID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
