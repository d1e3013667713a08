// Package session defines per-session turn history and the store interface
// its backends implement.
package session

import (
	"context"
	"time"
)

// Turn is one completed question/answer exchange within a session.
type Turn struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	WebSearchUsed bool      `json:"web_search_used"`
	DocumentsUsed int       `json:"documents_used"`
	Degraded      bool      `json:"degraded,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store defines the interface for turn history persistence.
type Store interface {
	// Append stores a completed turn at the end of its session's history.
	Append(ctx context.Context, turn *Turn) error

	// History returns a session's turns in append order. An unknown
	// session yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]*Turn, error)

	// Clear removes all turns for a session.
	Clear(ctx context.Context, sessionID string) error

	// Close releases the backend connection.
	Close() error
}
