// Package sqlite implements session.Store on SQLite, for single-node
// deployments that want history to survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/docsight/docsight/session"
)

// Store implements session.Store using SQLite.
type Store struct {
	db        *sql.DB
	tableName string
}

var _ session.Store = (*Store)(nil)

// Options configuration for the SQLite connection.
type Options struct {
	Path      string
	TableName string // Default "turns"
}

// New opens the database and initializes the schema.
func New(opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "turns"
	}

	store := &Store{
		db:        db,
		tableName: tableName,
	}

	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			web_search_used INTEGER NOT NULL,
			documents_used INTEGER NOT NULL,
			degraded INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_session_id ON %s (session_id);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Append stores a completed turn.
func (s *Store) Append(ctx context.Context, turn *session.Turn) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, question, answer, web_search_used, documents_used, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query,
		turn.ID,
		turn.SessionID,
		turn.Question,
		turn.Answer,
		turn.WebSearchUsed,
		turn.DocumentsUsed,
		turn.Degraded,
		turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// History returns the session's turns in append order.
func (s *Store) History(ctx context.Context, sessionID string) ([]*session.Turn, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, question, answer, web_search_used, documents_used, degraded, created_at
		FROM %s
		WHERE session_id = ?
		ORDER BY created_at, id
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var turns []*session.Turn
	for rows.Next() {
		var turn session.Turn
		if err := rows.Scan(
			&turn.ID,
			&turn.SessionID,
			&turn.Question,
			&turn.Answer,
			&turn.WebSearchUsed,
			&turn.DocumentsUsed,
			&turn.Degraded,
			&turn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return turns, nil
}

// Clear removes all turns for a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = ?`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
