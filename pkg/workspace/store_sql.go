package workspace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Embedded store backend for desktop/offline clients.
	_ "github.com/mattn/go-sqlite3"
)

// SQLStore persists workspace state in a SQL table, one row per session.
// Used with sqlite for embedded clients that want durable state without a
// directory of JSON files.
type SQLStore struct {
	db *sql.DB
}

const sqlStoreSchema = `
CREATE TABLE IF NOT EXISTS workspace_state (
	session_id TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// NewSQLStore initializes the schema on the given database handle.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if _, err := db.Exec(sqlStoreSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize workspace_state schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// OpenSQLiteStore opens (or creates) a sqlite database at path.
func OpenSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database %s: %w", path, err)
	}
	return NewSQLStore(db)
}

// Load implements Store.
func (s *SQLStore) Load(ctx context.Context, sessionID string) (*State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM workspace_state WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state for session %s: %w", sessionID, err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, ErrStateNotFound
	}
	return &state, nil
}

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspace_state (session_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		state.SessionID, string(data), state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save state for session %s: %w", state.SessionID, err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM workspace_state WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear state for session %s: %w", sessionID, err)
	}
	return nil
}

// SweepExpired deletes rows not updated within maxAge.
func (s *SQLStore) SweepExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM workspace_state WHERE updated_at < ?`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired state: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
