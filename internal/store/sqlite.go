// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite.
// ABOUTME: Provides journal/token persistence with automatic schema creation.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			name TEXT NOT NULL,
			correlation_id TEXT NOT NULL,
			old_state TEXT NOT NULL DEFAULT '',
			new_state TEXT NOT NULL DEFAULT '',
			health_status TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_agent_created
			ON events(agent_id, created_at DESC);

		CREATE INDEX IF NOT EXISTS idx_events_created
			ON events(created_at DESC);

		CREATE TABLE IF NOT EXISTS api_tokens (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			secret_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveEvent appends a supervision event to the journal.
func (s *SQLiteStore) SaveEvent(ctx context.Context, event *EventRecord) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, agent_id, name, correlation_id, old_state, new_state, health_status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.AgentID, event.Name, event.CorrelationID,
		event.OldState, event.NewState, event.HealthStatus, event.Message,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// ListEvents returns the most recent events, newest first.
func (s *SQLiteStore) ListEvents(ctx context.Context, limit int) ([]*EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, name, correlation_id, old_state, new_state, health_status, message, created_at
		FROM events ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListAgentEvents returns the most recent events for one agent, newest first.
func (s *SQLiteStore) ListAgentEvents(ctx context.Context, agentID string, limit int) ([]*EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, name, correlation_id, old_state, new_state, health_status, message, created_at
		FROM events WHERE agent_id = ? ORDER BY created_at DESC, id LIMIT ?`, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing agent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*EventRecord, error) {
	var events []*EventRecord
	for rows.Next() {
		var e EventRecord
		if err := rows.Scan(&e.ID, &e.AgentID, &e.Name, &e.CorrelationID,
			&e.OldState, &e.NewState, &e.HealthStatus, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// CreateToken stores a new API token record.
func (s *SQLiteStore) CreateToken(ctx context.Context, token *APIToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_tokens (id, name, secret_hash, created_at)
		VALUES (?, ?, ?, ?)`,
		token.ID, token.Name, token.SecretHash, token.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateToken, token.ID)
		}
		return fmt.Errorf("creating token: %w", err)
	}
	return nil
}

// GetToken returns the token with the given ID, or ErrNotFound.
func (s *SQLiteStore) GetToken(ctx context.Context, id string) (*APIToken, error) {
	var tok APIToken
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, secret_hash, created_at FROM api_tokens WHERE id = ?`, id).
		Scan(&tok.ID, &tok.Name, &tok.SecretHash, &tok.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}
	return &tok, nil
}

// ListTokens returns all token records, newest first.
func (s *SQLiteStore) ListTokens(ctx context.Context) ([]*APIToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, secret_hash, created_at FROM api_tokens ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*APIToken
	for rows.Next() {
		var tok APIToken
		if err := rows.Scan(&tok.ID, &tok.Name, &tok.SecretHash, &tok.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		tokens = append(tokens, &tok)
	}
	return tokens, rows.Err()
}

// CountTokens returns the number of stored tokens.
func (s *SQLiteStore) CountTokens(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_tokens`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tokens: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isUniqueConstraintError reports whether err is a SQLite unique constraint
// violation. modernc.org/sqlite does not export a typed error for this.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
