package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/TheRibeiro/ApiWp/internal/domain"
	_ "github.com/lib/pq"
)

// PostgresStore implements SessionStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a new PostgreSQL-backed session store.
func NewPostgres(databaseURL string) (SessionStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

// newPostgresWithDB wraps an existing connection, for tests.
func newPostgresWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS wa_sessions (
		session_id TEXT PRIMARY KEY,
		auth_state JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load retrieves the stored credentials for sessionID. A missing row is the
// first-run condition and yields empty credentials, not an error.
func (s *PostgresStore) Load(ctx context.Context, sessionID string) (domain.SessionCredentials, error) {
	query := `SELECT auth_state FROM wa_sessions WHERE session_id = $1`

	var blob []byte
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionCredentials{}, nil
	}
	if err != nil {
		return domain.SessionCredentials{}, fmt.Errorf("query session %s: %w", sessionID, err)
	}

	var creds domain.SessionCredentials
	if err := json.Unmarshal(blob, &creds); err != nil {
		return domain.SessionCredentials{}, fmt.Errorf("decode auth state for %s: %w", sessionID, err)
	}
	return creds, nil
}

// Save upserts the full credential state under sessionID.
func (s *PostgresStore) Save(ctx context.Context, sessionID string, creds domain.SessionCredentials) error {
	blob, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode auth state for %s: %w", sessionID, err)
	}

	query := `
	INSERT INTO wa_sessions (session_id, auth_state, created_at, updated_at)
	VALUES ($1, $2, NOW(), NOW())
	ON CONFLICT (session_id) DO UPDATE SET
		auth_state = EXCLUDED.auth_state,
		updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, sessionID, blob); err != nil {
		return fmt.Errorf("upsert session %s: %w", sessionID, err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
