package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TheRibeiro/ApiWp/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore using SQLite. Intended for local
// development; production deployments use the Postgres store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed session store.
func NewSQLite(dbPath string) (SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS wa_sessions (
		session_id TEXT PRIMARY KEY,
		auth_state TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load retrieves the stored credentials for sessionID.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (domain.SessionCredentials, error) {
	query := `SELECT auth_state FROM wa_sessions WHERE session_id = ?`

	var blob string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionCredentials{}, nil
	}
	if err != nil {
		return domain.SessionCredentials{}, fmt.Errorf("query session %s: %w", sessionID, err)
	}

	var creds domain.SessionCredentials
	if err := json.Unmarshal([]byte(blob), &creds); err != nil {
		return domain.SessionCredentials{}, fmt.Errorf("decode auth state for %s: %w", sessionID, err)
	}
	return creds, nil
}

// Save upserts the full credential state under sessionID.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, creds domain.SessionCredentials) error {
	blob, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode auth state for %s: %w", sessionID, err)
	}

	now := time.Now().Unix()
	query := `
	INSERT INTO wa_sessions (session_id, auth_state, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		auth_state = excluded.auth_state,
		updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, sessionID, string(blob), now, now); err != nil {
		return fmt.Errorf("upsert session %s: %w", sessionID, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
