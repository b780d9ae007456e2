// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/TheRibeiro/ApiWp/internal/domain"
)

// SessionStore persists the opaque auth state of a WhatsApp session, keyed
// by session identifier. Writes replace the full state; there is a single
// writer (the connection manager) so no locking discipline is required.
type SessionStore interface {
	// Load retrieves the stored credentials for sessionID. A session that
	// was never saved returns empty credentials and no error.
	Load(ctx context.Context, sessionID string) (domain.SessionCredentials, error)

	// Save upserts the full credential state under sessionID.
	Save(ctx context.Context, sessionID string, creds domain.SessionCredentials) error

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
