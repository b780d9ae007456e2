package whatsapp

import (
	"context"
	"log/slog"

	"github.com/TheRibeiro/ApiWp/internal/domain"
	"github.com/TheRibeiro/ApiWp/internal/store"
)

// CredentialKeeper adapts the session store to the connection lifecycle's
// needs: a failed load degrades to an empty state so the session can pair
// from scratch, and a failed save never surfaces past a log line. A store
// outage must not take down an otherwise healthy session.
type CredentialKeeper struct {
	store store.SessionStore
}

// NewCredentialKeeper wraps a session store.
func NewCredentialKeeper(s store.SessionStore) *CredentialKeeper {
	return &CredentialKeeper{store: s}
}

// Load fetches the stored credentials for sessionID. Never fails: a store
// error is logged and degraded to empty credentials. The two empty cases
// log differently so an operator can tell a first run from a store outage
// that will force re-pairing.
func (k *CredentialKeeper) Load(ctx context.Context, sessionID string) domain.SessionCredentials {
	creds, err := k.store.Load(ctx, sessionID)
	if err != nil {
		slog.Error("Failed to load session state, proceeding unpaired", "session_id", sessionID, "error", err)
		return domain.SessionCredentials{}
	}
	if creds.Empty() {
		slog.Info("No stored session state, pairing required", "session_id", sessionID)
	}
	return creds
}

// Save upserts the full credential state. Failure is logged and dropped;
// the accepted risk is re-pairing after the next restart if the latest
// rotation was never persisted.
func (k *CredentialKeeper) Save(ctx context.Context, sessionID string, creds domain.SessionCredentials) {
	if err := k.store.Save(ctx, sessionID, creds); err != nil {
		slog.Error("Failed to persist session state", "session_id", sessionID, "error", err)
	}
}
