// Package domain holds the core types shared across the relay.
package domain

import (
	"encoding/json"
	"time"
)

// ReasonLoggedOut is the disconnect status code the gateway reports when the
// account was explicitly logged out. Every other code (including zero, when
// the gateway gave no reason) is treated as transient.
const ReasonLoggedOut = 401

// ConnectionState describes the relay's single session to the gateway.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateLoggedOut    ConnectionState = "logged_out"
)

// SessionCredentials is the persisted auth state of a WhatsApp session.
// Its internal shape belongs to the gateway; the relay only stores and
// returns it unchanged. Creds holds the identity material, Keys the signal
// key store.
type SessionCredentials struct {
	Creds json.RawMessage `json:"creds,omitempty"`
	Keys  json.RawMessage `json:"keys,omitempty"`
}

// Empty reports whether there is no stored auth state, i.e. the session has
// never been paired (or its state was lost).
func (c SessionCredentials) Empty() bool {
	return len(c.Creds) == 0 && len(c.Keys) == 0
}

// SessionRecord is one row of the session table: the opaque credentials plus
// bookkeeping timestamps.
type SessionRecord struct {
	SessionID   string
	Credentials SessionCredentials
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
