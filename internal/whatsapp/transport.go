// Package whatsapp owns the single outbound WhatsApp session: establishing
// it through a gateway transport, keeping it alive across drops, and
// exposing a text-delivery operation to the HTTP layer.
package whatsapp

import (
	"context"

	"github.com/TheRibeiro/ApiWp/internal/domain"
)

// EventKind identifies a session lifecycle event.
type EventKind string

const (
	// EventQR carries a pairing challenge to present to the operator.
	EventQR EventKind = "qr"
	// EventOpened signals the session is authenticated and usable.
	EventOpened EventKind = "opened"
	// EventClosed signals the session dropped; StatusCode classifies why.
	EventClosed EventKind = "closed"
	// EventCredentials signals the auth state changed and must be persisted.
	EventCredentials EventKind = "credentials"
)

// Event is one session lifecycle notification from the transport.
type Event struct {
	Kind        EventKind
	QR          string
	StatusCode  int
	Credentials domain.SessionCredentials
}

// Session is one established connection to the messaging network.
type Session interface {
	// Events returns the lifecycle event stream. The channel is closed
	// when the session ends and no further events will be delivered.
	Events() <-chan Event

	// SendText delivers a text message to the given transport address.
	SendText(ctx context.Context, jid, text string) error

	// Close tears down the session.
	Close() error
}

// Transport establishes sessions to the messaging network. Implementations
// are expected to be safe to Dial repeatedly; the manager redials after
// every drop.
type Transport interface {
	Dial(ctx context.Context, creds domain.SessionCredentials) (Session, error)
}
