// Package wagateway implements the whatsapp.Transport over a websocket
// connection to a Baileys-compatible gateway.
package wagateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/TheRibeiro/ApiWp/internal/domain"
	"github.com/TheRibeiro/ApiWp/internal/whatsapp"
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// protocolVersion is sent on the init frame so the gateway can reject
// incompatible clients.
const protocolVersion = "1"

const eventBuffer = 16

// frame is the JSON envelope for every message on the gateway socket.
type frame struct {
	Type       string          `json:"type"`
	Version    string          `json:"version,omitempty"`
	QR         string          `json:"qr,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
	ID         string          `json:"id,omitempty"`
	JID        string          `json:"jid,omitempty"`
	Text       string          `json:"text,omitempty"`
	Creds      json.RawMessage `json:"creds,omitempty"`
	Keys       json.RawMessage `json:"keys,omitempty"`
}

// Client dials gateway sessions. Safe to Dial repeatedly; each call opens a
// fresh websocket.
type Client struct {
	url string
}

// New creates a gateway client for the given websocket URL.
func New(url string) *Client {
	return &Client{url: url}
}

// Dial opens a websocket to the gateway, hands it the stored credentials
// and returns a live session whose read loop translates gateway frames
// into lifecycle events.
func (c *Client) Dial(ctx context.Context, creds domain.SessionCredentials) (whatsapp.Session, error) {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	init := frame{
		Type:    "init",
		Version: protocolVersion,
		Creds:   creds.Creds,
		Keys:    creds.Keys,
	}
	if err := writeFrame(ctx, conn, init); err != nil {
		_ = conn.Close(websocket.StatusProtocolError, "init failed")
		return nil, fmt.Errorf("send init frame: %w", err)
	}

	s := &session{
		conn:   conn,
		events: make(chan whatsapp.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

type session struct {
	conn      *websocket.Conn
	events    chan whatsapp.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Events returns the lifecycle event stream.
func (s *session) Events() <-chan whatsapp.Event {
	return s.events
}

// SendText writes a send command frame. The write error, if any, is
// returned as-is; there is no retry here.
func (s *session) SendText(ctx context.Context, jid, text string) error {
	return writeFrame(ctx, s.conn, frame{
		Type: "send",
		ID:   uuid.NewString(),
		JID:  jid,
		Text: text,
	})
}

// Close tears down the websocket and unblocks the read loop.
func (s *session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.conn.Close(websocket.StatusNormalClosure, "session ended")
	})
	return err
}

// readLoop translates gateway frames into events until the socket ends.
// A socket-level read error without a close frame is surfaced as a closed
// event with no status code, which the manager treats as transient.
func (s *session) readLoop() {
	defer close(s.events)

	for {
		_, data, err := s.conn.Read(context.Background())
		if err != nil {
			slog.Debug("Gateway socket read ended", "error", err)
			s.emit(whatsapp.Event{Kind: whatsapp.EventClosed})
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			slog.Warn("Dropping malformed gateway frame", "error", err)
			continue
		}

		switch f.Type {
		case "qr":
			s.emit(whatsapp.Event{Kind: whatsapp.EventQR, QR: f.QR})
		case "open":
			s.emit(whatsapp.Event{Kind: whatsapp.EventOpened})
		case "creds":
			s.emit(whatsapp.Event{
				Kind:        whatsapp.EventCredentials,
				Credentials: domain.SessionCredentials{Creds: f.Creds, Keys: f.Keys},
			})
		case "close":
			s.emit(whatsapp.Event{Kind: whatsapp.EventClosed, StatusCode: f.StatusCode})
			return
		default:
			slog.Debug("Ignoring unknown gateway frame", "type", f.Type)
		}
	}
}

// emit delivers an event unless the session was closed underneath us.
func (s *session) emit(ev whatsapp.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, f frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
