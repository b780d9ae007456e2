package whatsapp

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/TheRibeiro/ApiWp/internal/domain"
)

// ErrNotConnected is returned by SendText when no live session exists.
var ErrNotConnected = errors.New("whatsapp: not connected")

// Options configures a Manager.
type Options struct {
	SessionID      string
	CountryCode    string
	ReconnectDelay time.Duration
	DialRetryDelay time.Duration
	SendDelayMin   time.Duration
	SendDelayMax   time.Duration
}

// Manager owns the single session to the messaging network. Run drives the
// connection lifecycle; SendText is the delivery operation exposed to the
// HTTP layer. The manager is safe for concurrent use, but concurrent sends
// are intentionally not serialized: each proceeds with its own randomized
// delay.
type Manager struct {
	transport Transport
	keeper    *CredentialKeeper
	opts      Options

	mu      sync.RWMutex
	state   domain.ConnectionState
	session Session
}

// NewManager creates a connection manager. It does nothing until Run is
// called.
func NewManager(t Transport, keeper *CredentialKeeper, opts Options) *Manager {
	return &Manager{
		transport: t,
		keeper:    keeper,
		opts:      opts,
		state:     domain.StateDisconnected,
	}
}

// State returns the current connection state.
func (m *Manager) State() domain.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Connected reports whether a live, authenticated session exists.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == domain.StateConnected && m.session != nil
}

// Run establishes the session and keeps it alive until ctx is cancelled or
// the account is explicitly logged out. Transient drops and dial failures
// are retried after a fixed delay.
func (m *Manager) Run(ctx context.Context) {
	for {
		delay, retry := m.runOnce(ctx)
		if !retry {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// runOnce dials and consumes lifecycle events until the session ends.
// It returns the delay before the next attempt, or retry=false when the
// manager should stop (cancellation or explicit logout).
func (m *Manager) runOnce(ctx context.Context) (delay time.Duration, retry bool) {
	if ctx.Err() != nil {
		return 0, false
	}

	m.setState(domain.StateConnecting)
	creds := m.keeper.Load(ctx, m.opts.SessionID)

	sess, err := m.transport.Dial(ctx, creds)
	if err != nil {
		slog.Error("Failed to establish gateway session", "session_id", m.opts.SessionID, "error", err)
		return m.opts.DialRetryDelay, true
	}

	m.setSession(sess)
	defer func() {
		m.clearSession()
		if closeErr := sess.Close(); closeErr != nil {
			slog.Debug("Failed to close gateway session", "error", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			m.setState(domain.StateDisconnected)
			return 0, false
		case ev, ok := <-sess.Events():
			if !ok {
				// Event stream ended without a close frame; treat as a
				// transient drop.
				m.setState(domain.StateConnecting)
				slog.Warn("Gateway event stream ended, reconnecting", "delay", m.opts.ReconnectDelay)
				return m.opts.ReconnectDelay, true
			}
			if delay, retry, done := m.handleEvent(ctx, ev); done {
				return delay, retry
			}
		}
	}
}

// handleEvent processes one lifecycle event. done reports that the current
// session is over and runOnce should return (delay, retry).
func (m *Manager) handleEvent(ctx context.Context, ev Event) (delay time.Duration, retry, done bool) {
	switch ev.Kind {
	case EventQR:
		slog.Info("Pairing required, approve the challenge on the device", "qr", ev.QR)

	case EventOpened:
		m.setState(domain.StateConnected)
		slog.Info("WhatsApp session open", "session_id", m.opts.SessionID)

	case EventCredentials:
		// Fire-and-forget: event processing never waits on the store.
		go m.keeper.Save(context.WithoutCancel(ctx), m.opts.SessionID, ev.Credentials)

	case EventClosed:
		if ev.StatusCode == domain.ReasonLoggedOut {
			m.setState(domain.StateLoggedOut)
			slog.Warn("Session logged out, manual re-pairing required", "session_id", m.opts.SessionID)
			return 0, false, true
		}
		m.setState(domain.StateConnecting)
		slog.Warn("Gateway connection closed, reconnecting",
			"status_code", ev.StatusCode,
			"delay", m.opts.ReconnectDelay)
		return m.opts.ReconnectDelay, true, true
	}
	return 0, false, false
}

// SendText normalizes number, waits a randomized throttle delay and hands
// the text to the live session. Returns the normalized address. Fails with
// ErrNotConnected when no live session exists; transport errors propagate
// as-is, with no retry.
func (m *Manager) SendText(ctx context.Context, number, text string) (string, error) {
	sess := m.liveSession()
	if sess == nil {
		return "", ErrNotConnected
	}

	jid := NormalizeNumber(number, m.opts.CountryCode)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(m.sendDelay()):
	}

	slog.Info("Sending message", "to", jid)
	if err := sess.SendText(ctx, jid, text); err != nil {
		return "", err
	}
	return jid, nil
}

// sendDelay draws a uniform random duration from [SendDelayMin, SendDelayMax).
// The throttle reduces automated-abuse detection by the network; it is a
// policy knob, not a correctness requirement.
func (m *Manager) sendDelay() time.Duration {
	window := m.opts.SendDelayMax - m.opts.SendDelayMin
	if window <= 0 {
		return m.opts.SendDelayMin
	}
	return m.opts.SendDelayMin + time.Duration(rand.Int63n(int64(window)))
}

func (m *Manager) liveSession() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != domain.StateConnected {
		return nil
	}
	return m.session
}

func (m *Manager) setState(s domain.ConnectionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Manager) setSession(sess Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = sess
}

func (m *Manager) clearSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	if m.state == domain.StateConnected {
		m.state = domain.StateDisconnected
	}
}
