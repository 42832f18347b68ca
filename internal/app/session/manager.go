/*
Package session owns the real-time channel between the client and the
collaboration server.

This file defines the Manager struct, which enforces the session invariant of
at most one open channel: it establishes the channel when a valid token becomes
available and tears it down — resetting every dependent component — when the
token is cleared by logout or rejected by the server.
*/
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"liveroom/internal/pkg/logx"
)

// Manager establishes and tears down the session's single channel as the auth
// state changes.
type Manager struct {
	// socketURL is the websocket endpoint channels are dialed against.
	socketURL string

	// configure registers the inbound dispatch handlers on a new channel,
	// once per connection lifetime, before it starts.
	configure func(*Connection)

	// onTeardown hooks reset dependent components (room session, cursor
	// sync, room directory) to empty/idle state when the channel goes away.
	onTeardown []func()

	// mu protects conn.
	mu sync.Mutex

	// the session's channel; nil while logged out.
	conn *Connection

	// structured logger with manager context.
	logger zerolog.Logger
}

// NewManager constructs a Manager dialing the given websocket endpoint.
func NewManager(socketURL string) *Manager {
	return &Manager{
		socketURL: socketURL,
		logger:    logx.Logger().With().Str("component", "ConnectionManager").Logger(),
	}
}

// Configure sets the handler-registration hook applied to every new channel.
func (m *Manager) Configure(fn func(*Connection)) {
	m.configure = fn
}

// OnTeardown registers a hook run after the channel is torn down. Failing to
// reset dependents here would leave stale room and cursor state after logout.
func (m *Manager) OnTeardown(fn func()) {
	m.onTeardown = append(m.onTeardown, fn)
}

// Connect establishes the channel for the given bearer token. If a channel
// already exists it is returned unchanged: the session never holds two.
func (m *Manager) Connect(token string) *Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		m.logger.Debug().Msg("Connect requested but a channel already exists.")
		return m.conn
	}

	conn := NewConnection(m.socketURL, token)
	conn.OnAuthRejected(m.handleAuthRejected)

	if m.configure != nil {
		m.configure(conn)
	}

	conn.Start()
	m.conn = conn

	m.logger.Info().Str("socket_url", m.socketURL).Msg("Channel starting.")
	return conn
}

// Disconnect tears the channel down and resets all dependent components.
// Safe to call with no channel open.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	for _, fn := range m.onTeardown {
		fn()
	}

	m.logger.Info().Msg("Channel torn down; dependent state reset.")
}

// Connection returns the current channel, or nil while logged out.
func (m *Manager) Connection() *Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.conn
}

// IsConnected reports whether the session currently has an open channel.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	return conn != nil && conn.IsConnected()
}

// handleAuthRejected propagates a mid-session credential rejection as a forced
// logout: the same reset behavior as an explicit one.
func (m *Manager) handleAuthRejected() {
	m.logger.Warn().Msg("Credential rejected mid-session. Forcing logout.")
	m.Disconnect()
}
