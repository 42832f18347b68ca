/*
Package client assembles the collaboration client: the connection manager, the
room directory, the room session, and the cursor synchronization layer.

This file defines the Client struct, which owns the session state (token and
identity), wires the inbound dispatch table once per connection lifetime, and
guarantees that every teardown — explicit logout or credential rejection —
resets all derived state.
*/
package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"liveroom/internal/api"
	"liveroom/internal/app/cursor"
	"liveroom/internal/app/room"
	"liveroom/internal/app/session"
	"liveroom/internal/app/user"
	"liveroom/internal/configs"
	"liveroom/internal/pkg/auth/jwt"
	"liveroom/internal/pkg/errs"
	"liveroom/internal/pkg/logx"
	"liveroom/internal/pkg/metrics"
)

// Client is the embedding application's entry point to the collaboration
// service. The render layer reads snapshots from Directory, Session, and
// Cursors, and issues operations on them directly.
type Client struct {
	// Directory lists the rooms visible to this client.
	Directory *room.Directory

	// Session tracks the local user's room membership.
	Session *room.Session

	// Cursors publishes local pointer movement and tracks remote cursors.
	Cursors *cursor.Sync

	// manager owns the session's single real-time channel.
	manager *session.Manager

	// auth performs the HTTP login and register calls.
	auth *api.AuthClient

	// browser holds the room-browser visibility the room session controls.
	browser *browserState

	// mu protects token and self.
	mu sync.RWMutex

	token string
	self  user.User

	// structured logger with client context.
	logger zerolog.Logger
}

// Snapshot is a read-only projection of the whole client for status consumers.
type Snapshot struct {
	Connected          bool                          `json:"connected"`
	User               user.User                     `json:"user"`
	RoomBrowserVisible bool                          `json:"roomBrowserVisible"`
	Rooms              []room.Room                   `json:"rooms"`
	Session            room.Snapshot                 `json:"session"`
	Cursors            map[string]cursor.RemoteCursor `json:"cursors"`
}

// New assembles a Client from the given configuration.
func New(cfg *configs.AppConfig) *Client {
	cl := &Client{
		manager: session.NewManager(cfg.SocketURL),
		auth:    api.NewAuthClient(cfg.ServerURL),
		browser: &browserState{visible: true},
		logger:  logx.Logger().With().Str("component", "Client").Logger(),
	}

	proxy := &channelProxy{manager: cl.manager}

	cl.Directory = room.NewDirectory()
	cl.Session = room.NewSession(proxy, cl.browser)
	cl.Cursors = cursor.NewSync(proxy, cl.Session)

	// Leaving a room departs the cursor layer before the browser returns.
	cl.Session.OnLeave(cl.Cursors.Depart)

	cl.manager.Configure(cl.registerHandlers)
	cl.manager.OnTeardown(cl.handleTeardown)

	return cl
}

// Login exchanges credentials for a token and establishes the channel.
func (c *Client) Login(ctx context.Context, email, password string) *errs.CustomError {
	res, customErr := c.auth.Login(ctx, email, password)
	if customErr != nil {
		return customErr
	}

	return c.startSession(res.AccessToken, res.User)
}

// Register creates an account and establishes the channel with its first token.
func (c *Client) Register(ctx context.Context, creds api.Credentials) *errs.CustomError {
	res, customErr := c.auth.Register(ctx, creds)
	if customErr != nil {
		return customErr
	}

	return c.startSession(res.AccessToken, res.User)
}

// SetToken establishes the channel from a previously persisted bearer token,
// deriving the local identity from its claims.
func (c *Client) SetToken(token string) *errs.CustomError {
	claims, err := jwt.PeekClaims(token)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Persisted token is unreadable.")
		return errs.NewError(errs.ErrAuthRejected)
	}

	if claims.IsExpired(time.Now()) {
		return errs.NewError(errs.ErrAuthRejected)
	}

	self := user.User{
		ID:        claims.UserID(),
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}

	return c.startSession(token, self)
}

// startSession stores the session identity and brings the channel up.
func (c *Client) startSession(token string, self user.User) *errs.CustomError {
	c.mu.Lock()
	c.token = token
	c.self = self
	c.mu.Unlock()

	c.manager.Connect(token)
	c.Cursors.StartSweeper()

	c.logger.Info().Str("user_id", self.ID).Msg("Session started.")
	return nil
}

// Logout tears the channel down and resets all derived state.
func (c *Client) Logout() {
	c.manager.Disconnect()
}

// Close releases the client. Equivalent to Logout.
func (c *Client) Close() {
	c.Logout()
}

// Self returns the local user's identity for the current session.
func (c *Client) Self() user.User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.self
}

// IsConnected reports whether the channel is currently up; a connectivity
// indicator, never a fatal condition.
func (c *Client) IsConnected() bool {
	return c.manager.IsConnected()
}

// RoomBrowserVisible reports the browser visibility the room session controls.
func (c *Client) RoomBrowserVisible() bool {
	return c.browser.Visible()
}

// StatusSnapshot returns a read-only projection of the whole client.
func (c *Client) StatusSnapshot() Snapshot {
	return Snapshot{
		Connected:          c.IsConnected(),
		User:               c.Self(),
		RoomBrowserVisible: c.browser.Visible(),
		Rooms:              c.Directory.Rooms(),
		Session:            c.Session.Snapshot(),
		Cursors:            c.Cursors.Snapshot(),
	}
}

// handleTeardown resets every dependent component when the channel goes away.
// Leaving any of them populated would show stale rooms or cursors after logout.
func (c *Client) handleTeardown() {
	c.Session.Reset()
	c.Directory.Reset()
	c.Cursors.StopSweeper()
	c.Cursors.Reset()

	c.mu.Lock()
	c.token = ""
	c.self = user.User{}
	c.mu.Unlock()

	c.logger.Info().Msg("Session state reset.")
}

// registerHandlers wires the inbound dispatch table. Called once per
// connection lifetime, before the channel starts.
func (c *Client) registerHandlers(conn *session.Connection) {
	conn.On(session.EventRoomsList, func(payloadBytes json.RawMessage) {
		var payload session.RoomsListPayload
		if !c.decode(payloadBytes, &payload, session.EventRoomsList) {
			return
		}
		c.Directory.ApplySnapshot(payload.Rooms)
	})

	conn.On(session.EventRoomCreated, func(payloadBytes json.RawMessage) {
		var payload room.Room
		if !c.decode(payloadBytes, &payload, session.EventRoomCreated) {
			return
		}
		c.Directory.Add(payload)
	})

	conn.On(session.EventRoomDeleted, func(payloadBytes json.RawMessage) {
		var payload session.RoomRefPayload
		if !c.decode(payloadBytes, &payload, session.EventRoomDeleted) {
			return
		}
		c.Directory.Remove(payload.RoomID)

		// The occupied room vanished from under us: clear membership
		// without publishing a leave for a room that no longer exists.
		if currentID, ok := c.Session.CurrentRoomID(); ok && currentID == payload.RoomID {
			c.logger.Info().Str("room_id", payload.RoomID).Msg("Current room was deleted remotely.")
			c.Session.Reset()
			c.Cursors.Reset()
		}
	})

	conn.On(session.EventUserJoined, func(payloadBytes json.RawMessage) {
		var payload session.UserEventPayload
		if !c.decode(payloadBytes, &payload, session.EventUserJoined) {
			return
		}
		c.Session.HandleParticipantJoined(payload.RoomID, payload.User)
	})

	conn.On(session.EventUserLeft, func(payloadBytes json.RawMessage) {
		var payload session.UserEventPayload
		if !c.decode(payloadBytes, &payload, session.EventUserLeft) {
			return
		}
		c.Session.HandleParticipantLeft(payload.RoomID, payload.User.ID)

		// A departed participant's cursor goes with them.
		c.Cursors.HandleLeft(payload.User.ID)
	})

	conn.On(session.EventCursorMoved, func(payloadBytes json.RawMessage) {
		var payload session.CursorMovedPayload
		if !c.decode(payloadBytes, &payload, session.EventCursorMoved) {
			return
		}
		c.Cursors.HandleMoved(payload.UserID, payload.X, payload.Y, payload.User)
	})

	conn.On(session.EventCursorLeft, func(payloadBytes json.RawMessage) {
		var payload session.CursorRefPayload
		if !c.decode(payloadBytes, &payload, session.EventCursorLeft) {
			return
		}
		c.Cursors.HandleLeft(payload.UserID)
	})
}

// decode unmarshals one inbound payload, dropping malformed events defensively.
func (c *Client) decode(payloadBytes json.RawMessage, dst any, event session.EventType) bool {
	if err := json.Unmarshal(payloadBytes, dst); err != nil {
		c.logger.Warn().Err(err).Str("event_type", string(event)).Msg("Dropping malformed inbound payload.")
		metrics.EventsDropped.Inc()
		return false
	}
	return true
}
