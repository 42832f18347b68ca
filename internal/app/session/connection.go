/*
Package session owns the real-time channel between the client and the
collaboration server.

This file defines the Connection struct: one websocket channel carrying all
room and cursor events. It manages the dial/retry lifecycle, the read loop and
heartbeat, the inbound dispatch table, and the correlation of join requests
with their acknowledgments.
*/
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"liveroom/internal/app/room"
	"liveroom/internal/pkg/errs"
	"liveroom/internal/pkg/logx"
	"liveroom/internal/pkg/metrics"
	"liveroom/internal/pkg/randx"
)

const (
	// timeout duration for writing to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong message from the server.
	pongWait = 60 * time.Second

	// frequency at which the client sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound event frame.
	maxMessageSize = 8192

	// timeout for the websocket handshake when dialing.
	handshakeTimeout = 10 * time.Second

	// delay between retries of a failed write.
	writeRetryDelay = 200 * time.Millisecond

	// maximum number of retries for a failed write.
	writeMaxRetries = 3
)

// errAuthRejected marks a dial refused with a 401; it stops the retry loop.
var errAuthRejected = errors.New("credential rejected by server")

// Handler consumes the payload of one inbound event kind.
type Handler func(payload json.RawMessage)

// joinOutcome resolves one pending join wait: either the server's result or a
// terminal error when the channel went away first.
type joinOutcome struct {
	result room.JoinResult
	err    error
}

// Connection is the single logical bidirectional channel of a session. It
// reconnects on its own with exponential backoff; owners must not retry on
// top of it.
type Connection struct {
	// socketURL is the websocket endpoint dialed for this session.
	socketURL string

	// token is the bearer credential supplied at connect time.
	token string

	// handlers maps inbound event kind to handler. Registered once, before
	// Start, for the whole connection lifetime.
	handlers map[EventType]Handler

	// onAuthRejected is invoked when the server refuses the credential;
	// the owner treats it as a forced logout.
	onAuthRejected func()

	// mu guards conn and pending.
	mu sync.Mutex

	// the underlying websocket connection; nil while down.
	conn *websocket.Conn

	// pending maps join request id to the wait resolving it.
	pending map[string]chan joinOutcome

	// writeMu serializes frame writes on the websocket.
	writeMu sync.Mutex

	// used to signal the retry loop and heartbeat to stop permanently.
	stopChan chan struct{}

	// wg waits for the retry loop and heartbeat during Close.
	wg sync.WaitGroup

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewConnection constructs a Connection for the given endpoint and credential.
// Call On to register handlers, then Start to begin dialing.
func NewConnection(socketURL, token string) *Connection {
	return &Connection{
		socketURL: socketURL,
		token:     token,
		handlers:  make(map[EventType]Handler),
		pending:   make(map[string]chan joinOutcome),
		stopChan:  make(chan struct{}),
		logger:    logx.Logger().With().Str("component", "Connection").Logger(),
	}
}

// On registers the handler for an inbound event kind. Handlers are registered
// once per connection lifetime, before Start; they survive reconnects.
func (c *Connection) On(event EventType, handler Handler) {
	c.handlers[event] = handler
}

// OnAuthRejected registers the callback invoked when the server refuses the
// bearer credential.
func (c *Connection) OnAuthRejected(fn func()) {
	c.onAuthRejected = fn
}

// Start launches the connection's dial/retry loop.
func (c *Connection) Start() {
	c.wg.Add(1)
	go c.run()
}

// run dials, serves the connection until it drops, and redials with
// exponential backoff until Close is called or the credential is rejected.
func (c *Connection) run() {
	defer c.wg.Done()

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		conn, err := c.dial()
		if err != nil {
			if errors.Is(err, errAuthRejected) {
				c.logger.Warn().Msg("Credential rejected during dial. Forcing logout.")
				if c.onAuthRejected != nil {
					go c.onAuthRejected()
				}
				return
			}

			wait := bo.NextBackOff()
			metrics.ChannelReconnects.Inc()
			c.logger.Warn().Err(err).Dur("retry_in", wait).Msg("Dial failed. Retrying.")

			select {
			case <-time.After(wait):
				continue
			case <-c.stopChan:
				return
			}
		}

		select {
		case <-c.stopChan:
			conn.Close()
			return
		default:
		}

		bo.Reset()
		metrics.ChannelConnects.Inc()
		c.logger.Info().Str("socket_url", c.socketURL).Msg("Channel established.")

		connDone := make(chan struct{})

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.wg.Add(1)
		go c.pingLoop(conn, connDone)

		c.readLoop(conn)
		close(connDone)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()

		if err := conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error after read loop exit.")
		}

		// A drop must not leave join waits hanging until a timeout.
		c.failPending()
	}
}

// dial performs one websocket handshake carrying the bearer credential.
func (c *Connection) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := dialer.Dial(c.socketURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, errAuthRejected
		}
		return nil, err
	}

	return conn, nil
}

// readLoop reads inbound frames until the connection drops. It handles the
// heartbeat deadline (Pong) and hands every frame to the dispatch table.
func (c *Connection) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Channel read ended (server close/going away)")
			}
			return
		}

		c.dispatch(messageBytes)
	}
}

// dispatch routes one inbound frame through the dispatch table. Malformed or
// unexpected events are dropped defensively, never fatal to the session.
func (c *Connection) dispatch(messageBytes []byte) {
	var env Envelope
	if err := json.Unmarshal(messageBytes, &env); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Server sent invalid JSON")
		metrics.EventsDropped.Inc()
		return
	}

	metrics.EventsReceived.WithLabelValues(string(env.Type)).Inc()

	if env.Type == EventJoinAck {
		c.resolveJoin(env.Payload)
		return
	}

	handler, ok := c.handlers[env.Type]
	if !ok {
		c.logger.Warn().Str("event_type", string(env.Type)).Msg("Server sent unsupported event type")
		metrics.EventsDropped.Inc()
		return
	}

	handler(env.Payload)
}

// resolveJoin matches a join acknowledgment to its pending wait.
func (c *Connection) resolveJoin(payloadBytes json.RawMessage) {
	var ack JoinAckPayload
	if err := json.Unmarshal(payloadBytes, &ack); err != nil {
		c.logger.Warn().Err(err).Msg("Server sent invalid join_ack payload")
		metrics.EventsDropped.Inc()
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[ack.RequestID]
	delete(c.pending, ack.RequestID)
	c.mu.Unlock()

	if !ok {
		c.logger.Warn().Str("request_id", ack.RequestID).Msg("Ignoring join_ack for unknown or stale request")
		return
	}

	ch <- joinOutcome{result: room.JoinResult{
		Success:      ack.Success,
		Error:        ack.Error,
		Participants: ack.Participants,
	}}
}

// pingLoop maintains the heartbeat for one underlying connection.
func (c *Connection) pingLoop(conn *websocket.Conn, connDone <-chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping")
				return
			}

		case <-connDone:
			return

		case <-c.stopChan:
			return
		}
	}
}

// emit marshals and writes one outbound event frame, retrying transient write
// failures. Emitting with no open channel is a no-op returning a typed error.
func (c *Connection) emit(event EventType, payload any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(event)).Msg("Error marshaling outbound payload")
		return errs.NewError(errs.ErrUnknown, err)
	}

	frame, err := json.Marshal(Envelope{Type: event, Payload: payloadBytes})
	if err != nil {
		return errs.NewError(errs.ErrUnknown, err)
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return errs.NewError(errs.ErrNotConnected)
	}

	operation := func() error {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, frame)
	}

	strategy := backoff.WithMaxRetries(backoff.NewConstantBackOff(writeRetryDelay), writeMaxRetries)

	return backoff.RetryNotify(operation, strategy, func(err error, d time.Duration) {
		c.logger.Debug().Err(err).Dur("next_attempt_in", d).Msg("Retrying channel write")
	})
}

// CreateRoom publishes a fire-and-forget room creation request.
func (c *Connection) CreateRoom(name, password string, isPrivate bool) error {
	return c.emit(EventCreateRoom, CreateRoomPayload{
		Name:      name,
		Password:  password,
		IsPrivate: isPrivate,
	})
}

// Join publishes a join request and blocks until its single acknowledgment
// arrives, the context ends, or the channel is torn down. A teardown resolves
// the wait with a disconnected error rather than leaving it to time out.
func (c *Connection) Join(ctx context.Context, roomID, password string) (room.JoinResult, error) {
	requestID := randx.RequestID()
	ch := make(chan joinOutcome, 1)

	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return room.JoinResult{}, errs.NewError(errs.ErrNotConnected)
	}
	c.pending[requestID] = ch
	c.mu.Unlock()

	err := c.emit(EventJoinRoom, JoinRoomPayload{
		RequestID: requestID,
		RoomID:    roomID,
		Password:  password,
	})
	if err != nil {
		c.unregisterPending(requestID)
		return room.JoinResult{}, err
	}

	select {
	case out := <-ch:
		return out.result, out.err

	case <-ctx.Done():
		c.unregisterPending(requestID)
		return room.JoinResult{}, errs.NewError(errs.ErrDisconnected)

	case <-c.stopChan:
		c.unregisterPending(requestID)
		return room.JoinResult{}, errs.NewError(errs.ErrDisconnected)
	}
}

// Leave publishes a fire-and-forget leave notification.
func (c *Connection) Leave(roomID string) error {
	return c.emit(EventLeaveRoom, RoomRefPayload{RoomID: roomID})
}

// Delete publishes a fire-and-forget delete request.
func (c *Connection) Delete(roomID string) error {
	return c.emit(EventDeleteRoom, RoomRefPayload{RoomID: roomID})
}

// CursorMove publishes the local pointer position.
func (c *Connection) CursorMove(x, y float64, roomID string) error {
	return c.emit(EventCursorMove, CursorMovePayload{X: x, Y: y, RoomID: roomID})
}

// CursorLeave publishes an explicit cursor-gone notification.
func (c *Connection) CursorLeave(roomID string) error {
	return c.emit(EventCursorGone, RoomRefPayload{RoomID: roomID})
}

// IsConnected reports whether the channel is currently up. Surfaced to the
// user only as a connectivity indicator.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil
}

// unregisterPending drops a pending join wait that will no longer be resolved.
func (c *Connection) unregisterPending(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// failPending resolves every pending join wait with a disconnected outcome.
func (c *Connection) failPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan joinOutcome)
	c.mu.Unlock()

	for requestID, ch := range pending {
		c.logger.Info().Str("request_id", requestID).Msg("Failing pending join: channel down.")
		ch <- joinOutcome{err: errs.NewError(errs.ErrDisconnected)}
	}
}

// Close tears the channel down permanently: it stops the retry loop, closes
// the underlying connection, and synchronously fails all pending join waits.
func (c *Connection) Close() {
	select {
	case <-c.stopChan:
	default:
		close(c.stopChan)
	}

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(writeWait)
		closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteControl(websocket.CloseMessage, closeMessage, deadline); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to send close message.")
		}

		if err := conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error")
		}
	}

	c.failPending()
	c.wg.Wait()

	c.logger.Info().Msg("Channel closed.")
}
