package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveroom/internal/app/room"
	"liveroom/internal/app/session"
	"liveroom/internal/app/user"
	"liveroom/internal/configs"
	"liveroom/internal/pkg/errs"
)

var testUpgrader = websocket.Upgrader{}

// testServer is a scriptable collaboration endpoint: it pushes a room
// snapshot on connect, acknowledges join requests, and keeps re-pushing a
// remote cursor for the joined room until the connection closes.
type testServer struct {
	t     *testing.T
	rooms []room.Room

	// writeMu serializes frames from the read loop and the cursor pusher.
	writeMu sync.Mutex
}

func (s *testServer) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := testUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.push(conn, session.EventRoomsList, session.RoomsListPayload{Rooms: s.rooms})

	done := make(chan struct{})
	defer close(done)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env session.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			continue
		}

		if env.Type == session.EventJoinRoom {
			var req session.JoinRoomPayload
			if err := json.Unmarshal(env.Payload, &req); err != nil {
				continue
			}
			s.push(conn, session.EventJoinAck, session.JoinAckPayload{
				RequestID:    req.RequestID,
				Success:      true,
				Participants: []user.User{{ID: "u1"}, {ID: "u2"}},
			})

			go s.pushCursorUntilClosed(conn, done)
		}
	}
}

// pushCursorUntilClosed re-sends a remote cursor sample so the test can wait
// for it regardless of when the join result lands on the client side.
func (s *testServer) pushCursorUntilClosed(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.push(conn, session.EventCursorMoved, session.CursorMovedPayload{
				UserID: "u2", X: 5, Y: 7, User: user.User{ID: "u2"},
			}) {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *testServer) push(conn *websocket.Conn, event session.EventType, payload any) bool {
	payloadBytes, err := json.Marshal(payload)
	require.NoError(s.t, err)
	frame, err := json.Marshal(session.Envelope{Type: event, Payload: payloadBytes})
	require.NoError(s.t, err)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return conn.WriteMessage(websocket.TextMessage, frame) == nil
}

func newTestClient(t *testing.T, rooms []room.Room) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc((&testServer{t: t, rooms: rooms}).handler))
	t.Cleanup(srv.Close)

	cl := New(&configs.AppConfig{
		ServerURL: srv.URL,
		SocketURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
	})
	t.Cleanup(cl.Close)

	return cl
}

func freshToken(t *testing.T) string {
	t.Helper()

	claims := &jwtlib.StandardClaims{
		Subject:   "u1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestClient_SessionLifecycle(t *testing.T) {
	cl := newTestClient(t, []room.Room{
		{ID: "r1", Name: "Design"},
		{ID: "r2", Name: "Standup", HasPassword: true},
	})

	require.Nil(t, cl.SetToken(freshToken(t)))
	assert.Equal(t, "u1", cl.Self().ID)
	assert.True(t, cl.RoomBrowserVisible())

	require.Eventually(t, cl.IsConnected, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return cl.Directory.Len() == 2 },
		5*time.Second, 10*time.Millisecond, "room snapshot never arrived")

	// Join and receive the roster plus a remote cursor pushed by the server.
	outcome := cl.Session.JoinRoom(context.Background(), "r1", "")
	require.True(t, outcome.Success)
	assert.False(t, cl.RoomBrowserVisible(), "joining hides the room browser")
	assert.Len(t, cl.Session.Roster(), 2)

	require.Eventually(t, func() bool { return cl.Cursors.Len() == 1 },
		5*time.Second, 10*time.Millisecond, "remote cursor never arrived")

	snapshot := cl.StatusSnapshot()
	assert.True(t, snapshot.Connected)
	assert.Equal(t, "r1", snapshot.Session.CurrentRoomID)
	assert.Contains(t, snapshot.Cursors, "u2")

	// Leaving departs the cursor layer and restores the browser.
	cl.Session.LeaveRoom("r1")
	assert.Zero(t, cl.Cursors.Len())
	assert.True(t, cl.RoomBrowserVisible())

	// Logout resets everything derived from the channel.
	cl.Logout()
	assert.False(t, cl.IsConnected())
	assert.Zero(t, cl.Directory.Len())
	assert.Empty(t, cl.Self().ID)
}

func TestClient_TeardownResetsDerivedState(t *testing.T) {
	cl := newTestClient(t, []room.Room{{ID: "r1", Name: "Design"}})

	require.Nil(t, cl.SetToken(freshToken(t)))
	require.Eventually(t, cl.IsConnected, 5*time.Second, 10*time.Millisecond)

	require.True(t, cl.Session.JoinRoom(context.Background(), "r1", "").Success)
	require.Eventually(t, func() bool { return cl.Cursors.Len() == 1 },
		5*time.Second, 10*time.Millisecond)

	cl.handleTeardown()

	assert.Zero(t, cl.Directory.Len())
	assert.Zero(t, cl.Cursors.Len())
	_, joined := cl.Session.CurrentRoomID()
	assert.False(t, joined)
	assert.Empty(t, cl.Self().ID)
	assert.True(t, cl.RoomBrowserVisible())
}

func TestClient_SetTokenRejectsUnreadableToken(t *testing.T) {
	cl := newTestClient(t, nil)

	customErr := cl.SetToken("garbage")

	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrAuthRejected, customErr.Code)
	assert.False(t, cl.IsConnected())
}

func TestClient_SetTokenRejectsExpiredToken(t *testing.T) {
	cl := newTestClient(t, nil)

	claims := &jwtlib.StandardClaims{
		Subject:   "u1",
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	customErr := cl.SetToken(token)

	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrAuthRejected, customErr.Code)
}

func TestChannelProxy_WithoutChannel(t *testing.T) {
	proxy := &channelProxy{manager: session.NewManager("ws://127.0.0.1:0/ws")}

	var customErr *errs.CustomError

	require.ErrorAs(t, proxy.CreateRoom("n", "", false), &customErr)
	assert.Equal(t, errs.ErrNotConnected, customErr.Code)

	_, err := proxy.Join(context.Background(), "r1", "")
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, errs.ErrNotConnected, customErr.Code)

	require.ErrorAs(t, proxy.Leave("r1"), &customErr)
	require.ErrorAs(t, proxy.Delete("r1"), &customErr)
	require.ErrorAs(t, proxy.CursorMove(1, 2, "r1"), &customErr)
	require.ErrorAs(t, proxy.CursorLeave("r1"), &customErr)
}

func TestBrowserState(t *testing.T) {
	b := &browserState{visible: true}

	b.SetRoomBrowserVisible(false)
	assert.False(t, b.Visible())

	b.SetRoomBrowserVisible(true)
	assert.True(t, b.Visible())
}
