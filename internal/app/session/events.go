/*
Package session owns the real-time channel between the client and the
collaboration server.

This file defines the event vocabulary carried over the channel: the envelope
framing, the inbound and outbound event kinds, and their payload structures.
*/
package session

import (
	"encoding/json"

	"liveroom/internal/app/room"
	"liveroom/internal/app/user"
)

// EventType identifies the kind of an event carried over the channel.
type EventType string

// Inbound (server to client) event kinds.
const (
	// EventRoomsList carries the full room directory; it replaces the local list.
	EventRoomsList EventType = "rooms_list"

	// EventRoomCreated announces a room added to the directory.
	EventRoomCreated EventType = "room_created"

	// EventRoomDeleted announces a room removed from the directory.
	EventRoomDeleted EventType = "room_deleted"

	// EventUserJoined announces a participant entering the joined room.
	EventUserJoined EventType = "user_joined"

	// EventUserLeft announces a participant leaving the joined room.
	EventUserLeft EventType = "user_left"

	// EventCursorMoved carries a peer's pointer movement.
	EventCursorMoved EventType = "cursor_moved"

	// EventCursorLeft announces that a peer's pointer left the surface.
	EventCursorLeft EventType = "cursor_left"

	// EventJoinAck acknowledges exactly one pending join request.
	EventJoinAck EventType = "join_ack"
)

// Outbound (client to server) event kinds.
const (
	EventCreateRoom EventType = "create_room"
	EventJoinRoom   EventType = "join_room"
	EventLeaveRoom  EventType = "leave_room"
	EventDeleteRoom EventType = "delete_room"
	EventCursorMove EventType = "cursor_move"
	EventCursorGone EventType = "cursor_leave"
)

// Envelope is the JSON frame every channel event travels in.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CreateRoomPayload requests the creation of a new room.
type CreateRoomPayload struct {
	Name      string `json:"name"`
	Password  string `json:"password,omitempty"`
	IsPrivate bool   `json:"isPrivate"`
}

// JoinRoomPayload requests entry into a room. The RequestID correlates the
// request with the single acknowledgment the server sends back.
type JoinRoomPayload struct {
	RequestID string `json:"requestId"`
	RoomID    string `json:"roomId"`
	Password  string `json:"password,omitempty"`
}

// JoinAckPayload is the server's acknowledgment of a join request.
type JoinAckPayload struct {
	RequestID    string      `json:"requestId"`
	Success      bool        `json:"success"`
	Error        string      `json:"error,omitempty"`
	Participants []user.User `json:"participants,omitempty"`
}

// RoomRefPayload references a room by id. Used by leave, delete, and the
// room_deleted push.
type RoomRefPayload struct {
	RoomID string `json:"roomId"`
}

// RoomsListPayload carries the full directory snapshot.
type RoomsListPayload struct {
	Rooms []room.Room `json:"rooms"`
}

// UserEventPayload carries roster changes for a room.
type UserEventPayload struct {
	RoomID string    `json:"roomId"`
	User   user.User `json:"user"`
}

// CursorMovePayload publishes the local pointer position.
type CursorMovePayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	RoomID string  `json:"roomId"`
}

// CursorMovedPayload carries a peer's pointer movement.
type CursorMovedPayload struct {
	UserID string    `json:"userId"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	User   user.User `json:"user"`
}

// CursorRefPayload references a peer's cursor by owner. Inbound cursor_left
// events carry it.
type CursorRefPayload struct {
	UserID string `json:"userId"`
}
