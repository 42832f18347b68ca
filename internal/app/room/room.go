/*
Package room contains the client-side room state for the collaboration service.

This file defines the Room struct, the client's projection of a collaboration
space as reported by the server. The client never fabricates a Room locally;
every entry originates from a server-pushed directory event.
*/
package room

import "liveroom/internal/app/user"

// Room represents a collaboration space visible to the client.
type Room struct {
	// ID is the unique, server-assigned identifier of the room.
	ID string `json:"id"`

	// Name is the display name of the room.
	Name string `json:"name"`

	// IsPrivate marks rooms that must never be joined through casual browsing;
	// joining them requires the explicit join-by-id path.
	IsPrivate bool `json:"isPrivate"`

	// HasPassword marks rooms that require a password prompt before joining.
	HasPassword bool `json:"hasPassword"`

	// Participants is the roster the server reported for this room, when known.
	Participants []user.User `json:"participants,omitempty"`
}
