/*
Package user contains core data structures related to user identity within the
collaboration service.

It defines the basic representation of a participant (the User struct), used for
passing identity information between the session components and for rendering
remote cursors.
*/
package user

import "strings"

// User represents the identity of a collaboration participant as reported by
// the server. Fields use JSON tags for serialization in channel events.
type User struct {

	// ID is the unique identifier for the user, assigned by the server.
	ID string `json:"id"`

	// Email is the account email address of the user.
	Email string `json:"email,omitempty"`

	// FirstName is the user's given name, shown next to their cursor.
	FirstName string `json:"firstName"`

	// LastName is the user's family name, shown next to their cursor.
	LastName string `json:"lastName"`
}

// DisplayName returns the name rendered in cursor badges and rosters.
// It falls back to the email, then the ID, when name fields are empty.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
