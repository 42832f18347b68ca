/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or connection errors both internally
within the client and in messages surfaced to the embedding application.
*/
package errs

// 1xxx: General Request and Validation Errors
const (
	// ErrInvalidParams indicates that operation parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRoomNameRequired indicates that a room creation was attempted with an
	// empty or whitespace-only name.
	ErrRoomNameRequired = 1002
)

// 2xxx: Room and Membership Business Logic Errors
const (
	// ErrRoomNotFound indicates that the targeted room does not exist.
	ErrRoomNotFound = 2101

	// ErrRoomIsFull indicates that the room being joined has reached its capacity.
	ErrRoomIsFull = 2102

	// ErrWrongPassword indicates that the password supplied for a join was rejected.
	ErrWrongPassword = 2103

	// ErrPrivateRoom indicates that a private room was selected through casual
	// browsing; private rooms require the explicit join-by-id path.
	ErrPrivateRoom = 2104

	// ErrPasswordRequired indicates that a password-protected room was joined
	// without supplying a password.
	ErrPasswordRequired = 2105

	// ErrAlreadyJoined indicates a join was requested while a join is already
	// in flight or a room is already occupied.
	ErrAlreadyJoined = 2106

	// ErrJoinRejected indicates the server refused the join for a reason it
	// reported in the acknowledgment.
	ErrJoinRejected = 2107
)

// 3xxx: Session, Connection, and Security Errors
const (
	// ErrNotConnected indicates an operation required an open channel but none exists.
	ErrNotConnected = 3001

	// ErrDisconnected indicates that the channel was torn down while an
	// acknowledgment was still pending.
	ErrDisconnected = 3002

	// ErrAuthRejected indicates that the bearer credential was rejected; the
	// client treats this the same as an explicit logout.
	ErrAuthRejected = 3003

	// ErrLoginFailed indicates that the login or register call was refused.
	ErrLoginFailed = 3004
)

// 5xxx: Internal Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)
