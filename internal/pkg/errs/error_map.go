/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize status responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request and Validation Errors
	ErrInvalidParams:    {Code: ErrInvalidParams, Message: "Invalid parameters."},
	ErrRoomNameRequired: {Code: ErrRoomNameRequired, Message: "Room name is required."},

	// 2xxx: Room and Membership Business Logic Errors
	ErrRoomNotFound:     {Code: ErrRoomNotFound, Message: "Room not found."},
	ErrRoomIsFull:       {Code: ErrRoomIsFull, Message: "This room is full."},
	ErrWrongPassword:    {Code: ErrWrongPassword, Message: "Incorrect room password."},
	ErrPrivateRoom:      {Code: ErrPrivateRoom, Message: "This room is private. Join it by its room ID."},
	ErrPasswordRequired: {Code: ErrPasswordRequired, Message: "This room requires a password."},
	ErrAlreadyJoined:    {Code: ErrAlreadyJoined, Message: "You are already in a room. Leave it first."},
	ErrJoinRejected:     {Code: ErrJoinRejected, Message: "Could not join room: %s"},

	// 3xxx: Session, Connection, and Security Errors
	ErrNotConnected: {Code: ErrNotConnected, Message: "Not connected to the server."},
	ErrDisconnected: {Code: ErrDisconnected, Message: "Connection lost before the server responded."},
	ErrAuthRejected: {Code: ErrAuthRejected, Message: "Your session has expired. Please sign in again.", Status: http.StatusUnauthorized},
	ErrLoginFailed:  {Code: ErrLoginFailed, Message: "Incorrect email or password.", Status: http.StatusUnauthorized},

	// 5xxx: Internal Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
