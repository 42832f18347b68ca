/*
Package handler provides the HTTP handlers and routing setup for the client's
local status server.

This file contains the handlers serving read-only snapshots of the client's
state: the connection, the room directory, the membership session, and the
remote cursors.
*/
package handler

import (
	"net/http"

	"liveroom/internal/pkg/resp"
)

// HandleStatus serves the full client snapshot.
func HandleStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Client.StatusSnapshot())
	}
}

// HandleRooms serves the current room directory.
func HandleRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Client.Directory.Rooms())
	}
}

// HandleCursors serves the remote cursors tracked for the joined room.
func HandleCursors(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Client.Cursors.Snapshot())
	}
}
