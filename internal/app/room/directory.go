/*
Package room contains the client-side room state for the collaboration service.

This file defines the Directory struct, which maintains the list of rooms
visible to the client. The directory only consumes server-pushed events; it has
no outbound operations of its own.
*/
package room

import (
	"sync"

	"github.com/rs/zerolog"

	"liveroom/internal/pkg/logx"
)

// Directory holds the authoritative list of rooms pushed by the server.
// List order reflects the arrival order of snapshot and append events.
type Directory struct {
	// rooms is the current room list. It is replaced wholesale on every
	// mutation so snapshots handed to readers are never written again.
	rooms []Room

	// mu protects access to the rooms slice.
	mu sync.RWMutex

	// structured logger with directory context.
	logger zerolog.Logger
}

// NewDirectory constructs and returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		logger: logx.Logger().With().Str("component", "RoomDirectory").Logger(),
	}
}

// ApplySnapshot replaces the local list with the full list pushed by the server.
func (d *Directory) ApplySnapshot(rooms []Room) {
	next := make([]Room, len(rooms))
	copy(next, rooms)

	d.mu.Lock()
	d.rooms = next
	d.mu.Unlock()

	d.logger.Debug().Int("room_count", len(next)).Msg("Applied directory snapshot.")
}

// Add appends a room pushed by the server. A duplicate push for an id already
// present is idempotent and leaves the list unchanged.
func (d *Directory) Add(r Room) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.rooms {
		if existing.ID == r.ID {
			d.logger.Debug().Str("room_id", r.ID).Msg("Ignoring duplicate room push.")
			return
		}
	}

	next := make([]Room, len(d.rooms), len(d.rooms)+1)
	copy(next, d.rooms)
	d.rooms = append(next, r)
}

// Remove deletes the room with the given id. Removing an unknown id is a no-op.
func (d *Directory) Remove(roomID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := make([]Room, 0, len(d.rooms))
	for _, existing := range d.rooms {
		if existing.ID != roomID {
			next = append(next, existing)
		}
	}
	d.rooms = next
}

// Get returns the room with the given id and whether it is present.
func (d *Directory) Get(roomID string) (Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, existing := range d.rooms {
		if existing.ID == roomID {
			return existing, true
		}
	}
	return Room{}, false
}

// Rooms returns a copy of the current room list, safe for concurrent readers.
func (d *Directory) Rooms() []Room {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot := make([]Room, len(d.rooms))
	copy(snapshot, d.rooms)
	return snapshot
}

// Len returns the number of rooms currently listed.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms)
}

// Reset clears the directory. Called when the channel is torn down so no stale
// rooms survive a logout.
func (d *Directory) Reset() {
	d.mu.Lock()
	d.rooms = nil
	d.mu.Unlock()
}
