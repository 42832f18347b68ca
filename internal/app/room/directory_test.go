package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRooms() []Room {
	return []Room{
		{ID: "r1", Name: "general"},
		{ID: "r2", Name: "design", HasPassword: true},
		{ID: "r3", Name: "secret", IsPrivate: true},
	}
}

func TestDirectory_ApplySnapshotReplacesList(t *testing.T) {
	d := NewDirectory()
	d.Add(Room{ID: "stale", Name: "stale"})

	d.ApplySnapshot(sampleRooms())

	rooms := d.Rooms()
	assert.Len(t, rooms, 3)
	assert.Equal(t, "r1", rooms[0].ID)
	assert.Equal(t, "r2", rooms[1].ID)
	assert.Equal(t, "r3", rooms[2].ID)
}

func TestDirectory_SnapshotReplayIsIdempotent(t *testing.T) {
	d := NewDirectory()

	d.ApplySnapshot(sampleRooms())
	first := d.Rooms()

	d.ApplySnapshot(sampleRooms())
	second := d.Rooms()

	assert.Equal(t, first, second)
}

func TestDirectory_AddIsIdempotentByID(t *testing.T) {
	d := NewDirectory()

	d.Add(Room{ID: "r1", Name: "general"})
	d.Add(Room{ID: "r1", Name: "general"})

	assert.Equal(t, 1, d.Len())
}

func TestDirectory_AddPreservesArrivalOrder(t *testing.T) {
	d := NewDirectory()

	d.Add(Room{ID: "r1"})
	d.Add(Room{ID: "r2"})
	d.Add(Room{ID: "r3"})

	rooms := d.Rooms()
	assert.Equal(t, []string{"r1", "r2", "r3"}, []string{rooms[0].ID, rooms[1].ID, rooms[2].ID})
}

func TestDirectory_RemoveByID(t *testing.T) {
	d := NewDirectory()
	d.ApplySnapshot(sampleRooms())

	d.Remove("r2")

	assert.Equal(t, 2, d.Len())
	_, found := d.Get("r2")
	assert.False(t, found)

	// Removing an unknown id is a no-op.
	d.Remove("r2")
	assert.Equal(t, 2, d.Len())
}

func TestDirectory_Get(t *testing.T) {
	d := NewDirectory()
	d.ApplySnapshot(sampleRooms())

	r, found := d.Get("r3")
	assert.True(t, found)
	assert.True(t, r.IsPrivate)

	_, found = d.Get("missing")
	assert.False(t, found)
}

func TestDirectory_ResetClearsList(t *testing.T) {
	d := NewDirectory()
	d.ApplySnapshot(sampleRooms())

	d.Reset()

	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.Rooms())
}

func TestDirectory_RoomsReturnsACopy(t *testing.T) {
	d := NewDirectory()
	d.ApplySnapshot(sampleRooms())

	rooms := d.Rooms()
	rooms[0].ID = "mutated"

	fresh := d.Rooms()
	assert.Equal(t, "r1", fresh[0].ID)
}
