package cursor

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liveroom/internal/app/user"
)

// fakePublisher records published cursor events.
type fakePublisher struct {
	moves  []moveCall
	leaves []string
	err    error
}

type moveCall struct {
	X, Y   float64
	RoomID string
}

func (f *fakePublisher) CursorMove(x, y float64, roomID string) error {
	if f.err != nil {
		return f.err
	}
	f.moves = append(f.moves, moveCall{X: x, Y: y, RoomID: roomID})
	return nil
}

func (f *fakePublisher) CursorLeave(roomID string) error {
	if f.err != nil {
		return f.err
	}
	f.leaves = append(f.leaves, roomID)
	return nil
}

// fakeMembership answers a fixed room and roster.
type fakeMembership struct {
	roomID string
	joined bool
	roster map[string]bool
}

func (f *fakeMembership) CurrentRoomID() (string, bool) {
	return f.roomID, f.joined
}

func (f *fakeMembership) InRoster(userID string) bool {
	return f.roster[userID]
}

// fakeClock is an advanceable clock injected through Sync.now. The tests
// drive all timing through it, so throttle and expiry decisions are exact.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSync(pub *fakePublisher, membership *fakeMembership) (*Sync, *fakeClock) {
	s := NewSync(pub, membership)
	clock := newFakeClock()
	s.now = clock.Now
	return s, clock
}

func joinedMembership() *fakeMembership {
	return &fakeMembership{roomID: "r1", joined: true, roster: map[string]bool{"u2": true, "u3": true}}
}

func TestTrack_NoRoomSuppressesPublish(t *testing.T) {
	pub := &fakePublisher{}
	s, _ := newTestSync(pub, &fakeMembership{joined: false})

	s.Track(10, 20)

	assert.Empty(t, pub.moves)
}

func TestTrack_PublishesChangedPosition(t *testing.T) {
	pub := &fakePublisher{}
	s, clock := newTestSync(pub, joinedMembership())

	s.Track(10, 20)
	clock.Advance(PublishInterval + time.Millisecond)
	s.Track(11, 21)

	require.Len(t, pub.moves, 2)
	assert.Equal(t, moveCall{X: 10, Y: 20, RoomID: "r1"}, pub.moves[0])
	assert.Equal(t, moveCall{X: 11, Y: 21, RoomID: "r1"}, pub.moves[1])
}

func TestTrack_SuppressesUnchangedPosition(t *testing.T) {
	pub := &fakePublisher{}
	s, clock := newTestSync(pub, joinedMembership())

	s.Track(10, 20)
	for i := 0; i < 10; i++ {
		clock.Advance(PublishInterval)
		s.Track(10, 20)
	}

	assert.Len(t, pub.moves, 1, "a still pointer publishes nothing after the first sample")
}

func TestTrack_ThrottleDropsSamplesWithinTheInterval(t *testing.T) {
	pub := &fakePublisher{}
	s, clock := newTestSync(pub, joinedMembership())

	// Three frames 16ms apart: the middle one falls inside the publish
	// interval and is dropped, the third lands past it and goes out.
	s.Track(1, 1)
	clock.Advance(16 * time.Millisecond)
	s.Track(2, 2)
	clock.Advance(18 * time.Millisecond)
	s.Track(3, 3)

	require.Len(t, pub.moves, 2)
	assert.Equal(t, moveCall{X: 1, Y: 1, RoomID: "r1"}, pub.moves[0])
	assert.Equal(t, moveCall{X: 3, Y: 3, RoomID: "r1"}, pub.moves[1])
}

func TestTrack_PublishRateIsBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Continuous movement sampled at 60fps never exceeds one publish per
	// publish interval, regardless of the positions visited.
	properties.Property("60fps movement publishes at most once per interval", prop.ForAll(
		func(positions []float64) bool {
			pub := &fakePublisher{}
			s, clock := newTestSync(pub, joinedMembership())

			const frame = 16 * time.Millisecond
			for i, p := range positions {
				s.Track(p, float64(i))
				clock.Advance(frame)
			}

			elapsed := time.Duration(len(positions)) * frame
			limit := int(elapsed/PublishInterval) + 1
			return len(pub.moves) <= limit
		},
		gen.SliceOf(gen.Float64Range(0, 4096)),
	))

	properties.TestingRun(t)
}

func TestPointerLeave_PublishesAndRearmsThrottle(t *testing.T) {
	pub := &fakePublisher{}
	s, clock := newTestSync(pub, joinedMembership())

	s.Track(10, 20)
	s.PointerLeave()
	clock.Advance(PublishInterval + time.Millisecond)
	s.Track(10, 20)

	assert.Equal(t, []string{"r1"}, pub.leaves)
	assert.Len(t, pub.moves, 2, "re-entering at the old position publishes again after a leave")
}

func TestPointerLeave_NoRoomIsNoOp(t *testing.T) {
	pub := &fakePublisher{}
	s, _ := newTestSync(pub, &fakeMembership{joined: false})

	s.PointerLeave()

	assert.Empty(t, pub.leaves)
}

func TestDepart_PublishesLeaveAndClears(t *testing.T) {
	pub := &fakePublisher{}
	s, _ := newTestSync(pub, joinedMembership())

	s.HandleMoved("u2", 1, 2, user.User{ID: "u2"})
	require.Equal(t, 1, s.Len())

	s.Depart("r1")

	assert.Equal(t, []string{"r1"}, pub.leaves)
	assert.Zero(t, s.Len())
}

func TestHandleMoved_UpsertsAndRefreshes(t *testing.T) {
	s, clock := newTestSync(&fakePublisher{}, joinedMembership())

	s.HandleMoved("u2", 1, 2, user.User{ID: "u2", FirstName: "Ada"})
	clock.Advance(2 * time.Second)
	s.HandleMoved("u2", 3, 4, user.User{ID: "u2", FirstName: "Ada"})

	require.Equal(t, 1, s.Len())
	c := s.Snapshot()["u2"]
	assert.Equal(t, 3.0, c.X)
	assert.Equal(t, 4.0, c.Y)
	assert.Equal(t, clock.Now(), c.LastSeen, "a repeat movement refreshes last-seen")
}

func TestHandleMoved_DropsEmptyUserID(t *testing.T) {
	s, _ := newTestSync(&fakePublisher{}, joinedMembership())

	s.HandleMoved("", 1, 2, user.User{})

	assert.Zero(t, s.Len())
}

func TestHandleMoved_DropsUsersOutsideRoster(t *testing.T) {
	s, _ := newTestSync(&fakePublisher{}, joinedMembership())

	s.HandleMoved("stranger", 1, 2, user.User{ID: "stranger"})

	assert.Zero(t, s.Len())
}

func TestHandleLeft_RemovesImmediately(t *testing.T) {
	s, _ := newTestSync(&fakePublisher{}, joinedMembership())

	s.HandleMoved("u2", 1, 2, user.User{ID: "u2"})
	s.HandleMoved("u3", 3, 4, user.User{ID: "u3"})

	s.HandleLeft("u2")

	snapshot := s.Snapshot()
	assert.Len(t, snapshot, 1)
	assert.NotContains(t, snapshot, "u2")

	s.HandleLeft("u2") // unknown user, no-op
	assert.Equal(t, 1, s.Len())
}

func TestSweepExpired_RemovesOnlyStaleEntries(t *testing.T) {
	s, clock := newTestSync(&fakePublisher{}, joinedMembership())

	s.HandleMoved("u2", 1, 2, user.User{ID: "u2"})
	clock.Advance(3 * time.Second)
	s.HandleMoved("u3", 3, 4, user.User{ID: "u3"})
	clock.Advance(TTL - 2*time.Second)

	// u2 is now 1s past the TTL, u3 well within it.
	removed := s.sweepExpired(clock.Now())

	assert.Equal(t, 1, removed)
	snapshot := s.Snapshot()
	assert.NotContains(t, snapshot, "u2")
	assert.Contains(t, snapshot, "u3")
}

func TestSweepExpired_RefreshedEntrySurvives(t *testing.T) {
	s, clock := newTestSync(&fakePublisher{}, joinedMembership())

	s.HandleMoved("u2", 1, 2, user.User{ID: "u2"})
	clock.Advance(4 * time.Second)
	s.HandleMoved("u2", 5, 6, user.User{ID: "u2"})
	clock.Advance(4 * time.Second)

	removed := s.sweepExpired(clock.Now())

	assert.Zero(t, removed)
	assert.Equal(t, 1, s.Len())
}

func TestSweepExpired_TTLBoundaryProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// For any mix of entry ages, the sweep removes exactly those older
	// than the TTL and leaves the rest untouched.
	properties.Property("sweep removes exactly the entries older than the TTL", prop.ForAll(
		func(ageMillis []int64) bool {
			s, clock := newTestSync(&fakePublisher{}, joinedMembership())
			sweepAt := clock.Now()

			wantKept := 0
			for i, age := range ageMillis {
				clock.t = sweepAt.Add(-time.Duration(age) * time.Millisecond)
				id := string(rune('a' + i%26))
				s.membership.(*fakeMembership).roster[id] = true
				s.HandleMoved(id, float64(i), 0, user.User{ID: id})
			}
			for _, c := range s.Snapshot() {
				if sweepAt.Sub(c.LastSeen) <= TTL {
					wantKept++
				}
			}

			s.sweepExpired(sweepAt)

			if s.Len() != wantKept {
				return false
			}
			for _, c := range s.Snapshot() {
				if sweepAt.Sub(c.LastSeen) > TTL {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 10_000)),
	))

	properties.TestingRun(t)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s, _ := newTestSync(&fakePublisher{}, joinedMembership())

	s.HandleMoved("u2", 1, 2, user.User{ID: "u2"})

	snapshot := s.Snapshot()
	delete(snapshot, "u2")

	assert.Equal(t, 1, s.Len(), "mutating a snapshot must not affect the sync state")
}

func TestReset_ClearsCursorsAndThrottleState(t *testing.T) {
	pub := &fakePublisher{}
	s, clock := newTestSync(pub, joinedMembership())

	s.Track(10, 20)
	s.HandleMoved("u2", 1, 2, user.User{ID: "u2"})

	s.Reset()

	assert.Zero(t, s.Len())

	clock.Advance(PublishInterval + time.Millisecond)
	s.Track(10, 20)
	assert.Len(t, pub.moves, 2, "the same position publishes again after a reset")
}

func TestSweeper_StopsAndRestarts(t *testing.T) {
	s, _ := newTestSync(&fakePublisher{}, joinedMembership())

	s.StartSweeper()
	s.StartSweeper() // second start is a no-op
	s.StopSweeper()
	s.StopSweeper() // second stop is a no-op

	s.StartSweeper()
	s.StopSweeper()
}
