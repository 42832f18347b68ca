/*
Package cursor contains the real-time cursor synchronization logic.

This file defines the Sync struct, which turns the noisy high-frequency local
pointer stream into a rate-limited outbound event stream, and turns the inbound
stream from many peers into a bounded, TTL-expiring map that is safe to render
every frame.
*/
package cursor

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"liveroom/internal/app/user"
	"liveroom/internal/pkg/logx"
	"liveroom/internal/pkg/metrics"
)

const (
	// TTL is the maximum age of a remote cursor entry before the sweep
	// removes it. Covers peers that vanish without an explicit leave
	// (network partition, crash, tab close).
	TTL = 5 * time.Second

	// SweepInterval is the period of the expiry sweep.
	SweepInterval = time.Second

	// PublishInterval is the minimum spacing between two outbound cursor
	// publishes, capping the publish rate at ~30 per second even under
	// continuous fast movement.
	PublishInterval = 33 * time.Millisecond
)

// RemoteCursor is another participant's last-known pointer position and
// display identity. Keyed by the owner's user id.
type RemoteCursor struct {
	UserID   string    `json:"userId"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	User     user.User `json:"user"`
	LastSeen time.Time `json:"lastSeen"`
}

// Publisher is the outbound surface Sync needs from the real-time channel.
// Both operations are fire-and-forget and must tolerate an absent channel.
type Publisher interface {
	CursorMove(x, y float64, roomID string) error
	CursorLeave(roomID string) error
}

// Membership answers which room the local user occupies and whether a given
// user belongs to its roster. Satisfied by the room session.
type Membership interface {
	CurrentRoomID() (string, bool)
	InRoster(userID string) bool
}

// Sync owns the remote-cursor map and the outbound publish throttle.
type Sync struct {
	// pub publishes outbound cursor events through the channel.
	pub Publisher

	// membership gates publishing on an occupied room and inbound events
	// on roster membership.
	membership Membership

	// limiter caps the outbound publish rate.
	limiter *rate.Limiter

	// now is the clock used for throttling and expiry. Replaceable in tests.
	now func() time.Time

	// mu protects cursors and the last-published state.
	mu sync.RWMutex

	// cursors maps owner user id to their last-known cursor. The map is
	// replaced wholesale on every mutation so snapshots handed to readers
	// are never written again.
	cursors map[string]RemoteCursor

	// last emitted position, used to suppress redundant publishes.
	lastX, lastY float64
	published    bool

	// used to signal the running sweeper goroutine to stop; nil while no
	// sweeper runs.
	sweepStop chan struct{}

	// structured logger with cursor context.
	logger zerolog.Logger
}

// NewSync constructs a Sync publishing through pub and consulting membership
// for the current room and roster.
func NewSync(pub Publisher, membership Membership) *Sync {
	return &Sync{
		pub:        pub,
		membership: membership,
		limiter:    rate.NewLimiter(rate.Every(PublishInterval), 1),
		now:        time.Now,
		cursors:    make(map[string]RemoteCursor),
		logger:     logx.Logger().With().Str("component", "CursorSync").Logger(),
	}
}

// Track samples the local pointer position, once per frame. It publishes only
// if the position differs from the last published value and the rate limiter
// admits it, so continuous movement is bounded at ~30 publishes per second and
// a real sustained movement is always reflected within one publish interval.
// Tracking while no room is joined is a no-op.
func (s *Sync) Track(x, y float64) {
	roomID, ok := s.membership.CurrentRoomID()
	if !ok {
		return
	}

	s.mu.Lock()
	if s.published && x == s.lastX && y == s.lastY {
		s.mu.Unlock()
		metrics.CursorPublishesSuppressed.Inc()
		return
	}

	if !s.limiter.AllowN(s.now(), 1) {
		// Dropped sample; the next frame retries while the position still
		// differs from the last published one.
		s.mu.Unlock()
		metrics.CursorPublishesSuppressed.Inc()
		return
	}

	s.lastX, s.lastY = x, y
	s.published = true
	s.mu.Unlock()

	if err := s.pub.CursorMove(x, y, roomID); err != nil {
		s.logger.Debug().Err(err).Msg("Cursor move publish failed.")
		return
	}

	metrics.CursorPublishes.Inc()
}

// PointerLeave publishes an explicit cursor-gone notification when the pointer
// exits the interactive surface, rather than letting the remote entry expire.
func (s *Sync) PointerLeave() {
	roomID, ok := s.membership.CurrentRoomID()
	if !ok {
		return
	}

	s.mu.Lock()
	s.published = false
	s.mu.Unlock()

	if err := s.pub.CursorLeave(roomID); err != nil {
		s.logger.Debug().Err(err).Msg("Cursor leave publish failed.")
	}
}

// Depart publishes a cursor-gone notification for the given room and clears
// the remote-cursor map. Registered as the room session's leave hook.
func (s *Sync) Depart(roomID string) {
	if err := s.pub.CursorLeave(roomID); err != nil {
		s.logger.Debug().Err(err).Str("room_id", roomID).Msg("Cursor depart publish failed.")
	}

	s.Reset()
}

// HandleMoved upserts the remote cursor entry for an inbound movement event
// and refreshes its last-seen timestamp. Events for users outside the current
// roster are dropped silently.
func (s *Sync) HandleMoved(userID string, x, y float64, u user.User) {
	if userID == "" {
		metrics.EventsDropped.Inc()
		return
	}

	if !s.membership.InRoster(userID) {
		s.logger.Debug().Str("user_id", userID).Msg("Dropping cursor event for user outside roster.")
		return
	}

	s.mu.Lock()
	next := make(map[string]RemoteCursor, len(s.cursors)+1)
	for id, c := range s.cursors {
		next[id] = c
	}
	next[userID] = RemoteCursor{
		UserID:   userID,
		X:        x,
		Y:        y,
		User:     u,
		LastSeen: s.now(),
	}
	s.cursors = next
	s.mu.Unlock()

	metrics.RemoteCursorsActive.Set(float64(len(next)))
}

// HandleLeft removes a user's cursor immediately on an explicit leave
// notification. Removing an unknown user is a no-op.
func (s *Sync) HandleLeft(userID string) {
	s.mu.Lock()
	if _, ok := s.cursors[userID]; !ok {
		s.mu.Unlock()
		return
	}

	next := make(map[string]RemoteCursor, len(s.cursors))
	for id, c := range s.cursors {
		if id != userID {
			next[id] = c
		}
	}
	s.cursors = next
	s.mu.Unlock()

	metrics.RemoteCursorsActive.Set(float64(len(next)))
}

// Snapshot returns a copy of the remote-cursor map, safe to render every frame.
func (s *Sync) Snapshot() map[string]RemoteCursor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]RemoteCursor, len(s.cursors))
	for id, c := range s.cursors {
		snapshot[id] = c
	}
	return snapshot
}

// Len returns the number of remote cursors currently tracked.
func (s *Sync) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.cursors)
}

// Reset clears the cursor map and the publish throttle state without
// publishing anything. Called on room leave and on channel teardown.
func (s *Sync) Reset() {
	s.mu.Lock()
	s.cursors = make(map[string]RemoteCursor)
	s.published = false
	s.mu.Unlock()

	metrics.RemoteCursorsActive.Set(0)
}

// StartSweeper launches the periodic expiry sweep. The sweep removes entries
// whose last-seen timestamp is older than the TTL, guaranteeing correctness
// even when a peer disconnects without an explicit leave. Starting an already
// running sweeper is a no-op.
func (s *Sync) StartSweeper() {
	s.mu.Lock()
	if s.sweepStop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.sweepStop = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweepExpired(s.now())
			case <-stop:
				return
			}
		}
	}()
}

// StopSweeper signals the sweeper goroutine to exit and clears its timer.
// Safe to call with no sweeper running.
func (s *Sync) StopSweeper() {
	s.mu.Lock()
	stop := s.sweepStop
	s.sweepStop = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// sweepExpired removes every entry older than the TTL relative to now and
// returns the number of entries removed.
func (s *Sync) sweepExpired(now time.Time) int {
	s.mu.Lock()

	expired := 0
	for _, c := range s.cursors {
		if now.Sub(c.LastSeen) > TTL {
			expired++
		}
	}

	if expired == 0 {
		s.mu.Unlock()
		return 0
	}

	next := make(map[string]RemoteCursor, len(s.cursors)-expired)
	for id, c := range s.cursors {
		if now.Sub(c.LastSeen) <= TTL {
			next[id] = c
		}
	}
	s.cursors = next
	s.mu.Unlock()

	metrics.RemoteCursorsActive.Set(float64(len(next)))
	metrics.RemoteCursorsExpired.Add(float64(expired))

	s.logger.Debug().Int("expired", expired).Msg("Swept expired remote cursors.")
	return expired
}
