/*
Package room contains the client-side room state for the collaboration service.

This file defines the Session struct, which tracks which room (if any) the local
user currently occupies and mediates create/join/leave/delete actions against
the real-time channel while keeping the local membership projection consistent.
*/
package room

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"liveroom/internal/app/user"
	"liveroom/internal/pkg/errs"
	"liveroom/internal/pkg/logx"
	"liveroom/internal/pkg/metrics"
)

// Phase is the local user's room-membership state.
type Phase int

const (
	// PhaseIdle means the user occupies no room and no join is in flight.
	PhaseIdle Phase = iota

	// PhaseJoining means a join request has been issued and its acknowledgment
	// is still pending.
	PhaseJoining

	// PhaseJoined means a join has been acknowledged and no leave has been issued.
	PhaseJoined
)

// String returns the lowercase name of the phase for logging and status output.
func (p Phase) String() string {
	switch p {
	case PhaseJoining:
		return "joining"
	case PhaseJoined:
		return "joined"
	default:
		return "idle"
	}
}

// JoinResult carries the server's acknowledgment of a single join request.
type JoinResult struct {
	Success      bool
	Error        string
	Participants []user.User
}

// Channel is the outbound surface the Session needs from the real-time
// connection. All operations are fire-and-forget except Join, which correlates
// exactly one request with exactly one acknowledgment.
type Channel interface {
	CreateRoom(name, password string, isPrivate bool) error
	Join(ctx context.Context, roomID, password string) (JoinResult, error)
	Leave(roomID string) error
	Delete(roomID string) error
}

// Browser is the view collaborator whose room-browser visibility this session
// owns as a side effect of joining and leaving.
type Browser interface {
	SetRoomBrowserVisible(visible bool)
}

// Outcome is the result of a join operation. Join failure is an expected,
// recoverable outcome and is always returned as a value, never a panic.
type Outcome struct {
	Success bool
	Err     *errs.CustomError
}

// Snapshot is a read-only projection of the session for status consumers.
type Snapshot struct {
	Phase         string      `json:"phase"`
	CurrentRoomID string      `json:"currentRoomId,omitempty"`
	Roster        []user.User `json:"roster,omitempty"`
}

// Session owns the CurrentRoomRef: the single nullable reference to the room
// the local user has joined.
type Session struct {
	// ch is the real-time channel operations are published through.
	ch Channel

	// browser is the view collaborator controlled on join and leave.
	browser Browser

	// onLeave hooks run after the local user leaves a room, before the
	// browser is restored. Used to clear and depart the cursor layer.
	onLeave []func(roomID string)

	// mu protects phase, currentID and roster.
	mu sync.RWMutex

	phase     Phase
	currentID string
	roster    []user.User

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a Session publishing through the given channel.
// The browser collaborator may be nil when no view is attached.
func NewSession(ch Channel, browser Browser) *Session {
	return &Session{
		ch:      ch,
		browser: browser,
		logger:  logx.Logger().With().Str("component", "RoomSession").Logger(),
	}
}

// OnLeave registers a hook invoked whenever the local user leaves a room,
// with the id of the room being left.
func (s *Session) OnLeave(fn func(roomID string)) {
	s.onLeave = append(s.onLeave, fn)
}

// CreateRoom publishes a create request for a new room. It fails locally, with
// no network call, when the name is empty or whitespace. The room is not added
// optimistically; the authoritative entry arrives via the directory push.
func (s *Session) CreateRoom(name, password string, isPrivate bool) *errs.CustomError {
	if strings.TrimSpace(name) == "" {
		return errs.NewError(errs.ErrRoomNameRequired)
	}

	if err := s.ch.CreateRoom(name, password, isPrivate); err != nil {
		s.logger.Warn().Err(err).Str("room_name", name).Msg("Create room publish failed.")
		return asCustomError(err)
	}

	s.logger.Info().Str("room_name", name).Bool("is_private", isPrivate).Msg("Create room request published.")
	return nil
}

// JoinRoom publishes a join request and awaits its single acknowledgment. This
// is the explicit join-by-id path; it is the only way to enter a private room.
// On success the CurrentRoomRef is set and the room browser is hidden. On any
// failure the CurrentRoomRef is left unchanged.
func (s *Session) JoinRoom(ctx context.Context, roomID, password string) Outcome {
	s.mu.Lock()
	if s.phase != PhaseIdle {
		phase := s.phase
		s.mu.Unlock()
		s.logger.Warn().
			Str("room_id", roomID).
			Stringer("phase", phase).
			Msg("Join rejected: a room is already joined or a join is in flight.")
		return Outcome{Err: errs.NewError(errs.ErrAlreadyJoined)}
	}
	s.phase = PhaseJoining
	s.mu.Unlock()

	metrics.JoinAttempts.Inc()

	res, err := s.ch.Join(ctx, roomID, password)
	if err != nil {
		s.abortJoin()
		metrics.JoinFailures.WithLabelValues("transport").Inc()
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("Join request did not complete.")
		return Outcome{Err: asCustomError(err)}
	}

	if !res.Success {
		s.abortJoin()
		metrics.JoinFailures.WithLabelValues("rejected").Inc()
		s.logger.Info().Str("room_id", roomID).Str("reason", res.Error).Msg("Join rejected by server.")
		return Outcome{Err: errs.NewError(errs.ErrJoinRejected, res.Error)}
	}

	s.mu.Lock()
	if s.phase != PhaseJoining {
		// The session was reset (disconnect or logout) while the
		// acknowledgment was in flight.
		s.mu.Unlock()
		metrics.JoinFailures.WithLabelValues("disconnected").Inc()
		return Outcome{Err: errs.NewError(errs.ErrDisconnected)}
	}
	s.phase = PhaseJoined
	s.currentID = roomID
	s.roster = append([]user.User(nil), res.Participants...)
	s.mu.Unlock()

	if s.browser != nil {
		s.browser.SetRoomBrowserVisible(false)
	}

	s.logger.Info().
		Str("room_id", roomID).
		Int("roster_size", len(res.Participants)).
		Msg("Joined room.")

	return Outcome{Success: true}
}

// JoinListed is the casual-browse path used when a room is selected from the
// directory listing. Private rooms are refused here outright: they may only be
// entered through JoinRoom with an explicitly supplied id. Rooms that merely
// require a password need a non-empty password from the preceding prompt.
func (s *Session) JoinListed(ctx context.Context, r Room, password string) Outcome {
	if r.IsPrivate {
		s.logger.Info().Str("room_id", r.ID).Msg("Refusing browse-join of a private room.")
		return Outcome{Err: errs.NewError(errs.ErrPrivateRoom)}
	}

	if r.HasPassword && strings.TrimSpace(password) == "" {
		return Outcome{Err: errs.NewError(errs.ErrPasswordRequired)}
	}

	return s.JoinRoom(ctx, r.ID, password)
}

// LeaveRoom publishes a leave notification and unconditionally clears the
// CurrentRoomRef. The server is not required to acknowledge. The cursor layer
// is departed through the registered leave hooks and the room browser is
// restored.
func (s *Session) LeaveRoom(roomID string) {
	if err := s.ch.Leave(roomID); err != nil {
		// Fire-and-forget: an absent channel still clears local state.
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("Leave publish failed.")
	}

	s.mu.Lock()
	s.phase = PhaseIdle
	s.currentID = ""
	s.roster = nil
	s.mu.Unlock()

	for _, fn := range s.onLeave {
		fn(roomID)
	}

	if s.browser != nil {
		s.browser.SetRoomBrowserVisible(true)
	}

	s.logger.Info().Str("room_id", roomID).Msg("Left room.")
}

// DeleteRoom publishes a delete request. The authoritative removal arrives
// later through the directory's room_deleted event; nothing is removed locally.
func (s *Session) DeleteRoom(roomID string) {
	if err := s.ch.Delete(roomID); err != nil {
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("Delete publish failed.")
		return
	}

	s.logger.Info().Str("room_id", roomID).Msg("Delete room request published.")
}

// HandleParticipantJoined applies a server-pushed roster addition for the
// currently joined room. Events for other rooms are ignored.
func (s *Session) HandleParticipantJoined(roomID string, u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseJoined || s.currentID != roomID {
		return
	}

	for _, existing := range s.roster {
		if existing.ID == u.ID {
			return
		}
	}

	next := make([]user.User, len(s.roster), len(s.roster)+1)
	copy(next, s.roster)
	s.roster = append(next, u)
}

// HandleParticipantLeft applies a server-pushed roster removal for the
// currently joined room.
func (s *Session) HandleParticipantLeft(roomID string, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseJoined || s.currentID != roomID {
		return
	}

	next := make([]user.User, 0, len(s.roster))
	for _, existing := range s.roster {
		if existing.ID != userID {
			next = append(next, existing)
		}
	}
	s.roster = next
}

// InRoster reports whether the given user is a participant of the currently
// joined room. It reports false when no room is joined.
func (s *Session) InRoster(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.phase != PhaseJoined {
		return false
	}

	for _, existing := range s.roster {
		if existing.ID == userID {
			return true
		}
	}
	return false
}

// CurrentRoomID returns the id of the joined room and whether one is joined.
func (s *Session) CurrentRoomID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.currentID, s.phase == PhaseJoined
}

// Phase returns the current membership phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.phase
}

// Roster returns a copy of the current participant roster.
func (s *Session) Roster() []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]user.User(nil), s.roster...)
}

// Snapshot returns a read-only projection for the status endpoint.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Phase:         s.phase.String(),
		CurrentRoomID: s.currentID,
		Roster:        append([]user.User(nil), s.roster...),
	}
}

// Reset clears all membership state without publishing anything. Called when
// the channel is torn down so no stale room state survives a disconnect.
func (s *Session) Reset() {
	s.mu.Lock()
	s.phase = PhaseIdle
	s.currentID = ""
	s.roster = nil
	s.mu.Unlock()

	if s.browser != nil {
		s.browser.SetRoomBrowserVisible(true)
	}
}

// abortJoin returns the session to Idle after a failed join, unless another
// task already moved it on.
func (s *Session) abortJoin() {
	s.mu.Lock()
	if s.phase == PhaseJoining {
		s.phase = PhaseIdle
	}
	s.mu.Unlock()
}

// asCustomError maps channel errors onto the client error taxonomy.
func asCustomError(err error) *errs.CustomError {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}
	return errs.NewError(errs.ErrUnknown, err)
}
