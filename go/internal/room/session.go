package room

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/truthbid/go/internal/models"
)

// Session is one room's authoritative game instance. All reads and writes of
// its participants and game state must happen between Lock and Unlock; that
// lock is what serializes the events of a room.
type Session struct {
	ID        uuid.UUID
	Code      string
	CreatedAt time.Time

	mu           sync.Mutex
	host         models.Participant
	guest        *models.Participant
	game         *models.GameState
	lastActivity time.Time

	// pending is the cancel handle of a scheduled new round. It has its own
	// lock so deletion can cancel it while the session lock is held.
	pendingMu  sync.Mutex
	pending    func()
	pendingSeq uint64

	closed atomic.Bool
}

func newSession(code string, host models.Participant, game *models.GameState, now time.Time) *Session {
	return &Session{
		ID:           uuid.New(),
		Code:         code,
		CreatedAt:    now,
		host:         host,
		game:         game,
		lastActivity: now,
	}
}

// Lock acquires the session's lock
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session's lock
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// The accessors below must be called with the lock held.

// Host returns the host participant.
func (s *Session) Host() models.Participant {
	return s.host
}

// Guest returns the guest participant, if any.
func (s *Session) Guest() (models.Participant, bool) {
	if s.guest == nil {
		return models.Participant{}, false
	}
	return *s.guest, true
}

// Game returns the live game state.
func (s *Session) Game() *models.GameState {
	return s.game
}

// ResetGame replaces the game state for a new game.
func (s *Session) ResetGame(game *models.GameState) {
	s.game = game
}

// RoleOf resolves a connection to its seat in this session.
func (s *Session) RoleOf(connectionID string) (models.PlayerRole, bool) {
	switch {
	case s.host.ConnectionID == connectionID:
		return models.RoleHost, true
	case s.guest != nil && s.guest.ConnectionID == connectionID:
		return models.RoleGuest, true
	}
	return "", false
}

// Participant returns the participant seated at role.
func (s *Session) Participant(role models.PlayerRole) (models.Participant, bool) {
	if role == models.RoleHost {
		return s.host, true
	}
	return s.Guest()
}

// ConnectionIDs returns the connections of every seated participant.
func (s *Session) ConnectionIDs() []string {
	ids := []string{s.host.ConnectionID}
	if s.guest != nil {
		ids = append(ids, s.guest.ConnectionID)
	}
	return ids
}

// Join seats p as the guest. Display names are compared case-insensitively
// against the host only at join time.
func (s *Session) Join(p models.Participant) error {
	if s.guest != nil {
		return ErrRoomFull
	}
	if strings.EqualFold(strings.TrimSpace(s.host.DisplayName), strings.TrimSpace(p.DisplayName)) {
		return ErrNameTaken
	}
	s.guest = &p
	return nil
}

// RemoveGuest frees the guest seat.
func (s *Session) RemoveGuest() {
	s.guest = nil
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.lastActivity = now
}

// LastActivity returns the time of the last mutating event.
func (s *Session) LastActivity() time.Time {
	return s.lastActivity
}

// SetPendingRound stores the cancel handle of a scheduled new round,
// cancelling any previous one. The returned token identifies this handle to
// ClearPendingRound.
func (s *Session) SetPendingRound(cancel func()) uint64 {
	s.pendingMu.Lock()
	prev := s.pending
	s.pending = cancel
	s.pendingSeq++
	token := s.pendingSeq
	s.pendingMu.Unlock()

	if prev != nil {
		prev()
	}
	return token
}

// ClearPendingRound drops the handle identified by token without cancelling
// it, and reports whether it was still the current one. The scheduled task
// calls this when it fires.
func (s *Session) ClearPendingRound(token uint64) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if s.pending == nil || s.pendingSeq != token {
		return false
	}
	s.pending = nil
	return true
}

// CancelPendingRound cancels a scheduled new round, if any.
func (s *Session) CancelPendingRound() {
	s.pendingMu.Lock()
	cancel := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// RoundPending reports whether a new round is scheduled.
func (s *Session) RoundPending() bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return s.pending != nil
}

// Closed reports whether the session has been removed from its registry.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

func (s *Session) close() {
	s.closed.Store(true)
	s.CancelPendingRound()
}
