package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/truthbid/go/internal/game"
	"github.com/mcdev12/truthbid/go/internal/room"
	"github.com/rs/zerolog/log"
)

// RoundAnnouncer is called with the session locked after a new round starts.
type RoundAnnouncer func(sess *room.Session, summary game.RoundSummary)

// RoundScheduler starts new rounds, either immediately or after a delay.
type RoundScheduler struct {
	registry *room.Registry
	engine   *game.Engine
	clock    clockwork.Clock
	announce RoundAnnouncer
}

// NewRoundScheduler creates a scheduler that calls announce for every round it
// starts.
func NewRoundScheduler(registry *room.Registry, engine *game.Engine, announce RoundAnnouncer) *RoundScheduler {
	return &RoundScheduler{
		registry: registry,
		engine:   engine,
		clock:    registry.Clock(),
		announce: announce,
	}
}

// StartNow advances sess to a new round and announces it. The caller must
// hold the session lock. Any scheduled round is cancelled first.
func (s *RoundScheduler) StartNow(sess *room.Session) game.RoundSummary {
	sess.CancelPendingRound()
	summary := s.engine.StartNewRound(sess.Game())
	s.announce(sess, summary)
	return summary
}

// Schedule arms a one-shot timer that starts a new round in sess after delay.
// The handle is stored on the session, so deleting the session cancels it.
// When the timer fires the room is looked up again by code; if it is gone or
// has been replaced the task does nothing.
func (s *RoundScheduler) Schedule(sess *room.Session, delay time.Duration) {
	timer := s.clock.NewTimer(delay)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(done) })
	}

	token := sess.SetPendingRound(cancel)
	code, id := sess.Code, sess.ID

	go func() {
		select {
		case <-timer.Chan():
			s.fire(code, id, token)
		case <-done:
			stopAndDrainTimer(timer)
			log.Debug().Str("room_code", code).Msg("scheduled round cancelled")
		}
	}()

	log.Debug().
		Str("room_code", code).
		Dur("delay", delay).
		Msg("scheduled new round")
}

func (s *RoundScheduler) fire(code string, id uuid.UUID, token uint64) {
	sess, ok := s.registry.Lookup(code)
	if !ok || sess.ID != id {
		log.Debug().Str("room_code", code).Msg("scheduled round fired for a removed room - discarding")
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Closed() || !sess.ClearPendingRound(token) {
		return
	}
	summary := s.engine.StartNewRound(sess.Game())
	s.announce(sess, summary)

	log.Info().
		Str("room_code", code).
		Int("round", summary.RoundNumber).
		Msg("new round started")
}

// stopAndDrainTimer safely stops a timer and drains its channel to prevent goroutine leaks.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
