// Package orchestrator routes client events to the room registry and the game
// engine, and turns their results into outbound events.
//
// Every event for a room is handled with that room's session lock held, from
// role resolution through state mutation to enqueueing the outbound events.
// Events of one room are therefore applied one at a time and their broadcasts
// leave in the same order.
package orchestrator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/truthbid/go/internal/events"
	"github.com/mcdev12/truthbid/go/internal/game"
	"github.com/mcdev12/truthbid/go/internal/models"
	"github.com/mcdev12/truthbid/go/internal/outbox"
	"github.com/mcdev12/truthbid/go/internal/room"
	"github.com/rs/zerolog/log"
)

// Emitter delivers an outbound event to one connection. Implementations must
// not block.
type Emitter interface {
	Send(connectionID string, event *events.Outbound)
}

// OutboxApp records domain events for asynchronous publication.
type OutboxApp interface {
	Record(roomCode, eventType string, payload any)
}

type noopOutbox struct{}

func (noopOutbox) Record(string, string, any) {}

// Config holds orchestrator timing.
type Config struct {
	NewRoundDelay time.Duration
}

// DefaultConfig returns the standard three second reveal delay.
func DefaultConfig() Config {
	return Config{
		NewRoundDelay: 3 * time.Second,
	}
}

// Orchestrator is the event dispatcher for all rooms.
type Orchestrator struct {
	registry *room.Registry
	engine   *game.Engine
	emitter  Emitter
	outbox   OutboxApp
	rounds   *RoundScheduler
	clock    clockwork.Clock
	config   Config

	// memberships maps a connection to the room it is seated in.
	memberships   map[string]string
	membershipsMu sync.Mutex
}

// NewOrchestrator wires the dispatcher. outbox may be nil.
func NewOrchestrator(registry *room.Registry, engine *game.Engine, emitter Emitter, outboxApp OutboxApp, config Config) *Orchestrator {
	if outboxApp == nil {
		outboxApp = noopOutbox{}
	}
	o := &Orchestrator{
		registry:    registry,
		engine:      engine,
		emitter:     emitter,
		outbox:      outboxApp,
		clock:       registry.Clock(),
		config:      config,
		memberships: make(map[string]string),
	}
	o.rounds = NewRoundScheduler(registry, engine, o.announceRound)
	return o
}

// Rounds returns the round scheduler.
func (o *Orchestrator) Rounds() *RoundScheduler {
	return o.rounds
}

// HandleEvent processes one inbound event from connectionID. Events from a
// single connection must be passed in the order they were received.
func (o *Orchestrator) HandleEvent(ctx context.Context, connectionID string, in events.Inbound) {
	log.Debug().
		Str("connection_id", connectionID).
		Str("event_type", in.Event).
		Msg("handling client event")

	switch in.Event {
	case events.CreateRoom:
		var p events.CreateRoomPayload
		if o.decode(connectionID, in, &p) {
			o.handleCreateRoom(connectionID, p)
		}
	case events.JoinRoom:
		var p events.JoinRoomPayload
		if o.decode(connectionID, in, &p) {
			o.handleJoinRoom(connectionID, p)
		}
	case events.PlayerReady:
		var p events.PlayerReadyPayload
		if o.decode(connectionID, in, &p) {
			o.handlePlayerReady(connectionID, p)
		}
	case events.StartGame:
		var p events.RoomPayload
		if o.decode(connectionID, in, &p) {
			o.handleStartGame(connectionID, p)
		}
	case events.CardsArranged:
		var p events.CardsArrangedPayload
		if o.decode(connectionID, in, &p) {
			o.handleCardsArranged(connectionID, p)
		}
	case events.SaveArrangedCards:
		var p events.SaveArrangedCardsPayload
		if o.decode(connectionID, in, &p) {
			o.handleSaveArrangedCards(connectionID, p)
		}
	case events.SubmitBid:
		var p events.SubmitBidPayload
		if o.decode(connectionID, in, &p) {
			o.handleSubmitBid(connectionID, p)
		}
	case events.SelectAction:
		var p events.SelectActionPayload
		if o.decode(connectionID, in, &p) {
			o.handleSelectAction(connectionID, p)
		}
	case events.SubmitTruthGuess:
		var p events.SubmitTruthGuessPayload
		if o.decode(connectionID, in, &p) {
			o.handleSubmitTruthGuess(connectionID, p)
		}
	case events.StartNewRound:
		var p events.RoomPayload
		if o.decode(connectionID, in, &p) {
			o.handleStartNewRound(connectionID, p)
		}
	default:
		log.Warn().
			Str("connection_id", connectionID).
			Str("event_type", in.Event).
			Msg("unknown event type - ignoring")
	}
}

func (o *Orchestrator) decode(connectionID string, in events.Inbound, target any) bool {
	if len(in.Data) == 0 {
		in.Data = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(in.Data, target); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", connectionID).
			Str("event_type", in.Event).
			Msg("malformed event payload")
		o.sendError(connectionID, errMalformed)
		return false
	}
	return true
}

// Disconnect handles a closed connection. A departing host closes the room;
// a departing guest frees the guest seat.
func (o *Orchestrator) Disconnect(connectionID string) {
	code, ok := o.leave(connectionID)
	if !ok {
		return
	}
	o.vacate(connectionID, code)
}

// NotifyExpired tells the participants of a swept room that it is gone. It
// is called by the expiry sweep with the session locked, before the room is
// deleted.
func (o *Orchestrator) NotifyExpired(exp room.Expiry) {
	for _, id := range exp.ConnectionIDs {
		o.emitter.Send(id, o.frame(events.RoomExpired, nil))
		o.leaveIf(id, exp.Code)
	}
	o.outbox.Record(exp.Code, outbox.EventRoomClosed, outbox.RoomClosedPayload{Reason: string(exp.Reason)})
}

func (o *Orchestrator) vacate(connectionID, code string) {
	sess, ok := o.registry.Lookup(code)
	if !ok {
		return
	}

	sess.Lock()
	defer sess.Unlock()

	role, ok := sess.RoleOf(connectionID)
	if !ok || sess.Closed() {
		return
	}

	if role == models.RoleHost {
		if guest, ok := sess.Guest(); ok {
			o.emitter.Send(guest.ConnectionID, o.frame(events.HostDisconnected, nil))
			o.leaveIf(guest.ConnectionID, code)
		}
		o.registry.Delete(code)
		o.outbox.Record(code, outbox.EventRoomClosed, outbox.RoomClosedPayload{
			SessionID: sess.ID.String(),
			Reason:    "host_disconnected",
		})
		log.Info().Str("room_code", code).Msg("room closed (host disconnected)")
		return
	}

	sess.RemoveGuest()
	sess.Touch(o.clock.Now())
	o.emitter.Send(sess.Host().ConnectionID, o.frame(events.GuestDisconnected, nil))
	log.Info().Str("room_code", code).Msg("guest left room")
}

func (o *Orchestrator) join(connectionID, code string) {
	o.membershipsMu.Lock()
	o.memberships[connectionID] = code
	o.membershipsMu.Unlock()
}

func (o *Orchestrator) leave(connectionID string) (string, bool) {
	o.membershipsMu.Lock()
	defer o.membershipsMu.Unlock()
	code, ok := o.memberships[connectionID]
	delete(o.memberships, connectionID)
	return code, ok
}

// leaveIf drops connectionID's membership only if it still points at code.
func (o *Orchestrator) leaveIf(connectionID, code string) {
	o.membershipsMu.Lock()
	defer o.membershipsMu.Unlock()
	if o.memberships[connectionID] == code {
		delete(o.memberships, connectionID)
	}
}

func (o *Orchestrator) membership(connectionID string) (string, bool) {
	o.membershipsMu.Lock()
	defer o.membershipsMu.Unlock()
	code, ok := o.memberships[connectionID]
	return code, ok
}

// seated looks up code, locks the session, and resolves connectionID's seat.
// On success the session is returned locked and the caller must Unlock it.
// Unknown rooms and non-participants are silent no-ops.
func (o *Orchestrator) seated(connectionID, rawCode string, eventType string) (*room.Session, models.PlayerRole, bool) {
	code := room.NormalizeCode(rawCode)
	sess, ok := o.registry.Lookup(code)
	if !ok {
		log.Warn().
			Str("room_code", code).
			Str("connection_id", connectionID).
			Str("event_type", eventType).
			Msg("room not found")
		return nil, "", false
	}

	sess.Lock()
	if sess.Closed() {
		sess.Unlock()
		return nil, "", false
	}
	role, ok := sess.RoleOf(connectionID)
	if !ok {
		sess.Unlock()
		log.Warn().
			Str("room_code", code).
			Str("connection_id", connectionID).
			Str("event_type", eventType).
			Msg("connection is not seated in room")
		return nil, "", false
	}
	sess.Touch(o.clock.Now())
	return sess, role, true
}

// broadcast sends event to every participant of sess. Caller holds the lock.
func (o *Orchestrator) broadcast(sess *room.Session, event *events.Outbound) {
	for _, id := range sess.ConnectionIDs() {
		o.emitter.Send(id, event)
	}
}

// sendToRole sends event to the participant at role, if seated.
func (o *Orchestrator) sendToRole(sess *room.Session, role models.PlayerRole, event *events.Outbound) {
	if p, ok := sess.Participant(role); ok {
		o.emitter.Send(p.ConnectionID, event)
	}
}

// frame builds an outbound event stamped with the orchestrator's clock.
func (o *Orchestrator) frame(event string, data any) *events.Outbound {
	return events.NewAt(event, data, o.clock.Now())
}

func (o *Orchestrator) sendError(connectionID string, err error) {
	o.emitter.Send(connectionID, o.frame(events.Error, events.ErrorPayload{Message: clientMessage(err)}))
}

func (o *Orchestrator) sendBidError(connectionID string, err error) {
	o.emitter.Send(connectionID, o.frame(events.BidError, events.ErrorPayload{Message: clientMessage(err)}))
}
