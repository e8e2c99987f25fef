package orchestrator

import (
	"strings"

	"github.com/mcdev12/truthbid/go/internal/events"
	"github.com/mcdev12/truthbid/go/internal/game"
	"github.com/mcdev12/truthbid/go/internal/models"
	"github.com/mcdev12/truthbid/go/internal/outbox"
	"github.com/mcdev12/truthbid/go/internal/room"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleCreateRoom(connectionID string, p events.CreateRoomPayload) {
	name := strings.TrimSpace(p.PlayerName)
	if name == "" {
		o.reject(connectionID, events.CreateRoom, room.ErrInvalidName)
		return
	}

	previous, seated := o.membership(connectionID)

	host := models.Participant{ConnectionID: connectionID, DisplayName: name}
	sess, err := o.registry.Create(host, o.engine.NewGame())
	if err != nil {
		log.Error().
			Err(err).
			Str("connection_id", connectionID).
			Msg("failed to create room")
		o.sendError(connectionID, err)
		return
	}

	sess.Lock()
	o.join(connectionID, sess.Code)
	o.emitter.Send(connectionID, o.frame(events.RoomCreated, events.RoomCreatedPayload{
		RoomCode:   sess.Code,
		IsHost:     true,
		PlayerName: name,
	}))
	o.outbox.Record(sess.Code, outbox.EventRoomCreated, outbox.RoomCreatedPayload{
		SessionID: sess.ID.String(),
		HostName:  name,
	})
	sess.Unlock()

	log.Info().
		Str("room_code", sess.Code).
		Str("connection_id", connectionID).
		Msg("room created")

	// A connection is seated in at most one room.
	if seated {
		o.vacate(connectionID, previous)
	}
}

func (o *Orchestrator) handleJoinRoom(connectionID string, p events.JoinRoomPayload) {
	name := strings.TrimSpace(p.PlayerName)
	code := room.NormalizeCode(p.RoomCode)
	if name == "" || code == "" {
		o.reject(connectionID, events.JoinRoom, errInvalidJoin)
		return
	}

	sess, ok := o.registry.Lookup(code)
	if !ok {
		o.reject(connectionID, events.JoinRoom, room.ErrRoomNotFound)
		return
	}

	previous, seated := o.membership(connectionID)
	if seated && previous == code {
		o.reject(connectionID, events.JoinRoom, room.ErrRoomFull)
		return
	}

	if !o.seatGuest(sess, connectionID, name) {
		return
	}

	// The previous room is left only once the new seat is taken.
	if seated {
		o.vacate(connectionID, previous)
	}
}

// seatGuest joins connectionID to sess as guest and reports whether it did.
// A rejected join leaves every room unchanged.
func (o *Orchestrator) seatGuest(sess *room.Session, connectionID, name string) bool {
	sess.Lock()
	defer sess.Unlock()

	if sess.Closed() {
		o.reject(connectionID, events.JoinRoom, room.ErrRoomNotFound)
		return false
	}
	if err := sess.Join(models.Participant{ConnectionID: connectionID, DisplayName: name}); err != nil {
		o.reject(connectionID, events.JoinRoom, err)
		return false
	}
	sess.Touch(o.clock.Now())
	o.join(connectionID, sess.Code)

	host := sess.Host()
	o.emitter.Send(connectionID, o.frame(events.RoomJoined, events.RoomJoinedPayload{
		RoomCode:   sess.Code,
		IsHost:     false,
		HostName:   host.DisplayName,
		PlayerName: name,
	}))
	o.emitter.Send(host.ConnectionID, o.frame(events.PlayerJoined, events.PlayerJoinedPayload{
		PlayerName: name,
		IsReady:    false,
	}))

	log.Info().
		Str("room_code", sess.Code).
		Str("connection_id", connectionID).
		Msg("guest joined room")
	return true
}

func (o *Orchestrator) handlePlayerReady(connectionID string, p events.PlayerReadyPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.PlayerReady)
	if !ok {
		return
	}
	defer sess.Unlock()

	sess.Game().Player(role).Ready = p.IsReady
	o.sendToRole(sess, role.Opponent(), o.frame(events.OpponentReady, events.OpponentReadyPayload{
		IsReady: p.IsReady,
	}))
}

func (o *Orchestrator) handleStartGame(connectionID string, p events.RoomPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.StartGame)
	if !ok {
		return
	}
	defer sess.Unlock()

	if role != models.RoleHost {
		o.reject(connectionID, events.StartGame, errOnlyHostStartsGame)
		return
	}

	sess.CancelPendingRound()
	sess.ResetGame(o.engine.NewGame())
	o.broadcast(sess, o.frame(events.GameStart, events.GameStartPayload{
		GameState: sess.Game().Snapshot(),
	}))

	payload := outbox.GameStartedPayload{
		SessionID: sess.ID.String(),
		HostName:  sess.Host().DisplayName,
	}
	if guest, ok := sess.Guest(); ok {
		payload.GuestName = guest.DisplayName
	}
	o.outbox.Record(sess.Code, outbox.EventGameStarted, payload)

	log.Info().Str("room_code", sess.Code).Msg("game started")
}

func (o *Orchestrator) handleCardsArranged(connectionID string, p events.CardsArrangedPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.CardsArranged)
	if !ok {
		return
	}
	defer sess.Unlock()

	state := sess.Game()
	state.Player(role).CardsArranged = p.Arranged
	o.sendToRole(sess, role.Opponent(), o.frame(events.OpponentArranged, events.OpponentArrangedPayload{
		Arranged: p.Arranged,
	}))
	if state.Host.CardsArranged && state.Guest.CardsArranged {
		o.broadcast(sess, o.frame(events.BothPlayersArranged, nil))
	}
}

func (o *Orchestrator) handleSaveArrangedCards(connectionID string, p events.SaveArrangedCardsPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.SaveArrangedCards)
	if !ok {
		return
	}
	defer sess.Unlock()

	if err := o.engine.SaveArrangement(sess.Game(), role, p.Cards); err != nil {
		o.reject(connectionID, events.SaveArrangedCards, err)
		return
	}

	log.Debug().
		Str("room_code", sess.Code).
		Str("role", string(role)).
		Msg("arrangement saved")
}

func (o *Orchestrator) handleSubmitBid(connectionID string, p events.SubmitBidPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.SubmitBid)
	if !ok {
		return
	}
	defer sess.Unlock()

	if p.Bid == nil {
		o.rejectBid(connectionID, errMissingBid)
		return
	}
	if sess.RoundPending() {
		o.rejectBid(connectionID, errRoundPending)
		return
	}

	state := sess.Game()
	resolution, err := o.engine.SubmitBid(state, role, *p.Bid)
	if err != nil {
		o.rejectBid(connectionID, err)
		return
	}

	o.broadcast(sess, o.frame(events.BidSubmitted, events.BidSubmittedPayload{Player: role}))
	if resolution == nil {
		return
	}

	if resolution.IsTie {
		o.broadcast(sess, o.frame(events.BidTie, events.BidTiePayload{
			HostBid:     resolution.HostBid,
			GuestBid:    resolution.GuestBid,
			HostTokens:  resolution.HostTokens,
			GuestTokens: resolution.GuestTokens,
		}))
	} else {
		o.broadcast(sess, o.frame(events.BidComplete, events.BidCompletePayload{
			Winner:       resolution.Winner,
			HostBid:      resolution.HostBid,
			GuestBid:     resolution.GuestBid,
			HostTokens:   resolution.HostTokens,
			GuestTokens:  resolution.GuestTokens,
			CurrentPhase: resolution.Phase,
		}))
	}

	o.outbox.Record(sess.Code, outbox.EventBidResolved, outbox.BidResolvedPayload{
		Round:       state.RoundNumber,
		HostBid:     resolution.HostBid,
		GuestBid:    resolution.GuestBid,
		HostTokens:  resolution.HostTokens,
		GuestTokens: resolution.GuestTokens,
		Tie:         resolution.IsTie,
		Winner:      string(resolution.Winner),
	})

	log.Info().
		Str("room_code", sess.Code).
		Int("round", state.RoundNumber).
		Bool("tie", resolution.IsTie).
		Str("winner", string(resolution.Winner)).
		Msg("bids resolved")
}

func (o *Orchestrator) handleSelectAction(connectionID string, p events.SelectActionPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.SelectAction)
	if !ok {
		return
	}
	defer sess.Unlock()

	if err := o.engine.SelectAction(sess.Game(), role, p.Action); err != nil {
		o.reject(connectionID, events.SelectAction, err)
		return
	}
	o.broadcast(sess, o.frame(events.ActionSelected, events.ActionSelectedPayload{
		Player: role,
		Action: p.Action,
	}))
}

func (o *Orchestrator) handleSubmitTruthGuess(connectionID string, p events.SubmitTruthGuessPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.SubmitTruthGuess)
	if !ok {
		return
	}
	defer sess.Unlock()

	state := sess.Game()
	round := state.RoundNumber
	outcome, err := o.engine.SubmitGuess(state, role, p.Guess)
	if err != nil {
		o.reject(connectionID, events.SubmitTruthGuess, err)
		return
	}

	o.emitter.Send(connectionID, o.frame(events.TruthGuessResult, outcome.GuesserResult()))
	o.sendToRole(sess, role.Opponent(), o.frame(events.TruthGuessResult, outcome.OpponentResult()))

	o.outbox.Record(sess.Code, outbox.EventTruthGuessed, outbox.TruthGuessedPayload{
		Round:   round,
		Guesser: string(role),
		Correct: outcome.Correct,
	})

	if !outcome.Correct {
		o.rounds.Schedule(sess, o.config.NewRoundDelay)
		return
	}

	o.recordGameFinished(sess, role)
	log.Info().
		Str("room_code", sess.Code).
		Str("winner", string(role)).
		Int("round", round).
		Msg("game won by truth guess")
}

func (o *Orchestrator) handleStartNewRound(connectionID string, p events.RoomPayload) {
	sess, role, ok := o.seated(connectionID, p.RoomCode, events.StartNewRound)
	if !ok {
		return
	}
	defer sess.Unlock()

	if err := o.engine.CanFinishQuestion(sess.Game(), role); err != nil {
		o.reject(connectionID, events.StartNewRound, err)
		return
	}
	o.rounds.StartNow(sess)
}

// announceRound is called by the round scheduler with the session locked.
func (o *Orchestrator) announceRound(sess *room.Session, summary game.RoundSummary) {
	o.broadcast(sess, o.frame(events.RoundStarted, events.RoundStartedPayload{
		RoundNumber: summary.RoundNumber,
		HostTokens:  summary.HostTokens,
		GuestTokens: summary.GuestTokens,
	}))
	o.outbox.Record(sess.Code, outbox.EventRoundStarted, outbox.RoundStartedPayload{
		Round:       summary.RoundNumber,
		HostTokens:  summary.HostTokens,
		GuestTokens: summary.GuestTokens,
	})
}

func (o *Orchestrator) recordGameFinished(sess *room.Session, winner models.PlayerRole) {
	state := sess.Game()
	payload := outbox.GameFinishedPayload{
		SessionID:   sess.ID.String(),
		HostName:    sess.Host().DisplayName,
		Winner:      string(winner),
		Rounds:      state.RoundNumber,
		HostTokens:  state.Host.Tokens,
		GuestTokens: state.Guest.Tokens,
		FinishedAt:  o.clock.Now(),
	}
	if guest, ok := sess.Guest(); ok {
		payload.GuestName = guest.DisplayName
	}
	if p, ok := sess.Participant(winner); ok {
		payload.WinnerName = p.DisplayName
	}
	o.outbox.Record(sess.Code, outbox.EventGameFinished, payload)
}

// reject logs a validation rejection and reports it to the sender.
func (o *Orchestrator) reject(connectionID, eventType string, err error) {
	log.Warn().
		Err(err).
		Str("connection_id", connectionID).
		Str("event_type", eventType).
		Msg("event rejected")
	o.sendError(connectionID, err)
}

func (o *Orchestrator) rejectBid(connectionID string, err error) {
	log.Warn().
		Err(err).
		Str("connection_id", connectionID).
		Str("event_type", events.SubmitBid).
		Msg("bid rejected")
	o.sendBidError(connectionID, err)
}
