// Package events defines the client protocol: event names and the JSON
// payloads carried in each direction.
package events

import (
	"encoding/json"
	"time"
)

// Inbound event names.
const (
	CreateRoom        = "create-room"
	JoinRoom          = "join-room"
	PlayerReady       = "player-ready"
	StartGame         = "start-game"
	CardsArranged     = "cards-arranged"
	SaveArrangedCards = "save-arranged-cards"
	SubmitBid         = "submit_bid"
	SelectAction      = "select-action"
	SubmitTruthGuess  = "submit_truth_guess"
	StartNewRound     = "start_new_round"
)

// Outbound event names.
const (
	RoomCreated         = "room-created"
	RoomJoined          = "room-joined"
	PlayerJoined        = "player-joined"
	OpponentReady       = "opponent-ready"
	GameStart           = "game-start"
	OpponentArranged    = "cards-arranged"
	BothPlayersArranged = "both-players-arranged"
	BidSubmitted        = "bid_submitted"
	BidTie              = "bid_tie"
	BidComplete         = "bid_complete"
	ActionSelected      = "action_selected"
	RoundStarted        = "round_started"
	TruthGuessResult    = "truth_guess_result"
	HostDisconnected    = "host-disconnected"
	GuestDisconnected   = "guest-disconnected"
	RoomExpired         = "room-expired"
	Error               = "error"
	BidError            = "bid_error"
)

// Inbound is a frame received from a client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Outbound is a frame sent to a client.
type Outbound struct {
	Event     string    `json:"event"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds an outbound frame stamped with the current wall time.
func New(event string, data any) *Outbound {
	return NewAt(event, data, time.Now())
}

// NewAt builds an outbound frame stamped with at.
func NewAt(event string, data any, at time.Time) *Outbound {
	return &Outbound{
		Event:     event,
		Data:      data,
		Timestamp: at.UTC(),
	}
}
