package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Domain event types published for every room.
const (
	EventRoomCreated  = "RoomCreated"
	EventRoomClosed   = "RoomClosed"
	EventGameStarted  = "GameStarted"
	EventBidResolved  = "BidResolved"
	EventTruthGuessed = "TruthGuessed"
	EventRoundStarted = "RoundStarted"
	EventGameFinished = "GameFinished"
)

// Event is a domain event waiting to be published.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	RoomCode  string          `json:"room_code"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// RoomCreatedPayload is the payload for a RoomCreated event
type RoomCreatedPayload struct {
	SessionID string `json:"session_id"`
	HostName  string `json:"host_name"`
}

// RoomClosedPayload is the payload for a RoomClosed event
type RoomClosedPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Reason    string `json:"reason"`
}

// GameStartedPayload is the payload for a GameStarted event
type GameStartedPayload struct {
	SessionID string `json:"session_id"`
	HostName  string `json:"host_name"`
	GuestName string `json:"guest_name,omitempty"`
}

// BidResolvedPayload is the payload for a BidResolved event
type BidResolvedPayload struct {
	Round       int    `json:"round"`
	HostBid     int    `json:"host_bid"`
	GuestBid    int    `json:"guest_bid"`
	HostTokens  int    `json:"host_tokens"`
	GuestTokens int    `json:"guest_tokens"`
	Tie         bool   `json:"tie"`
	Winner      string `json:"winner,omitempty"`
}

// TruthGuessedPayload is the payload for a TruthGuessed event. The guess and
// the arrangement are never published.
type TruthGuessedPayload struct {
	Round   int    `json:"round"`
	Guesser string `json:"guesser"`
	Correct bool   `json:"correct"`
}

// RoundStartedPayload is the payload for a RoundStarted event
type RoundStartedPayload struct {
	Round       int `json:"round"`
	HostTokens  int `json:"host_tokens"`
	GuestTokens int `json:"guest_tokens"`
}

// GameFinishedPayload is the payload for a GameFinished event
type GameFinishedPayload struct {
	SessionID   string    `json:"session_id"`
	HostName    string    `json:"host_name"`
	GuestName   string    `json:"guest_name"`
	Winner      string    `json:"winner"`
	WinnerName  string    `json:"winner_name"`
	Rounds      int       `json:"rounds"`
	HostTokens  int       `json:"host_tokens"`
	GuestTokens int       `json:"guest_tokens"`
	FinishedAt  time.Time `json:"finished_at"`
}
