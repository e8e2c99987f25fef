package events

import "github.com/mcdev12/truthbid/go/internal/models"

// Inbound payloads

type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// RoomPayload is the payload of events that carry only a room code.
type RoomPayload struct {
	RoomCode string `json:"roomCode"`
}

type PlayerReadyPayload struct {
	RoomCode string `json:"roomCode"`
	IsReady  bool   `json:"isReady"`
}

type CardsArrangedPayload struct {
	RoomCode string `json:"roomCode"`
	Arranged bool   `json:"arranged"`
}

type SaveArrangedCardsPayload struct {
	RoomCode string        `json:"roomCode"`
	Cards    []models.Card `json:"cards"`
}

type SubmitBidPayload struct {
	RoomCode string `json:"roomCode"`
	Bid      *int   `json:"bid"`
}

type SelectActionPayload struct {
	RoomCode string        `json:"roomCode"`
	Action   models.Action `json:"action"`
}

type SubmitTruthGuessPayload struct {
	RoomCode string `json:"roomCode"`
	Guess    string `json:"guess"`
}

// Outbound payloads

type RoomCreatedPayload struct {
	RoomCode   string `json:"roomCode"`
	IsHost     bool   `json:"isHost"`
	PlayerName string `json:"playerName"`
}

type RoomJoinedPayload struct {
	RoomCode   string `json:"roomCode"`
	IsHost     bool   `json:"isHost"`
	HostName   string `json:"hostName"`
	PlayerName string `json:"playerName"`
}

type PlayerJoinedPayload struct {
	PlayerName string `json:"playerName"`
	IsReady    bool   `json:"isReady"`
}

type OpponentReadyPayload struct {
	IsReady bool `json:"isReady"`
}

type GameStartPayload struct {
	GameState models.GameSnapshot `json:"gameState"`
}

type OpponentArrangedPayload struct {
	Arranged bool `json:"arranged"`
}

type BidSubmittedPayload struct {
	Player models.PlayerRole `json:"player"`
}

type BidTiePayload struct {
	HostBid     int `json:"hostBid"`
	GuestBid    int `json:"guestBid"`
	HostTokens  int `json:"hostTokens"`
	GuestTokens int `json:"guestTokens"`
}

type BidCompletePayload struct {
	Winner       models.PlayerRole `json:"winner"`
	HostBid      int               `json:"hostBid"`
	GuestBid     int               `json:"guestBid"`
	HostTokens   int               `json:"hostTokens"`
	GuestTokens  int               `json:"guestTokens"`
	CurrentPhase models.Phase      `json:"currentPhase"`
}

type ActionSelectedPayload struct {
	Player models.PlayerRole `json:"player"`
	Action models.Action     `json:"action"`
}

type RoundStartedPayload struct {
	RoundNumber int `json:"roundNumber"`
	HostTokens  int `json:"hostTokens"`
	GuestTokens int `json:"guestTokens"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
