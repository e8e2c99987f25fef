package models

// Phase defines which events a game currently accepts.
type Phase string

const (
	PhaseBidding Phase = "bidding"
	PhaseAction  Phase = "action"
)

// PlayerRole identifies a seat within a session.
type PlayerRole string

const (
	RoleHost  PlayerRole = "host"
	RoleGuest PlayerRole = "guest"
)

// Opponent returns the other seat.
func (r PlayerRole) Opponent() PlayerRole {
	if r == RoleHost {
		return RoleGuest
	}
	return RoleHost
}

// Valid reports whether r names one of the two seats.
func (r PlayerRole) Valid() bool {
	return r == RoleHost || r == RoleGuest
}

// Action is the bid winner's choice for the action phase.
type Action string

const (
	ActionQuestion Action = "question"
	ActionTruth    Action = "truth"
)

// Valid reports whether a is a selectable action.
func (a Action) Valid() bool {
	return a == ActionQuestion || a == ActionTruth
}

// PlayerState holds one seat's per-game data.
type PlayerState struct {
	Ready         bool   `json:"ready"`
	CardsArranged bool   `json:"cardsArranged"`
	Tokens        int    `json:"tokens"`
	CurrentBid    *int   `json:"-"`
	ArrangedCards []Card `json:"-"`
}

// HasBid reports whether a bid is pending resolution.
func (p *PlayerState) HasBid() bool {
	return p.CurrentBid != nil
}

// HasArrangement reports whether the arrangement has been saved for this game.
func (p *PlayerState) HasArrangement() bool {
	return len(p.ArrangedCards) > 0
}

// GameState is the authoritative state of one game.
type GameState struct {
	Phase          Phase
	RoundNumber    int
	Host           PlayerState
	Guest          PlayerState
	BidWinner      PlayerRole // empty unless Phase is action
	SelectedAction Action     // empty until the bid winner chooses
	IsTie          bool
	Winner         PlayerRole
	GameOver       bool
}

// NewGameState returns a fresh game in round 1 with both seats holding
// startingTokens.
func NewGameState(startingTokens int) *GameState {
	return &GameState{
		Phase:       PhaseBidding,
		RoundNumber: 1,
		Host:        PlayerState{Tokens: startingTokens},
		Guest:       PlayerState{Tokens: startingTokens},
	}
}

// Player returns the mutable state for role.
func (g *GameState) Player(role PlayerRole) *PlayerState {
	if role == RoleHost {
		return &g.Host
	}
	return &g.Guest
}

// ClearBids resets both pending bids.
func (g *GameState) ClearBids() {
	g.Host.CurrentBid = nil
	g.Guest.CurrentBid = nil
}

// GameSnapshot is the public view of a game sent to clients. Bid amounts and
// cards are never part of it.
type GameSnapshot struct {
	Phase          Phase      `json:"currentPhase"`
	RoundNumber    int        `json:"roundNumber"`
	HostTokens     int        `json:"hostTokens"`
	GuestTokens    int        `json:"guestTokens"`
	HostHasBid     bool       `json:"hostHasBid"`
	GuestHasBid    bool       `json:"guestHasBid"`
	BidWinner      PlayerRole `json:"bidWinner,omitempty"`
	SelectedAction Action     `json:"selectedAction,omitempty"`
	IsTie          bool       `json:"isTie"`
	Winner         PlayerRole `json:"winner,omitempty"`
	GameOver       bool       `json:"gameOver"`
}

// Snapshot returns the public view of g.
func (g *GameState) Snapshot() GameSnapshot {
	return GameSnapshot{
		Phase:          g.Phase,
		RoundNumber:    g.RoundNumber,
		HostTokens:     g.Host.Tokens,
		GuestTokens:    g.Guest.Tokens,
		HostHasBid:     g.Host.HasBid(),
		GuestHasBid:    g.Guest.HasBid(),
		BidWinner:      g.BidWinner,
		SelectedAction: g.SelectedAction,
		IsTie:          g.IsTie,
		Winner:         g.Winner,
		GameOver:       g.GameOver,
	}
}
