// Package game implements the rules of a two-player bidding round: bid
// resolution, the action phase, and truth adjudication. Every operation is a
// synchronous mutation of a *models.GameState that returns a result for the
// caller to broadcast; callers must serialize access to a given state.
package game

import "github.com/mcdev12/truthbid/go/internal/models"

// Engine applies a rule set to game states.
type Engine struct {
	rules Rules
}

// NewEngine creates an engine for rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() Rules {
	return e.rules
}

// NewGame returns a fresh game state.
func (e *Engine) NewGame() *models.GameState {
	return models.NewGameState(e.rules.StartingTokens)
}

// RoundSummary is broadcast when a new round begins.
type RoundSummary struct {
	RoundNumber int `json:"roundNumber"`
	HostTokens  int `json:"hostTokens"`
	GuestTokens int `json:"guestTokens"`
}

// StartNewRound advances state to the next bidding round. Tokens and
// arrangements carry over.
func (e *Engine) StartNewRound(state *models.GameState) RoundSummary {
	state.RoundNumber++
	state.Phase = models.PhaseBidding
	state.BidWinner = ""
	state.SelectedAction = ""
	state.IsTie = false
	state.ClearBids()

	return RoundSummary{
		RoundNumber: state.RoundNumber,
		HostTokens:  state.Host.Tokens,
		GuestTokens: state.Guest.Tokens,
	}
}

// resetToBidding returns the action phase to bidding without advancing the
// round counter.
func resetToBidding(state *models.GameState) {
	state.Phase = models.PhaseBidding
	state.BidWinner = ""
	state.SelectedAction = ""
	state.ClearBids()
}
