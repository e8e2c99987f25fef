package game

import "github.com/mcdev12/truthbid/go/internal/models"

// BidResolution summarizes a round once both bids are in.
type BidResolution struct {
	HostBid     int               `json:"hostBid"`
	GuestBid    int               `json:"guestBid"`
	HostTokens  int               `json:"hostTokens"`
	GuestTokens int               `json:"guestTokens"`
	IsTie       bool              `json:"isTie"`
	Winner      models.PlayerRole `json:"winner,omitempty"`
	Phase       models.Phase      `json:"currentPhase"`
}

// ValidateBid reports why role may not bid amount, or nil.
func (e *Engine) ValidateBid(state *models.GameState, role models.PlayerRole, amount int) error {
	if state.GameOver {
		return ErrGameOver
	}
	player := state.Player(role)
	switch {
	case amount < 0:
		return ErrNegativeBid
	case amount > player.Tokens:
		return ErrBidExceedsTokens
	case state.Phase != models.PhaseBidding:
		return ErrNotBiddingPhase
	case player.HasBid():
		return ErrBidAlreadySubmitted
	}
	return nil
}

// SubmitBid stores role's bid and resolves the round when it completes the
// pair. The returned resolution is nil while the opponent has not bid yet.
// Resolution depends only on the two stored bids, so submission order does
// not affect the outcome.
func (e *Engine) SubmitBid(state *models.GameState, role models.PlayerRole, amount int) (*BidResolution, error) {
	if err := e.ValidateBid(state, role, amount); err != nil {
		return nil, err
	}

	bid := amount
	state.Player(role).CurrentBid = &bid

	if !state.Host.HasBid() || !state.Guest.HasBid() {
		return nil, nil
	}
	return e.resolveBids(state), nil
}

func (e *Engine) resolveBids(state *models.GameState) *BidResolution {
	hostBid := *state.Host.CurrentBid
	guestBid := *state.Guest.CurrentBid

	state.Host.Tokens -= hostBid
	state.Guest.Tokens -= guestBid

	// The bonus is paid every resolved round, win or tie.
	state.Host.Tokens += e.rules.RoundBonus
	state.Guest.Tokens += e.rules.RoundBonus

	if hostBid == guestBid {
		state.IsTie = true
		state.BidWinner = ""
	} else {
		state.IsTie = false
		if hostBid > guestBid {
			state.BidWinner = models.RoleHost
		} else {
			state.BidWinner = models.RoleGuest
		}
		state.Phase = models.PhaseAction
		state.SelectedAction = ""
	}
	state.ClearBids()

	return &BidResolution{
		HostBid:     hostBid,
		GuestBid:    guestBid,
		HostTokens:  state.Host.Tokens,
		GuestTokens: state.Guest.Tokens,
		IsTie:       state.IsTie,
		Winner:      state.BidWinner,
		Phase:       state.Phase,
	}
}
