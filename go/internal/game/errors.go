package game

import "errors"

// Bid rejections. State is unchanged when any of these is returned.
var (
	ErrNegativeBid         = errors.New("bid is negative")
	ErrBidExceedsTokens    = errors.New("bid exceeds available tokens")
	ErrNotBiddingPhase     = errors.New("not in bidding phase")
	ErrBidAlreadySubmitted = errors.New("bid already submitted this round")
)

// Action phase rejections.
var (
	ErrNotYourTurn           = errors.New("not your turn")
	ErrInvalidAction         = errors.New("invalid action")
	ErrActionAlreadySelected = errors.New("action already selected this round")
	ErrQuestionNotSelected   = errors.New("question action not selected")
	ErrTruthNotSelected      = errors.New("truth action not selected")
)

// Arrangement and adjudication failures.
var (
	ErrOpponentArrangementMissing = errors.New("opponent arrangement missing")
	ErrArrangementLocked          = errors.New("arrangement already saved for this game")
	ErrInvalidArrangement         = errors.New("invalid card arrangement")
	ErrEmptyGuess                 = errors.New("guess is empty")
)

// ErrGameOver is returned for any game action after the game has been won.
var ErrGameOver = errors.New("game is over")

// IsBidRejection reports whether err is one of the bid validation rejections.
func IsBidRejection(err error) bool {
	return errors.Is(err, ErrNegativeBid) ||
		errors.Is(err, ErrBidExceedsTokens) ||
		errors.Is(err, ErrNotBiddingPhase) ||
		errors.Is(err, ErrBidAlreadySubmitted)
}
