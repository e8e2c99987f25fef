package orchestrator

import (
	"errors"

	"github.com/mcdev12/truthbid/go/internal/game"
	"github.com/mcdev12/truthbid/go/internal/room"
)

var (
	errMalformed          = errors.New("malformed event payload")
	errInvalidJoin        = errors.New("invalid player name or room code")
	errMissingBid         = errors.New("bid is required")
	errRoundPending       = errors.New("new round is starting")
	errOnlyHostStartsGame = errors.New("only the host can start the game")
)

// clientMessages maps internal errors to the message shown to players.
var clientMessages = []struct {
	err error
	msg string
}{
	{errMalformed, "Invalid request"},
	{errInvalidJoin, "Invalid player name or room code"},
	{errMissingBid, "Invalid bid"},
	{errRoundPending, "Round is starting"},
	{errOnlyHostStartsGame, "Only the host can start the game"},
	{room.ErrInvalidName, "Invalid player name"},
	{room.ErrRoomNotFound, "Room not found"},
	{room.ErrRoomFull, "Room is full"},
	{room.ErrNameTaken, "Name already taken in this room"},
	{room.ErrCodeGenerationExhausted, "Failed to create room"},
	{game.ErrNegativeBid, "Bid cannot be negative"},
	{game.ErrBidExceedsTokens, "Bid exceeds your tokens"},
	{game.ErrNotBiddingPhase, "Bidding is closed"},
	{game.ErrBidAlreadySubmitted, "Bid already submitted"},
	{game.ErrNotYourTurn, "Not your turn"},
	{game.ErrInvalidAction, "Invalid action"},
	{game.ErrTruthNotSelected, "Invalid action"},
	{game.ErrActionAlreadySelected, "Action already selected"},
	{game.ErrQuestionNotSelected, "No question in progress"},
	{game.ErrOpponentArrangementMissing, "Opponent cards not found"},
	{game.ErrArrangementLocked, "Cards already arranged"},
	{game.ErrInvalidArrangement, "Invalid card arrangement"},
	{game.ErrEmptyGuess, "Guess is required"},
	{game.ErrGameOver, "Game is over"},
}

func clientMessage(err error) string {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Something went wrong"
}
