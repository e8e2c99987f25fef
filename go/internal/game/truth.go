package game

import (
	"strconv"
	"strings"

	"github.com/mcdev12/truthbid/go/internal/models"
)

// faceSymbols maps card values to their single-character guess symbol.
var faceSymbols = map[int]string{
	1:  "A",
	10: "T",
	11: "J",
	12: "Q",
	13: "K",
}

// CardSymbol returns the guess symbol for a card value.
func CardSymbol(value int) string {
	if s, ok := faceSymbols[value]; ok {
		return s
	}
	return strconv.Itoa(value)
}

// Canonicalize encodes an arrangement as the string a correct guess must
// match. Suits are ignored.
func Canonicalize(cards []models.Card) string {
	var b strings.Builder
	b.Grow(len(cards))
	for _, c := range cards {
		b.WriteString(CardSymbol(c.Value))
	}
	return b.String()
}

// NormalizeGuess trims and upper-cases a guess string.
func NormalizeGuess(guess string) string {
	return strings.ToUpper(strings.TrimSpace(guess))
}

// GuessOutcome is the adjudicated result of a truth guess.
type GuessOutcome struct {
	Guesser models.PlayerRole
	Correct bool
	// actual is the opponent's canonical arrangement. It leaves this package
	// only through GuesserResult, and only when Correct.
	actual string
}

// TruthGuessResult is the per-recipient view of a guess outcome.
type TruthGuessResult struct {
	Correct           bool   `json:"correct"`
	IsGuesser         bool   `json:"isGuesser"`
	ActualArrangement string `json:"actualArrangement,omitempty"`
}

// GuesserResult is what the guessing player is told.
func (o GuessOutcome) GuesserResult() TruthGuessResult {
	r := TruthGuessResult{Correct: o.Correct, IsGuesser: true}
	if o.Correct {
		r.ActualArrangement = o.actual
	}
	return r
}

// OpponentResult is what the concealing player is told. It never carries the
// arrangement.
func (o GuessOutcome) OpponentResult() TruthGuessResult {
	return TruthGuessResult{Correct: o.Correct, IsGuesser: false}
}

// SubmitGuess adjudicates role's guess of the opponent's arrangement. A
// correct guess ends the game; an incorrect one returns the state to bidding
// and the caller is expected to schedule the next round.
func (e *Engine) SubmitGuess(state *models.GameState, role models.PlayerRole, guess string) (*GuessOutcome, error) {
	if err := checkTurn(state, role); err != nil {
		return nil, err
	}
	if state.SelectedAction != models.ActionTruth {
		return nil, ErrTruthNotSelected
	}

	opponent := state.Player(role.Opponent())
	if len(opponent.ArrangedCards) != e.rules.ArrangementSize {
		return nil, ErrOpponentArrangementMissing
	}

	normalized := NormalizeGuess(guess)
	if normalized == "" {
		return nil, ErrEmptyGuess
	}

	actual := Canonicalize(opponent.ArrangedCards)
	outcome := &GuessOutcome{
		Guesser: role,
		Correct: normalized == actual,
		actual:  actual,
	}

	if outcome.Correct {
		state.Winner = role
		state.GameOver = true
	} else {
		resetToBidding(state)
	}
	return outcome, nil
}
