package game

import (
	"errors"
	"testing"

	"github.com/mcdev12/truthbid/go/internal/models"
)

func cardsOf(values ...int) []models.Card {
	cards := make([]models.Card, len(values))
	for i, v := range values {
		cards[i] = models.Card{Suit: "hearts", Value: v}
	}
	return cards
}

// truthState returns a game where the host won the bid and chose truth, and
// the guest's arrangement is values.
func truthState(t *testing.T, e *Engine, values ...int) *models.GameState {
	t.Helper()
	state := e.NewGame()
	if err := e.SaveArrangement(state, models.RoleGuest, cardsOf(values...)); err != nil {
		t.Fatalf("SaveArrangement() error = %v", err)
	}
	e.SubmitBid(state, models.RoleHost, 5)
	e.SubmitBid(state, models.RoleGuest, 1)
	if err := e.SelectAction(state, models.RoleHost, models.ActionTruth); err != nil {
		t.Fatalf("SelectAction() error = %v", err)
	}
	return state
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		values []int
		want   string
	}{
		{values: []int{1, 10, 11, 12, 13, 2, 3, 4}, want: "ATJQK234"},
		{values: []int{9, 8, 7, 6, 5, 4, 3, 2}, want: "98765432"},
		{values: []int{13, 13, 1, 1, 10, 10, 5, 5}, want: "KKAATT55"},
	}
	for _, tt := range tests {
		if got := Canonicalize(cardsOf(tt.values...)); got != tt.want {
			t.Fatalf("Canonicalize(%v) = %q, want %q", tt.values, got, tt.want)
		}
	}
}

func TestCanonicalizeIgnoresSuit(t *testing.T) {
	a := []models.Card{{Suit: "spades", Value: 1}, {Suit: "clubs", Value: 12}}
	b := []models.Card{{Suit: "hearts", Value: 1}, {Suit: "diamonds", Value: 12}}
	if Canonicalize(a) != Canonicalize(b) {
		t.Fatalf("suits changed canonical form: %q vs %q", Canonicalize(a), Canonicalize(b))
	}
}

func TestCorrectGuessWinsAndDisclosesOnlyToGuesser(t *testing.T) {
	e := newTestEngine()
	state := truthState(t, e, 1, 10, 11, 12, 13, 2, 3, 4)

	out, err := e.SubmitGuess(state, models.RoleHost, "atjqk234")
	if err != nil {
		t.Fatalf("SubmitGuess() error = %v", err)
	}
	if !out.Correct {
		t.Fatal("lower-case exact guess judged incorrect")
	}
	if g := out.GuesserResult(); g.ActualArrangement != "ATJQK234" || !g.IsGuesser {
		t.Fatalf("guesser result = %+v", g)
	}
	if o := out.OpponentResult(); o.ActualArrangement != "" || o.IsGuesser || !o.Correct {
		t.Fatalf("opponent result = %+v", o)
	}
	if !state.GameOver || state.Winner != models.RoleHost {
		t.Fatalf("GameOver = %v Winner = %q", state.GameOver, state.Winner)
	}
}

func TestAnySingleCharacterDeviationIsIncorrect(t *testing.T) {
	e := newTestEngine()
	const actual = "ATJQK234"
	for i := range actual {
		guess := []byte(actual)
		if guess[i] == '9' {
			guess[i] = '8'
		} else {
			guess[i] = '9'
		}

		state := truthState(t, e, 1, 10, 11, 12, 13, 2, 3, 4)
		out, err := e.SubmitGuess(state, models.RoleHost, string(guess))
		if err != nil {
			t.Fatalf("SubmitGuess(%q) error = %v", guess, err)
		}
		if out.Correct {
			t.Fatalf("SubmitGuess(%q) judged correct", guess)
		}
	}
}

func TestIncorrectGuessResetsToBidding(t *testing.T) {
	e := newTestEngine()
	state := truthState(t, e, 1, 10, 11, 12, 13, 2, 3, 4)

	out, err := e.SubmitGuess(state, models.RoleHost, "23456789")
	if err != nil {
		t.Fatalf("SubmitGuess() error = %v", err)
	}
	if out.GuesserResult().ActualArrangement != "" || out.OpponentResult().ActualArrangement != "" {
		t.Fatal("arrangement disclosed on incorrect guess")
	}
	if state.Phase != models.PhaseBidding || state.BidWinner != "" || state.SelectedAction != "" {
		t.Fatalf("state not reset to bidding: %+v", state)
	}
	if state.GameOver {
		t.Fatal("incorrect guess ended the game")
	}
	if state.RoundNumber != 1 {
		t.Fatalf("RoundNumber = %d, want 1 until the scheduled round starts", state.RoundNumber)
	}
}

func TestSubmitGuessPreconditions(t *testing.T) {
	e := newTestEngine()

	t.Run("opponent arrangement missing", func(t *testing.T) {
		state := e.NewGame()
		e.SubmitBid(state, models.RoleHost, 5)
		e.SubmitBid(state, models.RoleGuest, 1)
		e.SelectAction(state, models.RoleHost, models.ActionTruth)

		_, err := e.SubmitGuess(state, models.RoleHost, "ATJQK234")
		if !errors.Is(err, ErrOpponentArrangementMissing) {
			t.Fatalf("error = %v, want %v", err, ErrOpponentArrangementMissing)
		}
		if state.Phase != models.PhaseAction || state.BidWinner != models.RoleHost {
			t.Fatal("state changed on missing arrangement")
		}
	})

	t.Run("not the bid winner", func(t *testing.T) {
		state := truthState(t, e, 1, 2, 3, 4, 5, 6, 7, 8)
		if _, err := e.SubmitGuess(state, models.RoleGuest, "A2345678"); !errors.Is(err, ErrNotYourTurn) {
			t.Fatalf("error = %v, want %v", err, ErrNotYourTurn)
		}
	})

	t.Run("question selected", func(t *testing.T) {
		state := e.NewGame()
		e.SaveArrangement(state, models.RoleGuest, cardsOf(1, 2, 3, 4, 5, 6, 7, 8))
		e.SubmitBid(state, models.RoleHost, 5)
		e.SubmitBid(state, models.RoleGuest, 1)
		e.SelectAction(state, models.RoleHost, models.ActionQuestion)
		if _, err := e.SubmitGuess(state, models.RoleHost, "A2345678"); !errors.Is(err, ErrTruthNotSelected) {
			t.Fatalf("error = %v, want %v", err, ErrTruthNotSelected)
		}
	})

	t.Run("game over", func(t *testing.T) {
		state := truthState(t, e, 1, 2, 3, 4, 5, 6, 7, 8)
		if _, err := e.SubmitGuess(state, models.RoleHost, "A2345678"); err != nil {
			t.Fatal(err)
		}
		if _, err := e.SubmitGuess(state, models.RoleHost, "A2345678"); !errors.Is(err, ErrGameOver) {
			t.Fatalf("error = %v, want %v", err, ErrGameOver)
		}
	})
}

func TestSaveArrangement(t *testing.T) {
	e := newTestEngine()

	state := e.NewGame()
	if err := e.SaveArrangement(state, models.RoleHost, cardsOf(1, 2, 3)); !errors.Is(err, ErrInvalidArrangement) {
		t.Fatalf("short arrangement error = %v", err)
	}
	if err := e.SaveArrangement(state, models.RoleHost, cardsOf(1, 2, 3, 4, 5, 6, 7, 14)); !errors.Is(err, ErrInvalidArrangement) {
		t.Fatalf("out of range value error = %v", err)
	}

	cards := cardsOf(1, 2, 3, 4, 5, 6, 7, 8)
	if err := e.SaveArrangement(state, models.RoleHost, cards); err != nil {
		t.Fatalf("SaveArrangement() error = %v", err)
	}
	cards[0].Value = 13
	if state.Host.ArrangedCards[0].Value != 1 {
		t.Fatal("saved arrangement aliases caller slice")
	}
	if err := e.SaveArrangement(state, models.RoleHost, cardsOf(8, 7, 6, 5, 4, 3, 2, 1)); !errors.Is(err, ErrArrangementLocked) {
		t.Fatalf("second save error = %v, want %v", err, ErrArrangementLocked)
	}
}
