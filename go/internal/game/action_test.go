package game

import (
	"errors"
	"testing"

	"github.com/mcdev12/truthbid/go/internal/models"
)

func TestSelectAction(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		role    models.PlayerRole
		action  models.Action
		bid     bool
		wantErr error
	}{
		{name: "bidding phase", role: models.RoleHost, action: models.ActionQuestion, wantErr: ErrNotYourTurn},
		{name: "loser", role: models.RoleGuest, action: models.ActionTruth, bid: true, wantErr: ErrNotYourTurn},
		{name: "unknown action", role: models.RoleHost, action: "pass", bid: true, wantErr: ErrInvalidAction},
		{name: "winner question", role: models.RoleHost, action: models.ActionQuestion, bid: true},
		{name: "winner truth", role: models.RoleHost, action: models.ActionTruth, bid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := e.NewGame()
			if tt.bid {
				e.SubmitBid(state, models.RoleHost, 2)
				e.SubmitBid(state, models.RoleGuest, 1)
			}
			err := e.SelectAction(state, tt.role, tt.action)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SelectAction() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && state.SelectedAction != tt.action {
				t.Fatalf("SelectedAction = %q, want %q", state.SelectedAction, tt.action)
			}
			if tt.wantErr != nil && state.SelectedAction != "" {
				t.Fatalf("SelectedAction set on rejection: %q", state.SelectedAction)
			}
		})
	}
}

func TestSelectActionIsOneShot(t *testing.T) {
	e := newTestEngine()
	state := e.NewGame()
	e.SubmitBid(state, models.RoleHost, 2)
	e.SubmitBid(state, models.RoleGuest, 1)

	if err := e.SelectAction(state, models.RoleHost, models.ActionQuestion); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectAction(state, models.RoleHost, models.ActionTruth); !errors.Is(err, ErrActionAlreadySelected) {
		t.Fatalf("second selection error = %v", err)
	}
	if state.SelectedAction != models.ActionQuestion {
		t.Fatalf("SelectedAction = %q, want question", state.SelectedAction)
	}

	e.StartNewRound(state)
	e.SubmitBid(state, models.RoleHost, 0)
	e.SubmitBid(state, models.RoleGuest, 1)
	if err := e.SelectAction(state, models.RoleGuest, models.ActionTruth); err != nil {
		t.Fatalf("selection in next round error = %v", err)
	}
}

func TestCanFinishQuestion(t *testing.T) {
	e := newTestEngine()
	state := e.NewGame()
	e.SubmitBid(state, models.RoleHost, 2)
	e.SubmitBid(state, models.RoleGuest, 1)

	if err := e.CanFinishQuestion(state, models.RoleHost); !errors.Is(err, ErrQuestionNotSelected) {
		t.Fatalf("before selection error = %v", err)
	}
	e.SelectAction(state, models.RoleHost, models.ActionQuestion)
	if err := e.CanFinishQuestion(state, models.RoleGuest); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("opponent error = %v", err)
	}
	if err := e.CanFinishQuestion(state, models.RoleHost); err != nil {
		t.Fatalf("winner error = %v", err)
	}
}
