package game

import "github.com/mcdev12/truthbid/go/internal/models"

// checkTurn verifies that role controls the action phase.
func checkTurn(state *models.GameState, role models.PlayerRole) error {
	if state.GameOver {
		return ErrGameOver
	}
	if state.Phase != models.PhaseAction || state.BidWinner != role {
		return ErrNotYourTurn
	}
	return nil
}

// SelectAction records the bid winner's choice. Only one selection is
// accepted per round.
func (e *Engine) SelectAction(state *models.GameState, role models.PlayerRole, action models.Action) error {
	if err := checkTurn(state, role); err != nil {
		return err
	}
	if !action.Valid() {
		return ErrInvalidAction
	}
	if state.SelectedAction != "" {
		return ErrActionAlreadySelected
	}
	state.SelectedAction = action
	return nil
}

// CanFinishQuestion reports whether role may end a question round.
func (e *Engine) CanFinishQuestion(state *models.GameState, role models.PlayerRole) error {
	if err := checkTurn(state, role); err != nil {
		return err
	}
	if state.SelectedAction != models.ActionQuestion {
		return ErrQuestionNotSelected
	}
	return nil
}
