package game

import (
	"fmt"

	"github.com/mcdev12/truthbid/go/internal/models"
)

// SaveArrangement stores role's concealed card order. It may be set once per
// game.
func (e *Engine) SaveArrangement(state *models.GameState, role models.PlayerRole, cards []models.Card) error {
	player := state.Player(role)
	if player.HasArrangement() {
		return ErrArrangementLocked
	}
	if len(cards) != e.rules.ArrangementSize {
		return fmt.Errorf("%w: want %d cards, got %d", ErrInvalidArrangement, e.rules.ArrangementSize, len(cards))
	}
	for i, c := range cards {
		if !c.ValidValue() {
			return fmt.Errorf("%w: card %d has value %d", ErrInvalidArrangement, i, c.Value)
		}
	}

	player.ArrangedCards = append([]models.Card(nil), cards...)
	return nil
}
