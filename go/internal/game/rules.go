package game

import "fmt"

// Rules holds the tunable constants of a game.
type Rules struct {
	StartingTokens  int `yaml:"starting_tokens"`
	RoundBonus      int `yaml:"round_bonus"`
	ArrangementSize int `yaml:"arrangement_size"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		StartingTokens:  10,
		RoundBonus:      2,
		ArrangementSize: 8,
	}
}

// Validate checks that the rule set can produce a playable game.
func (r Rules) Validate() error {
	if r.StartingTokens < 0 {
		return fmt.Errorf("starting_tokens must be >= 0, got %d", r.StartingTokens)
	}
	if r.RoundBonus < 0 {
		return fmt.Errorf("round_bonus must be >= 0, got %d", r.RoundBonus)
	}
	if r.ArrangementSize <= 0 {
		return fmt.Errorf("arrangement_size must be > 0, got %d", r.ArrangementSize)
	}
	return nil
}
