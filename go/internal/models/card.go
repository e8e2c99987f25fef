package models

// Card values run from Ace (1) to King (13).
const (
	MinCardValue = 1
	MaxCardValue = 13
)

// Card is a single playing card. Only Value matters to the rules.
type Card struct {
	ID    string `json:"id,omitempty"`
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
}

// ValidValue reports whether the card's value is within [1,13].
func (c Card) ValidValue() bool {
	return c.Value >= MinCardValue && c.Value <= MaxCardValue
}

// Participant is a connected player in a session.
type Participant struct {
	ConnectionID string `json:"-"`
	DisplayName  string `json:"playerName"`
}
