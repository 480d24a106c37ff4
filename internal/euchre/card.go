package euchre

import (
	"fmt"
	"math/rand"
)

// Suit is a card suit. The zero value means "no suit".
type Suit string

const (
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
	Spades   Suit = "S"

	// hiddenSuit marks a redacted card in a public view.
	hiddenSuit Suit = "?"
)

// Suits lists the four suits in deal order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Valid reports whether s is one of the four playing suits.
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

// Partner returns the other suit of the same colour.
func (s Suit) Partner() Suit {
	switch s {
	case Hearts:
		return Diamonds
	case Diamonds:
		return Hearts
	case Clubs:
		return Spades
	case Spades:
		return Clubs
	}
	return s
}

// Rank is a card rank. Only 9 through ace are in a euchre deck.
type Rank string

const (
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"

	hiddenRank Rank = "?"
)

// Ranks lists the ranks from lowest to highest.
var Ranks = []Rank{Nine, Ten, Jack, Queen, King, Ace}

// Index returns the natural order of the rank (9=0 .. A=5), or -1.
func (r Rank) Index() int {
	for i, rr := range Ranks {
		if rr == r {
			return i
		}
	}
	return -1
}

// Card is a single playing card. ID tells apart cards that look alike,
// which matters once hands are redacted.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

const hiddenID = "hidden"

// HiddenCard is the placeholder for a card the viewer may not see.
var HiddenCard = Card{Suit: hiddenSuit, Rank: hiddenRank, ID: hiddenID}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Hidden reports whether c is a redaction placeholder.
func (c Card) Hidden() bool {
	return c.ID == hiddenID
}

// DeckSize is the number of cards in a euchre deck.
const DeckSize = 24

// NewDeck returns the 24 euchre cards in suit-then-rank order,
// stamping each with an id from newID.
func NewDeck(newID func() string) []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r, ID: newID()})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// removeCard drops the card with the given id from hand.
func removeCard(hand []Card, id string) ([]Card, bool) {
	out := make([]Card, 0, len(hand))
	found := false
	for _, c := range hand {
		if !found && c.ID == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	return out, found
}
