// Package bot picks moves for computer-controlled seats.
package bot

import "euchre/internal/euchre"

// Policy chooses one action for a bot. ok is false when the bot has
// nothing it may do.
type Policy interface {
	ChooseAction(s *euchre.GameState, botID string) (a euchre.Action, ok bool)
}

// DefaultOrderThreshold is the trump count at which Greedy names a suit.
const DefaultOrderThreshold = 3

// Greedy bids on trump count and always plays its highest legal card.
type Greedy struct {
	OrderThreshold int
}

// NewGreedy returns a Greedy policy with the default threshold.
func NewGreedy() *Greedy {
	return &Greedy{OrderThreshold: DefaultOrderThreshold}
}

// ChooseAction implements Policy. It only ever returns a legal action.
func (g *Greedy) ChooseAction(s *euchre.GameState, botID string) (euchre.Action, bool) {
	legal := euchre.LegalActions(s, botID)
	switch len(legal) {
	case 0:
		return euchre.Action{}, false
	case 1:
		return legal[0], true
	}

	seat := s.SeatOf(botID)
	hand := s.Players[seat].Hand

	switch s.Phase {
	case euchre.PhaseBidding1:
		if s.UpCard != nil && euchre.TrumpPower(hand, s.UpCard.Suit) >= g.threshold() {
			return pick(legal, euchre.ActionOrderUp, "")
		}
		return pick(legal, euchre.ActionPass, "")

	case euchre.PhaseBidding2:
		best, power := bestSuit(hand, s.UpCard)
		if power >= g.threshold() {
			return pick(legal, euchre.ActionCallTrump, best)
		}
		if a, ok := pick(legal, euchre.ActionPass, ""); ok {
			return a, true
		}
		// The dealer cannot pass, so name the strongest suit anyway.
		return pick(legal, euchre.ActionCallTrump, best)

	case euchre.PhasePlaying:
		return highestCard(legal, s.Trump, s.CurrentTrick.LeadSuit), true
	}
	return legal[0], true
}

func (g *Greedy) threshold() int {
	if g.OrderThreshold <= 0 {
		return DefaultOrderThreshold
	}
	return g.OrderThreshold
}

// bestSuit returns the suit other than the turned-down one that would give
// the hand the most trump. Ties go to the earlier suit.
func bestSuit(hand []euchre.Card, up *euchre.Card) (euchre.Suit, int) {
	var best euchre.Suit
	power := -1
	for _, suit := range euchre.Suits {
		if up != nil && suit == up.Suit {
			continue
		}
		if p := euchre.TrumpPower(hand, suit); p > power {
			best, power = suit, p
		}
	}
	return best, power
}

func pick(legal []euchre.Action, typ euchre.ActionType, suit euchre.Suit) (euchre.Action, bool) {
	for _, a := range legal {
		if a.Type == typ && a.Suit == suit {
			return a, true
		}
	}
	return euchre.Action{}, false
}

func highestCard(legal []euchre.Action, trump, lead *euchre.Suit) euchre.Action {
	best := legal[0]
	for _, a := range legal[1:] {
		if euchre.CardValue(*a.Card, trump, lead) > euchre.CardValue(*best.Card, trump, lead) {
			best = a
		}
	}
	return best
}
