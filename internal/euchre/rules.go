package euchre

// Card values used to compare plays within a trick.
const (
	rightBowerValue = 100
	leftBowerValue  = 99
	trumpBase       = 50
	leadBase        = 20
)

// IsRightBower reports whether c is the jack of the trump suit.
func IsRightBower(c Card, trump Suit) bool {
	return c.Rank == Jack && c.Suit == trump
}

// IsLeftBower reports whether c is the jack of the suit sharing trump's colour.
func IsLeftBower(c Card, trump Suit) bool {
	return trump.Valid() && c.Rank == Jack && c.Suit == trump.Partner()
}

// EffectiveSuit is the suit c counts as when following: the left bower
// belongs to trump, every other card to its own suit.
func EffectiveSuit(c Card, trump *Suit) Suit {
	if trump != nil && IsLeftBower(c, *trump) {
		return *trump
	}
	return c.Suit
}

// CardValue orders cards within a trick under the given trump and lead.
// Either may be nil.
func CardValue(c Card, trump, lead *Suit) int {
	idx := c.Rank.Index()
	if trump == nil {
		return idx
	}
	switch {
	case IsRightBower(c, *trump):
		return rightBowerValue
	case IsLeftBower(c, *trump):
		return leftBowerValue
	case c.Suit == *trump:
		return trumpBase + idx
	case lead != nil && c.Suit == *lead:
		return leadBase + idx
	}
	return idx
}

// TrumpPower counts the cards in hand that would be trump if suit were named.
func TrumpPower(hand []Card, suit Suit) int {
	n := 0
	for _, c := range hand {
		if EffectiveSuit(c, &suit) == suit {
			n++
		}
	}
	return n
}

// lowestCard returns the index of the lowest-valued card under trump with
// no lead, earliest first on ties.
func lowestCard(hand []Card, trump Suit) int {
	lowest := -1
	for i, c := range hand {
		if lowest < 0 || CardValue(c, &trump, nil) < CardValue(hand[lowest], &trump, nil) {
			lowest = i
		}
	}
	return lowest
}

// LegalActions returns every move playerID may make right now. Players who
// are not seated, or whose turn it is not outside the lobby, get none.
func LegalActions(s *GameState, playerID string) []Action {
	seat := s.SeatOf(playerID)
	if seat < 0 {
		return nil
	}
	p := &s.Players[seat]

	if s.Phase == PhaseLobby {
		if !p.IsReady {
			return []Action{Ready(playerID)}
		}
		if seat == 0 && allReady(s) {
			return []Action{StartGame(playerID)}
		}
		return nil
	}

	if s.Turn != seat {
		return nil
	}

	switch s.Phase {
	case PhaseBidding1:
		return []Action{OrderUp(playerID), Pass(playerID)}

	case PhaseBidding2:
		var actions []Action
		// Stick the dealer: the dealer must name a suit.
		if seat != s.Dealer {
			actions = append(actions, Pass(playerID))
		}
		for _, suit := range Suits {
			if s.UpCard != nil && suit == s.UpCard.Suit {
				continue
			}
			actions = append(actions, CallTrump(playerID, suit))
		}
		return actions

	case PhasePlaying:
		return legalPlays(s, p)
	}
	return nil
}

func legalPlays(s *GameState, p *Player) []Action {
	lead := s.CurrentTrick.LeadSuit
	var follow []Action
	all := make([]Action, 0, len(p.Hand))
	for _, c := range p.Hand {
		a := PlayCard(p.ID, c)
		all = append(all, a)
		if lead != nil && EffectiveSuit(c, s.Trump) == *lead {
			follow = append(follow, a)
		}
	}
	if len(follow) > 0 {
		return follow
	}
	return all
}

func allReady(s *GameState) bool {
	if !s.Full() {
		return false
	}
	for _, p := range s.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// IsLegal reports whether a is among the legal actions of its player.
func IsLegal(s *GameState, a Action) bool {
	for _, legal := range LegalActions(s, a.PlayerID) {
		if legal.Same(a) {
			return true
		}
	}
	return false
}
