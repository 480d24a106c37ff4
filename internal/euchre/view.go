package euchre

// PublicView returns what playerID is allowed to see: their own hand
// intact, every other hand replaced by placeholders of the same length,
// and the undealt deck emptied. Everything else is copied as is.
func PublicView(s *GameState, playerID string) *GameState {
	view := s.Clone()
	for i := range view.Players {
		p := &view.Players[i]
		if p.ID == playerID {
			continue
		}
		for j := range p.Hand {
			p.Hand[j] = HiddenCard
		}
	}
	view.Deck = []Card{}
	return view
}
