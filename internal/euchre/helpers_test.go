package euchre

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

var testClock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(
		WithRand(rand.New(rand.NewSource(42))),
		WithClock(func() time.Time { return testClock }),
	)
}

// c builds a card whose id spells its face, e.g. "JH".
func c(r Rank, s Suit) Card {
	return Card{Suit: s, Rank: r, ID: string(r) + string(s)}
}

func suitPtr(s Suit) *Suit { return &s }

func intPtr(i int) *int { return &i }

// newTable seats four ready humans p0..p3 in the lobby.
func newTable(t *testing.T) *GameState {
	t.Helper()
	s := NewGame("room-1")
	for i := 0; i < Seats; i++ {
		if _, err := s.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), false); err != nil {
			t.Fatalf("add player %d: %v", i, err)
		}
		s.Players[i].IsReady = true
	}
	return s
}

// playingState returns a table mid-round with the given hands, trump and
// turn. Dealer is seat 0 and seat 1 named trump.
func playingState(t *testing.T, trump Suit, hands [Seats][]Card) *GameState {
	t.Helper()
	s := newTable(t)
	s.Phase = PhasePlaying
	s.Trump = suitPtr(trump)
	s.Maker = intPtr(1)
	s.Turn = 1
	for i := range s.Players {
		s.Players[i].Hand = hands[i]
	}
	return s
}

func mustApply(t *testing.T, e *Engine, s *GameState, a Action) *GameState {
	t.Helper()
	next, err := e.Apply(s, a)
	if err != nil {
		t.Fatalf("apply %s by %s: %v", a, a.PlayerID, err)
	}
	return next
}

func turnID(s *GameState) string {
	return s.Players[s.Turn].ID
}
