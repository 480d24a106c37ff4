package euchre

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartGame(t *testing.T) {
	e := newTestEngine()
	s := mustApply(t, e, newTable(t), StartGame("p0"))

	assert.Equal(t, PhaseBidding1, s.Phase)
	assert.Len(t, s.Deck, 3, "24 - 20 dealt - 1 up card")
	for _, p := range s.Players {
		assert.Len(t, p.Hand, HandSize)
	}
	require.NotNil(t, s.UpCard)
	assert.Equal(t, 1, s.Turn)
	assert.Nil(t, s.Trump)
	assert.Nil(t, s.Maker)
	assert.Equal(t, testClock.UnixMilli(), s.LastActionTimestamp)
	assert.Equal(t, DeckSize, s.CardsInPlay()+1)
}

func TestStartGameNeedsFullTable(t *testing.T) {
	s := NewGame("room")
	_, err := s.AddPlayer("p0", "Ann", false)
	require.NoError(t, err)

	_, err = newTestEngine().Apply(s, StartGame("p0"))
	assert.ErrorIs(t, err, ErrTableNotFull)
}

func TestStartGameOutsideLobbyIsNoop(t *testing.T) {
	e := newTestEngine()
	s := mustApply(t, e, newTable(t), StartGame("p0"))
	again := mustApply(t, e, s, StartGame("p0"))

	assert.Equal(t, s.Version+1, again.Version)
	assert.Equal(t, s.Players, again.Players, "no redeal")
	assert.Equal(t, s.UpCard, again.UpCard)
}

func TestBiddingScenario(t *testing.T) {
	e := newTestEngine()
	s := mustApply(t, e, newTable(t), StartGame("p0"))
	up := *s.UpCard

	s = mustApply(t, e, s, Pass("p1"))
	assert.Equal(t, 2, s.Turn)

	s = mustApply(t, e, s, OrderUp("p2"))
	assert.Equal(t, PhasePlaying, s.Phase)
	require.NotNil(t, s.Trump)
	assert.Equal(t, up.Suit, *s.Trump)
	require.NotNil(t, s.Maker)
	assert.Equal(t, 2, *s.Maker)
	assert.Len(t, s.Players[0].Hand, HandSize, "dealer picked up then discarded")
	assert.Equal(t, 1, s.Turn)
	assert.Nil(t, s.UpCard, "up card is consumed")
}

func TestOrderUpDiscardsLowest(t *testing.T) {
	s := newTable(t)
	s.Phase = PhaseBidding1
	s.Turn = 1
	s.UpCard = &Card{Suit: Spades, Rank: Nine, ID: "9S"}
	s.Players[0].Hand = []Card{c(Ace, Hearts), c(Ten, Clubs), c(Jack, Clubs), c(King, Spades), c(Queen, Diamonds)}

	next := mustApply(t, newTestEngine(), s, OrderUp("p1"))

	hand := next.Players[0].Hand
	require.Len(t, hand, HandSize)
	assert.Contains(t, hand, c(Nine, Spades), "up card joins the dealer's hand")
	assert.Contains(t, hand, c(Jack, Clubs), "left bower is kept")
	assert.NotContains(t, hand, c(Ten, Clubs), "ten of clubs is the lowest card under spades")
}

func TestRoundOneAllPass(t *testing.T) {
	e := newTestEngine()
	s := mustApply(t, e, newTable(t), StartGame("p0"))

	for i := 0; i < 2; i++ {
		s = mustApply(t, e, s, Pass(turnID(s)))
		assert.Equal(t, PhaseBidding1, s.Phase)
		assert.NotEqual(t, s.Dealer, s.Turn)
	}

	s = mustApply(t, e, s, Pass(turnID(s)))
	assert.Equal(t, PhaseBidding2, s.Phase, "third pass skips the dealer")
	assert.Equal(t, 1, s.Turn)
	assert.NotNil(t, s.UpCard)
}

func TestRoundTwoWrapRedeals(t *testing.T) {
	e := newTestEngine()
	s := mustApply(t, e, newTable(t), StartGame("p0"))
	for i := 0; i < 3; i++ {
		s = mustApply(t, e, s, Pass(turnID(s)))
	}
	require.Equal(t, PhaseBidding2, s.Phase)
	firstUp := *s.UpCard

	// The legality layer forbids the dealer's pass; the engine still handles it.
	for i := 0; i < 4; i++ {
		s = mustApply(t, e, s, Pass(turnID(s)))
	}
	assert.Equal(t, PhaseBidding1, s.Phase)
	assert.Equal(t, 0, s.Dealer, "same dealer after a redeal")
	assert.Equal(t, 1, s.Turn)
	require.NotNil(t, s.UpCard)
	assert.NotEqual(t, firstUp.ID, s.UpCard.ID)
}

func TestCallTrump(t *testing.T) {
	s := newTable(t)
	s.Phase = PhaseBidding2
	s.Dealer = 2
	s.Turn = 0
	s.UpCard = &Card{Suit: Clubs, Rank: Ace, ID: "AC"}

	next := mustApply(t, newTestEngine(), s, CallTrump("p0", Diamonds))
	assert.Equal(t, PhasePlaying, next.Phase)
	assert.Equal(t, Diamonds, *next.Trump)
	assert.Equal(t, 0, *next.Maker)
	assert.Equal(t, 3, next.Turn)
}

func TestWrongPhase(t *testing.T) {
	e := newTestEngine()
	lobby := newTable(t)
	for _, a := range []Action{Pass("p0"), OrderUp("p0"), CallTrump("p0", Hearts), PlayCard("p0", c(Ace, Hearts))} {
		_, err := e.Apply(lobby, a)
		assert.ErrorIs(t, err, ErrWrongPhase, "%s in the lobby", a)
	}
}

func TestUnknownPlayer(t *testing.T) {
	s := newTable(t)
	next, err := newTestEngine().Apply(s, Ready("ghost"))
	assert.Nil(t, next)
	assert.True(t, errors.Is(err, ErrUnknownPlayer))
	assert.Equal(t, 0, s.Version)
}

func TestMalformedAction(t *testing.T) {
	_, err := newTestEngine().Apply(newTable(t), Action{Type: ActionPlayCard, PlayerID: "p0"})
	assert.ErrorIs(t, err, ErrMalformedAction)
}

func TestPlayCardNotInHand(t *testing.T) {
	s := playingState(t, Hearts, [Seats][]Card{{}, {c(Ace, Spades)}, {}, {}})
	_, err := newTestEngine().Apply(s, PlayCard("p1", c(Ace, Hearts)))
	assert.ErrorIs(t, err, ErrCardNotInHand)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	s := mustApply(t, e, newTable(t), StartGame("p0"))
	s = mustApply(t, e, s, OrderUp("p1"))
	snapshot := s.Clone()

	card := LegalActions(s, turnID(s))[0]
	next := mustApply(t, e, s, card)

	assert.Equal(t, snapshot, s)
	assert.NotEqual(t, s.Players[s.Turn].Hand, next.Players[s.Turn].Hand)
}

func TestVersionIncrements(t *testing.T) {
	e := newTestEngine()
	s := newTable(t)
	for i := 0; i < 20; i++ {
		var acts []Action
		for _, p := range s.Players {
			acts = append(acts, LegalActions(s, p.ID)...)
		}
		require.NotEmpty(t, acts)
		next := mustApply(t, e, s, acts[0])
		require.Greater(t, next.Version, s.Version)
		s = next
	}
}

func TestPlayCardLeadSuit(t *testing.T) {
	e := newTestEngine()
	s := playingState(t, Hearts, [Seats][]Card{
		{c(Nine, Clubs)}, {c(Jack, Diamonds), c(Ace, Clubs)}, {c(Ten, Spades)}, {c(King, Hearts)},
	})

	s = mustApply(t, e, s, PlayCard("p1", c(Jack, Diamonds)))
	require.NotNil(t, s.CurrentTrick.LeadSuit)
	assert.Equal(t, Hearts, *s.CurrentTrick.LeadSuit, "left bower leads trump")
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, []Card{c(Ace, Clubs)}, s.Players[1].Hand)
}

func TestPlayCardUsesHeldCard(t *testing.T) {
	s := playingState(t, Hearts, [Seats][]Card{{}, {c(Nine, Clubs)}, {}, {}})
	forged := Card{Suit: Hearts, Rank: Jack, ID: "9C"}

	next := mustApply(t, newTestEngine(), s, PlayCard("p1", forged))
	assert.Equal(t, c(Nine, Clubs), next.CurrentTrick.Cards[0].Card)
}

func TestTrickResolution(t *testing.T) {
	e := newTestEngine()
	s := playingState(t, Spades, [Seats][]Card{
		{c(Ace, Hearts), c(Nine, Diamonds)},
		{c(King, Hearts), c(Ten, Diamonds)},
		{c(Nine, Spades), c(Queen, Diamonds)},
		{c(Ace, Clubs), c(King, Diamonds)},
	})

	for _, a := range []Action{
		PlayCard("p1", c(King, Hearts)),
		PlayCard("p2", c(Nine, Spades)),
		PlayCard("p3", c(Ace, Clubs)),
		PlayCard("p0", c(Ace, Hearts)),
	} {
		s = mustApply(t, e, s, a)
	}

	assert.Equal(t, [2]int{1, 0}, s.TricksTaken, "nine of trump wins for team 0")
	assert.Equal(t, 2, s.Turn, "winner leads next")
	assert.Empty(t, s.CurrentTrick.Cards)
	assert.Nil(t, s.CurrentTrick.LeadSuit)
	require.NotNil(t, s.LastTrick)
	require.NotNil(t, s.LastTrick.Winner)
	assert.Equal(t, "p2", *s.LastTrick.Winner)
	assert.Len(t, s.LastTrick.Cards, Seats)
	assert.Equal(t, 4, s.CardsInPlay())
}

func TestRoundScoring(t *testing.T) {
	// Seat 1 (team 1) made trump. The last trick is won by seat 1 or seat 0.
	cases := []struct {
		name       string
		makerFirst int // maker team tricks before the last trick
		makerWins  bool
		wantScores [2]int
	}{
		{"march", 4, true, [2]int{0, 2}},
		{"four tricks", 4, false, [2]int{0, 1}},
		{"three tricks", 2, true, [2]int{0, 1}},
		{"euchred with two", 2, false, [2]int{2, 0}},
		{"euchred with none", 0, false, [2]int{2, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := lastTrickState(t, tc.makerFirst, tc.makerWins)
			s = playOut(t, newTestEngine(), s)

			assert.Equal(t, tc.wantScores, s.Scores)
			assert.Equal(t, PhaseBidding1, s.Phase, "next round starts")
			assert.Equal(t, 1, s.Dealer, "dealer rotates")
			assert.Equal(t, 2, s.Turn)
			assert.Equal(t, [2]int{}, s.TricksTaken)
			assert.Nil(t, s.Maker)
			assert.Nil(t, s.Trump)
		})
	}
}

func TestGameOver(t *testing.T) {
	s := lastTrickState(t, 4, true)
	s.Scores = [2]int{3, 8}
	s = playOut(t, newTestEngine(), s)

	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.Equal(t, [2]int{3, 10}, s.Scores)
	assert.Equal(t, 5, s.TricksTaken[0]+s.TricksTaken[1])
	team, over := Winner(s)
	assert.True(t, over)
	assert.Equal(t, 1, team)

	assert.Empty(t, LegalActions(s, turnID(s)))
}

// lastTrickState sets up the fifth trick with trump hearts, maker seat 1,
// and seat 1 to lead. makerWins picks whether seat 1 or seat 0 takes it.
func lastTrickState(t *testing.T, makerTricks int, makerWins bool) *GameState {
	t.Helper()
	high, low := c(Ace, Hearts), c(Nine, Clubs)
	if !makerWins {
		high, low = low, high
	}
	s := playingState(t, Hearts, [Seats][]Card{
		{low}, {high}, {c(Ten, Clubs)}, {c(Queen, Clubs)},
	})
	// Seat 0 leads; whichever of seats 0 and 1 holds the ace of hearts
	// takes the trick.
	s.Turn = 0
	s.TricksTaken = [2]int{4 - makerTricks, makerTricks}
	return s
}

func playOut(t *testing.T, e *Engine, s *GameState) *GameState {
	t.Helper()
	for i := 0; i < Seats; i++ {
		acts := LegalActions(s, turnID(s))
		require.NotEmpty(t, acts)
		s = mustApply(t, e, s, acts[0])
	}
	return s
}

func TestFullGameInvariants(t *testing.T) {
	e := newTestEngine()
	s := newTable(t)

	for step := 0; s.Phase != PhaseGameOver; step++ {
		require.Less(t, step, 5000, "game did not finish")

		acts := LegalActions(s, turnID(s))
		require.NotEmpty(t, acts, "no legal action in %s", s.Phase)

		before := s
		s = mustApply(t, e, s, acts[0])

		tricks := s.TricksTaken[0] + s.TricksTaken[1]
		require.LessOrEqual(t, tricks, TricksPerRound)
		if tricks == TricksPerRound {
			require.Equal(t, PhaseGameOver, s.Phase)
		}
		if s.Phase != PhaseGameOver {
			require.Less(t, s.Scores[0], WinningScore)
			require.Less(t, s.Scores[1], WinningScore)
		}

		if s.Phase == PhasePlaying {
			require.LessOrEqual(t, s.CardsInPlay(), DeckSize)
			prevTricks := before.TricksTaken[0] + before.TricksTaken[1]
			if before.Phase == PhasePlaying && tricks == prevTricks+1 {
				require.Equal(t, before.CardsInPlay()-4, s.CardsInPlay(), "a trick removes four cards")
			}
		}
	}
}
