package euchre

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine applies actions to game states. It holds only the randomness and
// clock used for dealing and stamping, so one Engine can serve every room.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes deals and card ids reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock replaces time.Now for lastActionTimestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine seeded from the wall clock unless told otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// Apply returns the state that results from a. The input state is never
// modified. Apply checks only what it needs to stay well defined: the
// player exists, the action is well formed and fits the phase. Turn order
// and follow-suit are the caller's to enforce with LegalActions.
func (e *Engine) Apply(s *GameState, a Action) (*GameState, error) {
	seat := s.SeatOf(a.PlayerID)
	if seat < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, a.PlayerID)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	next := s.Clone()
	next.Version++
	next.LastActionTimestamp = e.now().UnixMilli()

	var err error
	switch a.Type {
	case ActionReady:
		next.Players[seat].IsReady = true
	case ActionStartGame:
		if next.Phase == PhaseLobby {
			if !next.Full() {
				return nil, fmt.Errorf("%w: %d of %d seats taken", ErrTableNotFull, len(next.Players), Seats)
			}
			next.Scores = [2]int{}
			next.LastTrick = nil
			e.startRound(next)
		}
	case ActionPass:
		err = e.pass(next)
	case ActionOrderUp:
		err = orderUp(next, seat)
	case ActionCallTrump:
		err = callTrump(next, seat, a.Suit)
	case ActionPlayCard:
		err = e.playCard(next, seat, *a.Card)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (e *Engine) pass(s *GameState) error {
	switch s.Phase {
	case PhaseBidding1:
		s.Turn = nextSeat(s.Turn)
		// The dealer never bids in the first round.
		if s.Turn == s.Dealer {
			s.Phase = PhaseBidding2
			s.Turn = nextSeat(s.Dealer)
		}
	case PhaseBidding2:
		s.Turn = nextSeat(s.Turn)
		if s.Turn == nextSeat(s.Dealer) {
			e.startRound(s)
		}
	default:
		return fmt.Errorf("%w: %s during %s", ErrWrongPhase, ActionPass, s.Phase)
	}
	return nil
}

func orderUp(s *GameState, seat int) error {
	if s.Phase != PhaseBidding1 || s.UpCard == nil {
		return fmt.Errorf("%w: %s during %s", ErrWrongPhase, ActionOrderUp, s.Phase)
	}
	trump := s.UpCard.Suit
	s.Trump = &trump
	s.Maker = &seat
	s.Phase = PhasePlaying

	dealer := &s.Players[s.Dealer]
	dealer.Hand = append(dealer.Hand, *s.UpCard)
	s.UpCard = nil
	if i := lowestCard(dealer.Hand, trump); i >= 0 {
		dealer.Hand = append(dealer.Hand[:i], dealer.Hand[i+1:]...)
	}

	s.Turn = nextSeat(s.Dealer)
	return nil
}

func callTrump(s *GameState, seat int, suit Suit) error {
	if s.Phase != PhaseBidding2 {
		return fmt.Errorf("%w: %s during %s", ErrWrongPhase, ActionCallTrump, s.Phase)
	}
	s.Trump = &suit
	s.Maker = &seat
	s.Phase = PhasePlaying
	s.Turn = nextSeat(s.Dealer)
	return nil
}

func (e *Engine) playCard(s *GameState, seat int, card Card) error {
	if s.Phase != PhasePlaying {
		return fmt.Errorf("%w: %s during %s", ErrWrongPhase, ActionPlayCard, s.Phase)
	}
	p := &s.Players[seat]

	// The hand's copy is authoritative; the client only names the id.
	var held *Card
	for i := range p.Hand {
		if p.Hand[i].ID == card.ID {
			c := p.Hand[i]
			held = &c
			break
		}
	}
	if held == nil {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card.ID)
	}
	p.Hand, _ = removeCard(p.Hand, held.ID)

	s.CurrentTrick.Cards = append(s.CurrentTrick.Cards, Play{PlayerID: p.ID, Card: *held})
	if s.CurrentTrick.LeadSuit == nil {
		lead := EffectiveSuit(*held, s.Trump)
		s.CurrentTrick.LeadSuit = &lead
	}

	if len(s.CurrentTrick.Cards) == Seats {
		e.resolveTrick(s)
	} else {
		s.Turn = nextSeat(s.Turn)
	}
	return nil
}

// startRound deals a fresh hand with the current dealer.
func (e *Engine) startRound(s *GameState) {
	e.mu.Lock()
	deck := ShuffleDeck(NewDeck(e.newCardID), e.rng)
	e.mu.Unlock()

	for i := range s.Players {
		s.Players[i].Hand = append([]Card{}, deck[:HandSize]...)
		deck = deck[HandSize:]
	}
	up := deck[len(deck)-1]
	s.UpCard = &up
	s.Deck = append([]Card{}, deck[:len(deck)-1]...)

	s.Phase = PhaseBidding1
	s.Turn = nextSeat(s.Dealer)
	s.Trump = nil
	s.Maker = nil
	s.CurrentTrick = Trick{Cards: []Play{}}
	s.TricksTaken = [2]int{}
}

// newCardID must be called with e.mu held.
func (e *Engine) newCardID() string {
	id, err := uuid.NewRandomFromReader(e.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e *Engine) resolveTrick(s *GameState) {
	trick := s.CurrentTrick
	best := 0
	for i := 1; i < len(trick.Cards); i++ {
		if CardValue(trick.Cards[i].Card, s.Trump, trick.LeadSuit) >
			CardValue(trick.Cards[best].Card, s.Trump, trick.LeadSuit) {
			best = i
		}
	}
	winnerID := trick.Cards[best].PlayerID
	winner := s.SeatOf(winnerID)

	s.TricksTaken[s.Players[winner].Team]++
	trick.Winner = &winnerID
	s.LastTrick = &trick
	s.CurrentTrick = Trick{Cards: []Play{}}
	s.Turn = winner

	if s.TricksTaken[0]+s.TricksTaken[1] == TricksPerRound {
		e.scoreRound(s)
	}
}

func (e *Engine) scoreRound(s *GameState) {
	makerTeam := s.Players[*s.Maker].Team
	switch taken := s.TricksTaken[makerTeam]; {
	case taken == TricksPerRound:
		s.Scores[makerTeam] += 2 // march
	case taken >= 3:
		s.Scores[makerTeam]++
	default:
		s.Scores[otherTeam(makerTeam)] += 2 // euchred
	}

	if s.Scores[0] >= WinningScore || s.Scores[1] >= WinningScore {
		s.Phase = PhaseGameOver
		return
	}
	s.Dealer = nextSeat(s.Dealer)
	e.startRound(s)
}

// Winner returns the winning team once the game is over.
func Winner(s *GameState) (int, bool) {
	if s.Phase != PhaseGameOver {
		return 0, false
	}
	if s.Scores[1] > s.Scores[0] {
		return 1, true
	}
	return 0, true
}
