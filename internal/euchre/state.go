package euchre

import "errors"

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhaseLobby    Phase = "LOBBY"
	PhaseBidding1 Phase = "BIDDING_ROUND_1" // order up or pass
	PhaseBidding2 Phase = "BIDDING_ROUND_2" // name another suit or pass
	PhasePlaying  Phase = "PLAYING"
	// PhaseScoring is never observed between transitions; scoring runs
	// inside trick resolution.
	PhaseScoring  Phase = "SCORING"
	PhaseGameOver Phase = "GAME_OVER"
)

const (
	// Seats is the number of players at a table.
	Seats = 4
	// HandSize is the number of cards dealt to each seat.
	HandSize = 5
	// TricksPerRound is the number of tricks in a round.
	TricksPerRound = 5
	// WinningScore ends the game once either team reaches it.
	WinningScore = 10
)

// ErrSeatsFull is returned when a fifth player tries to sit down.
var ErrSeatsFull = errors.New("all seats are taken")

// Player is a seated participant.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Hand    []Card `json:"hand"`
	Team    int    `json:"team"`
	Seat    int    `json:"seat"`
	IsReady bool   `json:"isReady"`
	IsBot   bool   `json:"isBot"`
}

// Play is one card laid on a trick.
type Play struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

// Trick accumulates up to four plays.
type Trick struct {
	Cards    []Play  `json:"cards"`
	LeadSuit *Suit   `json:"leadSuit"`
	Winner   *string `json:"winner"`
}

func (t Trick) clone() Trick {
	cards := make([]Play, len(t.Cards))
	copy(cards, t.Cards)
	return Trick{Cards: cards, LeadSuit: t.LeadSuit, Winner: t.Winner}
}

// GameState is the full, unredacted state of one room's game.
type GameState struct {
	RoomID  string   `json:"roomId"`
	Players []Player `json:"players"`
	Phase   Phase    `json:"phase"`

	Deck   []Card `json:"deck"`
	Trump  *Suit  `json:"trump"`
	Dealer int    `json:"dealer"`
	Turn   int    `json:"turn"`

	UpCard *Card `json:"upCard"`
	Maker  *int  `json:"maker"`

	CurrentTrick Trick `json:"currentTrick"`
	// LastTrick is the most recently completed trick, kept so a polling
	// client can still draw it after CurrentTrick has been cleared.
	LastTrick   *Trick `json:"lastTrick"`
	TricksTaken [2]int `json:"tricksTaken"`

	Scores [2]int `json:"scores"`

	Version             int   `json:"version"`
	LastActionTimestamp int64 `json:"lastActionTimestamp"` // unix millis
}

// NewGame returns an empty game in the lobby.
func NewGame(roomID string) *GameState {
	return &GameState{
		RoomID:       roomID,
		Players:      []Player{},
		Phase:        PhaseLobby,
		Deck:         []Card{},
		CurrentTrick: Trick{Cards: []Play{}},
	}
}

// Clone returns a copy that shares no mutable memory with s.
// Cards and the pointed-to suit/seat values are never written through,
// so only slices are copied.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = append(make([]Card, 0, len(p.Hand)), p.Hand...)
		out.Players[i] = p
	}
	out.Deck = append(make([]Card, 0, len(s.Deck)), s.Deck...)
	out.CurrentTrick = s.CurrentTrick.clone()
	if s.LastTrick != nil {
		lt := s.LastTrick.clone()
		out.LastTrick = &lt
	}
	return &out
}

// AddPlayer seats a new player at the next free seat. Bots are always ready.
func (s *GameState) AddPlayer(id, name string, bot bool) (*Player, error) {
	seat := len(s.Players)
	if seat >= Seats {
		return nil, ErrSeatsFull
	}
	s.Players = append(s.Players, Player{
		ID:      id,
		Name:    name,
		Hand:    []Card{},
		Team:    seat % 2,
		Seat:    seat,
		IsReady: bot,
		IsBot:   bot,
	})
	return &s.Players[seat], nil
}

// SeatOf returns the seat of the player with the given id, or -1.
func (s *GameState) SeatOf(playerID string) int {
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// TurnPlayer returns the player whose turn it is, if that seat is filled.
func (s *GameState) TurnPlayer() (*Player, bool) {
	if s.Turn < 0 || s.Turn >= len(s.Players) {
		return nil, false
	}
	return &s.Players[s.Turn], true
}

// Full reports whether every seat is taken.
func (s *GameState) Full() bool {
	return len(s.Players) >= Seats
}

// CardsInPlay counts cards held, left in the deck, or on the current trick.
func (s *GameState) CardsInPlay() int {
	n := len(s.Deck) + len(s.CurrentTrick.Cards)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

func nextSeat(seat int) int {
	return (seat + 1) % Seats
}

func otherTeam(team int) int {
	return 1 - team
}
