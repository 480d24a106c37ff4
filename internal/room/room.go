package room

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"euchre/internal/bot"
	"euchre/internal/euchre"
	"euchre/internal/storage"
)

// Ledger is the subset of storage.Store a room writes to.
type Ledger interface {
	CreateRoom(id string) error
	UpdateRoomStatus(id, status string) error
	RecordResult(roomID string, scores [2]int, winner int) error
	DeleteRoom(id string) error
}

// Room is one table. All mutations are serialized by mu, and state is only
// ever replaced, never written in place.
type Room struct {
	mu        sync.Mutex
	ID        string
	CreatedAt time.Time

	state    *euchre.GameState
	engine   *euchre.Engine
	policy   bot.Policy
	ledger   Ledger
	log      *zap.Logger
	now      func() time.Time
	maxSteps int

	status   string
	recorded bool
	touched  time.Time
}

// Info summarizes a room for listings.
type Info struct {
	ID        string       `json:"id"`
	Phase     euchre.Phase `json:"phase"`
	Players   int          `json:"players"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"createdAt"`
}

func newRoom(id string, m *Manager) *Room {
	now := m.now()
	return &Room{
		ID:        id,
		CreatedAt: now,
		state:     euchre.NewGame(id),
		engine:    m.engine,
		policy:    m.policy,
		ledger:    m.ledger,
		log:       m.log.With(zap.String("room_id", id)),
		now:       m.now,
		maxSteps:  m.maxBotSteps,
		status:    storage.StatusLobby,
		touched:   now,
	}
}

// Join seats a new human player and returns their id.
func (r *Room) Join(nickname string) (string, *euchre.GameState, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", nil, fmt.Errorf("%w: nickname", ErrMissingParameters)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	if err := r.seat(id, nickname, false); err != nil {
		return "", nil, err
	}
	r.log.Info("player joined", zap.String("player_id", id), zap.String("nickname", nickname))
	return id, euchre.PublicView(r.state, id), nil
}

// AddBot fills the next seat with a bot on behalf of a seated human, so
// seat 0 is never a bot. The returned view is redacted for viewerID.
func (r *Room) AddBot(viewerID string) (*euchre.GameState, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("%w: playerId", ErrMissingParameters)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Phase != euchre.PhaseLobby || r.state.Full() {
		return nil, ErrRoomFull
	}
	if seat := r.state.SeatOf(viewerID); seat < 0 || r.state.Players[seat].IsBot {
		return nil, fmt.Errorf("%w: %s is not seated in room %s", ErrInvalidAction, viewerID, r.ID)
	}

	id := r.newBotID()
	name := fmt.Sprintf("Bot %d", len(r.state.Players)+1)
	if err := r.seat(id, name, true); err != nil {
		return nil, err
	}
	r.log.Info("bot added", zap.String("player_id", id), zap.String("by", viewerID))
	return euchre.PublicView(r.state, viewerID), nil
}

// seat adds a player to a copy of the state. Caller must hold mu.
func (r *Room) seat(id, name string, isBot bool) error {
	if r.state.Phase != euchre.PhaseLobby || r.state.Full() {
		return ErrRoomFull
	}
	next := r.state.Clone()
	if _, err := next.AddPlayer(id, name, isBot); err != nil {
		return ErrRoomFull
	}
	next.Version++
	next.LastActionTimestamp = r.now().UnixMilli()
	r.state = next
	r.touched = r.now()
	return nil
}

func (r *Room) newBotID() string {
	for {
		id := "BOT-" + uuid.NewString()[:4]
		if r.state.SeatOf(id) < 0 {
			return id
		}
	}
}

// State returns the view for playerID, or changed=false when the caller
// already holds clientVersion.
func (r *Room) State(playerID string, clientVersion int) (view *euchre.GameState, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if clientVersion == r.state.Version {
		return nil, false
	}
	return euchre.PublicView(r.state, playerID), true
}

// LegalActions lists what playerID may do right now.
func (r *Room) LegalActions(playerID string) []euchre.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := euchre.LegalActions(r.state, playerID)
	if actions == nil {
		actions = []euchre.Action{}
	}
	return actions
}

// Perform applies a player's action, then lets bots take their turns.
// Nothing changes when the action is not currently legal.
func (r *Room) Perform(playerID string, a euchre.Action) (*euchre.GameState, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: playerId", ErrMissingParameters)
	}
	a.PlayerID = playerID

	r.mu.Lock()
	defer r.mu.Unlock()

	if !euchre.IsLegal(r.state, a) {
		return nil, fmt.Errorf("%w: %s not allowed in %s", ErrInvalidAction, a, r.state.Phase)
	}
	next, err := r.engine.Apply(r.state, a)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", a.Type, err)
	}
	r.state = next
	r.touched = r.now()
	r.log.Debug("action applied",
		zap.String("player_id", playerID),
		zap.String("action", string(a.Type)),
		zap.Int("version", next.Version),
	)

	r.runBots()
	r.syncLedger()
	return euchre.PublicView(r.state, playerID), nil
}

// Resume restarts the bot loop for a table left on a bot's turn by an
// earlier request that hit maxSteps. It is a no-op when a human is up.
func (r *Room) Resume(playerID string) (*euchre.GameState, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: playerId", ErrMissingParameters)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.SeatOf(playerID) < 0 {
		return nil, fmt.Errorf("%w: %s is not seated in room %s", ErrInvalidAction, playerID, r.ID)
	}
	before := r.state.Version
	r.runBots()
	if r.state.Version != before {
		r.touched = r.now()
		r.syncLedger()
	}
	return euchre.PublicView(r.state, playerID), nil
}

// runBots plays bot turns until a human is up, the game is not in play,
// or maxSteps moves have been made. Caller must hold mu.
func (r *Room) runBots() {
	for step := 0; step < r.maxSteps; step++ {
		if r.state.Phase == euchre.PhaseLobby || r.state.Phase == euchre.PhaseGameOver {
			return
		}
		p, ok := r.state.TurnPlayer()
		if !ok || !p.IsBot {
			return
		}
		if err := r.botStep(p.ID); err != nil {
			r.log.Warn("bot loop halted", zap.String("player_id", p.ID), zap.Error(err))
			return
		}
	}
}

func (r *Room) botStep(botID string) error {
	a, ok := r.policy.ChooseAction(r.state, botID)
	if !ok {
		return ErrBotStuck
	}
	if !euchre.IsLegal(r.state, a) {
		return fmt.Errorf("%w: chose illegal %s", ErrBotStuck, a)
	}
	next, err := r.engine.Apply(r.state, a)
	if err != nil {
		return err
	}
	r.state = next
	r.log.Debug("bot moved",
		zap.String("player_id", botID),
		zap.String("action", string(a.Type)),
		zap.Int("version", next.Version),
	)
	return nil
}

// syncLedger mirrors the phase into the ledger and records the result the
// first time the game ends. Ledger failures are logged only. Caller must
// hold mu.
func (r *Room) syncLedger() {
	status := ledgerStatus(r.state.Phase)

	if status == storage.StatusFinished {
		if r.recorded {
			return
		}
		winner, _ := euchre.Winner(r.state)
		if err := r.ledger.RecordResult(r.ID, r.state.Scores, winner); err != nil {
			r.log.Error("record result", zap.Error(err))
			return
		}
		r.recorded = true
		r.status = status
		r.log.Info("game over", zap.Int("winner_team", winner), zap.Ints("scores", r.state.Scores[:]))
		return
	}

	if status != r.status {
		if err := r.ledger.UpdateRoomStatus(r.ID, status); err != nil {
			r.log.Error("update room status", zap.Error(err))
			return
		}
		r.status = status
	}
}

func ledgerStatus(p euchre.Phase) string {
	switch p {
	case euchre.PhaseLobby:
		return storage.StatusLobby
	case euchre.PhaseGameOver:
		return storage.StatusFinished
	default:
		return storage.StatusPlaying
	}
}

// Info returns a summary of the room.
func (r *Room) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Info{
		ID:        r.ID,
		Phase:     r.state.Phase,
		Players:   len(r.state.Players),
		Version:   r.state.Version,
		CreatedAt: r.CreatedAt,
	}
}

// idle reports how long ago the room last changed and whether its game is over.
func (r *Room) idle(now time.Time) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Sub(r.touched), r.state.Phase == euchre.PhaseGameOver
}
