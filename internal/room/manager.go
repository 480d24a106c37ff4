package room

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"euchre/internal/bot"
	"euchre/internal/euchre"
)

// DefaultMaxBotSteps caps the bot moves made after one human action.
const DefaultMaxBotSteps = 10

// Manager manages all active rooms.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	engine      *euchre.Engine
	ledger      Ledger
	policy      bot.Policy
	log         *zap.Logger
	now         func() time.Time
	maxBotSteps int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithPolicy sets the policy every bot plays with.
func WithPolicy(p bot.Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithMaxBotSteps overrides DefaultMaxBotSteps.
func WithMaxBotSteps(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxBotSteps = n
		}
	}
}

// WithClock sets the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a room manager. All rooms share engine.
func NewManager(engine *euchre.Engine, ledger Ledger, opts ...Option) *Manager {
	m := &Manager{
		rooms:       make(map[string]*Room),
		engine:      engine,
		ledger:      ledger,
		policy:      bot.NewGreedy(),
		log:         zap.NewNop(),
		now:         time.Now,
		maxBotSteps: DefaultMaxBotSteps,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create makes a new room and records it in the ledger.
func (m *Manager) Create() (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateID()
	for m.rooms[id] != nil {
		id = generateID()
	}
	if err := m.ledger.CreateRoom(id); err != nil {
		return nil, fmt.Errorf("persist room: %w", err)
	}
	r := newRoom(id, m)
	m.rooms[id] = r
	m.log.Info("room created", zap.String("room_id", id))
	return r, nil
}

// Get returns a room by id.
func (m *Manager) Get(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return r, nil
}

// List returns info for all active rooms, newest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Remove deletes a room from memory and the ledger.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
	if err := m.ledger.DeleteRoom(id); err != nil {
		m.log.Error("delete room", zap.String("room_id", id), zap.Error(err))
	}
}

// CleanupLoop removes stale rooms every interval until ctx is done.
func (m *Manager) CleanupLoop(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(interval, maxAge)
		}
	}
}

// cleanup drops finished rooms untouched for a full interval and any room
// idle longer than maxAge.
func (m *Manager) cleanup(interval, maxAge time.Duration) int {
	now := m.now()
	var stale []string

	m.mu.Lock()
	for id, r := range m.rooms {
		idle, finished := r.idle(now)
		if idle > maxAge || (finished && idle >= interval) {
			stale = append(stale, id)
			delete(m.rooms, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.log.Info("cleaning up room", zap.String("room_id", id))
		if err := m.ledger.DeleteRoom(id); err != nil {
			m.log.Error("delete room", zap.String("room_id", id), zap.Error(err))
		}
	}
	return len(stale)
}

func generateID() string {
	return uuid.NewString()[:8]
}
