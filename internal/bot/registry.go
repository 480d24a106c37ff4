package bot

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"euchre/internal/euchre"
)

// Registry holds the named bot policies a server can be started with.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// DefaultRegistry knows "greedy" and "random".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("greedy", NewGreedy())
	r.Register("random", NewRandom(rand.New(rand.NewSource(time.Now().UnixNano()))))
	return r
}

// Register adds a policy. Panics on duplicate names.
func (r *Registry) Register(name string, p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.policies[name]; exists {
		panic(fmt.Sprintf("bot policy %q already registered", name))
	}
	r.policies[name] = p
}

// Get returns a policy by name.
func (r *Registry) Get(name string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot policy %q", name)
	}
	return p, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Random picks uniformly among the legal actions.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random policy drawing from rng.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (p *Random) ChooseAction(s *euchre.GameState, botID string) (euchre.Action, bool) {
	legal := euchre.LegalActions(s, botID)
	if len(legal) == 0 {
		return euchre.Action{}, false
	}
	p.mu.Lock()
	i := p.rng.Intn(len(legal))
	p.mu.Unlock()
	return legal[i], true
}
