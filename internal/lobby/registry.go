package lobby

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"wikirace/internal/stats"
	"wikirace/internal/wiki"
)

// Policy controls what happens when a join names a code with no live lobby.
type Policy string

const (
	// PolicyOpen auto-creates a lobby under the unknown code.
	PolicyOpen = Policy("open")
	// PolicyStrict rejects joins to unknown codes. The NewLobbyCode
	// sentinel still creates a fresh lobby in either policy.
	PolicyStrict = Policy("strict")
)

// ErrLobbyNotFound is returned for strict-policy joins to unknown codes.
var ErrLobbyNotFound = errors.New("lobby not found")

// Registry is the process-wide code -> lobby map. Lobbies exist only while
// occupied: the last client leaving deletes the lobby immediately.
type Registry struct {
	policy   Policy
	cfg      Config
	provider wiki.ArticleProvider
	store    stats.Store

	// legacyResetOnEmpty replicates an old deployment quirk where any
	// lobby emptying wiped all player stats. Compatibility testing only.
	legacyResetOnEmpty bool

	mu      sync.Mutex
	lobbies map[string]*Lobby
}

func NewRegistry(policy Policy, cfg Config, provider wiki.ArticleProvider, store stats.Store) *Registry {
	return &Registry{
		policy:   policy,
		cfg:      cfg,
		provider: provider,
		store:    store,
		lobbies:  make(map[string]*Lobby),
	}
}

// EnableLegacyResetOnEmpty opts into the historical wipe-stats-on-empty
// behavior. Off by default.
func (r *Registry) EnableLegacyResetOnEmpty() {
	r.legacyResetOnEmpty = true
}

// Create makes a lobby under a freshly generated code, retrying generation
// until the code is unique among live lobbies.
func (r *Registry) Create() (*Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked()
}

func (r *Registry) createLocked() (*Lobby, error) {
	// Try up to 10 times to generate a unique code
	for range 10 {
		code, err := GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("generating lobby code: %w", err)
		}
		if _, exists := r.lobbies[code]; exists {
			continue
		}
		l := New(code, r.cfg, r.provider, r.store)
		r.lobbies[code] = l
		log.Printf("[Registry] Created lobby %s\n", code)
		return l, nil
	}
	return nil, fmt.Errorf("failed to generate unique lobby code after 10 attempts")
}

// Get returns the lobby for code, or nil.
func (r *Registry) Get(code string) *Lobby {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lobbies[code]
}

// Join resolves the target lobby per policy and registers the client under
// one registry critical section, so a concurrent empty-lobby sweep cannot
// strand the client in a deleted lobby.
//
// The NewLobbyCode sentinel (or an empty code) always creates a brand-new
// lobby. Otherwise open policy creates unknown codes on demand and strict
// policy returns ErrLobbyNotFound.
func (r *Registry) Join(code string, c *Client, name string) (*Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var l *Lobby
	switch {
	case code == "" || code == NewLobbyCode:
		created, err := r.createLocked()
		if err != nil {
			return nil, err
		}
		l = created
	default:
		l = r.lobbies[code]
		if l == nil {
			if r.policy == PolicyStrict {
				return nil, ErrLobbyNotFound
			}
			l = New(code, r.cfg, r.provider, r.store)
			r.lobbies[code] = l
			log.Printf("[Registry] Created lobby %s\n", code)
		}
	}

	l.AddClient(c, name)
	return l, nil
}

// RemoveIfEmpty deletes the lobby when its client set is empty. Invoked
// after every client removal; concurrent callers serialize here, so a
// simultaneous pair of disconnects cannot double-delete.
func (r *Registry) RemoveIfEmpty(code string) {
	r.mu.Lock()
	l := r.lobbies[code]
	if l == nil || l.Size() > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.lobbies, code)
	l.markRemoved()
	r.mu.Unlock()

	log.Printf("[Registry] Lobby %s is empty, deleted\n", code)
	if r.legacyResetOnEmpty {
		log.Println("[Registry] Legacy reset-on-empty enabled, wiping player stats")
		if err := r.store.ResetAll(); err != nil {
			log.Printf("[Registry] Stats reset failed: %v\n", err)
		}
	}
}

// Summary is one row of a lobby listing.
type Summary struct {
	Code    string
	Players int
	Active  bool
}

// List enumerates live lobbies sorted by code.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	list := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		list = append(list, l)
	}
	r.mu.Unlock()

	summaries := make([]Summary, 0, len(list))
	for _, l := range list {
		summaries = append(summaries, Summary{
			Code:    l.Code,
			Players: l.Size(),
			Active:  l.GameActive(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Code < summaries[j].Code })
	return summaries
}
