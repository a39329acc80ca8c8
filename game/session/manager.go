package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wricardo/bulls-and-cows/game/engine"
)

var (
	ErrUnknownSession   = errors.New("session not found")
	ErrInvalidSessionID = errors.New("invalid session ID")
)

// Info is a point-in-time snapshot of a session
type Info struct {
	ID             ID                    `json:"id"`
	Length         int                   `json:"length"`
	MaxAttempts    uint32                `json:"max_attempts"`
	Attempts       int                   `json:"attempts"`
	State          engine.State          `json:"state"`
	History        []engine.HistoryEntry `json:"history"`
	Secret         engine.Sequence       `json:"-"`
	CreatedAt      time.Time             `json:"created_at"`
	LastAccessedAt time.Time             `json:"last_accessed_at"`
}

// entry guards one game. Its mutex serializes guesses on the same session
// without blocking other sessions.
type entry struct {
	mu             sync.Mutex
	game           *engine.Game
	createdAt      time.Time
	lastAccessedAt time.Time
}

func (e *entry) snapshot(id ID) *Info {
	return &Info{
		ID:             id,
		Length:         e.game.Len(),
		MaxAttempts:    e.game.MaxAttempts(),
		Attempts:       e.game.Attempts(),
		State:          e.game.State(),
		History:        e.game.History(),
		Secret:         e.game.Secret(),
		CreatedAt:      e.createdAt,
		LastAccessedAt: e.lastAccessedAt,
	}
}

// Manager owns every active game and mediates concurrent access to them.
// Sessions live until the process exits.
type Manager struct {
	ids   *IDPool
	games map[ID]*entry
	mu    sync.RWMutex // guards games
	now   func() time.Time
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{
		ids:   NewIDPool(),
		games: make(map[ID]*entry),
		now:   time.Now,
	}
}

// Create builds a game for secret and registers it under a fresh ID
func (m *Manager) Create(secret engine.Sequence, maxAttempts uint32) (ID, error) {
	game, err := engine.NewGame(secret, maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to create game: %w", err)
	}

	now := m.now()
	e := &entry{game: game, createdAt: now, lastAccessedAt: now}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Allocating under the map lock keeps insertion order equal to ID order.
	id := m.ids.Next()
	m.games[id] = e

	return id, nil
}

// WithGame runs fn with exclusive access to the game registered under id
// and returns fn's error. The game must not be retained after fn returns.
func (m *Manager) WithGame(id ID, fn func(g *engine.Game) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastAccessedAt = m.now()
	return fn(e.game)
}

// HistoryOf returns a copy of the accepted guesses for id
func (m *Manager) HistoryOf(id ID) ([]engine.HistoryEntry, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.History(), nil
}

// Info returns a snapshot of a single session
func (m *Manager) Info(id ID) (*Info, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(id), nil
}

// List returns snapshots of all sessions ordered by ID
func (m *Manager) List() []*Info {
	type keyed struct {
		id ID
		e  *entry
	}

	m.mu.RLock()
	all := make([]keyed, 0, len(m.games))
	for id, e := range m.games {
		all = append(all, keyed{id, e})
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].id < all[j].id })

	result := make([]*Info, 0, len(all))
	for _, k := range all {
		k.e.mu.Lock()
		result = append(result, k.e.snapshot(k.id))
		k.e.mu.Unlock()
	}

	return result
}

// Count returns the number of sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// CountActive returns the number of sessions whose game is still in progress
func (m *Manager) CountActive() int {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.games))
	for _, e := range m.games {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	active := 0
	for _, e := range entries {
		e.mu.Lock()
		if e.game.State() == engine.InProgress {
			active++
		}
		e.mu.Unlock()
	}
	return active
}

func (m *Manager) lookup(id ID) (*entry, error) {
	m.mu.RLock()
	e, exists := m.games[id]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("game with id %d: %w", id, ErrUnknownSession)
	}
	return e, nil
}
