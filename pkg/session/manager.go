package session

import (
	"sync"
	"time"

	"github.com/harun/chatclone/internal/observability"
	"github.com/rs/zerolog"
)

// Manager owns the lifecycle of live session stores
type Manager struct {
	stores map[string]*Store
	mu     sync.RWMutex
	logger zerolog.Logger
	reaper *Reaper
}

// ManagerConfig holds manager configuration
type ManagerConfig struct {
	Logger       zerolog.Logger
	IdleTimeout  time.Duration
	ReapSchedule string
}

// NewManager creates a new session manager
func NewManager(cfg ManagerConfig) *Manager {
	observability.EnsureRegistered()

	m := &Manager{
		stores: make(map[string]*Store),
		logger: cfg.Logger.With().Str("component", "session-manager").Logger(),
	}
	m.reaper = NewReaper(m, cfg.IdleTimeout, cfg.ReapSchedule)
	return m
}

// Create starts a new session and returns its store
func (m *Manager) Create() *Store {
	store := NewStore()

	m.mu.Lock()
	m.stores[store.ID()] = store
	count := len(m.stores)
	m.mu.Unlock()

	observability.SetActiveSessions(count)
	m.logger.Debug().Str("session_id", store.ID()).Msg("Session started")

	return store
}

// Get returns the store for a session
func (m *Manager) Get(id string) (*Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	store, ok := m.stores[id]
	return store, ok
}

// End destroys a session. It reports whether the session existed.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	_, ok := m.stores[id]
	delete(m.stores, id)
	count := len(m.stores)
	m.mu.Unlock()

	if !ok {
		return false
	}

	observability.SetActiveSessions(count)
	m.logger.Debug().Str("session_id", id).Msg("Session ended")
	return true
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores)
}

// ReapIdle ends every session idle for longer than maxIdle
func (m *Manager) ReapIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	cutoff := time.Now().Add(-maxIdle)

	m.mu.RLock()
	var idle []string
	for id, store := range m.stores {
		if store.LastActive().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	reaped := 0
	for _, id := range idle {
		if m.End(id) {
			reaped++
		}
	}

	if reaped > 0 {
		m.logger.Info().
			Int("reaped", reaped).
			Dur("max_idle", maxIdle).
			Msg("Idle sessions reaped")
	}

	return reaped
}

// Start begins periodic idle reaping
func (m *Manager) Start() error {
	return m.reaper.Start()
}

// Stop ends periodic reaping and destroys every live session
func (m *Manager) Stop() error {
	err := m.reaper.Stop()

	m.mu.Lock()
	m.stores = make(map[string]*Store)
	m.mu.Unlock()
	observability.SetActiveSessions(0)

	m.logger.Info().Msg("Session manager stopped")
	return err
}
