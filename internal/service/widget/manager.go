package widget

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/einfratech/chatwidget/backend/internal/logging"
	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
)

var ErrSessionNotFound = errors.New("session not found")

type session struct {
	widget    *Widget
	createdAt time.Time
	lastSeen  time.Time
}

// Manager keeps one Widget per browser session in memory.
type Manager struct {
	opts Options
	ttl  time.Duration
	now  func() time.Time
	log  zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewManager builds a manager. A non-positive ttl disables idle reaping.
func NewManager(opts Options, ttl time.Duration) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		opts:     opts,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logging.Component(opts.Logger, "widget-manager"),
		sessions: make(map[string]*session),
	}
}

// Create provisions a fresh widget with its welcome message.
func (m *Manager) Create(_ context.Context) (*Widget, error) {
	id := uuid.NewString()
	w := New(id, m.opts)
	now := m.now()

	m.mu.Lock()
	m.sessions[id] = &session{widget: w, createdAt: now, lastSeen: now}
	total := len(m.sessions)
	m.mu.Unlock()

	m.log.Info().Str("session", id).Int("sessions", total).Msg("widget session created")
	return w, nil
}

// Get returns the widget for id and marks the session as active.
func (m *Manager) Get(_ context.Context, id string) (*Widget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s.widget, nil
}

// Touch marks the session as active without handing out the widget.
func (m *Manager) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return nil
}

// Delete shuts the widget down and forgets it.
func (m *Manager) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.widget.Shutdown()
	m.log.Info().Str("session", id).Msg("widget session deleted")
	return nil
}

// List returns the ids of live sessions, sorted.
func (m *Manager) List(_ context.Context) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Catalog exposes the static content widgets are built from.
func (m *Manager) Catalog() model.Catalog {
	return m.opts.Catalog
}

// Reap deletes sessions idle for longer than the ttl and returns how many went.
// A session with an attached stream counts as active.
func (m *Manager) Reap() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()
	cutoff := now.Add(-m.ttl)

	var expired []*session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.widget.Subscribers() > 0 {
			s.lastSeen = now
			continue
		}
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.widget.Shutdown()
	}
	if len(expired) > 0 {
		m.log.Info().Int("expired", len(expired)).Msg("reaped idle widget sessions")
	}
	return len(expired)
}

// Run reaps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reap()
		}
	}
}

// Close shuts every widget down.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.widget.Shutdown()
	}
}
