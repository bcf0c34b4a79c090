package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/clock"
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/pricing"
)

// retention is how long a finished session stays readable.
const retention = 15 * time.Minute

// Manager owns the open sessions of the process, keyed by handle.  Each
// session belongs to the staff user that opened it; other users cannot
// see it.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	clock    clock.Clock
	hold     time.Duration
	maxQty   int
	resolver DiscountResolver
	log      logrus.FieldLogger
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithManagerClock sets the clock handed to every session.
func WithManagerClock(c clock.Clock) ManagerOption { return func(m *Manager) { m.clock = c } }

// WithHold sets the hold duration of new sessions.
func WithHold(d time.Duration) ManagerOption { return func(m *Manager) { m.hold = d } }

// WithMaxQuantity caps the ticket quantity of new sessions.
func WithMaxQuantity(n int) ManagerOption { return func(m *Manager) { m.maxQty = n } }

// NewManager returns an empty Manager.
func NewManager(resolver DiscountResolver, log logrus.FieldLogger, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		clock:    clock.Real{},
		hold:     DefaultHold,
		maxQty:   DefaultMaxQuantity,
		resolver: resolver,
		log:      log,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open creates and registers a session.  Hold, clock and quantity cap
// come from the Manager.
func (m *Manager) Open(cfg Config, snap inventory.Snapshot, prices pricing.Model) (*Session, error) {
	m.Sweep()
	cfg.Hold = m.hold
	cfg.MaxQuantity = m.maxQty
	s, err := New(cfg, snap, prices, m.resolver, WithClock(m.clock), WithLogger(m.log))
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	s.log.WithFields(logrus.Fields{
		"owner":    cfg.Owner,
		"event_id": cfg.Event.ID,
		"quantity": cfg.Quantity,
	}).Info("session opened")
	return s, nil
}

// Get returns the session with the given handle owned by owner.
func (m *Manager) Get(id, owner string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Owner() != owner {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close aborts a session if still open and forgets it.
func (m *Manager) Close(id, owner string) error {
	s, err := m.Get(id, owner)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	s.Close()
	return nil
}

// Sweep forgets sessions that finished more than the retention period ago.
func (m *Manager) Sweep() {
	cutoff := m.clock.Now().Add(-retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.closedSince(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every session and stops their timers.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
