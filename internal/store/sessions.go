package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/park285/geobluff/internal/geobluff"
)

type entry struct {
	mu      sync.Mutex
	session *geobluff.Session
	touched time.Time
	gone    bool
}

// Sessions owns every live game. Each entry has its own lock, so operations
// on one session never wait on another. A zero ttl disables expiry.
type Sessions struct {
	mu      sync.RWMutex
	entries map[string]*entry
	clock   quartz.Clock
	ttl     time.Duration
}

func NewSessions(clock quartz.Clock, ttl time.Duration) *Sessions {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Sessions{entries: make(map[string]*entry), clock: clock, ttl: ttl}
}

// Put stores s under s.ID, replacing any previous game with that id.
func (m *Sessions) Put(s *geobluff.Session) {
	e := &entry{session: s, touched: m.clock.Now()}
	m.mu.Lock()
	prev := m.entries[s.ID]
	m.entries[s.ID] = e
	m.mu.Unlock()
	if prev != nil {
		prev.mu.Lock()
		prev.gone = true
		prev.mu.Unlock()
	}
}

// With runs fn with exclusive access to the session id. Unknown or expired
// ids yield geobluff.UnknownSession.
func (m *Sessions) With(id string, fn func(*geobluff.Session) error) error {
	m.mu.RLock()
	e := m.entries[id]
	m.mu.RUnlock()
	if e == nil {
		return geobluff.UnknownSession()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return geobluff.UnknownSession()
	}
	now := m.clock.Now()
	if m.expired(e, now) {
		e.gone = true
		m.remove(id, e)
		return geobluff.UnknownSession()
	}
	e.touched = now
	return fn(e.session)
}

// Delete drops a session and reports whether it existed.
func (m *Sessions) Delete(id string) bool {
	m.mu.Lock()
	e := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if e == nil {
		return false
	}
	e.mu.Lock()
	e.gone = true
	e.mu.Unlock()
	return true
}

func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep removes expired sessions and returns their ids.
func (m *Sessions) Sweep() []string {
	if m.ttl <= 0 {
		return nil
	}
	m.mu.RLock()
	candidates := make(map[string]*entry, len(m.entries))
	for id, e := range m.entries {
		candidates[id] = e
	}
	m.mu.RUnlock()

	var removed []string
	now := m.clock.Now()
	for id, e := range candidates {
		if !e.mu.TryLock() {
			continue // in use, so not idle
		}
		if !e.gone && m.expired(e, now) {
			e.gone = true
			m.remove(id, e)
			removed = append(removed, id)
		}
		e.mu.Unlock()
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done, reporting removed ids
// to onExpire.
func (m *Sessions) RunJanitor(ctx context.Context, every time.Duration, onExpire func(ids []string)) error {
	if m.ttl <= 0 || every <= 0 {
		<-ctx.Done()
		return nil
	}
	w := m.clock.TickerFunc(ctx, every, func() error {
		if ids := m.Sweep(); len(ids) > 0 && onExpire != nil {
			onExpire(ids)
		}
		return nil
	}, "janitor")
	err := w.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (m *Sessions) expired(e *entry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.touched) > m.ttl
}

func (m *Sessions) remove(id string, e *entry) {
	m.mu.Lock()
	if m.entries[id] == e {
		delete(m.entries, id)
	}
	m.mu.Unlock()
}
