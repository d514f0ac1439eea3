package store

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// DefaultPresenceWindow is how long a client counts as live after its last poll.
const DefaultPresenceWindow = 6 * time.Second

// Snapshot is the liveness summary of one session.
type Snapshot struct {
	Active       int
	OtherPresent bool
}

// Presence records client polls per session.
type Presence interface {
	// Observe records clientID (if non-empty) as seen now, drops stale
	// clients and summarizes who is left.
	Observe(ctx context.Context, sessionID, clientID string) (Snapshot, error)
	Forget(ctx context.Context, sessionID string) error
}

func summarize(clients []string, clientID string) Snapshot {
	snap := Snapshot{Active: len(clients)}
	if clientID == "" {
		snap.OtherPresent = len(clients) > 1
		return snap
	}
	for _, c := range clients {
		if c != clientID {
			snap.OtherPresent = true
			break
		}
	}
	return snap
}

// MemoryPresence keeps timestamps in process.
type MemoryPresence struct {
	mu     sync.Mutex
	seen   map[string]map[string]time.Time
	clock  quartz.Clock
	window time.Duration
}

func NewMemoryPresence(clock quartz.Clock, window time.Duration) *MemoryPresence {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if window <= 0 {
		window = DefaultPresenceWindow
	}
	return &MemoryPresence{seen: make(map[string]map[string]time.Time), clock: clock, window: window}
}

func (p *MemoryPresence) Observe(_ context.Context, sessionID, clientID string) (Snapshot, error) {
	now := p.clock.Now()
	p.mu.Lock()
	defer p.mu.Unlock()

	clients := p.seen[sessionID]
	if clients == nil {
		clients = make(map[string]time.Time)
		p.seen[sessionID] = clients
	}
	if clientID != "" {
		clients[clientID] = now
	}
	live := make([]string, 0, len(clients))
	for id, at := range clients {
		if now.Sub(at) > p.window {
			delete(clients, id)
			continue
		}
		live = append(live, id)
	}
	if len(clients) == 0 {
		delete(p.seen, sessionID)
	}
	return summarize(live, clientID), nil
}

func (p *MemoryPresence) Forget(_ context.Context, sessionID string) error {
	p.mu.Lock()
	delete(p.seen, sessionID)
	p.mu.Unlock()
	return nil
}
