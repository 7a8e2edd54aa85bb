package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type window struct {
	count   int64
	resetAt time.Time
}

// Memory is an in-process Limiter. Counters live only as long as the process.
type Memory struct {
	limit  int
	period time.Duration
	clock  clockwork.Clock

	mu      sync.Mutex
	windows map[string]*window
}

// NewMemory creates a limiter allowing limit requests per key every period.
func NewMemory(limit int, period time.Duration, clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{
		limit:   limit,
		period:  period,
		clock:   clock,
		windows: make(map[string]*window),
	}
}

// Allow counts a request for key.
func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		if len(m.windows) > 10000 {
			m.sweep(now)
		}
		w = &window{resetAt: now.Add(m.period)}
		m.windows[key] = w
	}
	w.count++

	return decide(w.count, m.limit, w.resetAt), nil
}

// sweep drops expired windows. Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
		}
	}
}
