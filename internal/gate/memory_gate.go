package gate

import (
	"context"
	"sync"
	"time"
)

// MemoryGate is a process-local Gate for single-replica and CLI use.
type MemoryGate struct {
	mu     sync.Mutex
	now    func() time.Time
	opened map[string]time.Time
}

func NewMemoryGate(now func() time.Time) *MemoryGate {
	if now == nil {
		now = time.Now
	}
	return &MemoryGate{now: now, opened: make(map[string]time.Time)}
}

func (g *MemoryGate) Allow(_ context.Context, key string, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if until, ok := g.opened[key]; ok && now.Before(until) {
		return false, nil
	}
	g.opened[key] = now.Add(interval)
	return true, nil
}

func (g *MemoryGate) Reset(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.opened, key)
	g.mu.Unlock()
	return nil
}
