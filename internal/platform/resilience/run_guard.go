package resilience

import (
	"context"
	"sync"
)

// RunGuard admits at most one holder per key. Unlike SingleFlight, a second
// caller does not wait: it is told the key is busy and returns immediately.
type RunGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewRunGuard() *RunGuard {
	return &RunGuard{active: make(map[string]struct{})}
}

// TryLock returns an unlock func and true when the key was free.
func (g *RunGuard) TryLock(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active == nil {
		g.active = make(map[string]struct{})
	}
	if _, busy := g.active[key]; busy {
		return func() {}, false, nil
	}
	g.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, true, nil
}

func (g *RunGuard) IsLocked(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[key]
	return busy
}
