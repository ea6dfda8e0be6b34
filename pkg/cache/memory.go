package cache

import (
	"context"
	"sync"
	"time"
)

// Counter is a fixed-window hit counter.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryCounter keeps windows in process memory. It backs rate limiting when Redis is not configured.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
		m.sweep(now)
	}
	w.count++

	return w.count, w.resetAt.Sub(now), nil
}

// sweep drops expired windows. Called with mu held.
func (m *MemoryCounter) sweep(now time.Time) {
	if len(m.windows) < 1024 {
		return
	}
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}

var (
	_ Counter = (*RedisCache)(nil)
	_ Counter = (*MemoryCounter)(nil)
)
