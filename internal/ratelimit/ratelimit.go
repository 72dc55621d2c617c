package ratelimit

import (
	"sync"
	"time"
)

// Limiter answers whether a caller identified by key may proceed. Consuming
// and checking are one operation so two racing requests cannot both sneak
// under the cap.
type Limiter interface {
	Allow(key string) (bool, error)
}

// MemoryLimiter is a fixed-window counter held in process memory. It is the
// default backend for single-instance deployments; multi-instance setups
// should use the redis backend so all instances share one budget.
type MemoryLimiter struct {
	points int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemoryLimiter(points int, windowSize time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		points:  points,
		window:  windowSize,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}

	if w.count >= l.points {
		return false, nil
	}
	w.count++
	return true, nil
}

// Sweep drops expired windows. Callers run it periodically so the map does
// not grow with every IP ever seen.
func (l *MemoryLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}
