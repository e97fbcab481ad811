package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of an admission attempt.
type Result struct {
	OK        bool
	Remaining int
	// RetryAfter is how long until the window resets. Only set on
	// rejection.
	RetryAfter time.Duration
}

// Limiter admits or rejects attempts for a caller-supplied key.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Admit(key string) Result
}

type bucket struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory.
// Counters do not survive restarts and are not shared between instances;
// multi-instance deployments need a shared store behind the Limiter
// interface.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter creates a limiter admitting at most limit attempts per
// key within each window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Admit records an attempt for key. Expired windows are discarded lazily:
// a key whose window has closed restarts as if absent.
func (l *MemoryLimiter) Admit(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !b.resetAt.After(now) {
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(l.window)}
		return Result{OK: true, Remaining: l.limit - 1}
	}

	if b.count >= l.limit {
		return Result{RetryAfter: b.resetAt.Sub(now)}
	}

	b.count++
	return Result{OK: true, Remaining: l.limit - b.count}
}
