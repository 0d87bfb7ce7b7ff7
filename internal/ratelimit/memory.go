package ratelimit

import (
	"context"
	"sync"
	"time"
)

func nowUnixMicro() int64 {
	return time.Now().UnixMicro()
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// MemoryLimiter is the in-process backend for tests and reduced mode. The
// check-and-decrement serializes per bucket, not per limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	limits  Limits
	buckets map[string]*bucket
	now     func() time.Time
}

func NewMemoryLimiter(limits Limits) *MemoryLimiter {
	return &MemoryLimiter{
		limits:  limits,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(ctx context.Context, subjectID string, class Class) (bool, error) {
	if class == ClassHealth {
		return true, nil
	}
	capacity, ok := l.limits[class]
	if !ok || capacity <= 0 {
		return true, nil
	}

	key := bucketKey(subjectID, class)
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(capacity), lastRefill: now}
		l.buckets[key] = b
	}
	l.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens += elapsed * ratePerSecond(capacity)
		if b.tokens > float64(capacity) {
			b.tokens = float64(capacity)
		}
		b.lastRefill = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true, nil
	}
	return false, nil
}

var _ Limiter = (*MemoryLimiter)(nil)
