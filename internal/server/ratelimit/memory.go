package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often stale windows are dropped.
const sweepEvery = time.Minute

type memoryEntry struct {
	window int64
	count  int
	reset  time.Time
}

// MemoryLimiter implements a fixed-window in-memory rate limiter.
type MemoryLimiter struct {
	mu        sync.Mutex
	counters  map[string]*memoryEntry
	lastSweep time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{counters: make(map[string]*memoryEntry)}
}

// Allow increments key's counter for the current window and compares it with
// rule.Count under one lock.
func (l *MemoryLimiter) Allow(_ context.Context, key string, rule Rule, now time.Time) (Result, error) {
	if rule.Count <= 0 || rule.Period <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	window, reset := rule.window(now)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)

	entry := l.counters[key]
	if entry == nil || entry.window != window {
		entry = &memoryEntry{window: window, reset: reset}
		l.counters[key] = entry
	}
	if entry.count >= rule.Count {
		return Result{Allowed: false, Limit: rule.Count, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	return Result{Allowed: true, Limit: rule.Count, Remaining: rule.Count - entry.count, Reset: reset}, nil
}

func (l *MemoryLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now
	for k, e := range l.counters {
		if !now.Before(e.reset) {
			delete(l.counters, k)
		}
	}
}

// Len reports how many counters are held.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// Reset drops every counter.
func (l *MemoryLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.counters)
}
