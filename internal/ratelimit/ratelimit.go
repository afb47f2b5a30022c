// Package ratelimit caps how many requests each analysis provider may
// make per day, so one noisy run cannot burn the API budget.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	perDay  int // 0 = unlimited
	counts  map[string]int
	resetAt time.Time
}

// New creates a limiter allowing perDay requests per provider name.
func New(perDay int) *Limiter {
	return &Limiter{
		perDay:  perDay,
		counts:  make(map[string]int),
		resetAt: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether provider may make another request and counts it
// when allowed.
func (l *Limiter) Allow(provider string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.resetAt) {
		l.counts = make(map[string]int)
		l.resetAt = time.Now().Add(24 * time.Hour)
	}

	if l.perDay > 0 && l.counts[provider] >= l.perDay {
		slog.Warn("provider rate limit reached", "provider", provider, "limit", l.perDay)
		return false
	}
	l.counts[provider]++
	return true
}

// Used returns how many requests provider has made in the current day.
func (l *Limiter) Used(provider string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[provider]
}
