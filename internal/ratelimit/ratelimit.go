// Package ratelimit caps daily Gemini usage so a misbehaving schedule
// cannot burn through the API quota.
package ratelimit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Limiter counts Gemini requests against a daily ceiling. A zero or
// negative limit disables the cap.
type Limiter struct {
	mu        sync.Mutex
	count     int
	max       int
	resetTime time.Time
}

func New(maxPerDay int) *Limiter {
	return &Limiter{
		max:       maxPerDay,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow reports whether another request fits under the cap.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	if l.max > 0 && l.count >= l.max {
		slog.Warn("gemini rate limit reached", "used", l.count, "limit", l.max)
		return false
	}
	return true
}

// Use consumes one request slot.
func (l *Limiter) Use() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()
	if l.max > 0 && l.count >= l.max {
		return fmt.Errorf("gemini rate limit exceeded (%d/%d)", l.count, l.max)
	}
	l.count++
	slog.Debug("gemini usage", "used", l.count, "limit", l.max)
	return nil
}

// GetStats returns the limiter state for the monitoring endpoint.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]interface{}{
		"gemini_used":  l.count,
		"gemini_limit": l.max,
		"reset_time":   l.resetTime,
	}
}

func (l *Limiter) checkReset() {
	if time.Now().After(l.resetTime) {
		slog.Info("resetting gemini rate limiter", "used", l.count)
		l.count = 0
		l.resetTime = time.Now().Add(24 * time.Hour)
	}
}
