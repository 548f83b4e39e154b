// Package suppress remembers which stories were already delivered so a
// report never repeats them within the TTL window.
package suppress

import (
	"context"
	"log/slog"
	"time"

	"github.com/gigtarget/market-report-bot/internal/story"
)

// DefaultTTL is how long a delivered story stays suppressed.
const DefaultTTL = 72 * time.Hour

// remoteTimeout bounds every call against the remote backend so a dead
// cache degrades to the fallback within a fixed latency budget instead
// of stalling the report.
const remoteTimeout = 3 * time.Second

// Backend is one storage implementation for delivered-story records.
// The only states per key are absent, present-and-live, and
// present-and-expired, which reads as absent.
type Backend interface {
	IsSuppressed(ctx context.Context, id story.ID) (bool, error)
	MarkDelivered(ctx context.Context, ids []story.ID, ttl time.Duration) error
	Close() error
}

// Config selects and tunes the backends.
type Config struct {
	// RedisURL enables the shared remote backend when non-empty.
	RedisURL string
	// DBPath is the embedded SQLite file, always available as fallback.
	DBPath string
	// TTL defaults to DefaultTTL when zero.
	TTL time.Duration
}

// Store is the two-tier suppression strategy: a preferred primary
// backend and an embedded fallback. Backend selection happens once at
// construction; per-call primary errors fall through to the fallback,
// and if no backend is usable the store fails open — a report with a
// possible repeat beats no report.
type Store struct {
	primary  Backend
	fallback Backend
	ttl      time.Duration
}

// New builds a store. It never fails: backends that cannot be opened
// are logged and skipped.
func New(ctx context.Context, cfg Config) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{ttl: ttl}

	if cfg.RedisURL != "" {
		primary, err := newRedisBackend(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("redis suppression backend unavailable, using embedded store", "error", err)
		} else {
			slog.Info("using redis suppression backend")
			s.primary = primary
		}
	}

	if cfg.DBPath != "" {
		fallback, err := newSQLiteBackend(cfg.DBPath)
		if err != nil {
			slog.Warn("embedded suppression store unusable", "path", cfg.DBPath, "error", err)
		} else {
			slog.Info("embedded suppression store ready", "path", cfg.DBPath)
			s.fallback = fallback
		}
	}

	if s.primary == nil && s.fallback == nil {
		slog.Warn("no suppression backend available, running fail-open")
	}
	return s
}

// IsSuppressed reports whether the story was delivered within the TTL
// window. Backend errors never propagate: the answer degrades to the
// fallback and finally to false.
func (s *Store) IsSuppressed(ctx context.Context, id story.ID) bool {
	if s.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		suppressed, err := s.primary.IsSuppressed(cctx, id)
		cancel()
		if err == nil {
			return suppressed
		}
		slog.Warn("primary suppression lookup failed, trying fallback", "error", err)
	}

	if s.fallback != nil {
		suppressed, err := s.fallback.IsSuppressed(ctx, id)
		if err == nil {
			return suppressed
		}
		slog.Warn("fallback suppression lookup failed, failing open", "error", err)
	}
	return false
}

// MarkDelivered records the stories as delivered with expiry now+TTL.
// Best effort: write failures are logged, never returned, so a
// delivered report is never retracted over bookkeeping.
func (s *Store) MarkDelivered(ctx context.Context, ids []story.ID) {
	if len(ids) == 0 {
		return
	}

	if s.primary != nil {
		cctx, cancel := context.WithTimeout(ctx, remoteTimeout)
		err := s.primary.MarkDelivered(cctx, ids, s.ttl)
		cancel()
		if err == nil {
			return
		}
		slog.Warn("primary suppression write failed, trying fallback", "error", err)
	}

	if s.fallback != nil {
		if err := s.fallback.MarkDelivered(ctx, ids, s.ttl); err != nil {
			slog.Warn("fallback suppression write failed", "error", err)
		}
	}
}

// Close releases both backends.
func (s *Store) Close() {
	if s.primary != nil {
		if err := s.primary.Close(); err != nil {
			slog.Warn("closing primary suppression backend", "error", err)
		}
	}
	if s.fallback != nil {
		if err := s.fallback.Close(); err != nil {
			slog.Warn("closing fallback suppression backend", "error", err)
		}
	}
}

// newStoreWithBackends is the test seam for injecting fake backends.
func newStoreWithBackends(primary, fallback Backend, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{primary: primary, fallback: fallback, ttl: ttl}
}
