package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay
}

// WithRetry runs fn up to MaxAttempts times, waiting between failures.
// The context cancels the wait, not a running attempt.
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == cfg.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, err)
			}

			delay := cfg.Delay
			if cfg.Backoff {
				delay = time.Duration(attempt) * cfg.Delay
			}
			slog.Debug("retrying after failure", "attempt", attempt, "delay", delay, "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}
