package suppress

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gigtarget/market-report-bot/internal/story"
)

// redisBackend stores one key per delivered story with a native TTL, so
// expiry needs no sweeping on our side and per-key SET with EX is
// atomic enough for concurrent processes.
type redisBackend struct {
	client *redis.Client
}

func newRedisBackend(ctx context.Context, redisURL string) (*redisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisBackend{client: client}, nil
}

func (r *redisBackend) IsSuppressed(ctx context.Context, id story.ID) (bool, error) {
	n, err := r.client.Exists(ctx, string(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *redisBackend) MarkDelivered(ctx context.Context, ids []story.ID, ttl time.Duration) error {
	pipe := r.client.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, string(id), "1", ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *redisBackend) Close() error {
	return r.client.Close()
}
