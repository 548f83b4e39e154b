package suppress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gigtarget/market-report-bot/internal/story"
)

// sqliteBackend is the embedded single-writer store: one table keyed by
// story id with an absolute expiry in epoch seconds. Expired rows are
// purged lazily on each lookup; the table is queried far more often
// than it grows, so no background sweeper is needed.
type sqliteBackend struct {
	db *sql.DB
}

func newSQLiteBackend(path string) (*sqliteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One pipeline at a time owns the file.
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS sent_news (
		story_id   TEXT PRIMARY KEY,
		expires_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating sent_news table: %w", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (s *sqliteBackend) IsSuppressed(ctx context.Context, id story.ID) (bool, error) {
	now := time.Now().Unix()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sent_news WHERE expires_at <= ?`, now); err != nil {
		return false, fmt.Errorf("purging expired rows: %w", err)
	}

	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sent_news WHERE story_id = ?`, string(id)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("suppression lookup: %w", err)
	}
	return true, nil
}

func (s *sqliteBackend) MarkDelivered(ctx context.Context, ids []story.ID, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).Unix()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sent_news (story_id, expires_at) VALUES (?, ?)`,
			string(id), expiresAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *sqliteBackend) Close() error {
	return s.db.Close()
}
