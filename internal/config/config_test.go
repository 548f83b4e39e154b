package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "configs/feeds.yaml", cfg.FeedsConfigPath)
	require.Equal(t, "configs/ind_nifty100list.csv", cfg.WatchlistCSVPath)
	require.Equal(t, 72*time.Hour, cfg.SuppressionTTL)
	require.InDelta(t, 0.88, cfg.SimilarityThreshold, 1e-9)
	require.Equal(t, 5, cfg.CapPrimary)
	require.Equal(t, 2, cfg.CapSecondary)
	require.NotEmpty(t, cfg.TrustedSources)
	require.Equal(t, 8080, cfg.MonitoringPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TTL_HOURS", "24")
	t.Setenv("SIMILARITY_THRESHOLD", "0.92")
	t.Setenv("CAP_PRIMARY", "3")
	t.Setenv("TRUSTED_SOURCES", "a.example.com, b.example.com ,")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.SuppressionTTL)
	require.InDelta(t, 0.92, cfg.SimilarityThreshold, 1e-9)
	require.Equal(t, 3, cfg.CapPrimary)
	require.Equal(t, []string{"a.example.com", "b.example.com"}, cfg.TrustedSources)
	require.True(t, cfg.Debug)
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "1.5")
	_, err := Load()
	require.Error(t, err)
}

func TestValidateRejectsTokenWithoutChat(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "abc")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	_, err := Load()
	require.Error(t, err)
}

func TestSuppressConfig(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SUPPRESSION_DB_PATH", "/tmp/sent.db")

	cfg, err := Load()
	require.NoError(t, err)
	sc := cfg.SuppressConfig()
	require.Equal(t, "redis://localhost:6379/0", sc.RedisURL)
	require.Equal(t, "/tmp/sent.db", sc.DBPath)
	require.Equal(t, cfg.SuppressionTTL, sc.TTL)
}
