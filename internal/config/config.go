// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gigtarget/market-report-bot/internal/dedupe"
	"github.com/gigtarget/market-report-bot/internal/rank"
	"github.com/gigtarget/market-report-bot/internal/suppress"
)

type Config struct {
	// Telegram settings. Empty token switches delivery to stdout.
	TelegramToken  string
	TelegramChatID string

	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	MaxGeminiRequests int // daily cap, 0 = unlimited

	// Source settings
	FeedsConfigPath  string
	WatchlistCSVPath string
	LiveblogURL      string

	// Suppression store
	RedisURL          string
	SuppressionDBPath string
	SuppressionTTL    time.Duration

	// Selection tuning
	SimilarityThreshold float64
	CapPrimary          int
	CapSecondary        int
	TrustedSources      []string

	// Scheduling and monitoring
	ReportCron           string
	EnableHTTPMonitoring bool
	MonitoringPort       int

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		MaxGeminiRequests: getEnvIntOrDefault("MAX_GEMINI_REQUESTS", 3),

		FeedsConfigPath:  getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		WatchlistCSVPath: getEnvOrDefault("WATCHLIST_CSV_PATH", "configs/ind_nifty100list.csv"),
		LiveblogURL:      os.Getenv("MONEYCONTROL_LIVEBLOG_URL"),

		RedisURL:          os.Getenv("REDIS_URL"),
		SuppressionDBPath: getEnvOrDefault("SUPPRESSION_DB_PATH", "news_sent.db"),
		SuppressionTTL:    time.Duration(getEnvIntOrDefault("TTL_HOURS", 72)) * time.Hour,

		SimilarityThreshold: getEnvFloatOrDefault("SIMILARITY_THRESHOLD", dedupe.DefaultThreshold),
		CapPrimary:          getEnvIntOrDefault("CAP_PRIMARY", rank.DefaultCapPrimary),
		CapSecondary:        getEnvIntOrDefault("CAP_SECONDARY", rank.DefaultCapSecondary),
		TrustedSources:      getEnvListOrDefault("TRUSTED_SOURCES", rank.DefaultTrustedSources),

		ReportCron:           os.Getenv("REPORT_CRON"),
		EnableHTTPMonitoring: os.Getenv("ENABLE_HTTP_MONITORING") == "true",
		MonitoringPort:       getEnvIntOrDefault("MONITORING_PORT", 8080),

		Debug: os.Getenv("DEBUG") == "true",
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1], got %g", c.SimilarityThreshold)
	}
	if c.CapPrimary < 0 || c.CapSecondary < 0 {
		return fmt.Errorf("CAP_PRIMARY and CAP_SECONDARY must not be negative")
	}
	if c.SuppressionTTL <= 0 {
		return fmt.Errorf("TTL_HOURS must be positive")
	}
	if c.TelegramToken != "" && c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	return nil
}

// SuppressConfig maps the loaded settings onto the store config.
func (c *Config) SuppressConfig() suppress.Config {
	return suppress.Config{
		RedisURL: c.RedisURL,
		DBPath:   c.SuppressionDBPath,
		TTL:      c.SuppressionTTL,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
