// Package app wires the components into the daily report run.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gigtarget/market-report-bot/internal/config"
	"github.com/gigtarget/market-report-bot/internal/feed"
	"github.com/gigtarget/market-report-bot/internal/gemini"
	"github.com/gigtarget/market-report-bot/internal/highlights"
	"github.com/gigtarget/market-report-bot/internal/liveblog"
	"github.com/gigtarget/market-report-bot/internal/metrics"
	"github.com/gigtarget/market-report-bot/internal/news"
	"github.com/gigtarget/market-report-bot/internal/newsfilter"
	"github.com/gigtarget/market-report-bot/internal/pipeline"
	"github.com/gigtarget/market-report-bot/internal/ratelimit"
	"github.com/gigtarget/market-report-bot/internal/report"
	"github.com/gigtarget/market-report-bot/internal/suppress"
	"github.com/gigtarget/market-report-bot/internal/telegram"
)

// Sender delivers the rendered report.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// botAPI is the slice of the Telegram client the command loop needs.
type botAPI interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendTo(ctx context.Context, chatID, text string) error
}

// App holds the wired components for the lifetime of the process.
type App struct {
	cfg        *config.Config
	store      *suppress.Store
	pipeline   *pipeline.Pipeline
	fetcher    *feed.Fetcher
	highlights *highlights.Builder
	sender     Sender
	bot        botAPI
	gemini     *gemini.Client
	cache      *report.Cache
}

// New builds the application. Missing optional pieces (Redis, Gemini,
// Telegram, watchlist) degrade the run instead of failing it; only a
// broken config is fatal.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store := suppress.New(ctx, cfg.SuppressConfig())

	symbols, err := newsfilter.LoadWatchlistSymbols(cfg.WatchlistCSVPath)
	if err != nil {
		slog.Warn("watchlist unavailable, symbol matching disabled", "path", cfg.WatchlistCSVPath, "error", err)
	}
	classifier := newsfilter.NewKeywordClassifier(nil, nil, symbols)

	p := pipeline.New(store, classifier, cfg.TrustedSources)
	p.SimilarityThreshold = cfg.SimilarityThreshold
	p.CapPrimary = cfg.CapPrimary
	p.CapSecondary = cfg.CapSecondary

	a := &App{
		cfg:      cfg,
		store:    store,
		pipeline: p,
		fetcher:  feed.NewFetcher(),
		cache:    report.NewCache(report.DefaultCacheTTL),
	}

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("gemini unavailable, highlights disabled", "error", err)
		} else {
			a.gemini = client
			a.highlights = &highlights.Builder{
				Fetcher: liveblog.NewFetcher(),
				Summarizer: &limitedSummarizer{
					client:  client,
					limiter: ratelimit.New(cfg.MaxGeminiRequests),
				},
				URL: cfg.LiveblogURL,
			}
		}
	}

	if cfg.TelegramToken != "" {
		client := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID)
		a.sender = client
		a.bot = client
	} else {
		slog.Warn("TELEGRAM_TOKEN not set, printing reports to stdout")
		a.sender = stdoutSender{}
	}

	return a, nil
}

// Close releases held clients.
func (a *App) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// RunOnce executes one full report cycle: fetch, select, summarize,
// render, deliver. A report rendered within the cache window is
// re-sent as is; rebuilding would find its stories already suppressed
// and push out an empty report.
func (a *App) RunOnce(ctx context.Context) error {
	text, cached := a.cache.Get()
	if cached {
		slog.Info("re-sending recently rendered report")
	} else {
		text = a.buildReport(ctx)
	}

	if err := a.sender.Send(ctx, text); err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("delivering report: %w", err)
	}

	metrics.Global.IncrementReportsSent()
	metrics.Global.SetLastRun()
	return nil
}

// buildReport runs the pipeline and renders the report, caching the
// text so repeated /report commands within the window are served
// without a rebuild.
func (a *App) buildReport(ctx context.Context) string {
	now := time.Now().In(news.IST)

	items := a.fetchItems(ctx)
	metrics.Global.AddItemsFetched(len(items))

	result := a.pipeline.Run(ctx, items, now)

	var bullets []string
	var highlightsWarning string
	if a.highlights != nil {
		bullets, highlightsWarning = a.highlights.Build(ctx, now)
	}

	rpt := &report.Report{
		SessionDate:       now,
		Selection:         result.Selection,
		NewsWarning:       result.Warning,
		Highlights:        bullets,
		HighlightsWarning: highlightsWarning,
	}
	text := rpt.Format()
	a.cache.Put(text)

	slog.Info("report rendered",
		"primary", len(result.Selection.Primary),
		"secondary", len(result.Selection.Secondary),
		"highlights", len(bullets))
	return text
}

// reportText serves the cached report when fresh, otherwise builds one.
func (a *App) reportText(ctx context.Context) string {
	if text, ok := a.cache.Get(); ok {
		return text
	}
	return a.buildReport(ctx)
}

// ReportRenderedAt exposes the last render time for the health
// endpoint.
func (a *App) ReportRenderedAt() time.Time {
	return a.cache.RenderedAt()
}

// ServeCommands long-polls Telegram and answers /report with the
// current report, serving the cached copy when one is fresh. Returns
// when the context is cancelled; a no-op without a configured bot.
func (a *App) ServeCommands(ctx context.Context) {
	if a.bot == nil {
		return
	}

	var offset int64
	for ctx.Err() == nil {
		updates, err := a.bot.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("polling telegram updates failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			a.handleUpdate(ctx, u)
		}
	}
}

func (a *App) handleUpdate(ctx context.Context, u telegram.Update) {
	if u.Message == nil {
		return
	}

	var reply string
	switch parseCommand(u.Message.Text) {
	case "/start":
		reply = "Post-market report bot. Send /report for the latest session report."
	case "/report":
		reply = a.reportText(ctx)
	default:
		return
	}

	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
	if err := a.bot.SendTo(ctx, chatID, reply); err != nil {
		slog.Warn("replying to command failed", "chat_id", chatID, "error", err)
	}
}

// parseCommand extracts the bot command from a message, tolerating
// arguments and the @botname suffix Telegram appends in groups.
func parseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}

func (a *App) fetchItems(ctx context.Context) []news.Item {
	sources, err := feed.LoadSources(a.cfg.FeedsConfigPath)
	if err != nil {
		slog.Warn("feeds config unavailable", "path", a.cfg.FeedsConfigPath, "error", err)
		return nil
	}
	return a.fetcher.FetchAll(ctx, sources)
}

// limitedSummarizer meters Gemini calls against the daily cap, with
// the cheap pre-check ahead of the consuming call.
type limitedSummarizer struct {
	client  *gemini.Client
	limiter *ratelimit.Limiter
}

func (s *limitedSummarizer) SummarizeHighlights(ctx context.Context, items []news.Item) ([]string, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("gemini daily cap reached")
	}
	if err := s.limiter.Use(); err != nil {
		return nil, err
	}
	metrics.Global.IncrementGeminiCalls()
	return s.client.SummarizeHighlights(ctx, items)
}

// stdoutSender is the no-Telegram fallback used in local runs.
type stdoutSender struct{}

func (stdoutSender) Send(_ context.Context, text string) error {
	fmt.Println(text)
	return nil
}
