// Package highlights builds the "Post-market Highlights" section from
// intraday liveblog entries: session filtering, noise dropping, action
// scoring, and finally model summarization into bullet lines.
package highlights

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gigtarget/market-report-bot/internal/news"
)

// FallbackMessage replaces the section when anything upstream fails.
// The report still goes out.
const FallbackMessage = "Highlights unavailable today."

// maxSummarized caps how many blocks reach the model prompt.
const maxSummarized = 15

// dropPhrases mark recurring mechanical liveblog blocks that carry no
// narrative value.
var dropPhrases = []string{
	"volume shockers",
	"positive break-out stocks",
	"most active stocks",
}

// actionKeywords boost blocks describing actual market-moving events.
var actionKeywords = []string{
	"earnings", "acquisition", "merger", "buyback", "sebi", "bse", "nse",
	"surges", "soars", "plunges", "slumps", "jumps", "slides",
	"order", "contract", "guidance",
}

// Summarizer condenses liveblog blocks into bullet lines.
type Summarizer interface {
	SummarizeHighlights(ctx context.Context, items []news.Item) ([]string, error)
}

// Fetcher supplies liveblog entries for a page URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]news.Item, error)
}

// Builder assembles the highlights section.
type Builder struct {
	Fetcher    Fetcher
	Summarizer Summarizer
	URL        string
}

// Build returns bullet lines, or a warning string when the section
// cannot be produced. Before the 15:30 close both returns are empty:
// there is no session to summarize yet.
func (b *Builder) Build(ctx context.Context, now time.Time) (bullets []string, warning string) {
	nowIST := now.In(news.IST)
	close := time.Date(nowIST.Year(), nowIST.Month(), nowIST.Day(), 15, 30, 0, 0, news.IST)
	if nowIST.Before(close) {
		return nil, ""
	}
	if b.URL == "" || b.Fetcher == nil || b.Summarizer == nil {
		return nil, FallbackMessage
	}

	items, err := b.Fetcher.Fetch(ctx, b.URL)
	if err != nil {
		slog.Warn("liveblog fetch failed", "error", err)
		return nil, FallbackMessage
	}

	filtered := FilterSession(items, nowIST)
	if len(filtered) == 0 {
		return nil, FallbackMessage
	}

	bullets, err = b.Summarizer.SummarizeHighlights(ctx, SelectTop(filtered))
	if err != nil {
		slog.Warn("highlight summarization failed", "error", err)
		return nil, FallbackMessage
	}
	if len(bullets) == 0 {
		return nil, FallbackMessage
	}
	return bullets, ""
}

// FilterSession keeps entries published inside today's 09:15-15:30
// session. The latest post-close "Closing Bell" wrap-up is kept too;
// it is the one block published after the window worth carrying.
func FilterSession(items []news.Item, nowIST time.Time) []news.Item {
	start := time.Date(nowIST.Year(), nowIST.Month(), nowIST.Day(), 9, 15, 0, 0, news.IST)
	end := time.Date(nowIST.Year(), nowIST.Month(), nowIST.Day(), 15, 30, 0, 0, news.IST)

	var filtered []news.Item
	var closingBell *news.Item

	for i := range items {
		item := items[i]
		if !item.HasTimestamp() {
			continue
		}
		published := item.PublishedAt.In(news.IST)

		if !published.Before(start) && !published.After(end) {
			if !shouldDrop(item) {
				filtered = append(filtered, item)
			}
			continue
		}

		if published.After(end) && strings.Contains(strings.ToLower(item.Title), "closing bell") {
			if closingBell == nil || published.After(closingBell.PublishedAt.In(news.IST)) {
				closingBell = &items[i]
			}
		}
	}

	if closingBell != nil {
		filtered = append(filtered, *closingBell)
	}
	return filtered
}

// SelectTop ranks entries by substance and keeps the best fifteen.
func SelectTop(items []news.Item) []news.Item {
	ranked := make([]news.Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scoreItem(ranked[i]) > scoreItem(ranked[j])
	})
	if len(ranked) > maxSummarized {
		ranked = ranked[:maxSummarized]
	}
	return ranked
}

func shouldDrop(item news.Item) bool {
	title := strings.ToLower(item.Title)
	for _, phrase := range dropPhrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}
	return false
}

// scoreItem favors longer bodies and action vocabulary in either the
// body or the title.
func scoreItem(item news.Item) int {
	score := len(item.Summary)
	body := strings.ToLower(item.Summary)
	title := strings.ToLower(item.Title)
	for _, kw := range actionKeywords {
		if strings.Contains(body, kw) {
			score += 5
		}
		if strings.Contains(title, kw) {
			score += 5
		}
	}
	return score
}
