// Package report renders the post-market Telegram report from the
// pipeline selection and the liveblog highlights.
package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gigtarget/market-report-bot/internal/news"
	"github.com/gigtarget/market-report-bot/internal/rank"
)

// Placeholder fills the news section when nothing qualified; the
// report still goes out so readers can tell silence from breakage.
const Placeholder = "No qualifying market news today."

// Report holds one session's content before rendering.
type Report struct {
	SessionDate time.Time
	Selection   rank.Selection

	// Warnings mark degraded sections; the matching section prints
	// the warning instead of disappearing.
	NewsWarning string

	Highlights        []string
	HighlightsWarning string
}

// Format renders the Telegram HTML message.
func (r *Report) Format() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("<b>Post Market Report: %s</b>", r.SessionDate.In(news.IST).Format("2006-01-02")))

	lines = append(lines, "", "<b>News (Top 5):</b>")
	if r.NewsWarning != "" {
		lines = append(lines, html.EscapeString(r.NewsWarning))
	}
	if len(r.Selection.Primary) > 0 {
		lines = append(lines, newsLines(r.Selection.Primary)...)
	} else if r.NewsWarning == "" {
		lines = append(lines, Placeholder)
	}

	if len(r.Selection.Secondary) > 0 {
		lines = append(lines, "", "<b>Global cues for India:</b>")
		lines = append(lines, newsLines(r.Selection.Secondary)...)
	}

	if len(r.Highlights) > 0 || r.HighlightsWarning != "" {
		lines = append(lines, "", "<b>Market Highlights (Moneycontrol live):</b>")
		if len(r.Highlights) > 0 {
			for _, bullet := range r.Highlights {
				lines = append(lines, "• "+html.EscapeString(bullet))
			}
		} else {
			lines = append(lines, html.EscapeString(r.HighlightsWarning))
		}
	}

	return strings.Join(lines, "\n")
}

func newsLines(candidates []rank.ScoredCandidate) []string {
	lines := make([]string, 0, len(candidates))
	for _, c := range candidates {
		lines = append(lines, newsLine(c.Item))
	}
	return lines
}

func newsLine(item news.Item) string {
	title := html.EscapeString(item.Title)
	var b strings.Builder
	b.WriteString("• ")
	if item.Link != "" {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, html.EscapeString(item.Link), title)
	} else {
		b.WriteString(title)
	}

	var meta []string
	if item.SourceDomain != "" {
		meta = append(meta, html.EscapeString(item.SourceDomain))
	}
	if item.HasTimestamp() {
		meta = append(meta, item.PublishedAt.In(news.IST).Format("15:04")+" IST")
	}
	if len(meta) > 0 {
		b.WriteString(" (" + strings.Join(meta, ", ") + ")")
	}
	return b.String()
}
