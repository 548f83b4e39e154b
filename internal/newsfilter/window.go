// Package newsfilter keeps the news batch to items that are current and
// relevant for the session being reported.
package newsfilter

import (
	"log/slog"
	"time"

	"github.com/gigtarget/market-report-bot/internal/news"
)

// Session boundaries in IST.
const (
	sessionOpenHour   = 9
	sessionOpenMinute = 15
	sessionCloseHour  = 15
	sessionCloseMin   = 30
)

// SessionWindowStart returns the start of the current reporting window.
// Before the 09:15 open the window reaches back to the previous day's
// 15:30 close; after the open it starts at today's open.
func SessionWindowStart(now time.Time) time.Time {
	ist := now.In(news.IST)
	open := time.Date(ist.Year(), ist.Month(), ist.Day(), sessionOpenHour, sessionOpenMinute, 0, 0, news.IST)
	if ist.Before(open) {
		prev := ist.AddDate(0, 0, -1)
		return time.Date(prev.Year(), prev.Month(), prev.Day(), sessionCloseHour, sessionCloseMin, 0, 0, news.IST)
	}
	return open
}

// FilterByWindow drops items published before the session window start
// and items whose publication time is unknown. Pure except for a log
// line with the dropped count.
func FilterByWindow(items []news.Item, now time.Time) []news.Item {
	start := SessionWindowStart(now)

	filtered := make([]news.Item, 0, len(items))
	for _, item := range items {
		if !item.HasTimestamp() {
			continue
		}
		if item.PublishedAt.In(news.IST).Before(start) {
			continue
		}
		filtered = append(filtered, item)
	}

	slog.Info("time window filter",
		"kept", len(filtered), "dropped", len(items)-len(filtered), "window_start", start)
	return filtered
}
