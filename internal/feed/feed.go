// Package feed loads the RSS source list and materializes feed entries
// as news items for the selection pipeline.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/gigtarget/market-report-bot/internal/news"
)

// Source is one RSS feed plus the relevance category its items carry
// into classification.
type Source struct {
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// Config is the feeds YAML structure:
//
//	feeds:
//	  - url: https://...
//	    category: india
type Config struct {
	Feeds []Source `yaml:"feeds"`
}

// LoadSources reads the feed list from a YAML file.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feeds config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing feeds config %s: %w", path, err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds config %s lists no feeds", path)
	}
	return cfg.Feeds, nil
}

// Fetcher downloads and parses RSS feeds.
type Fetcher struct {
	parser *gofeed.Parser
}

func NewFetcher() *Fetcher {
	p := gofeed.NewParser()
	p.UserAgent = "market-report-bot/1.0"
	return &Fetcher{parser: p}
}

// FetchAll downloads every source and returns the combined item list.
// A failing feed is logged and skipped; one dead source must not cost
// the whole report.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []news.Item {
	var all []news.Item
	ok := 0

	for _, src := range sources {
		feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			slog.Warn("skipping unreachable feed", "url", src.URL, "error", err)
			continue
		}
		items := mapItems(feed.Items, src)
		all = append(all, items...)
		ok++
		slog.Info("fetched feed", "url", src.URL, "items", len(items))
	}

	slog.Info("feed fetch complete", "ok", ok, "total", len(sources), "items", len(all))
	return all
}

func mapItems(feedItems []*gofeed.Item, src Source) []news.Item {
	category := parseCategory(src.Category)
	items := make([]news.Item, 0, len(feedItems))
	for _, fi := range feedItems {
		if fi == nil {
			continue
		}
		item := news.Item{
			Title:        strings.TrimSpace(fi.Title),
			Link:         strings.TrimSpace(fi.Link),
			SourceDomain: domainOf(fi.Link, src.URL),
			Category:     category,
			Summary:      stripHTML(firstNonEmpty(fi.Description, fi.Content)),
		}
		if ts := publishedTime(fi); ts != nil {
			item.PublishedAt = ts.In(news.IST)
		}
		items = append(items, item)
	}
	return items
}

func parseCategory(s string) news.Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "india":
		return news.CategoryIndia
	case "global":
		return news.CategoryGlobal
	case "liveblog":
		return news.CategoryLiveblog
	default:
		return news.CategoryOther
	}
}

func publishedTime(fi *gofeed.Item) *time.Time {
	if fi.PublishedParsed != nil {
		return fi.PublishedParsed
	}
	return fi.UpdatedParsed
}

func domainOf(link, feedURL string) string {
	for _, raw := range []string{link, feedURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return strings.ToLower(u.Host)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// stripHTML flattens markup in feed summaries to plain text. Feed
// descriptions routinely embed anchors and images that would otherwise
// leak into the report.
func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
