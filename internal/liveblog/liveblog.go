// Package liveblog parses Moneycontrol "Stock Market LIVE Updates"
// pages into individual timestamped entries. The pages are one long
// stream of blocks, each opened by a "June 10, 2025 · 14:05 IST" line,
// so parsing works on the flattened text lines rather than on DOM
// structure, which Moneycontrol reshuffles often.
package liveblog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gigtarget/market-report-bot/internal/news"
)

var (
	timestampPattern = regexp.MustCompile(`([A-Za-z]+\s+\d{1,2},\s*\d{4})\s*[·\-]?\s*(\d{1,2}:\d{2})\s*IST`)
	readMorePattern  = regexp.MustCompile(`(?i)\bRead\s+More\b.*`)
)

// blockTags get a line break inserted so liveblog entries stay in
// document order when the markup is flattened.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true,
	"section": true, "article": true, "h1": true, "h2": true, "h3": true,
}

// Fetcher downloads and parses liveblog pages.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch downloads the liveblog at url and returns its entries, newest
// markup order preserved. Entries carry the liveblog category so the
// classifier treats them as market-primary.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]news.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building liveblog request: %w", err)
	}
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching liveblog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("liveblog returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing liveblog HTML: %w", err)
	}

	items := parseBlocks(extractLines(doc), url)
	slog.Info("parsed liveblog", "url", url, "entries", len(items))
	return items, nil
}

// extractLines flattens the document to cleaned text lines, skipping
// script and style content.
func extractLines(doc *goquery.Document) []string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "script" || n.Data == "style" {
				return
			}
			if blockTags[n.Data] {
				b.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] && n.Data != "br" {
			b.WriteByte('\n')
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	text := strings.ReplaceAll(b.String(), "\u00a0", " ")
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		cleaned := strings.Trim(strings.Join(strings.Fields(raw), " "), "•-· ")
		if cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}

// ParseTimestamp recognizes the entry header line format
// "June 10, 2025 · 14:05 IST" and returns the moment in IST.
func ParseTimestamp(line string) (time.Time, bool) {
	m := timestampPattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation("January 2, 2006 15:04", m[1]+" "+m[2], news.IST)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// parseBlocks splits the line stream into entries: a timestamp line,
// then the title, then body lines until the next timestamp. The bare
// "-330" line is a UTC-offset artifact Moneycontrol embeds between
// blocks and acts as an extra terminator.
func parseBlocks(lines []string, url string) []news.Item {
	var items []news.Item
	idx := 0
	for idx < len(lines) {
		ts, ok := ParseTimestamp(lines[idx])
		if !ok {
			idx++
			continue
		}
		idx++

		title := ""
		for idx < len(lines) && title == "" {
			title = strings.TrimSpace(lines[idx])
			idx++
		}

		var bodyLines []string
		for idx < len(lines) {
			if _, next := ParseTimestamp(lines[idx]); next {
				break
			}
			if strings.ReplaceAll(lines[idx], " ", "") == "-330" {
				idx++
				break
			}
			bodyLines = append(bodyLines, lines[idx])
			idx++
		}

		body := cleanBody(bodyLines)
		if title == "" && body == "" {
			continue
		}
		if title == "" {
			title = truncate(body, 80)
		}

		items = append(items, news.Item{
			Title:        title,
			Link:         url,
			SourceDomain: "moneycontrol.com",
			PublishedAt:  ts,
			Category:     news.CategoryLiveblog,
			Summary:      body,
		})
	}
	return items
}

// cleanBody collapses whitespace, strips "Read More" teasers, and
// drops repeated lines. Liveblog blocks duplicate their lead sentence
// in a teaser element.
func cleanBody(lines []string) string {
	seen := map[string]bool{}
	var kept []string
	for _, line := range lines {
		normalized := strings.Join(strings.Fields(line), " ")
		normalized = strings.TrimSpace(readMorePattern.ReplaceAllString(normalized, ""))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		kept = append(kept, normalized)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
