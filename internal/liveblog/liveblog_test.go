package liveblog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/gigtarget/market-report-bot/internal/news"
)

const samplePage = `<html><head>
<script>var junk = "June 1, 2020 · 09:00 IST";</script>
<style>.x { color: red }</style>
</head><body>
<div>June 10, 2025 · 14:05 IST</div>
<h2>Sensex extends gains, up 450 points</h2>
<p>Banking and IT names led the move higher.</p>
<p>Banking and IT names led the move higher.</p>
<p>Breadth stayed positive through the afternoon. Read More on market internals</p>
<div>June 10, 2025 · 13:20 IST</div>
<h2>Rupee firms against the dollar</h2>
<p>Importer demand eased after the crude pullback.</p>
</body></html>`

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("June 10, 2025 · 14:05 IST")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 6, 10, 14, 5, 0, 0, news.IST), ts)

	// Hyphen separator and single-digit hour both occur in the wild.
	ts, ok = ParseTimestamp("June 10, 2025 - 9:05 IST")
	require.True(t, ok)
	require.Equal(t, 9, ts.Hour())

	_, ok = ParseTimestamp("Sensex up 450 points at 14:05")
	require.False(t, ok)
}

func TestExtractLinesSkipsScriptAndStyle(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	require.NoError(t, err)

	lines := extractLines(doc)
	joined := strings.Join(lines, "\n")
	require.NotContains(t, joined, "var junk")
	require.NotContains(t, joined, "color: red")
	require.Contains(t, lines, "June 10, 2025 · 14:05 IST")
	require.Contains(t, lines, "Sensex extends gains, up 450 points")
}

func TestParseBlocks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(samplePage))
	require.NoError(t, err)

	items := parseBlocks(extractLines(doc), "https://www.moneycontrol.com/live")
	require.Len(t, items, 2)

	first := items[0]
	require.Equal(t, "Sensex extends gains, up 450 points", first.Title)
	require.Equal(t, "moneycontrol.com", first.SourceDomain)
	require.Equal(t, news.CategoryLiveblog, first.Category)
	require.Equal(t, time.Date(2025, 6, 10, 14, 5, 0, 0, news.IST), first.PublishedAt)
	// Repeated teaser line collapsed, "Read More" tail stripped.
	require.Equal(t, 1, strings.Count(first.Summary, "Banking and IT names led the move higher."))
	require.NotContains(t, first.Summary, "Read More")
	require.Contains(t, first.Summary, "Breadth stayed positive")

	require.Equal(t, "Rupee firms against the dollar", items[1].Title)
}

func TestCleanBody(t *testing.T) {
	body := cleanBody([]string{
		"First   line with   spaces",
		"First line with spaces",
		"Tail Read More at moneycontrol",
		"",
	})
	require.Equal(t, "First line with spaces Tail", body)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	items, err := NewFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, srv.URL, items[0].Link)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}
