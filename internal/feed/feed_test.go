package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/require"

	"github.com/gigtarget/market-report-bot/internal/news"
)

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	data := `feeds:
  - url: https://www.moneycontrol.com/rss/marketreports.xml
    category: india
  - url: https://www.reuters.com/markets/asia/rss
    category: global
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	require.Equal(t, "https://www.moneycontrol.com/rss/marketreports.xml", sources[0].URL)
	require.Equal(t, "india", sources[0].Category)
}

func TestLoadSourcesRejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds: []\n"), 0o644))

	_, err := LoadSources(path)
	require.Error(t, err)
}

func TestLoadSourcesMissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMapItems(t *testing.T) {
	published := time.Date(2025, 6, 10, 5, 30, 0, 0, time.UTC)
	src := Source{URL: "https://www.moneycontrol.com/rss/marketreports.xml", Category: "india"}
	feedItems := []*gofeed.Item{
		{
			Title:           "  Sensex ends higher  ",
			Link:            "https://www.moneycontrol.com/news/sensex-ends-higher",
			Description:     `<p>Benchmarks closed <a href="#">firm</a> on Tuesday.</p>`,
			PublishedParsed: &published,
		},
		nil,
		{
			Title: "No timestamp entry",
			Link:  "https://www.moneycontrol.com/news/no-ts",
		},
	}

	items := mapItems(feedItems, src)
	require.Len(t, items, 2)

	first := items[0]
	require.Equal(t, "Sensex ends higher", first.Title)
	require.Equal(t, "www.moneycontrol.com", first.SourceDomain)
	require.Equal(t, news.CategoryIndia, first.Category)
	require.Equal(t, "Benchmarks closed firm on Tuesday.", first.Summary)
	require.True(t, first.HasTimestamp())
	// 05:30 UTC is 11:00 IST.
	require.Equal(t, 11, first.PublishedAt.Hour())

	require.False(t, items[1].HasTimestamp())
}

func TestParseCategory(t *testing.T) {
	require.Equal(t, news.CategoryIndia, parseCategory(" India "))
	require.Equal(t, news.CategoryGlobal, parseCategory("GLOBAL"))
	require.Equal(t, news.CategoryLiveblog, parseCategory("liveblog"))
	require.Equal(t, news.CategoryOther, parseCategory(""))
	require.Equal(t, news.CategoryOther, parseCategory("weather"))
}

func TestDomainOfFallsBackToFeedURL(t *testing.T) {
	require.Equal(t, "example.com", domainOf("", "https://example.com/rss"))
	require.Equal(t, "a.example.com", domainOf("https://A.example.com/x", "https://b.example.com/rss"))
}

func TestStripHTML(t *testing.T) {
	require.Equal(t, "plain already", stripHTML("plain already"))
	require.Equal(t, "one two", stripHTML("<div>one <b>two</b></div>"))
	require.Equal(t, "", stripHTML("<img src='x'/>"))
}
