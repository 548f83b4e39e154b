package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gigtarget/market-report-bot/internal/news"
)

var testTrusted = []string{"www.reuters.com", "economictimes.indiatimes.com"}

func itemAt(title, domain string, at time.Time) news.Item {
	return news.Item{Title: title, Link: "https://" + domain + "/" + title, SourceDomain: domain, PublishedAt: at}
}

func TestDedupeKeepsDistinctStories(t *testing.T) {
	now := time.Now()
	items := []news.Item{
		itemAt("Nifty ends above 25000 on IT rally", "a.com", now),
		itemAt("RBI keeps repo rate unchanged", "b.com", now),
	}
	kept := Dedupe(items, testTrusted, DefaultThreshold)
	require.Len(t, kept, 2)
}

func TestDedupeDropsNearDuplicate(t *testing.T) {
	now := time.Now()
	items := []news.Item{
		itemAt("Nifty 50 closes above 25,000 for the first time", "a.com", now),
		itemAt("Nifty 50 closes above 25,000 for first time", "b.com", now.Add(-time.Minute)),
	}
	kept := Dedupe(items, testTrusted, DefaultThreshold)
	require.Len(t, kept, 1)
	require.Equal(t, "a.com", kept[0].SourceDomain, "fresher item wins")
}

func TestDedupeTrustedSourceWinsTie(t *testing.T) {
	now := time.Now()
	items := []news.Item{
		itemAt("Sensex slides 600 points as banks drag", "randomblog.com", now),
		itemAt("Sensex slides 600 points as banks drag", "www.reuters.com", now),
	}
	kept := Dedupe(items, testTrusted, DefaultThreshold)
	require.Len(t, kept, 1)
	require.Equal(t, "www.reuters.com", kept[0].SourceDomain)
}

func TestDedupeThresholdMonotonicity(t *testing.T) {
	now := time.Now()
	a := itemAt("Nifty 50 closes above 25,000 for the first time", "a.com", now)
	b := itemAt("Nifty 50 closes above 25,000 for first time", "b.com", now)

	r := Ratio("nifty 50 closes above 25 000 for the first time", "nifty 50 closes above 25 000 for first time")

	require.Len(t, Dedupe([]news.Item{a, b}, nil, r+0.01), 2, "threshold above ratio keeps both")
	require.Len(t, Dedupe([]news.Item{a, b}, nil, r-0.01), 1, "threshold below ratio drops one")
}

func TestDedupeDeterministicOrder(t *testing.T) {
	now := time.Now()
	items := []news.Item{
		itemAt("markets end mixed amid global cues", "b.com", now),
		itemAt("markets end mixed amid global cues", "a.com", now),
	}
	first := Dedupe(items, nil, DefaultThreshold)
	second := Dedupe([]news.Item{items[1], items[0]}, nil, DefaultThreshold)
	require.Equal(t, first, second, "same tie-break regardless of input order")
	require.Equal(t, "a.com", first[0].SourceDomain)
}

func TestDedupeEmptyInput(t *testing.T) {
	require.Nil(t, Dedupe(nil, testTrusted, DefaultThreshold))
}
