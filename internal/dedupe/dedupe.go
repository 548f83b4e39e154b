// Package dedupe clusters near-identical headlines and keeps one
// representative per story.
package dedupe

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/gigtarget/market-report-bot/internal/news"
	"github.com/gigtarget/market-report-bot/internal/story"
)

// DefaultThreshold is the normalized-title similarity at or above which
// two items are treated as the same story.
const DefaultThreshold = 0.88

// Dedupe drops near-duplicate items, keeping one representative per
// cluster. Candidates are visited in a fixed total order (trusted
// sources first, then most recent, then source domain, then title) so
// trusted and fresher items win ties and the output is deterministic.
// Single greedy pass: a candidate similar to any already-kept
// representative is dropped; membership is never re-evaluated.
func Dedupe(items []news.Item, trustedSources []string, threshold float64) []news.Item {
	if len(items) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	trusted := make(map[string]struct{}, len(trustedSources))
	for _, domain := range trustedSources {
		trusted[strings.ToLower(domain)] = struct{}{}
	}

	ordered := make([]news.Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		_, aTrusted := trusted[strings.ToLower(a.SourceDomain)]
		_, bTrusted := trusted[strings.ToLower(b.SourceDomain)]
		if aTrusted != bTrusted {
			return aTrusted
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		if a.SourceDomain != b.SourceDomain {
			return a.SourceDomain < b.SourceDomain
		}
		return a.Title < b.Title
	})

	kept := make([]news.Item, 0, len(ordered))
	keptTitles := make([]string, 0, len(ordered))

	for _, item := range ordered {
		norm := story.NormalizeTitle(item.Title)
		duplicate := false
		for _, existing := range keptTitles {
			if sim := Ratio(norm, existing); sim >= threshold {
				slog.Debug("dropping near-duplicate",
					"similarity", sim, "title", item.Title, "source", item.SourceDomain)
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, item)
		keptTitles = append(keptTitles, norm)
	}

	return kept
}
