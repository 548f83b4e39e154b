// Package rank scores candidate items and selects the top of each
// bucket for the report.
package rank

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gigtarget/market-report-bot/internal/news"
	"github.com/gigtarget/market-report-bot/internal/story"
)

// DefaultTrustedSources is the tier-1 domain list: these sources win
// duplicate ties and earn the trust bonus.
var DefaultTrustedSources = []string{
	"economictimes.indiatimes.com",
	"www.moneycontrol.com",
	"www.business-standard.com",
	"www.livemint.com",
	"www.reuters.com",
}

// DefaultImpactKeywords each add a fixed weight when present in the
// title or summary.
var DefaultImpactKeywords = []string{
	"policy",
	"rates",
	"inflation",
	"cpi",
	"gdp",
	"earnings",
	"guidance",
	"order",
	"contract",
	"merger",
	"acquisition",
	"sebi",
	"probe",
	"ban",
	"rupee",
	"crude",
}

// Selection caps per bucket.
const (
	DefaultCapPrimary   = 5
	DefaultCapSecondary = 2
)

// ScoredCandidate pairs an item with its story id and composite score.
// It lives for one pipeline run and is never persisted.
type ScoredCandidate struct {
	Item  news.Item
	ID    story.ID
	Score float64
}

// Selection is the ranked output of one run.
type Selection struct {
	Primary   []ScoredCandidate
	Secondary []ScoredCandidate
}

// Empty reports whether nothing qualified in either bucket.
func (s Selection) Empty() bool {
	return len(s.Primary) == 0 && len(s.Secondary) == 0
}

// IDs returns the story ids across both buckets, primary first.
func (s Selection) IDs() []story.ID {
	ids := make([]story.ID, 0, len(s.Primary)+len(s.Secondary))
	for _, c := range s.Primary {
		ids = append(ids, c.ID)
	}
	for _, c := range s.Secondary {
		ids = append(ids, c.ID)
	}
	return ids
}

// Scorer computes the composite relevance score. The decay constants
// are configuration, not contract; the freshness component only has to
// be non-increasing in age.
type Scorer struct {
	impactKeywords []string
	trusted        map[string]struct{}

	// Freshness starts at FreshnessMax and loses DecayPerHour per hour
	// of age, floored at zero.
	FreshnessMax float64
	DecayPerHour float64
	ImpactWeight float64
	TrustBonus   float64
}

// NewScorer builds a scorer with the default weights. Nil keyword or
// trusted lists fall back to the defaults.
func NewScorer(impactKeywords, trustedSources []string) *Scorer {
	if impactKeywords == nil {
		impactKeywords = DefaultImpactKeywords
	}
	if trustedSources == nil {
		trustedSources = DefaultTrustedSources
	}
	trusted := make(map[string]struct{}, len(trustedSources))
	for _, domain := range trustedSources {
		trusted[strings.ToLower(domain)] = struct{}{}
	}
	lowered := make([]string, len(impactKeywords))
	for i, k := range impactKeywords {
		lowered[i] = strings.ToLower(k)
	}
	return &Scorer{
		impactKeywords: lowered,
		trusted:        trusted,
		FreshnessMax:   120,
		DecayPerHour:   10,
		ImpactWeight:   5,
		TrustBonus:     10,
	}
}

// Score returns the composite score for an item at the given time. The
// second return is false for items without a publication timestamp:
// they are not eligible for ranking at all, which is different from
// scoring zero.
func (s *Scorer) Score(item news.Item, now time.Time) (float64, bool) {
	if !item.HasTimestamp() {
		return 0, false
	}

	hoursOld := now.Sub(item.PublishedAt).Hours()
	freshness := s.FreshnessMax - hoursOld*s.DecayPerHour
	if freshness < 0 {
		freshness = 0
	}

	text := strings.ToLower(item.Title + " " + item.Summary)
	impact := 0.0
	for _, keyword := range s.impactKeywords {
		if strings.Contains(text, keyword) {
			impact += s.ImpactWeight
		}
	}

	trustBonus := 0.0
	if _, ok := s.trusted[strings.ToLower(item.SourceDomain)]; ok {
		trustBonus = s.TrustBonus
	}

	return freshness + impact + trustBonus, true
}

// ScoreAll scores a bucket, skipping ineligible items.
func (s *Scorer) ScoreAll(items []news.Item, now time.Time) []ScoredCandidate {
	candidates := make([]ScoredCandidate, 0, len(items))
	for _, item := range items {
		score, ok := s.Score(item, now)
		if !ok {
			continue
		}
		candidates = append(candidates, ScoredCandidate{
			Item:  item,
			ID:    story.Identify(item),
			Score: score,
		})
	}
	return candidates
}

// SelectTop orders candidates by score descending, breaking ties by
// most-recent publication and then by source domain for full
// determinism, and truncates to max.
func SelectTop(candidates []ScoredCandidate, max int) []ScoredCandidate {
	out := make([]ScoredCandidate, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Item.PublishedAt.Equal(b.Item.PublishedAt) {
			return a.Item.PublishedAt.After(b.Item.PublishedAt)
		}
		return a.Item.SourceDomain < b.Item.SourceDomain
	})
	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Select ranks both buckets and applies the per-bucket caps.
func (s *Scorer) Select(primary, secondary []news.Item, now time.Time, capPrimary, capSecondary int) Selection {
	sel := Selection{
		Primary:   SelectTop(s.ScoreAll(primary, now), capPrimary),
		Secondary: SelectTop(s.ScoreAll(secondary, now), capSecondary),
	}
	slog.Info("ranked selection", "primary", len(sel.Primary), "secondary", len(sel.Secondary))
	return sel
}
