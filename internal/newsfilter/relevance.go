package newsfilter

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/gigtarget/market-report-bot/internal/news"
)

// DefaultPrimaryKeywords mark a story as primary-market news wherever
// it was filed.
var DefaultPrimaryKeywords = []string{
	"nifty",
	"sensex",
	"bank nifty",
	"nse",
	"bse",
	"fii",
	"dii",
	"rbi",
	"sebi",
	"gift nifty",
	"india vix",
	"vix",
}

// DefaultLinkedKeywords pull in stories filed elsewhere that still move
// the primary market.
var DefaultLinkedKeywords = []string{
	"india",
	"indian",
	"rupee",
	"rbi",
	"indian equities",
	"india markets",
}

// Classifier partitions a batch into the primary bucket and the
// advisory secondary bucket; everything else is discarded.
type Classifier interface {
	Classify(items []news.Item) (primary, secondary []news.Item)
}

// KeywordClassifier is the full policy: the ingestion category, a
// primary keyword hit, or a whole-word watch-list symbol match puts an
// item in the primary bucket; otherwise a linked keyword puts it in the
// secondary bucket.
type KeywordClassifier struct {
	primaryKeywords []string
	linkedKeywords  []string
	symbolPattern   *regexp.Regexp
	wordPatterns    map[string]*regexp.Regexp
}

// NewKeywordClassifier builds a classifier. Nil keyword slices fall
// back to the defaults; an empty symbol list disables symbol matching.
func NewKeywordClassifier(primaryKeywords, linkedKeywords, symbols []string) *KeywordClassifier {
	if primaryKeywords == nil {
		primaryKeywords = DefaultPrimaryKeywords
	}
	if linkedKeywords == nil {
		linkedKeywords = DefaultLinkedKeywords
	}
	c := &KeywordClassifier{
		primaryKeywords: lowerAll(primaryKeywords),
		linkedKeywords:  lowerAll(linkedKeywords),
		symbolPattern:   compileSymbolPattern(symbols),
		wordPatterns:    map[string]*regexp.Regexp{},
	}
	for _, k := range append(c.primaryKeywords, c.linkedKeywords...) {
		if !strings.Contains(k, " ") && len(k) <= 4 {
			c.wordPatterns[k] = regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
		}
	}
	return c
}

func (c *KeywordClassifier) Classify(items []news.Item) (primary, secondary []news.Item) {
	for _, item := range items {
		text := strings.ToLower(strings.TrimSpace(item.Title + " " + item.Summary))

		switch {
		case item.Category == news.CategoryIndia || item.Category == news.CategoryLiveblog:
			primary = append(primary, item)
		case c.containsAny(text, c.primaryKeywords):
			primary = append(primary, item)
		case c.symbolPattern != nil && c.symbolPattern.MatchString(text):
			primary = append(primary, item)
		case c.containsAny(text, c.linkedKeywords):
			secondary = append(secondary, item)
		}
	}

	slog.Info("relevance classifier", "primary", len(primary), "secondary", len(secondary),
		"discarded", len(items)-len(primary)-len(secondary))
	return primary, secondary
}

// CategoryClassifier is the simpler configuration of the same contract:
// only the category assigned by the source adapter counts.
type CategoryClassifier struct{}

func (CategoryClassifier) Classify(items []news.Item) (primary, secondary []news.Item) {
	for _, item := range items {
		switch item.Category {
		case news.CategoryIndia, news.CategoryLiveblog:
			primary = append(primary, item)
		case news.CategoryGlobal:
			secondary = append(secondary, item)
		}
	}
	return primary, secondary
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// containsAny does substring matching for phrases and whole-word
// matching for short tokens, so "dii" does not fire inside "additional".
func (c *KeywordClassifier) containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if re, ok := c.wordPatterns[k]; ok {
			if re.MatchString(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// compileSymbolPattern folds the watch-list into one case-insensitive
// whole-word alternation.
func compileSymbolPattern(symbols []string) *regexp.Regexp {
	quoted := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s != "" {
			quoted = append(quoted, regexp.QuoteMeta(s))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}
