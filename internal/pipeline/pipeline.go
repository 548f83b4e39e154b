// Package pipeline sequences the selection stages: session window,
// suppression lookup, relevance, near-duplicate clustering, ranking,
// and finally the suppression update for delivered stories.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigtarget/market-report-bot/internal/dedupe"
	"github.com/gigtarget/market-report-bot/internal/metrics"
	"github.com/gigtarget/market-report-bot/internal/news"
	"github.com/gigtarget/market-report-bot/internal/newsfilter"
	"github.com/gigtarget/market-report-bot/internal/rank"
	"github.com/gigtarget/market-report-bot/internal/story"
	"github.com/gigtarget/market-report-bot/internal/suppress"
)

// SuppressionStore is the slice of suppress.Store the pipeline needs.
type SuppressionStore interface {
	IsSuppressed(ctx context.Context, id story.ID) bool
	MarkDelivered(ctx context.Context, ids []story.ID)
}

// Pipeline holds the wiring for one report run. All stages except the
// suppression store are pure functions of the batch and the clock.
type Pipeline struct {
	Store      SuppressionStore
	Classifier newsfilter.Classifier
	Scorer     *rank.Scorer

	TrustedSources      []string
	SimilarityThreshold float64
	CapPrimary          int
	CapSecondary        int

	Metrics *metrics.Metrics
}

// New builds a pipeline with defaults filled in.
func New(store SuppressionStore, classifier newsfilter.Classifier, trustedSources []string) *Pipeline {
	if classifier == nil {
		classifier = newsfilter.NewKeywordClassifier(nil, nil, nil)
	}
	if trustedSources == nil {
		trustedSources = rank.DefaultTrustedSources
	}
	return &Pipeline{
		Store:               store,
		Classifier:          classifier,
		Scorer:              rank.NewScorer(nil, trustedSources),
		TrustedSources:      trustedSources,
		SimilarityThreshold: dedupe.DefaultThreshold,
		CapPrimary:          rank.DefaultCapPrimary,
		CapSecondary:        rank.DefaultCapSecondary,
		Metrics:             metrics.Global,
	}
}

// Result is what one run produces. Warning is set when the run degraded
// or failed; the selection is then empty but still usable downstream.
type Result struct {
	Selection rank.Selection
	Warning   string
}

// Run executes the pipeline over an already-materialized batch. It
// never panics out: any unexpected failure is returned as an empty
// selection plus a warning. No suppression state is written until the
// selection is final, so an abandoned run leaves the store untouched.
func (p *Pipeline) Run(ctx context.Context, items []news.Item, now time.Time) (result Result) {
	m := p.Metrics
	if m == nil {
		m = metrics.Global
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("news pipeline panicked", "panic", r)
			result = Result{Warning: fmt.Sprintf("news selection failed: %v", r)}
		}
		m.RecordPipelineTime(time.Since(start))
	}()

	m.AddItemsProcessed(len(items))

	// Source data defects drop the item, never the batch.
	valid := items[:0:0]
	for _, item := range items {
		if item.Valid() {
			valid = append(valid, item)
		}
	}

	fresh := newsfilter.FilterByWindow(valid, now)
	m.AddWindowDropped(len(valid) - len(fresh))

	unseen := make([]news.Item, 0, len(fresh))
	for _, item := range fresh {
		id := story.Identify(item)
		if p.Store != nil && p.Store.IsSuppressed(ctx, id) {
			slog.Info("dropping already-delivered story", "story_id", id, "title", item.Title)
			continue
		}
		unseen = append(unseen, item)
	}
	m.AddSuppressedFiltered(len(fresh) - len(unseen))

	primary, secondary := p.Classifier.Classify(unseen)

	primaryKept := dedupe.Dedupe(primary, p.TrustedSources, p.SimilarityThreshold)
	secondaryKept := dedupe.Dedupe(secondary, p.TrustedSources, p.SimilarityThreshold)
	m.AddDuplicatesFiltered(len(primary) - len(primaryKept) + len(secondary) - len(secondaryKept))

	selection := p.Scorer.Select(primaryKept, secondaryKept, now, p.CapPrimary, p.CapSecondary)
	m.AddItemsSelected(len(selection.Primary) + len(selection.Secondary))

	// The only mutation of persistent state, and only for stories that
	// actually made the report.
	if p.Store != nil && !selection.Empty() {
		p.Store.MarkDelivered(ctx, selection.IDs())
	}

	return Result{Selection: selection}
}

var _ SuppressionStore = (*suppress.Store)(nil)
