package core

import (
	"context"

	"github.com/agenthands/storyline/internal/config"
	"github.com/agenthands/storyline/internal/core/classify"
	"github.com/agenthands/storyline/internal/core/consolidate"
	"github.com/agenthands/storyline/internal/core/merge"
	"github.com/agenthands/storyline/internal/core/model"
	"github.com/agenthands/storyline/internal/core/similarity"
	"github.com/agenthands/storyline/internal/llm"
)

// Engine wires the consolidation components behind one entry point. It is
// stateless: every call stands alone and is safe to run concurrently with
// others.
type Engine struct {
	Classifier   *classify.Classifier
	Consolidator *consolidate.Consolidator
	Merger       *merge.Merger
}

func NewEngine(llmClient llm.LLMClient, cfg *config.Config, metrics consolidate.MetricsSink) *Engine {
	classifier := classify.NewClassifier(llmClient, cfg.Classification)
	return &Engine{
		Classifier:   classifier,
		Consolidator: consolidate.NewConsolidator(classifier, metrics),
		Merger:       merge.NewMerger(llmClient, cfg.Merge),
	}
}

// Consolidate partitions a batch of candidates against the existing corpus.
func (e *Engine) Consolidate(ctx context.Context, candidates []model.CandidateStory, existing []model.ExistingStory, gctx model.GroupingContext) (*model.BatchResult, error) {
	return e.Consolidator.Consolidate(ctx, candidates, existing, gctx)
}

// CheckDuplicates runs the interactive single-candidate check: prefilter the
// corpus, then ask the classifier for matches at or above threshold. An
// empty prefiltered corpus returns no matches without a classification call.
func (e *Engine) CheckDuplicates(ctx context.Context, candidate model.CandidateStory, existing []model.ExistingStory, threshold int) ([]model.SimilarityMatch, error) {
	survivors := similarity.Prefilter(candidate, existing)
	if len(survivors) == 0 {
		return nil, nil
	}
	survivors = similarity.Rank([]string{candidate.Narrative}, survivors)
	return e.Classifier.ClassifyPair(ctx, candidate, survivors, threshold)
}

// MergeStories combines two overlapping stories, degrading to the
// deterministic textual merge when the classifier is unavailable.
func (e *Engine) MergeStories(ctx context.Context, a, b model.MergeSource) *model.MergedStory {
	return e.Merger.MergeNarratives(ctx, a, b)
}
