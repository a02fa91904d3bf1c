// Package consolidate decides, for a batch of proposed stories, which should
// be created, merged into existing stories, or skipped as duplicates.
//
// Only candidate-vs-existing overlap is judged. Two candidates in the same
// batch that duplicate each other both flow through independently; callers
// that care should run a second pass over the accepted set.
package consolidate

import (
	"context"
	"errors"
	"log"

	"github.com/agenthands/storyline/internal/core/model"
	"github.com/agenthands/storyline/internal/core/similarity"
)

var (
	ErrNoCandidates   = errors.New("no candidate stories to consolidate")
	ErrMissingContext = errors.New("grouping context name is required")
)

// BatchClassifier is the slice of the classification adapter the
// orchestrator needs.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, candidates []model.CandidateStory, existing []model.ExistingStory, gctx model.GroupingContext) (*model.BatchClassification, error)
}

// MetricsSink receives the summary of every processed batch. Injected so
// usage accounting never lives in package globals.
type MetricsSink interface {
	BatchProcessed(summary model.BatchSummary)
}

type NopMetrics struct{}

func (NopMetrics) BatchProcessed(model.BatchSummary) {}

type Consolidator struct {
	Classifier BatchClassifier
	Metrics    MetricsSink
}

func NewConsolidator(classifier BatchClassifier, metrics MetricsSink) *Consolidator {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Consolidator{
		Classifier: classifier,
		Metrics:    metrics,
	}
}

// Consolidate partitions the candidates into create/merge/skip against the
// existing corpus. At most one classification call is issued per invocation;
// candidates whose prefiltered corpus is empty never reach the classifier.
// Any classifier failure degrades the whole batch to create_new: a proposed
// story is never silently dropped.
func (c *Consolidator) Consolidate(ctx context.Context, candidates []model.CandidateStory, existing []model.ExistingStory, gctx model.GroupingContext) (*model.BatchResult, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if gctx.Name == "" {
		return nil, ErrMissingContext
	}

	if len(existing) == 0 {
		return c.finish(allCreate(candidates, "no existing stories in this grouping")), nil
	}

	// Narrow the corpus per candidate before paying for classification.
	relevantIDs := make(map[string]struct{})
	var relevant []model.ExistingStory
	checkIndex := make([]int, 0, len(candidates)) // original index of each checked candidate
	skipCheck := make([]bool, len(candidates))    // true = short-circuits to create_new

	for i, cand := range candidates {
		survivors := similarity.Prefilter(cand, existing)
		if len(survivors) == 0 {
			skipCheck[i] = true
			continue
		}
		checkIndex = append(checkIndex, i)
		for _, story := range survivors {
			if _, seen := relevantIDs[story.ID]; !seen {
				relevantIDs[story.ID] = struct{}{}
				relevant = append(relevant, story)
			}
		}
	}

	if len(checkIndex) == 0 {
		return c.finish(allCreate(candidates, "no overlapping stories after prefilter")), nil
	}

	checked := make([]model.CandidateStory, len(checkIndex))
	narratives := make([]string, len(checkIndex))
	for pos, i := range checkIndex {
		checked[pos] = candidates[i]
		narratives[pos] = candidates[i].Narrative
	}
	relevant = similarity.Rank(narratives, relevant)

	classification, err := c.Classifier.ClassifyBatch(ctx, checked, relevant, gctx)
	if err != nil {
		log.Printf("consolidate: classification failed, creating all %d candidates: %v", len(candidates), err)
		return c.finish(allCreate(candidates, "classification unavailable, kept as new story")), nil
	}

	return c.finish(partition(candidates, skipCheck, checkIndex, classification)), nil
}

// partition folds the classifier's proposed decisions back onto the original
// candidate order. Candidates the classifier did not mention default to
// create_new.
func partition(candidates []model.CandidateStory, skipCheck []bool, checkIndex []int, classification *model.BatchClassification) *model.BatchResult {
	decisions := make(map[int]model.ClassifiedDecision, len(classification.Decisions))
	for _, d := range classification.Decisions {
		if d.CandidateIndex < 0 || d.CandidateIndex >= len(checkIndex) {
			log.Printf("consolidate: dropping decision with out-of-range candidate_index %d", d.CandidateIndex)
			continue
		}
		decisions[checkIndex[d.CandidateIndex]] = d
	}

	result := &model.BatchResult{}
	for i, cand := range candidates {
		if skipCheck[i] {
			result.ToCreate = append(result.ToCreate, model.ConsolidationDecision{
				Candidate: cand,
				Action:    model.ActionCreateNew,
				Rationale: "no overlapping stories after prefilter",
			})
			continue
		}

		decision, ok := decisions[i]
		if !ok {
			result.ToCreate = append(result.ToCreate, model.ConsolidationDecision{
				Candidate: cand,
				Action:    model.ActionCreateNew,
				Rationale: "no classifier decision, kept as new story",
			})
			continue
		}

		switch decision.Action {
		case model.ActionMergeWithExisting:
			result.ToMerge = append(result.ToMerge, model.MergeRecord{
				Candidate: cand,
				MergeWith: decision.MatchedStoryIDs,
				Rationale: decision.Rationale,
			})
		case model.ActionSkip:
			result.ToSkip = append(result.ToSkip, model.SkipRecord{
				Candidate:   cand,
				DuplicateOf: decision.MatchedStoryIDs,
				Rationale:   decision.Rationale,
			})
		default:
			result.ToCreate = append(result.ToCreate, model.ConsolidationDecision{
				Candidate: cand,
				Action:    model.ActionCreateNew,
				Rationale: decision.Rationale,
			})
		}
	}
	return result
}

func allCreate(candidates []model.CandidateStory, rationale string) *model.BatchResult {
	result := &model.BatchResult{}
	for _, cand := range candidates {
		result.ToCreate = append(result.ToCreate, model.ConsolidationDecision{
			Candidate: cand,
			Action:    model.ActionCreateNew,
			Rationale: rationale,
		})
	}
	return result
}

// finish fills in the summary arithmetic and reports the batch to the sink.
func (c *Consolidator) finish(result *model.BatchResult) *model.BatchResult {
	result.Summary = model.BatchSummary{
		TotalGenerated:  len(result.ToCreate) + len(result.ToMerge) + len(result.ToSkip),
		NewStories:      len(result.ToCreate),
		MergesSuggested: len(result.ToMerge),
		DuplicatesFound: len(result.ToSkip),
	}
	c.Metrics.BatchProcessed(result.Summary)
	return result
}
