// Package classify is the boundary to the external text-classification
// capability. It owns the prompt construction and the parse-or-fail contract;
// how the model arrives at its judgments is opaque to the rest of the engine.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/storyline/internal/config"
	"github.com/agenthands/storyline/internal/core/common"
	"github.com/agenthands/storyline/internal/core/model"
	"github.com/agenthands/storyline/internal/llm"
)

// DefaultPairThreshold is the minimum similarity score a pair match must
// reach to be reported when the caller does not supply a threshold.
const DefaultPairThreshold = 60

type Classifier struct {
	LLM     llm.LLMClient
	Prompts config.ClassificationPrompts
}

func NewClassifier(llmClient llm.LLMClient, prompts config.ClassificationPrompts) *Classifier {
	return &Classifier{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// ClassifyBatch judges the full candidate list against the existing corpus
// in a single request. The grouping context is advisory text that biases the
// judgment toward the relevant domain. Returns an error on generation
// failure or when no structured decision set can be parsed out of the
// response; the caller decides how to degrade.
func (c *Classifier) ClassifyBatch(ctx context.Context, candidates []model.CandidateStory, existing []model.ExistingStory, gctx model.GroupingContext) (*model.BatchClassification, error) {
	prompt := fmt.Sprintf(c.Prompts.Batch,
		gctx.Name,
		gctx.Description,
		serializeCandidates(candidates),
		serializeExisting(existing),
	)

	response, err := c.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate batch classification: %w", err)
	}

	result, err := common.ParseJSON[model.BatchClassification](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse batch classification: %w", err)
	}

	return &result, nil
}

// ClassifyPair compares one candidate against a set of existing stories and
// returns the matches scoring at or above threshold. A threshold <= 0 means
// DefaultPairThreshold. Used for interactive duplicate warnings before a
// story is added by hand.
func (c *Classifier) ClassifyPair(ctx context.Context, candidate model.CandidateStory, existing []model.ExistingStory, threshold int) ([]model.SimilarityMatch, error) {
	if threshold <= 0 {
		threshold = DefaultPairThreshold
	}

	prompt := fmt.Sprintf(c.Prompts.Pair,
		serializeCandidates([]model.CandidateStory{candidate}),
		serializeExisting(existing),
		threshold,
	)

	response, err := c.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate pair classification: %w", err)
	}

	result, err := common.ParseJSON[model.PairClassification](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pair classification: %w", err)
	}

	// The model is told about the threshold but not trusted to apply it.
	var matches []model.SimilarityMatch
	for _, m := range result.Matches {
		if m.SimilarityScore >= threshold {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func serializeCandidates(candidates []model.CandidateStory) string {
	var b strings.Builder
	for i, cand := range candidates {
		fmt.Fprintf(&b, "[%d] Narrative: %s | Persona: %s | Priority: %s\n", i, cand.Narrative, cand.Persona, cand.Priority)
		for _, ac := range cand.AcceptanceCriteria {
			fmt.Fprintf(&b, "    - %s\n", ac)
		}
	}
	return b.String()
}

func serializeExisting(existing []model.ExistingStory) string {
	var b strings.Builder
	for _, story := range existing {
		fmt.Fprintf(&b, "- ID: %s | Narrative: %s | Persona: %s\n", story.ID, story.Narrative, story.Persona)
	}
	return b.String()
}
