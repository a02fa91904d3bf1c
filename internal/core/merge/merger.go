// Package merge synthesizes one combined story out of two overlapping ones.
package merge

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/agenthands/storyline/internal/config"
	"github.com/agenthands/storyline/internal/core/common"
	"github.com/agenthands/storyline/internal/core/model"
	"github.com/agenthands/storyline/internal/llm"
)

// Leading "As a <persona>," / "As an <persona>," clause of a narrative.
var personaClause = regexp.MustCompile(`(?i)^\s*as\s+an?\s+[^,]+,\s*`)

type Merger struct {
	LLM     llm.LLMClient
	Prompts config.MergePrompts
}

func NewMerger(llmClient llm.LLMClient, prompts config.MergePrompts) *Merger {
	return &Merger{
		LLM:     llmClient,
		Prompts: prompts,
	}
}

// MergeNarratives combines two overlapping stories. The primary path asks
// the classification capability to synthesize the merged story; if that call
// fails or its output cannot be parsed, the stories are concatenated
// deterministically instead. Never fails: a degraded merge is still a merge.
func (m *Merger) MergeNarratives(ctx context.Context, a, b model.MergeSource) *model.MergedStory {
	prompt := fmt.Sprintf(m.Prompts.Stories,
		a.Narrative,
		serializeCriteria(a.AcceptanceCriteria),
		b.Narrative,
		serializeCriteria(b.AcceptanceCriteria),
	)

	response, err := m.LLM.Generate(ctx, prompt)
	if err != nil {
		log.Printf("merge: generation failed, using textual fallback: %v", err)
		return fallbackMerge(a, b)
	}

	result, err := common.ParseJSON[model.MergedStory](response)
	if err != nil || result.MergedNarrative == "" {
		log.Printf("merge: unparseable merge result, using textual fallback: %v", err)
		return fallbackMerge(a, b)
	}

	return &result
}

// fallbackMerge concatenates deterministically: the first narrative, then
// the second with its leading persona clause stripped, joined by a
// connective. A trailing period on the first narrative is dropped only when
// a connective is appended, so the join reads as one sentence; with nothing
// to append the first narrative is returned untouched. Criteria are
// concatenated as-is; duplicates are left in place.
func fallbackMerge(a, b model.MergeSource) *model.MergedStory {
	clause := personaClause.ReplaceAllString(b.Narrative, "")
	clause = strings.TrimSpace(clause)

	narrative := a.Narrative
	if clause != "" {
		narrative = fmt.Sprintf("%s, and %s", strings.TrimRight(a.Narrative, " ."), clause)
	}

	criteria := make([]string, 0, len(a.AcceptanceCriteria)+len(b.AcceptanceCriteria))
	criteria = append(criteria, a.AcceptanceCriteria...)
	criteria = append(criteria, b.AcceptanceCriteria...)

	return &model.MergedStory{
		MergedNarrative: narrative,
		MergedCriteria:  criteria,
	}
}

func serializeCriteria(criteria []string) string {
	if len(criteria) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for _, c := range criteria {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}
