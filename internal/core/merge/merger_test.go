package merge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agenthands/storyline/internal/config"
	"github.com/agenthands/storyline/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestMergeNarratives(t *testing.T) {
	mockResponse := `{
		"merged_narrative": "As a member, I want to view and manage my reservations",
		"merged_criteria": ["Reservations are listed newest first", "Upcoming bookings are highlighted"]
	}`

	merger := NewMerger(&MockLLMClient{Response: mockResponse}, config.Default().Merge)

	a := model.MergeSource{Narrative: "As a member, I want to view my reservations", Persona: "member"}
	b := model.MergeSource{Narrative: "As a member, I want to see upcoming bookings", Persona: "member"}

	merged := merger.MergeNarratives(context.Background(), a, b)

	assert.Equal(t, "As a member, I want to view and manage my reservations", merged.MergedNarrative)
	assert.Len(t, merged.MergedCriteria, 2)
}

func TestMergeFallbackOnGenerationError(t *testing.T) {
	merger := NewMerger(&MockLLMClient{Err: errors.New("adapter unavailable")}, config.Default().Merge)

	a := model.MergeSource{
		Narrative:          "As a member, I want to view my reservations",
		Persona:            "member",
		AcceptanceCriteria: []string{"Reservations are listed newest first"},
	}
	b := model.MergeSource{
		Narrative:          "As a member, I want to see upcoming bookings",
		Persona:            "member",
		AcceptanceCriteria: []string{"Upcoming bookings are highlighted"},
	}

	merged := merger.MergeNarratives(context.Background(), a, b)

	// First narrative kept verbatim, second appended with its persona
	// clause stripped.
	assert.True(t, strings.HasPrefix(merged.MergedNarrative, "As a member, I want to view my reservations"))
	assert.Contains(t, merged.MergedNarrative, "I want to see upcoming bookings")
	assert.NotContains(t, merged.MergedNarrative[1:], "As a member")

	assert.Equal(t, []string{
		"Reservations are listed newest first",
		"Upcoming bookings are highlighted",
	}, merged.MergedCriteria)
}

func TestMergeFallbackOnUnparseableResponse(t *testing.T) {
	merger := NewMerger(&MockLLMClient{Response: "Sure, I merged those stories for you!"}, config.Default().Merge)

	a := model.MergeSource{Narrative: "As an admin, I want to export reports", Persona: "admin"}
	b := model.MergeSource{Narrative: "As an admin, I want to download usage data", Persona: "admin"}

	merged := merger.MergeNarratives(context.Background(), a, b)

	assert.True(t, strings.HasPrefix(merged.MergedNarrative, "As an admin, I want to export reports"))
	assert.Contains(t, merged.MergedNarrative, "I want to download usage data")
}

func TestMergeFallbackCriteriaNotDeduplicated(t *testing.T) {
	merger := NewMerger(&MockLLMClient{Err: errors.New("down")}, config.Default().Merge)

	shared := "Member sees a confirmation"
	a := model.MergeSource{Narrative: "As a member, I want to cancel", Persona: "member", AcceptanceCriteria: []string{shared}}
	b := model.MergeSource{Narrative: "As a member, I want to rebook", Persona: "member", AcceptanceCriteria: []string{shared}}

	merged := merger.MergeNarratives(context.Background(), a, b)

	// The deterministic path concatenates; it does not deduplicate.
	assert.Equal(t, []string{shared, shared}, merged.MergedCriteria)
}

func TestMergeFallbackJoinDropsTrailingPeriod(t *testing.T) {
	merger := NewMerger(&MockLLMClient{Err: errors.New("down")}, config.Default().Merge)

	a := model.MergeSource{Narrative: "As a member, I want to view my reservations.", Persona: "member"}
	b := model.MergeSource{Narrative: "As a member, I want to see upcoming bookings", Persona: "member"}

	merged := merger.MergeNarratives(context.Background(), a, b)

	// The period is dropped at the splice point so the joined narrative
	// reads as one sentence.
	assert.True(t, strings.HasPrefix(merged.MergedNarrative, "As a member, I want to view my reservations, and"))
	assert.NotContains(t, merged.MergedNarrative, "., and")
}

func TestStripPersonaClauseCaseInsensitive(t *testing.T) {
	merger := NewMerger(&MockLLMClient{Err: errors.New("down")}, config.Default().Merge)

	a := model.MergeSource{Narrative: "As a member, I want to view my reservations", Persona: "member"}
	b := model.MergeSource{Narrative: "AS A MEMBER, I want to see upcoming bookings", Persona: "member"}

	merged := merger.MergeNarratives(context.Background(), a, b)

	assert.Contains(t, merged.MergedNarrative, "I want to see upcoming bookings")
	assert.NotContains(t, merged.MergedNarrative, "AS A MEMBER")
}
