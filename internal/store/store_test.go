package store

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthands/storyline/internal/core/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
)

type MockDatabase struct {
	QueryExecuted string
	QueryParams   map[string]interface{}
	MockResult    neo4j.EagerResult
	Err           error
}

func (m *MockDatabase) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.QueryExecuted = query
	m.QueryParams = params
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDatabase) Close(ctx context.Context) error {
	return nil
}

func TestListStories(t *testing.T) {
	record := &neo4j.Record{
		Keys: []string{"id", "narrative", "persona", "grouping_area", "acceptance_criteria"},
		Values: []interface{}{
			"ES-1",
			"As a member, I want to cancel a table reservation",
			"member",
			"reservations",
			// Criteria come back as untyped lists; non-string entries are
			// dropped during mapping.
			[]interface{}{"Cancel button is visible", 42},
		},
	}
	mock := &MockDatabase{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{record}}}
	st := NewWithDatabase(mock)

	stories, err := st.ListStories(context.Background(), "grp-1")

	assert.NoError(t, err)
	assert.Equal(t, ListStoriesQuery, mock.QueryExecuted)
	assert.Equal(t, "grp-1", mock.QueryParams["grouping_id"])
	assert.Len(t, stories, 1)
	assert.Equal(t, "ES-1", stories[0].ID)
	assert.Equal(t, "member", stories[0].Persona)
	assert.Equal(t, "grp-1", stories[0].GroupingID)
	assert.Equal(t, "reservations", stories[0].GroupingArea)
	assert.Equal(t, []string{"Cancel button is visible"}, stories[0].AcceptanceCriteria)
}

func TestCreateStory(t *testing.T) {
	mock := &MockDatabase{}
	st := NewWithDatabase(mock)

	cand := model.CandidateStory{
		Narrative:          "As a member, I want to pay by invoice",
		Persona:            "member",
		Priority:           model.PriorityP2,
		AcceptanceCriteria: []string{"Invoice is emailed"},
	}

	story, err := st.CreateStory(context.Background(), "grp-1", "billing", cand)

	assert.NoError(t, err)
	assert.Equal(t, SaveStoryQuery, mock.QueryExecuted)
	assert.NotEmpty(t, story.ID)
	assert.Equal(t, "grp-1", story.GroupingID)
	assert.Equal(t, cand.Narrative, mock.QueryParams["narrative"])
	assert.Equal(t, "P2", mock.QueryParams["priority"])
	assert.Equal(t, cand.AcceptanceCriteria, mock.QueryParams["acceptance_criteria"])
}

func TestCreateStoryError(t *testing.T) {
	mock := &MockDatabase{Err: errors.New("connection lost")}
	st := NewWithDatabase(mock)

	_, err := st.CreateStory(context.Background(), "grp-1", "", model.CandidateStory{Narrative: "x", Persona: "member"})

	assert.Error(t, err)
}

func TestUpdateNarrative(t *testing.T) {
	mock := &MockDatabase{}
	st := NewWithDatabase(mock)

	merged := model.MergedStory{
		MergedNarrative: "As a member, I want to view and manage my reservations",
		MergedCriteria:  []string{"Reservations are listed newest first"},
	}

	err := st.UpdateNarrative(context.Background(), "ES-1", merged)

	assert.NoError(t, err)
	assert.Equal(t, UpdateNarrativeQuery, mock.QueryExecuted)
	assert.Equal(t, "ES-1", mock.QueryParams["id"])
	assert.Equal(t, merged.MergedNarrative, mock.QueryParams["narrative"])
	assert.Equal(t, merged.MergedCriteria, mock.QueryParams["acceptance_criteria"])
}
