package model

type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// ExistingStory is an already-accepted story in the corpus. Read-only from
// the engine's point of view; identity is the ID.
type ExistingStory struct {
	ID                 string   `json:"id"`
	Narrative          string   `json:"narrative"`
	Persona            string   `json:"persona"`
	GroupingArea       string   `json:"grouping_area,omitempty"`
	GroupingID         string   `json:"grouping_id,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

// CandidateStory is a newly proposed story from the upstream generator. It
// has no identity until the caller accepts and persists it.
type CandidateStory struct {
	Narrative          string   `json:"narrative"`
	Persona            string   `json:"persona"`
	Priority           Priority `json:"priority"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Rationale          string   `json:"rationale"`
}

// GroupingContext describes the collection the candidates belong to. It is
// passed to the classifier to bias judgments toward the relevant domain and
// is never used in comparisons.
type GroupingContext struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
