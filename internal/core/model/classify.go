package model

// ClassifiedDecision is the classifier's proposed disposition for one
// candidate, referenced by its index in the batch. The orchestrator turns
// these into a partitioned BatchResult.
type ClassifiedDecision struct {
	CandidateIndex  int      `json:"candidate_index"`
	Action          Action   `json:"action"`
	MatchedStoryIDs []string `json:"matched_story_ids,omitempty"`
	Rationale       string   `json:"rationale"`
}

type BatchClassification struct {
	Decisions []ClassifiedDecision `json:"decisions"`
}

type PairClassification struct {
	Matches []SimilarityMatch `json:"matches"`
}
