package model

type OverlapType string

const (
	OverlapExactDuplicate OverlapType = "exact_duplicate"
	OverlapFunctional     OverlapType = "functional_overlap"
	OverlapPartial        OverlapType = "partial_overlap"
	OverlapRelated        OverlapType = "related"
)

type MergeRecommendation string

const (
	RecommendMerge        MergeRecommendation = "merge"
	RecommendKeepSeparate MergeRecommendation = "keep_separate"
	RecommendReview       MergeRecommendation = "review"
)

type Action string

const (
	ActionCreateNew         Action = "create_new"
	ActionMergeWithExisting Action = "merge_with_existing"
	ActionSkip              Action = "skip"
)

// SimilarityMatch is the classifier's judgment of how one candidate relates
// to one existing story. OverlapType is the classifier's own call; it is not
// re-derived from SimilarityScore.
type SimilarityMatch struct {
	ExistingStoryID     string              `json:"existing_story_id"`
	Narrative           string              `json:"narrative"`
	SimilarityScore     int                 `json:"similarity_score"`
	OverlapType         OverlapType         `json:"overlap_type"`
	OverlappingAspects  []string            `json:"overlapping_aspects"`
	MergeRecommendation MergeRecommendation `json:"merge_recommendation"`
	MergeRationale      string              `json:"merge_rationale"`
}

type ConsolidationDecision struct {
	Candidate  CandidateStory `json:"candidate"`
	Action     Action         `json:"action"`
	MergedWith []string       `json:"merged_with,omitempty"`
	Rationale  string         `json:"rationale"`
}

type MergeRecord struct {
	Candidate CandidateStory `json:"candidate"`
	MergeWith []string       `json:"merge_with"`
	Rationale string         `json:"rationale"`
}

type SkipRecord struct {
	Candidate   CandidateStory `json:"candidate"`
	DuplicateOf []string       `json:"duplicate_of"`
	Rationale   string         `json:"rationale"`
}

type BatchSummary struct {
	TotalGenerated  int `json:"total_generated"`
	NewStories      int `json:"new_stories"`
	MergesSuggested int `json:"merges_suggested"`
	DuplicatesFound int `json:"duplicates_found"`
}

// BatchResult partitions one batch of candidates. Every candidate appears in
// exactly one of the three lists and TotalGenerated equals their combined
// length.
type BatchResult struct {
	ToCreate []ConsolidationDecision `json:"to_create"`
	ToMerge  []MergeRecord           `json:"to_merge"`
	ToSkip   []SkipRecord            `json:"to_skip"`
	Summary  BatchSummary            `json:"summary"`
}

type MergedStory struct {
	MergedNarrative string   `json:"merged_narrative"`
	MergedCriteria  []string `json:"merged_criteria"`
}

// MergeSource is one side of a narrative merge.
type MergeSource struct {
	Narrative          string   `json:"narrative"`
	Persona            string   `json:"persona"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}
