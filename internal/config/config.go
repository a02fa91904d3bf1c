package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ClassificationPrompts struct {
	Batch string `toml:"batch"`
	Pair  string `toml:"pair"`
}

type MergePrompts struct {
	Stories string `toml:"stories"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type StoreConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type Config struct {
	LLM            LLMConfig             `toml:"llm"`
	Store          StoreConfig           `toml:"store"`
	Classification ClassificationPrompts `toml:"classification"`
	Merge          MergePrompts          `toml:"merge"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// Default returns a config carrying the built-in prompt templates. Template
// placeholders are filled with fmt.Sprintf; the argument order is documented
// next to each template.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			URI: "bolt://localhost:7687",
		},
		Classification: ClassificationPrompts{
			Batch: defaultBatchPrompt,
			Pair:  defaultPairPrompt,
		},
		Merge: MergePrompts{
			Stories: defaultMergePrompt,
		},
	}
}

// Args: grouping name, grouping description, proposed stories block,
// existing stories block.
const defaultBatchPrompt = `You are reviewing proposed user stories for the "%s" grouping.
Grouping description: %s

<PROPOSED STORIES>
%s</PROPOSED STORIES>

<EXISTING STORIES>
%s</EXISTING STORIES>

Instructions:
For each proposed story, decide whether it should be created as a new story, merged with one or more existing stories, or skipped because it duplicates an existing story.
Return a JSON object with key "decisions": a list of objects with "candidate_index" (0-based index into the proposed stories), "action" ("create_new", "merge_with_existing", or "skip"), "matched_story_ids" (ids of the existing stories involved, empty for create_new), and "rationale".

Example JSON:
{
  "decisions": [
    {"candidate_index": 0, "action": "merge_with_existing", "matched_story_ids": ["ES-1"], "rationale": "Covers the same cancellation flow"}
  ]
}
`

// Args: candidate story block, existing stories block, minimum score.
const defaultPairPrompt = `Compare the proposed user story below against the existing stories and report every meaningful overlap.

<PROPOSED STORY>
%s</PROPOSED STORY>

<EXISTING STORIES>
%s</EXISTING STORIES>

Instructions:
Return a JSON object with key "matches": a list of objects with "existing_story_id", "narrative", "similarity_score" (integer 0-100), "overlap_type" ("exact_duplicate", "functional_overlap", "partial_overlap", or "related"), "overlapping_aspects" (list of strings), "merge_recommendation" ("merge", "keep_separate", or "review"), and "merge_rationale".
Only include matches with similarity_score of %d or higher.

Example JSON:
{
  "matches": [
    {"existing_story_id": "ES-1", "narrative": "As a member, I want to cancel a reservation", "similarity_score": 85, "overlap_type": "functional_overlap", "overlapping_aspects": ["cancellation"], "merge_recommendation": "merge", "merge_rationale": "Same user goal"}
  ]
}
`

// Args: first narrative, first criteria block, second narrative, second
// criteria block.
const defaultMergePrompt = `Merge the two overlapping user stories below into a single story that preserves the intent of both.

<STORY A>
Narrative: %s
Acceptance criteria:
%s</STORY A>

<STORY B>
Narrative: %s
Acceptance criteria:
%s</STORY B>

Instructions:
Return a JSON object with keys "merged_narrative" (a single user story narrative) and "merged_criteria" (a combined list of acceptance criteria).

Example JSON:
{
  "merged_narrative": "As a member, I want to view and manage my reservations",
  "merged_criteria": ["Reservations are listed newest first"]
}
`
