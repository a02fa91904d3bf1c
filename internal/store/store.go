// Package store persists the story corpus in a Bolt-compatible graph
// database (Neo4j or Memgraph). It lives on the caller side of the engine
// boundary: the engine itself never touches storage.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/storyline/internal/core/model"
)

// Database is the slice of a Bolt driver the store needs.
type Database interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	Close(ctx context.Context) error
}

type boltDatabase struct {
	driver neo4j.DriverWithContext
}

func (d *boltDatabase) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *boltDatabase) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

type Store struct {
	DB Database
}

func New(uri, username, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Printf("Connected to story store at %s", uri)
	return &Store{DB: &boltDatabase{driver: driver}}, nil
}

func NewWithDatabase(db Database) *Store {
	return &Store{DB: db}
}

func (s *Store) Close(ctx context.Context) error {
	return s.DB.Close(ctx)
}

func (s *Store) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Story(id);",
		"CREATE INDEX ON :Story(grouping_id);",
	}

	for _, q := range queries {
		if _, err := s.DB.ExecuteQuery(ctx, q, nil); err != nil {
			// Index creation is idempotent on some servers and errors on
			// others when the index exists; log and keep going.
			log.Printf("Index creation note: %v", err)
		}
	}
	return nil
}

// ListStories loads the existing corpus for one grouping.
func (s *Store) ListStories(ctx context.Context, groupingID string) ([]model.ExistingStory, error) {
	result, err := s.DB.ExecuteQuery(ctx, ListStoriesQuery, map[string]interface{}{
		"grouping_id": groupingID,
	})
	if err != nil {
		return nil, err
	}

	var stories []model.ExistingStory
	for _, record := range result.Records {
		story := model.ExistingStory{GroupingID: groupingID}
		if v, ok := record.Get("id"); ok {
			story.ID, _ = v.(string)
		}
		if v, ok := record.Get("narrative"); ok {
			story.Narrative, _ = v.(string)
		}
		if v, ok := record.Get("persona"); ok {
			story.Persona, _ = v.(string)
		}
		if v, ok := record.Get("grouping_area"); ok {
			story.GroupingArea, _ = v.(string)
		}
		if v, ok := record.Get("acceptance_criteria"); ok {
			story.AcceptanceCriteria = toStringSlice(v)
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// CreateStory persists an accepted candidate as a new story and returns it
// with its minted id.
func (s *Store) CreateStory(ctx context.Context, groupingID, groupingArea string, cand model.CandidateStory) (*model.ExistingStory, error) {
	story := &model.ExistingStory{
		ID:                 uuid.New().String(),
		Narrative:          cand.Narrative,
		Persona:            cand.Persona,
		GroupingID:         groupingID,
		GroupingArea:       groupingArea,
		AcceptanceCriteria: cand.AcceptanceCriteria,
	}

	params := map[string]interface{}{
		"id":                  story.ID,
		"narrative":           story.Narrative,
		"persona":             story.Persona,
		"priority":            string(cand.Priority),
		"grouping_id":         groupingID,
		"grouping_area":       groupingArea,
		"acceptance_criteria": story.AcceptanceCriteria,
		"rationale":           cand.Rationale,
		"created_at":          time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := s.DB.ExecuteQuery(ctx, SaveStoryQuery, params); err != nil {
		return nil, err
	}
	return story, nil
}

// UpdateNarrative replaces a story's narrative and criteria with a merged
// version.
func (s *Store) UpdateNarrative(ctx context.Context, id string, merged model.MergedStory) error {
	params := map[string]interface{}{
		"id":                  id,
		"narrative":           merged.MergedNarrative,
		"acceptance_criteria": merged.MergedCriteria,
		"updated_at":          time.Now().UTC().Format(time.RFC3339),
	}

	_, err := s.DB.ExecuteQuery(ctx, UpdateNarrativeQuery, params)
	return err
}

func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
