package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/storyline/internal/config"
	"github.com/agenthands/storyline/internal/core"
	"github.com/agenthands/storyline/internal/core/consolidate"
	"github.com/agenthands/storyline/internal/core/model"
	"github.com/agenthands/storyline/internal/llm"
	"github.com/agenthands/storyline/internal/store"
)

type Server struct {
	Engine  *core.Engine
	Store   *store.Store
	Metrics *BatchMetrics
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults.", cfgPath, err)
		cfg = config.Default()
	}

	// Env vars win over the config file.
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("STORE_URI"); v != "" {
		cfg.Store.URI = v
	}
	if v := os.Getenv("STORE_USER"); v != "" {
		cfg.Store.User = v
	}
	if v := os.Getenv("STORE_PASSWORD"); v != "" {
		cfg.Store.Password = v
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	var st *store.Store
	if cfg.Store.URI != "" {
		st, err = store.New(cfg.Store.URI, cfg.Store.User, cfg.Store.Password)
		if err != nil {
			log.Fatalf("Failed to connect to story store: %v", err)
		}
		if err := st.BuildIndices(context.Background()); err != nil {
			log.Printf("Warning: could not build store indices: %v", err)
		}
	} else {
		log.Println("No store URI configured, running without persistence")
	}

	metrics := &BatchMetrics{}

	return &Server{
		Engine:  core.NewEngine(llmClient, cfg, metrics),
		Store:   st,
		Metrics: metrics,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/stories/consolidate", s.ConsolidateStories)
	r.POST("/stories/check", s.CheckStory)
	r.POST("/stories/merge", s.MergeStories)
	r.GET("/metrics", s.GetMetrics)

	return r
}

type ConsolidateRequest struct {
	GroupingID   string                 `json:"grouping_id"`
	GroupingArea string                 `json:"grouping_area"`
	Context      model.GroupingContext  `json:"context"`
	Candidates   []model.CandidateStory `json:"candidates"`
	Existing     []model.ExistingStory  `json:"existing"`
	Persist      bool                   `json:"persist"`
}

func (s *Server) ConsolidateStories(c *gin.Context) {
	var req ConsolidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	existing, ok := s.loadExisting(c, req.Existing, req.GroupingID)
	if !ok {
		return
	}

	result, err := s.Engine.Consolidate(c.Request.Context(), req.Candidates, existing, req.Context)
	if err != nil {
		if errors.Is(err, consolidate.ErrNoCandidates) || errors.Is(err, consolidate.ErrMissingContext) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Failed to consolidate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to consolidate"})
		return
	}

	// A full-corpus batch that created everything and merged nothing is the
	// shape of a degraded (fallback) result; worth a trace upstream.
	if len(existing) > 0 && result.Summary.MergesSuggested == 0 && result.Summary.DuplicatesFound == 0 {
		log.Printf("Batch for grouping %q created all %d candidates against %d existing stories", req.Context.Name, result.Summary.TotalGenerated, len(existing))
	}

	if req.Persist && s.Store != nil {
		for _, decision := range result.ToCreate {
			if _, err := s.Store.CreateStory(c.Request.Context(), req.GroupingID, req.GroupingArea, decision.Candidate); err != nil {
				log.Printf("Failed to persist created story: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist stories"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, result)
}

type CheckRequest struct {
	GroupingID string                `json:"grouping_id"`
	Candidate  model.CandidateStory  `json:"candidate"`
	Existing   []model.ExistingStory `json:"existing"`
	Threshold  int                   `json:"threshold"`
}

func (s *Server) CheckStory(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	existing, ok := s.loadExisting(c, req.Existing, req.GroupingID)
	if !ok {
		return
	}

	matches, err := s.Engine.CheckDuplicates(c.Request.Context(), req.Candidate, existing, req.Threshold)
	if err != nil {
		log.Printf("Failed to check story: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check story"})
		return
	}
	if matches == nil {
		matches = []model.SimilarityMatch{}
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

type MergeRequest struct {
	A model.MergeSource `json:"a"`
	B model.MergeSource `json:"b"`
	// TargetID names the existing story that absorbs the merge. With
	// Persist set, the merged narrative and criteria are written onto it.
	TargetID string `json:"target_id"`
	Persist  bool   `json:"persist"`
}

func (s *Server) MergeStories(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.A.Narrative == "" || req.B.Narrative == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both narratives are required"})
		return
	}
	if req.Persist && (req.TargetID == "" || s.Store == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Persisting a merge requires a target_id and a configured store"})
		return
	}

	merged := s.Engine.MergeStories(c.Request.Context(), req.A, req.B)

	if req.Persist {
		if err := s.Store.UpdateNarrative(c.Request.Context(), req.TargetID, *merged); err != nil {
			log.Printf("Failed to persist merged story %s: %v", req.TargetID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist merged story"})
			return
		}
	}

	c.JSON(http.StatusOK, merged)
}

func (s *Server) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Metrics.Snapshot())
}

// loadExisting resolves the corpus for a request: inline stories win, then
// the store by grouping id, then an empty corpus. Writes the error response
// itself when loading fails.
func (s *Server) loadExisting(c *gin.Context, inline []model.ExistingStory, groupingID string) ([]model.ExistingStory, bool) {
	if inline != nil {
		return inline, true
	}
	if s.Store == nil || groupingID == "" {
		return nil, true
	}

	existing, err := s.Store.ListStories(c.Request.Context(), groupingID)
	if err != nil {
		log.Printf("Failed to load stories for grouping %s: %v", groupingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load existing stories"})
		return nil, false
	}
	return existing, true
}
