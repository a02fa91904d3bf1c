package server

import (
	"sync"

	"github.com/agenthands/storyline/internal/core/model"
)

// BatchMetrics is the server's consolidation metrics sink: plain counters
// behind a mutex, exposed on GET /metrics.
type BatchMetrics struct {
	mu              sync.Mutex
	batches         int
	totalGenerated  int
	newStories      int
	mergesSuggested int
	duplicatesFound int
}

func (m *BatchMetrics) BatchProcessed(summary model.BatchSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.totalGenerated += summary.TotalGenerated
	m.newStories += summary.NewStories
	m.mergesSuggested += summary.MergesSuggested
	m.duplicatesFound += summary.DuplicatesFound
}

func (m *BatchMetrics) Snapshot() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]int{
		"batches":          m.batches,
		"total_generated":  m.totalGenerated,
		"new_stories":      m.newStories,
		"merges_suggested": m.mergesSuggested,
		"duplicates_found": m.duplicatesFound,
	}
}
