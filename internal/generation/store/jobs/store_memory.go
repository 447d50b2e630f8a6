package jobs

import (
	"context"
	"sync"

	"datareplicator/internal/generation/models"
	dErrors "datareplicator/pkg/domain-errors"
)

// MemoryStore keeps job results in process memory. The default store for
// development and unit tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.GenerationJobResult
}

// NewMemory constructs an empty in-memory job store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*models.GenerationJobResult),
	}
}

func (s *MemoryStore) Save(_ context.Context, result *models.GenerationJobResult) error {
	if result == nil || result.JobID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "job result with an id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[result.JobID] = result
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (*models.GenerationJobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.jobs[jobID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "job %s not found", jobID)
	}
	return result, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.GenerationJobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.GenerationJobResult, 0, len(s.jobs))
	for _, r := range s.jobs {
		out = append(out, r)
	}
	return out, nil
}
