package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory job store for scaffolding/tests and for
// deployments that do not need jobs to survive a restart.
type MemoryRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs: make(map[uuid.UUID]*Job),
	}
}

// Create inserts the supplied job.
func (m *MemoryRepository) Create(_ context.Context, job *Job) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := job.clone()
	m.jobs[copied.ID] = copied
	return copied.clone(), nil
}

// GetByID retrieves a job by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, &NotFoundError{ID: id.String()}
	}
	return job.clone(), nil
}

// List returns every job ordered by creation time, oldest first.
func (m *MemoryRepository) List(_ context.Context) ([]*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces the stored job.
func (m *MemoryRepository) Update(_ context.Context, job *Job) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return nil, &NotFoundError{ID: job.ID.String()}
	}
	copied := job.clone()
	m.jobs[copied.ID] = copied
	return copied.clone(), nil
}

// Delete removes the job permanently.
func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return &NotFoundError{ID: id.String()}
	}
	delete(m.jobs, id)
	return nil
}
