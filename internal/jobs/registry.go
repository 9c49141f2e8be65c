package jobs

import (
	"fmt"
	"sync"
	"time"

	"clipforge/internal/services"
)

// Registry is the process-wide job table. State is in-memory only; a
// restart forgets every job. Snapshots returned from reads are deep copies
// and never alias stored records.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Put stores a new job record. The id must not already exist.
func (r *Registry) Put(job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return services.Wrap(services.ErrValidation, "jobs", "put", fmt.Sprintf("duplicate job id %s", job.ID), nil)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a snapshot of one job.
func (r *Registry) Get(id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "get", fmt.Sprintf("job %s not found", id), nil)
	}
	return job.Clone(), nil
}

// Update applies a mutation to one job under the registry lock. Mutations
// on terminal jobs are dropped so completed and failed stay final.
func (r *Registry) Update(id string, mutate func(*Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return services.Wrap(services.ErrNotFound, "jobs", "update", fmt.Sprintf("job %s not found", id), nil)
	}
	if job.Status.Terminal() {
		return nil
	}
	mutate(job)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// List returns snapshots of every job, unordered.
func (r *Registry) List() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		list = append(list, job.Clone())
	}
	return list
}

// Counts returns totals of active and terminal jobs.
func (r *Registry) Counts() (active, terminal int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, job := range r.jobs {
		if job.Status.Terminal() {
			terminal++
		} else {
			active++
		}
	}
	return active, terminal
}
