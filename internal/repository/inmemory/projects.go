// Package inmemory holds the process-local project store used in memory
// mode and in tests. Rows are cloned on the way in and out so callers can
// never alias the stored snapshot.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"agency-budget-go/internal/domain/project"
)

type ProjectRepository struct {
	mu    sync.RWMutex
	items map[string]project.Project
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		items: make(map[string]project.Project),
	}
}

func (r *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]project.Project, 0, len(r.items))
	for _, p := range r.items {
		items = append(items, p.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	cloned := p.Clone()
	return &cloned, nil
}

func (r *ProjectRepository) Upsert(ctx context.Context, p *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = p.Clone()
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}
