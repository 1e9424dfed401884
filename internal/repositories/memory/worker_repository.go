package memory

import (
	"context"
	"fmt"
	"sort"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
)

type workerRepository struct {
	store *Store
}

func (r *workerRepository) Create(ctx context.Context, worker *models.Worker) error {
	if err := wrapCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workers[worker.ID]; ok {
		return fmt.Errorf("worker %s: %w", worker.ID, interfaces.ErrAlreadyExists)
	}
	ts := s.timestamp()
	worker.CreatedAt = ts
	worker.UpdatedAt = ts
	if worker.Skills == nil {
		worker.Skills = []string{}
	}
	s.workers[worker.ID] = copyWorker(worker)
	s.versions[worker.ID]++
	return nil
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	if err := wrapCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workers[id]
	if !ok {
		return nil, fmt.Errorf("worker %s: %w", id, interfaces.ErrNotFound)
	}
	return copyWorker(w), nil
}

func (r *workerRepository) Search(ctx context.Context, filter models.WorkerFilter) ([]*models.Worker, error) {
	if err := wrapCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Worker
	for _, w := range s.workers {
		if filter.Matches(w) {
			out = append(out, copyWorker(w))
		}
	}
	// Map order is random; callers get creation order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
