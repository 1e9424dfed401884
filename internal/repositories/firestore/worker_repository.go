package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"hunarscan/internal/models"
)

type workerRepository struct {
	store *Store
}

func (r *workerRepository) Create(ctx context.Context, worker *models.Worker) error {
	now := time.Now().UTC()
	worker.CreatedAt = now
	worker.UpdatedAt = now
	if worker.Skills == nil {
		worker.Skills = []string{}
	}
	if _, err := r.store.workerDoc(worker.ID).Create(ctx, worker); err != nil {
		return statusError("worker", worker.ID, err)
	}
	return nil
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	snap, err := r.store.workerDoc(id).Get(ctx)
	if err != nil {
		return nil, statusError("worker", id, err)
	}
	var worker models.Worker
	if err := snap.DataTo(&worker); err != nil {
		return nil, fmt.Errorf("failed to decode worker %s: %w", id, err)
	}
	worker.ID = id
	return &worker, nil
}

// Search returns every worker; Firestore has no substring queries, so the
// caller applies the filter.
func (r *workerRepository) Search(ctx context.Context, filter models.WorkerFilter) ([]*models.Worker, error) {
	snaps, err := r.store.client.Collection(workersCollection).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, statusError("workers", "", err)
	}
	workers := make([]*models.Worker, 0, len(snaps))
	for _, snap := range snaps {
		var worker models.Worker
		if err := snap.DataTo(&worker); err != nil {
			return nil, fmt.Errorf("failed to decode worker %s: %w", snap.Ref.ID, err)
		}
		worker.ID = snap.Ref.ID
		if filter.Matches(&worker) {
			workers = append(workers, &worker)
		}
	}
	return workers, nil
}
