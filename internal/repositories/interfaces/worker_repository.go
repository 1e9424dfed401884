package interfaces

import (
	"context"

	"hunarscan/internal/models"
)

type WorkerRepository interface {
	Create(ctx context.Context, worker *models.Worker) error
	GetByID(ctx context.Context, id string) (*models.Worker, error)
	Search(ctx context.Context, filter models.WorkerFilter) ([]*models.Worker, error)
}
