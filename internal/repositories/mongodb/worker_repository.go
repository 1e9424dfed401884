package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hunarscan/internal/models"
)

type workerRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func (r *workerRepository) Create(ctx context.Context, worker *models.Worker) error {
	now := r.now()
	worker.CreatedAt = now
	worker.UpdatedAt = now
	if worker.Skills == nil {
		worker.Skills = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, worker); err != nil {
		return insertError("worker", worker.ID, err)
	}
	return nil
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	var worker models.Worker
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&worker); err != nil {
		return nil, findError("worker", id, err)
	}
	return &worker, nil
}

func (r *workerRepository) Search(ctx context.Context, filter models.WorkerFilter) ([]*models.Worker, error) {
	cursor, err := r.collection.Find(ctx, workerSearchFilter(filter),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to search workers: %w", err)
	}
	defer cursor.Close(ctx)

	var workers []*models.Worker
	if err := cursor.All(ctx, &workers); err != nil {
		return nil, fmt.Errorf("failed to decode workers: %w", err)
	}
	return workers, nil
}
