package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hunarscan/internal/models"
)

type clientRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	client.CreatedAt = r.now()
	if client.ReviewsGiven == nil {
		client.ReviewsGiven = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, client); err != nil {
		return insertError("client", client.ID, err)
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&client); err != nil {
		return nil, findError("client", id, err)
	}
	return &client, nil
}
