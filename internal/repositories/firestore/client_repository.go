package firestore

import (
	"context"
	"fmt"
	"time"

	"hunarscan/internal/models"
)

type clientRepository struct {
	store *Store
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	client.CreatedAt = time.Now().UTC()
	if client.ReviewsGiven == nil {
		client.ReviewsGiven = []string{}
	}
	if _, err := r.store.clientDoc(client.ID).Create(ctx, client); err != nil {
		return statusError("client", client.ID, err)
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	snap, err := r.store.clientDoc(id).Get(ctx)
	if err != nil {
		return nil, statusError("client", id, err)
	}
	var client models.Client
	if err := snap.DataTo(&client); err != nil {
		return nil, fmt.Errorf("failed to decode client %s: %w", id, err)
	}
	client.ID = id
	return &client, nil
}
