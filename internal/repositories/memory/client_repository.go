package memory

import (
	"context"
	"fmt"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
)

type clientRepository struct {
	store *Store
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	if err := wrapCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		return fmt.Errorf("client %s: %w", client.ID, interfaces.ErrAlreadyExists)
	}
	client.CreatedAt = s.timestamp()
	if client.ReviewsGiven == nil {
		client.ReviewsGiven = []string{}
	}
	s.clients[client.ID] = copyClient(client)
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	if err := wrapCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, interfaces.ErrNotFound)
	}
	return copyClient(c), nil
}
