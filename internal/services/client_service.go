package services

import (
	"context"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/validators"
	"hunarscan/pkg/logger"
)

type ClientService interface {
	CreateClient(ctx context.Context, identity *models.Identity, req *validators.ClientCreateRequest) (*models.Client, error)
}

type clientService struct {
	clients interfaces.ClientRepository
	log     *logger.Logger
}

func NewClientService(clients interfaces.ClientRepository, log *logger.Logger) ClientService {
	if log == nil {
		log = logger.NewNop()
	}
	return &clientService{clients: clients, log: log.WithField("service", "ClientService")}
}

func (s *clientService) CreateClient(ctx context.Context, identity *models.Identity, req *validators.ClientCreateRequest) (*models.Client, error) {
	const op = "services.CreateClient"

	if identity == nil || identity.UID == "" {
		return nil, apperr.Unauthenticated(op, MsgNoIdentity, nil)
	}
	if req == nil {
		return nil, apperr.InvalidArgument(op, MsgClientName)
	}
	req.Normalize()
	if errs := validators.ValidateClientCreate(req); len(errs) > 0 {
		return nil, apperr.InvalidArgument(op, MsgClientName)
	}

	client := &models.Client{
		ID:           identity.UID,
		Name:         req.Name,
		Email:        identity.Email,
		ReviewsGiven: []string{},
	}
	if err := s.clients.Create(ctx, client); err != nil {
		mapped := storeError(op, err, "", MsgClientExists)
		if apperr.Is(mapped, apperr.CodeInternal) {
			s.log.WithError(err).WithClientID(identity.UID).Error("Failed to create client")
		}
		return nil, mapped
	}
	s.log.WithClientID(client.ID).Info("Client profile created")
	return client, nil
}
