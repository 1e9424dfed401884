package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/utils"
	"hunarscan/internal/validators"
	"hunarscan/pkg/logger"
)

type WorkerService interface {
	// CreateWorker registers the caller as a worker. host is the request host
	// used for the profile link when no base URL is configured.
	CreateWorker(ctx context.Context, identity *models.Identity, req *validators.WorkerCreateRequest, host string) (*models.Worker, error)
	GetWorker(ctx context.Context, id string) (*models.Worker, error)
	SearchWorkers(ctx context.Context, filter models.WorkerFilter) ([]*models.Worker, error)
}

type workerService struct {
	workers  interfaces.WorkerRepository
	cache    CacheService
	cacheTTL time.Duration
	baseURL  string
	log      *logger.Logger
}

func NewWorkerService(workers interfaces.WorkerRepository, cache CacheService, cacheTTL time.Duration, baseURL string, log *logger.Logger) WorkerService {
	if log == nil {
		log = logger.NewNop()
	}
	return &workerService{
		workers:  workers,
		cache:    cache,
		cacheTTL: cacheTTL,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log.WithField("service", "WorkerService"),
	}
}

func workerCacheKey(id string) string {
	return utils.WorkerCachePrefix + id
}

func (s *workerService) CreateWorker(ctx context.Context, identity *models.Identity, req *validators.WorkerCreateRequest, host string) (*models.Worker, error) {
	const op = "services.CreateWorker"

	if identity == nil || identity.UID == "" {
		return nil, apperr.Unauthenticated(op, MsgNoIdentity, nil)
	}
	if req == nil {
		return nil, apperr.InvalidArgument(op, MsgWorkerFields)
	}
	req.Normalize()
	if errs := validators.ValidateWorkerCreate(req); len(errs) > 0 {
		if errs.HasTag("not_blank") {
			return nil, apperr.InvalidArgument(op, MsgWorkerFields)
		}
		if errs.HasTag("phone_number") {
			return nil, apperr.InvalidArgument(op, MsgInvalidPhone)
		}
		return nil, apperr.InvalidArgument(op, errs.Error())
	}

	worker := &models.Worker{
		ID:         identity.UID,
		Name:       req.Name,
		Email:      identity.Email,
		Phone:      req.Phone,
		Trade:      req.Trade,
		Location:   req.Location,
		Skills:     []string{},
		ProfileURL: s.profileURL(host, identity.UID),
		TrustScore: 0,
		JobsCount:  0,
	}
	if err := s.workers.Create(ctx, worker); err != nil {
		mapped := storeError(op, err, "", MsgWorkerExists)
		if apperr.Is(mapped, apperr.CodeInternal) {
			s.log.WithError(err).WithWorkerID(identity.UID).Error("Failed to create worker")
		}
		return nil, mapped
	}

	s.log.WithWorkerID(worker.ID).WithField("trade", worker.Trade).Info("Worker profile created")
	return worker, nil
}

func (s *workerService) profileURL(host, id string) string {
	if s.baseURL != "" {
		return s.baseURL + utils.ProfilePathPrefix + id
	}
	if host == "" {
		host = "localhost"
	}
	return utils.ProfileURL(host, id)
}

func (s *workerService) GetWorker(ctx context.Context, id string) (*models.Worker, error) {
	const op = "services.GetWorker"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.InvalidArgument(op, MsgWorkerIDRequired)
	}
	log := s.log.WithContext(ctx).WithWorkerID(id)

	if s.cache != nil {
		var cached models.Worker
		err := s.cache.Get(ctx, workerCacheKey(id), &cached)
		switch {
		case err == nil:
			cached.ID = id
			return &cached, nil
		case !isCacheMiss(err):
			log.WithError(err).Warn("Worker cache read failed")
		}
	}

	worker, err := s.workers.GetByID(ctx, id)
	if err != nil {
		mapped := storeError(op, err, MsgWorkerNotFound, "")
		if apperr.Is(mapped, apperr.CodeInternal) {
			log.WithError(err).Error("Failed to load worker")
		}
		return nil, mapped
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, workerCacheKey(id), worker, s.cacheTTL); err != nil {
			log.WithError(err).Warn("Worker cache write failed")
		}
	}
	return worker, nil
}

func (s *workerService) SearchWorkers(ctx context.Context, filter models.WorkerFilter) ([]*models.Worker, error) {
	const op = "services.SearchWorkers"

	filter.Trade = strings.TrimSpace(filter.Trade)
	filter.Location = strings.TrimSpace(filter.Location)

	found, err := s.workers.Search(ctx, filter)
	if err != nil {
		s.log.WithError(err).Error("Worker search failed")
		return nil, apperr.Internal(op, err)
	}

	out := make([]*models.Worker, 0, len(found))
	for _, w := range found {
		if filter.Matches(w) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TrustScore != out[j].TrustScore {
			return out[i].TrustScore > out[j].TrustScore
		}
		return out[i].JobsCount > out[j].JobsCount
	})
	return out, nil
}
