package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/utils"
	"hunarscan/internal/validators"
	"hunarscan/pkg/logger"
)

// IdentityLookup resolves display attributes for a uid. auth.Verifier
// satisfies it.
type IdentityLookup interface {
	Lookup(ctx context.Context, uid string) (*models.IdentityProfile, error)
}

type ReviewService interface {
	SubmitReview(ctx context.Context, identity *models.Identity, req *validators.ReviewCreateRequest) (*SubmitReviewResult, error)
	ListReviews(ctx context.Context, workerID string) ([]*models.Review, error)
}

type SubmitReviewResult struct {
	ReviewID   string  `json:"reviewId"`
	WorkerID   string  `json:"workerId"`
	TrustScore float64 `json:"trustScore"`
	JobsCount  int64   `json:"jobsCount"`
	Replayed   bool    `json:"replayed"`
}

type ReviewServiceDeps struct {
	Reviews  interfaces.ReviewRepository
	Workers  interfaces.WorkerRepository
	Clients  interfaces.ClientRepository
	Identity IdentityLookup

	// Optional collaborators; nil disables the feature.
	Cache    CacheService
	Limiter  RateLimiter
	Notifier NotificationService

	Log *logger.Logger
}

type reviewService struct {
	reviews  interfaces.ReviewRepository
	workers  interfaces.WorkerRepository
	clients  interfaces.ClientRepository
	identity IdentityLookup
	cache    CacheService
	limiter  RateLimiter
	notifier NotificationService
	log      *logger.Logger

	now   func() time.Time
	newID func() string
}

func NewReviewService(deps ReviewServiceDeps) ReviewService {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &reviewService{
		reviews:  deps.Reviews,
		workers:  deps.Workers,
		clients:  deps.Clients,
		identity: deps.Identity,
		cache:    deps.Cache,
		limiter:  deps.Limiter,
		notifier: deps.Notifier,
		log:      log.WithField("service", "ReviewService"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *reviewService) SubmitReview(ctx context.Context, identity *models.Identity, req *validators.ReviewCreateRequest) (*SubmitReviewResult, error) {
	const op = "services.SubmitReview"

	if identity == nil || identity.UID == "" {
		return nil, apperr.Unauthenticated(op, MsgNoIdentity, nil)
	}
	if req == nil {
		return nil, apperr.InvalidArgument(op, MsgWorkerIDRequired)
	}
	req.Normalize()
	rating, err := validateSubmission(op, req)
	if err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx).WithWorkerID(req.WorkerID).WithClientID(identity.UID)

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, identity.UID)
		if err != nil {
			log.WithError(err).Warn("Review rate limiter unavailable, allowing request")
		} else if !allowed {
			log.LogSecurityEvent("review_rate_limited", "low", map[string]interface{}{"client_id": identity.UID})
			return nil, apperr.New(apperr.CodeRateLimited, op, MsgRateLimited)
		}
	}

	email, name := s.resolveSubmitter(ctx, identity, log)

	var (
		result    SubmitReviewResult
		committed *models.Review
		worker    *models.Worker
	)
	err = s.reviews.RunTransaction(ctx, func(ctx context.Context, tx interfaces.ReviewTx) error {
		// fn may run more than once; nothing from a failed attempt survives.
		result = SubmitReviewResult{WorkerID: req.WorkerID}
		committed = nil

		w, err := tx.GetWorker(ctx, req.WorkerID)
		if err != nil {
			return err
		}
		worker = w
		stats, err := tx.GetStats(ctx, req.WorkerID)
		if err != nil {
			return err
		}
		if stats == nil {
			stats = &models.WorkerStats{WorkerID: req.WorkerID}
		}
		if req.RequestID != "" {
			prior, err := tx.GetSubmission(ctx, req.WorkerID, req.RequestID)
			if err != nil {
				return err
			}
			if prior != nil {
				if prior.ClientID != identity.UID {
					return apperr.New(apperr.CodeAlreadyExists, op, MsgKeyReused)
				}
				result.ReviewID = prior.ReviewID
				result.TrustScore = w.TrustScore
				result.JobsCount = w.JobsCount
				result.Replayed = true
				return nil
			}
		}

		next := stats.Apply(rating)
		next.WorkerID = req.WorkerID
		review := &models.Review{
			ID:             s.newID(),
			WorkerID:       req.WorkerID,
			ClientID:       identity.UID,
			ClientEmail:    email,
			ClientName:     name,
			Rating:         rating,
			Review:         req.Review,
			IdempotencyKey: req.RequestID,
		}
		summary := models.WorkerSummary{TrustScore: next.AverageRating, JobsCount: w.JobsCount + 1}

		if err := tx.CreateReview(ctx, review); err != nil {
			return err
		}
		if err := tx.MergeStats(ctx, &next); err != nil {
			return err
		}
		if err := tx.MergeWorkerSummary(ctx, req.WorkerID, summary); err != nil {
			return err
		}
		if req.RequestID != "" {
			if err := tx.RecordSubmission(ctx, req.WorkerID, &models.Submission{
				Key:      req.RequestID,
				ReviewID: review.ID,
				ClientID: identity.UID,
			}); err != nil {
				return err
			}
		}

		result.ReviewID = review.ID
		result.TrustScore = summary.TrustScore
		result.JobsCount = summary.JobsCount
		committed = review
		return nil
	})
	if err != nil {
		mapped := storeError(op, err, MsgWorkerNotFound, "")
		if apperr.Is(mapped, apperr.CodeInternal) {
			log.WithError(err).Error("Review transaction failed")
		}
		return nil, mapped
	}

	if result.Replayed {
		log.LogReviewEvent(req.WorkerID, identity.UID, "review_replayed", map[string]interface{}{
			"review_id":       result.ReviewID,
			"idempotency_key": req.RequestID,
		})
		return &result, nil
	}

	log.LogReviewEvent(req.WorkerID, identity.UID, "review_submitted", map[string]interface{}{
		"review_id":   result.ReviewID,
		"rating":      rating,
		"trust_score": result.TrustScore,
		"jobs_count":  result.JobsCount,
	})
	s.invalidateWorkerCache(ctx, req.WorkerID, log)
	if s.notifier != nil && committed != nil {
		s.notifier.NotifyNewReview(ctx, worker, committed)
	}
	return &result, nil
}

// validateSubmission checks fields in the order callers see them reported.
func validateSubmission(op string, req *validators.ReviewCreateRequest) (int, error) {
	errs := validators.ValidateReviewCreate(req)
	for _, e := range errs {
		if e.Field == "workerId" {
			return 0, apperr.InvalidArgument(op, MsgWorkerIDRequired)
		}
	}
	rating, ok := validators.ParseRating(req.Rating)
	if !ok {
		return 0, apperr.InvalidArgument(op, validators.MsgRatingRange)
	}
	for _, e := range errs {
		switch e.Field {
		case "review":
			return 0, apperr.InvalidArgument(op, MsgReviewTooLong)
		case "requestId":
			return 0, apperr.InvalidArgument(op, MsgRequestIDTooLong)
		}
	}
	if len(errs) > 0 {
		return 0, apperr.InvalidArgument(op, errs.Error())
	}
	return rating, nil
}

// resolveSubmitter snapshots the submitter's email and display name. Every
// source is best-effort.
func (s *reviewService) resolveSubmitter(ctx context.Context, identity *models.Identity, log *logger.Logger) (email, name string) {
	if s.identity != nil {
		profile, err := s.identity.Lookup(ctx, identity.UID)
		if err != nil {
			log.WithError(err).Warn("Identity lookup failed, using token attributes")
		} else if profile != nil {
			email, name = profile.Email, profile.DisplayName
		}
	}
	email = utils.CoalesceString(email, identity.Email)
	name = utils.CoalesceString(name, identity.Name)

	if name == "" && s.clients != nil {
		client, err := s.clients.GetByID(ctx, identity.UID)
		switch {
		case err == nil:
			name = client.Name
		case errors.Is(err, interfaces.ErrNotFound):
		default:
			log.WithError(err).Warn("Client profile lookup failed")
		}
	}
	return email, name
}

func (s *reviewService) invalidateWorkerCache(ctx context.Context, workerID string, log *logger.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, workerCacheKey(workerID)); err != nil {
		log.WithError(err).Warn("Failed to invalidate worker cache")
	}
}

func (s *reviewService) ListReviews(ctx context.Context, workerID string) ([]*models.Review, error) {
	const op = "services.ListReviews"

	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return nil, apperr.InvalidArgument(op, MsgWorkerIDRequired)
	}
	if s.workers != nil {
		if _, err := s.workers.GetByID(ctx, workerID); err != nil {
			return nil, s.logInternal(storeError(op, err, MsgWorkerNotFound, ""), workerID)
		}
	}
	reviews, err := s.reviews.ListByWorker(ctx, workerID)
	if err != nil {
		return nil, s.logInternal(storeError(op, err, "", ""), workerID)
	}

	now := s.now()
	reviews = DedupReviews(reviews, now)
	SortReviewsNewestFirst(reviews, now)
	return reviews, nil
}

func (s *reviewService) logInternal(err error, workerID string) error {
	if apperr.Is(err, apperr.CodeInternal) {
		s.log.WithError(err).WithWorkerID(workerID).Error("Failed to list reviews")
	}
	return err
}

func reviewSeconds(r *models.Review, now time.Time) int64 {
	if r.Timestamp == nil || r.Timestamp.IsZero() {
		return now.Unix()
	}
	return r.Timestamp.Unix()
}

// DedupReviews drops records sharing a client id and timestamp second with an
// earlier record. Records without a timestamp key on now.
func DedupReviews(reviews []*models.Review, now time.Time) []*models.Review {
	seen := make(map[string]struct{}, len(reviews))
	out := make([]*models.Review, 0, len(reviews))
	for _, r := range reviews {
		if r == nil {
			continue
		}
		key := fmt.Sprintf("%s-%d", r.ClientID, reviewSeconds(r, now))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortReviewsNewestFirst orders reviews by timestamp descending, treating a
// missing timestamp as now. Ties keep their input order.
func SortReviewsNewestFirst(reviews []*models.Review, now time.Time) {
	at := func(r *models.Review) time.Time {
		if r.Timestamp == nil || r.Timestamp.IsZero() {
			return now
		}
		return *r.Timestamp
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return at(reviews[i]).After(at(reviews[j]))
	})
}
