package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/repositories/txguard"
)

type reviewRepository struct {
	store *Store
}

// RunTransaction relies on the client's own optimistic retry, capped at the
// store's attempt limit. Errors returned by fn pass through untouched.
func (r *reviewRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.ReviewTx) error) error {
	s := r.store
	err := s.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		return fn(ctx, &transaction{store: s, tx: ftx})
	}, firestore.MaxAttempts(s.maxAttempts))
	return transactionError(err, s.maxAttempts)
}

// transactionError maps what the client's RunTransaction returned. Aborted
// means every attempt lost to a concurrent writer.
func transactionError(err error, maxAttempts int) error {
	switch status.Code(err) {
	case codes.OK:
		return nil
	case codes.Aborted:
		return fmt.Errorf("firestore: %d attempts: %v: %w", maxAttempts, err, interfaces.ErrTxAborted)
	case codes.NotFound:
		// Update of a worker deleted mid-transaction fails at commit
		return fmt.Errorf("transaction commit: %v: %w", err, interfaces.ErrNotFound)
	default:
		return err
	}
}

func (r *reviewRepository) ListByWorker(ctx context.Context, workerID string) ([]*models.Review, error) {
	snaps, err := r.store.reviewsOf(workerID).Documents(ctx).GetAll()
	if err != nil {
		return nil, statusError("reviews of worker", workerID, err)
	}
	reviews := make([]*models.Review, 0, len(snaps))
	for _, snap := range snaps {
		var review models.Review
		if err := snap.DataTo(&review); err != nil {
			return nil, fmt.Errorf("failed to decode review %s: %w", snap.Ref.ID, err)
		}
		review.ID = snap.Ref.ID
		if review.WorkerID == "" {
			review.WorkerID = workerID
		}
		reviews = append(reviews, &review)
	}
	return reviews, nil
}

type transaction struct {
	store *Store
	tx    *firestore.Transaction
	guard txguard.Guard
}

func (t *transaction) GetWorker(ctx context.Context, workerID string) (*models.Worker, error) {
	if err := t.guard.Read("GetWorker"); err != nil {
		return nil, err
	}
	snap, err := t.tx.Get(t.store.workerDoc(workerID))
	if err != nil {
		return nil, statusError("worker", workerID, err)
	}
	var worker models.Worker
	if err := snap.DataTo(&worker); err != nil {
		return nil, fmt.Errorf("failed to decode worker %s: %w", workerID, err)
	}
	worker.ID = workerID
	return &worker, nil
}

func (t *transaction) GetStats(ctx context.Context, workerID string) (*models.WorkerStats, error) {
	if err := t.guard.Read("GetStats"); err != nil {
		return nil, err
	}
	snap, err := t.tx.Get(t.store.statsDoc(workerID))
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, statusError("worker stats", workerID, err)
	}
	var stats models.WorkerStats
	if err := snap.DataTo(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode worker stats %s: %w", workerID, err)
	}
	stats.WorkerID = workerID
	return &stats, nil
}

func (t *transaction) GetSubmission(ctx context.Context, workerID, key string) (*models.Submission, error) {
	if err := t.guard.Read("GetSubmission"); err != nil {
		return nil, err
	}
	snap, err := t.tx.Get(t.store.submissionDoc(workerID, key))
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, statusError("submission", key, err)
	}
	var submission models.Submission
	if err := snap.DataTo(&submission); err != nil {
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}
	submission.Key = key
	return &submission, nil
}

func (t *transaction) CreateReview(ctx context.Context, review *models.Review) error {
	t.guard.Write()
	collection := t.store.reviewsOf(review.WorkerID)
	ref := collection.NewDoc()
	if review.ID != "" {
		ref = collection.Doc(review.ID)
	}
	review.ID = ref.ID

	doc := map[string]interface{}{
		"workerId":    review.WorkerID,
		"clientId":    review.ClientID,
		"clientEmail": review.ClientEmail,
		"clientName":  review.ClientName,
		"rating":      review.Rating,
		"review":      review.Review,
		"timestamp":   firestore.ServerTimestamp,
	}
	if review.IdempotencyKey != "" {
		doc["idempotencyKey"] = review.IdempotencyKey
	}
	return t.tx.Create(ref, doc)
}

func (t *transaction) MergeStats(ctx context.Context, stats *models.WorkerStats) error {
	t.guard.Write()
	return t.tx.Set(t.store.statsDoc(stats.WorkerID), map[string]interface{}{
		"totalRatings":  stats.TotalRatings,
		"totalScore":    stats.TotalScore,
		"averageRating": stats.AverageRating,
		"version":       stats.Version,
		"updatedAt":     firestore.ServerTimestamp,
	}, firestore.MergeAll)
}

func (t *transaction) MergeWorkerSummary(ctx context.Context, workerID string, summary models.WorkerSummary) error {
	t.guard.Write()
	return t.tx.Update(t.store.workerDoc(workerID), []firestore.Update{
		{Path: "trustScore", Value: summary.TrustScore},
		{Path: "jobsCount", Value: summary.JobsCount},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
}

func (t *transaction) RecordSubmission(ctx context.Context, workerID string, submission *models.Submission) error {
	t.guard.Write()
	return t.tx.Create(t.store.submissionDoc(workerID, submission.Key), map[string]interface{}{
		"key":       submission.Key,
		"workerId":  workerID,
		"reviewId":  submission.ReviewID,
		"clientId":  submission.ClientID,
		"createdAt": firestore.ServerTimestamp,
	})
}
