package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/repositories/txguard"
	"hunarscan/pkg/database"
)

type reviewRepository struct {
	store *Store
}

func (r *reviewRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.ReviewTx) error) error {
	s := r.store
	session, err := s.startSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(context.Background())

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := session.StartTransaction(database.TransactionOptions()); err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}
		sc := mongo.NewSessionContext(ctx, session)

		err := fn(sc, newTransaction(s))
		if err == nil {
			err = commit(sc, session)
			if err == nil {
				return nil
			}
		} else {
			_ = session.AbortTransaction(context.Background())
		}
		if !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("mongodb: %d attempts: %w", s.maxAttempts, interfaces.ErrTxAborted)
}

// commit retries only the commit itself while its outcome is unknown.
func commit(ctx context.Context, session mongo.Session) error {
	var err error
	for i := 0; i < maxCommitAttempts; i++ {
		err = session.CommitTransaction(ctx)
		if err == nil || !hasLabel(err, labelUnknownCommit) {
			return err
		}
	}
	return err
}

func (r *reviewRepository) ListByWorker(ctx context.Context, workerID string) ([]*models.Review, error) {
	collection := r.store.db.Collection(database.ReviewsCollection)

	cursor, err := collection.Find(ctx, bson.M{"worker_id": workerID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews by worker: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]*models.Review, 0)
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, fmt.Errorf("failed to decode review: %w", err)
		}
		reviews = append(reviews, &review)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

// transaction applies writes inside the session as they are issued. Conflicts
// surface from the server as transient errors and restart the attempt.
type transaction struct {
	store *Store
	guard txguard.Guard
}

func newTransaction(s *Store) *transaction {
	return &transaction{store: s}
}

func (t *transaction) collection(name string) *mongo.Collection {
	return t.store.db.Collection(name)
}

func (t *transaction) GetWorker(ctx context.Context, workerID string) (*models.Worker, error) {
	if err := t.guard.Read("GetWorker"); err != nil {
		return nil, err
	}
	var worker models.Worker
	err := t.collection(database.WorkersCollection).FindOne(ctx, bson.M{"_id": workerID}).Decode(&worker)
	if err != nil {
		return nil, findError("worker", workerID, err)
	}
	return &worker, nil
}

func (t *transaction) GetStats(ctx context.Context, workerID string) (*models.WorkerStats, error) {
	if err := t.guard.Read("GetStats"); err != nil {
		return nil, err
	}
	var stats models.WorkerStats
	err := t.collection(database.WorkerStatsCollection).FindOne(ctx, bson.M{"_id": workerID}).Decode(&stats)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker stats: %w", err)
	}
	return &stats, nil
}

func (t *transaction) GetSubmission(ctx context.Context, workerID, key string) (*models.Submission, error) {
	if err := t.guard.Read("GetSubmission"); err != nil {
		return nil, err
	}
	var submission models.Submission
	err := t.collection(database.SubmissionsCollection).FindOne(ctx, bson.M{"worker_id": workerID, "key": key}).Decode(&submission)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

func (t *transaction) CreateReview(ctx context.Context, review *models.Review) error {
	t.guard.Write()
	if review.ID == "" {
		review.ID = t.store.newID()
	}
	at := t.store.reviewTime()
	review.Timestamp = &at

	if _, err := t.collection(database.ReviewsCollection).InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("review %s: %w", review.ID, errConflict)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (t *transaction) MergeStats(ctx context.Context, stats *models.WorkerStats) error {
	t.guard.Write()
	stats.UpdatedAt = t.store.now()

	_, err := t.collection(database.WorkerStatsCollection).UpdateOne(ctx,
		bson.M{"_id": stats.WorkerID},
		bson.M{"$set": bson.M{
			"total_ratings":  stats.TotalRatings,
			"total_score":    stats.TotalScore,
			"average_rating": stats.AverageRating,
			"version":        stats.Version,
			"updated_at":     stats.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// two first reviews racing to create the stats document
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("worker stats %s: %w", stats.WorkerID, errConflict)
		}
		return fmt.Errorf("failed to merge worker stats: %w", err)
	}
	return nil
}

func (t *transaction) MergeWorkerSummary(ctx context.Context, workerID string, summary models.WorkerSummary) error {
	t.guard.Write()
	result, err := t.collection(database.WorkersCollection).UpdateOne(ctx,
		bson.M{"_id": workerID},
		bson.M{"$set": bson.M{
			"trust_score": summary.TrustScore,
			"jobs_count":  summary.JobsCount,
			"updated_at":  t.store.now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to merge worker summary: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("worker %s: %w", workerID, interfaces.ErrNotFound)
	}
	return nil
}

func (t *transaction) RecordSubmission(ctx context.Context, workerID string, submission *models.Submission) error {
	t.guard.Write()
	doc := *submission
	doc.WorkerID = workerID
	doc.CreatedAt = t.store.now()

	if _, err := t.collection(database.SubmissionsCollection).InsertOne(ctx, &doc); err != nil {
		// a concurrent request with the same key won; the retry will replay it
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("submission %s: %w", submission.Key, errConflict)
		}
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}
