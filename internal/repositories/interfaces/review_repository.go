package interfaces

import (
	"context"

	"hunarscan/internal/models"
)

// ReviewTx is the handle passed to a review transaction. Every read must be
// issued before the first write; implementations fail later reads with
// ErrReadAfterWrite.
type ReviewTx interface {
	// Reads
	GetWorker(ctx context.Context, workerID string) (*models.Worker, error)
	GetStats(ctx context.Context, workerID string) (*models.WorkerStats, error)
	GetSubmission(ctx context.Context, workerID, key string) (*models.Submission, error)

	// Writes
	CreateReview(ctx context.Context, review *models.Review) error
	MergeStats(ctx context.Context, stats *models.WorkerStats) error
	MergeWorkerSummary(ctx context.Context, workerID string, summary models.WorkerSummary) error
	RecordSubmission(ctx context.Context, workerID string, submission *models.Submission) error
}

type ReviewRepository interface {
	// RunTransaction runs fn atomically. On a conflict with a concurrent
	// transaction the store retries fn from scratch up to its attempt limit and then
	// returns ErrTxAborted. An error returned by fn rolls back and is returned as is.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx ReviewTx) error) error

	// ListByWorker returns the stored reviews of a worker in store order.
	ListByWorker(ctx context.Context, workerID string) ([]*models.Review, error)
}
