package memory

import (
	"context"
	"errors"
	"fmt"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/repositories/txguard"
)

type reviewRepository struct {
	store *Store
}

func (r *reviewRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.ReviewTx) error) error {
	s := r.store
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := wrapCtx(ctx); err != nil {
			return err
		}
		tx := newTransaction(s)
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if s.beforeCommit != nil {
			s.beforeCommit(attempt)
		}
		err := tx.commit()
		if err == nil {
			return nil
		}
		if !errors.Is(err, errConflict) {
			return err
		}
	}
	return fmt.Errorf("memory: %d attempts: %w", s.maxAttempts, interfaces.ErrTxAborted)
}

func (r *reviewRepository) ListByWorker(ctx context.Context, workerID string) ([]*models.Review, error) {
	if err := wrapCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.reviews[workerID]
	out := make([]*models.Review, 0, len(stored))
	for _, rv := range stored {
		out = append(out, copyReview(rv))
	}
	return out, nil
}

type transaction struct {
	store *Store
	guard txguard.Guard

	// seen holds the version of each worker observed by this attempt.
	seen map[string]int64

	reviews     []*models.Review
	stats       map[string]*models.WorkerStats
	summaries   map[string]models.WorkerSummary
	submissions map[string]*models.Submission
}

func newTransaction(s *Store) *transaction {
	return &transaction{
		store:       s,
		seen:        make(map[string]int64),
		stats:       make(map[string]*models.WorkerStats),
		summaries:   make(map[string]models.WorkerSummary),
		submissions: make(map[string]*models.Submission),
	}
}

// observe records the worker's version the first time it is touched.
// Caller holds at least a read lock.
func (t *transaction) observe(workerID string) {
	if _, ok := t.seen[workerID]; !ok {
		t.seen[workerID] = t.store.versions[workerID]
	}
}

func (t *transaction) observeLocked(workerID string) {
	t.store.mu.RLock()
	t.observe(workerID)
	t.store.mu.RUnlock()
}

func (t *transaction) GetWorker(ctx context.Context, workerID string) (*models.Worker, error) {
	if err := t.guard.Read("GetWorker"); err != nil {
		return nil, err
	}
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	t.observe(workerID)
	w, ok := s.workers[workerID]
	if !ok {
		return nil, fmt.Errorf("worker %s: %w", workerID, interfaces.ErrNotFound)
	}
	return copyWorker(w), nil
}

func (t *transaction) GetStats(ctx context.Context, workerID string) (*models.WorkerStats, error) {
	if err := t.guard.Read("GetStats"); err != nil {
		return nil, err
	}
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	t.observe(workerID)
	st, ok := s.stats[workerID]
	if !ok {
		return nil, nil
	}
	out := *st
	return &out, nil
}

func (t *transaction) GetSubmission(ctx context.Context, workerID, key string) (*models.Submission, error) {
	if err := t.guard.Read("GetSubmission"); err != nil {
		return nil, err
	}
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	t.observe(workerID)
	sub, ok := s.submissions[submissionKey(workerID, key)]
	if !ok {
		return nil, nil
	}
	out := *sub
	return &out, nil
}

func (t *transaction) CreateReview(ctx context.Context, review *models.Review) error {
	t.guard.Write()
	t.observeLocked(review.WorkerID)
	t.reviews = append(t.reviews, review)
	return nil
}

func (t *transaction) MergeStats(ctx context.Context, stats *models.WorkerStats) error {
	t.guard.Write()
	t.observeLocked(stats.WorkerID)
	cp := *stats
	t.stats[stats.WorkerID] = &cp
	return nil
}

func (t *transaction) MergeWorkerSummary(ctx context.Context, workerID string, summary models.WorkerSummary) error {
	t.guard.Write()
	t.observeLocked(workerID)
	t.summaries[workerID] = summary
	return nil
}

func (t *transaction) RecordSubmission(ctx context.Context, workerID string, submission *models.Submission) error {
	t.guard.Write()
	t.observeLocked(workerID)
	cp := *submission
	cp.WorkerID = workerID
	t.submissions[submissionKey(workerID, submission.Key)] = &cp
	return nil
}

func (t *transaction) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for workerID, v := range t.seen {
		if s.versions[workerID] != v {
			return errConflict
		}
	}
	// A summary merge on a deleted or never-created worker fails the whole commit.
	for workerID := range t.summaries {
		if _, ok := s.workers[workerID]; !ok {
			return fmt.Errorf("worker %s: %w", workerID, interfaces.ErrNotFound)
		}
	}
	for k := range t.submissions {
		if _, ok := s.submissions[k]; ok {
			return fmt.Errorf("submission %s: %w", k, interfaces.ErrAlreadyExists)
		}
	}

	ts := s.timestamp()
	for _, rv := range t.reviews {
		stored := copyReview(rv)
		if stored.ID == "" {
			stored.ID = s.newID()
		}
		at := ts
		stored.Timestamp = &at
		rv.ID = stored.ID
		rv.Timestamp = &at
		s.reviews[stored.WorkerID] = append(s.reviews[stored.WorkerID], stored)
	}
	for workerID, st := range t.stats {
		st.UpdatedAt = ts
		s.stats[workerID] = st
	}
	for workerID, sum := range t.summaries {
		w := s.workers[workerID]
		w.TrustScore = sum.TrustScore
		w.JobsCount = sum.JobsCount
		w.UpdatedAt = ts
	}
	for k, sub := range t.submissions {
		sub.CreatedAt = ts
		s.submissions[k] = sub
	}
	for workerID := range t.seen {
		if t.touches(workerID) {
			s.versions[workerID]++
		}
	}
	return nil
}

func (t *transaction) touches(workerID string) bool {
	if _, ok := t.stats[workerID]; ok {
		return true
	}
	if _, ok := t.summaries[workerID]; ok {
		return true
	}
	for _, sub := range t.submissions {
		if sub.WorkerID == workerID {
			return true
		}
	}
	for _, rv := range t.reviews {
		if rv.WorkerID == workerID {
			return true
		}
	}
	return false
}
