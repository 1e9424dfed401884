// Package memory is an in-process document store used for local runs and tests.
// Transactions are optimistic: each attempt records the version of every
// worker it touches and commits only if none of them moved in the meantime.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
)

const DefaultMaxAttempts = 5

var errConflict = errors.New("memory: concurrent modification")

type Store struct {
	mu sync.RWMutex

	workers     map[string]*models.Worker
	stats       map[string]*models.WorkerStats
	reviews     map[string][]*models.Review
	submissions map[string]*models.Submission
	clients     map[string]*models.Client

	// versions is bumped on every commit that touches a worker's documents.
	versions map[string]int64
	lastTS   time.Time

	maxAttempts int
	now         func() time.Time
	newID       func() string

	// beforeCommit runs after fn returned and before validation. Tests use it
	// to interleave a competing commit.
	beforeCommit func(attempt int)
}

func NewStore(maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Store{
		workers:     make(map[string]*models.Worker),
		stats:       make(map[string]*models.WorkerStats),
		reviews:     make(map[string][]*models.Review),
		submissions: make(map[string]*models.Submission),
		clients:     make(map[string]*models.Client),
		versions:    make(map[string]int64),
		maxAttempts: maxAttempts,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *Store) Reviews() interfaces.ReviewRepository { return &reviewRepository{store: s} }
func (s *Store) Workers() interfaces.WorkerRepository { return &workerRepository{store: s} }
func (s *Store) Clients() interfaces.ClientRepository { return &clientRepository{store: s} }

// timestamp returns a server time strictly after every previously assigned one.
// Caller holds s.mu.
func (s *Store) timestamp() time.Time {
	ts := s.now().UTC()
	if !ts.After(s.lastTS) {
		ts = s.lastTS.Add(time.Microsecond)
	}
	s.lastTS = ts
	return ts
}

func submissionKey(workerID, key string) string {
	return workerID + "/" + key
}

func copyWorker(w *models.Worker) *models.Worker {
	if w == nil {
		return nil
	}
	out := *w
	out.Skills = copyStrings(w.Skills)
	return &out
}

func copyClient(c *models.Client) *models.Client {
	if c == nil {
		return nil
	}
	out := *c
	out.ReviewsGiven = copyStrings(c.ReviewsGiven)
	return &out
}

// copyStrings keeps an empty slice non-nil so it still encodes as [].
func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyReview(r *models.Review) *models.Review {
	out := *r
	if r.Timestamp != nil {
		ts := *r.Timestamp
		out.Timestamp = &ts
	}
	return &out
}

func wrapCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory: %w", err)
	}
	return nil
}
