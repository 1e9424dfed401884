package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/internal/repositories/memory"
	"hunarscan/pkg/cache"
)

type fakeIdentity struct {
	profile *models.IdentityProfile
	err     error
	calls   int
}

func (f *fakeIdentity) Lookup(ctx context.Context, uid string) (*models.IdentityProfile, error) {
	f.calls++
	return f.profile, f.err
}

type spyCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	getErr  error
	counts  map[string]int64
}

func newSpyCache() *spyCache {
	return &spyCache{data: make(map[string][]byte), counts: make(map[string]int64)}
}

func (c *spyCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	b, ok := c.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *spyCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return nil
}

func (c *spyCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *spyCache) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

type fakeLimiter struct {
	allow bool
	err   error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return f.allow, f.err
}

type spyNotifier struct {
	mu    sync.Mutex
	calls []*models.Review
}

func (n *spyNotifier) NotifyNewReview(ctx context.Context, worker *models.Worker, review *models.Review) {
	n.mu.Lock()
	n.calls = append(n.calls, review)
	n.mu.Unlock()
}

// abortingReviews simulates a store that never wins its conflicts.
type abortingReviews struct {
	interfaces.ReviewRepository
	attempts int
}

func (r *abortingReviews) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.ReviewTx) error) error {
	r.attempts++
	return errors.Join(errors.New("firestore: too much contention"), interfaces.ErrTxAborted)
}

// fixedReviews returns canned records from ListByWorker.
type fixedReviews struct {
	interfaces.ReviewRepository
	reviews []*models.Review
	err     error
}

func (r *fixedReviews) ListByWorker(ctx context.Context, workerID string) ([]*models.Review, error) {
	return r.reviews, r.err
}

type testEnv struct {
	store    *memory.Store
	cache    *spyCache
	notifier *spyNotifier
	identity *fakeIdentity
	svc      ReviewService
}

func newTestEnv(workerIDs ...string) *testEnv {
	store := memory.NewStore(1000)
	for _, id := range workerIDs {
		_ = store.Workers().Create(context.Background(), &models.Worker{
			ID: id, Name: "Ravi", Trade: "Plumber", Phone: "+919876543210", Location: "Pune",
		})
	}
	env := &testEnv{
		store:    store,
		cache:    newSpyCache(),
		notifier: &spyNotifier{},
		identity: &fakeIdentity{profile: &models.IdentityProfile{Email: "lookup@example.com", DisplayName: "Lookup Name"}},
	}
	env.svc = NewReviewService(ReviewServiceDeps{
		Reviews:  store.Reviews(),
		Workers:  store.Workers(),
		Clients:  store.Clients(),
		Identity: env.identity,
		Cache:    env.cache,
		Notifier: env.notifier,
	})
	return env
}

func client(uid string) *models.Identity {
	return &models.Identity{UID: uid, Email: uid + "@example.com"}
}
