package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
	"hunarscan/internal/validators"
)

func submit(t *testing.T, svc ReviewService, who *models.Identity, workerID string, rating interface{}) (*SubmitReviewResult, error) {
	t.Helper()
	return svc.SubmitReview(context.Background(), who, &validators.ReviewCreateRequest{WorkerID: workerID, Rating: rating})
}

func workerState(t *testing.T, env *testEnv, id string) *models.Worker {
	t.Helper()
	w, err := env.store.Workers().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get worker: %v", err)
	}
	return w
}

func reviewCount(t *testing.T, env *testEnv, id string) int {
	t.Helper()
	rs, err := env.store.Reviews().ListByWorker(context.Background(), id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return len(rs)
}

func TestSubmitReviewEndToEnd(t *testing.T) {
	env := newTestEnv("W")

	w := workerState(t, env, "W")
	if w.JobsCount != 0 || w.TrustScore != 0 {
		t.Fatalf("initial state: %+v", w)
	}

	steps := []struct {
		who    string
		rating float64
		jobs   int64
		trust  float64
	}{
		{"A", 5, 1, 5.0},
		{"B", 3, 2, 4.0},
		{"C", 1, 3, 3.0},
	}
	for _, step := range steps {
		res, err := submit(t, env.svc, client(step.who), "W", step.rating)
		if err != nil {
			t.Fatalf("client %s: %v", step.who, err)
		}
		if res.Replayed || res.ReviewID == "" {
			t.Fatalf("client %s: unexpected result %+v", step.who, res)
		}
		w := workerState(t, env, "W")
		if w.JobsCount != step.jobs || math.Abs(w.TrustScore-step.trust) > 1e-9 {
			t.Fatalf("after %s: want=(%d,%v) got=(%d,%v)", step.who, step.jobs, step.trust, w.JobsCount, w.TrustScore)
		}
		if res.JobsCount != step.jobs || math.Abs(res.TrustScore-step.trust) > 1e-9 {
			t.Fatalf("result after %s: %+v", step.who, res)
		}
	}
	if n := reviewCount(t, env, "W"); n != 3 {
		t.Fatalf("reviews: want=3 got=%d", n)
	}
}

func TestSubmitReviewAggregateMatchesMean(t *testing.T) {
	env := newTestEnv("W")
	ratings := []int{4, 4, 5, 2, 1, 3, 5, 5}
	sum := 0
	for i, r := range ratings {
		sum += r
		if _, err := submit(t, env.svc, client("c"), "W", float64(r)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	w := workerState(t, env, "W")
	want := float64(sum) / float64(len(ratings))
	if w.JobsCount != int64(len(ratings)) || math.Abs(w.TrustScore-want) > 1e-9 {
		t.Fatalf("want=(%d,%v) got=(%d,%v)", len(ratings), want, w.JobsCount, w.TrustScore)
	}
}

func TestSubmitReviewRatingBoundaries(t *testing.T) {
	env := newTestEnv("W")

	for _, raw := range []interface{}{float64(0), float64(6), float64(-1), math.NaN(), "abc", "", nil, true, float64(2.5)} {
		_, err := submit(t, env.svc, client("c"), "W", raw)
		if !apperr.Is(err, apperr.CodeInvalidArgument) {
			t.Fatalf("rating %#v: want invalid argument, got %v", raw, err)
		}
		if apperr.PublicMessage(err) != "Rating must be between 1 and 5" {
			t.Fatalf("rating %#v: message %q", raw, apperr.PublicMessage(err))
		}
	}
	if n := reviewCount(t, env, "W"); n != 0 {
		t.Fatalf("rejected ratings created %d reviews", n)
	}

	for _, raw := range []interface{}{float64(1), float64(5), "3"} {
		if _, err := submit(t, env.svc, client("c"), "W", raw); err != nil {
			t.Fatalf("rating %#v rejected: %v", raw, err)
		}
	}
}

func TestSubmitReviewRequiresWorkerID(t *testing.T) {
	env := newTestEnv("W")

	for _, id := range []string{"", "   "} {
		_, err := submit(t, env.svc, client("c"), id, float64(5))
		if !apperr.Is(err, apperr.CodeInvalidArgument) || apperr.PublicMessage(err) != "Worker ID is required" {
			t.Fatalf("workerId %q: got %v", id, err)
		}
	}
	// workerId is checked before rating
	_, err := submit(t, env.svc, client("c"), "", float64(9))
	if apperr.PublicMessage(err) != "Worker ID is required" {
		t.Fatalf("want worker id error first, got %v", err)
	}
	if _, err := env.svc.SubmitReview(context.Background(), client("c"), nil); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("nil request: got %v", err)
	}
	if n := reviewCount(t, env, "W"); n != 0 {
		t.Fatalf("side effects: %d reviews", n)
	}
}

func TestSubmitReviewRequiresIdentity(t *testing.T) {
	env := newTestEnv("W")

	_, err := submit(t, env.svc, nil, "W", float64(5))
	if !apperr.Is(err, apperr.CodeUnauthenticated) {
		t.Fatalf("want unauthenticated, got %v", err)
	}
	_, err = submit(t, env.svc, &models.Identity{}, "W", float64(5))
	if !apperr.Is(err, apperr.CodeUnauthenticated) {
		t.Fatalf("want unauthenticated for empty uid, got %v", err)
	}
	if n := reviewCount(t, env, "W"); n != 0 {
		t.Fatalf("unauthenticated submission created %d reviews", n)
	}
	if env.identity.calls != 0 {
		t.Fatalf("identity lookup must not run before authentication")
	}
}

func TestSubmitReviewUnknownWorker(t *testing.T) {
	env := newTestEnv()

	_, err := submit(t, env.svc, client("c"), "ghost", float64(4))
	if !apperr.Is(err, apperr.CodeNotFound) || apperr.PublicMessage(err) != "Worker not found" {
		t.Fatalf("want not found, got %v", err)
	}
	if len(env.notifier.calls) != 0 || len(env.cache.deleted) != 0 {
		t.Fatalf("failed submission must not trigger post-commit work")
	}
}

func TestSubmitReviewTrimsAndLimitsText(t *testing.T) {
	env := newTestEnv("W")
	ctx := context.Background()

	_, err := env.svc.SubmitReview(ctx, client("c"), &validators.ReviewCreateRequest{
		WorkerID: "W", Rating: float64(4), Review: "  neat and quick  ",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	rs, _ := env.store.Reviews().ListByWorker(ctx, "W")
	if rs[0].Review != "neat and quick" {
		t.Fatalf("review text: %q", rs[0].Review)
	}

	_, err = env.svc.SubmitReview(ctx, client("c"), &validators.ReviewCreateRequest{
		WorkerID: "W", Rating: float64(4), Review: strings.Repeat("a", 1001),
	})
	if !apperr.Is(err, apperr.CodeInvalidArgument) || apperr.PublicMessage(err) != MsgReviewTooLong {
		t.Fatalf("want too long, got %v", err)
	}
}

func TestSubmitReviewConcurrentSubmissionsAreNotLost(t *testing.T) {
	env := newTestEnv("W")

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := submit(t, env.svc, client("c"), "W", float64(i%5+1))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	w := workerState(t, env, "W")
	if w.JobsCount != n {
		t.Fatalf("jobsCount: want=%d got=%d", n, w.JobsCount)
	}
	if math.Abs(w.TrustScore-3.0) > 1e-9 {
		t.Fatalf("trustScore: want=3 got=%v", w.TrustScore)
	}
	if c := reviewCount(t, env, "W"); c != n {
		t.Fatalf("reviews: want=%d got=%d", n, c)
	}
}

func TestSubmitReviewIdempotencyKeyReplays(t *testing.T) {
	env := newTestEnv("W")
	ctx := context.Background()
	req := func() *validators.ReviewCreateRequest {
		return &validators.ReviewCreateRequest{WorkerID: "W", Rating: float64(5), RequestID: "req-1"}
	}

	first, err := env.svc.SubmitReview(ctx, client("A"), req())
	if err != nil || first.Replayed {
		t.Fatalf("first: %+v %v", first, err)
	}
	second, err := env.svc.SubmitReview(ctx, client("A"), req())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.Replayed || second.ReviewID != first.ReviewID {
		t.Fatalf("replay result: %+v (first %+v)", second, first)
	}
	w := workerState(t, env, "W")
	if w.JobsCount != 1 || w.TrustScore != 5 {
		t.Fatalf("replay changed counters: %+v", w)
	}
	if n := reviewCount(t, env, "W"); n != 1 {
		t.Fatalf("replay created a second review: %d", n)
	}
	if len(env.notifier.calls) != 1 {
		t.Fatalf("notifications: want=1 got=%d", len(env.notifier.calls))
	}

	_, err = env.svc.SubmitReview(ctx, client("B"), req())
	if !apperr.Is(err, apperr.CodeAlreadyExists) {
		t.Fatalf("key reuse by another client: got %v", err)
	}
}

func TestSubmitReviewConcurrentReplaysAggregateOnce(t *testing.T) {
	env := newTestEnv("W")

	const n = 10
	var wg sync.WaitGroup
	results := make(chan *SubmitReviewResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.svc.SubmitReview(context.Background(), client("A"), &validators.ReviewCreateRequest{
				WorkerID: "W", Rating: float64(4), RequestID: "same-key",
			})
			if err != nil {
				t.Errorf("submit: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	fresh := 0
	for res := range results {
		if !res.Replayed {
			fresh++
		}
	}
	if fresh != 1 {
		t.Fatalf("exactly one submission must aggregate, got %d", fresh)
	}
	if w := workerState(t, env, "W"); w.JobsCount != 1 {
		t.Fatalf("jobsCount: want=1 got=%d", w.JobsCount)
	}
}

func TestSubmitReviewExhaustedRetriesIsInternal(t *testing.T) {
	env := newTestEnv("W")
	repo := &abortingReviews{}
	svc := NewReviewService(ReviewServiceDeps{Reviews: repo, Workers: env.store.Workers()})

	_, err := submit(t, svc, client("c"), "W", float64(3))
	if !apperr.Is(err, apperr.CodeInternal) {
		t.Fatalf("want internal, got %v", err)
	}
	if apperr.PublicMessage(err) != "Internal Server Error" {
		t.Fatalf("public message leaks cause: %q", apperr.PublicMessage(err))
	}
	if repo.attempts != 1 {
		t.Fatalf("service must not retry on its own, ran %d transactions", repo.attempts)
	}
}

func TestSubmitReviewEnrichment(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		env := newTestEnv("W")
		if _, err := submit(t, env.svc, client("A"), "W", float64(5)); err != nil {
			t.Fatalf("submit: %v", err)
		}
		rs, _ := env.store.Reviews().ListByWorker(ctx, "W")
		if rs[0].ClientEmail != "lookup@example.com" || rs[0].ClientName != "Lookup Name" {
			t.Fatalf("snapshot: %+v", rs[0])
		}
	})

	t.Run("fallback to token and client profile", func(t *testing.T) {
		env := newTestEnv("W")
		env.identity.profile = nil
		env.identity.err = errors.New("identity backend down")
		if err := env.store.Clients().Create(ctx, &models.Client{ID: "A", Name: "Asha"}); err != nil {
			t.Fatalf("seed client: %v", err)
		}
		if _, err := submit(t, env.svc, client("A"), "W", float64(5)); err != nil {
			t.Fatalf("submit: %v", err)
		}
		rs, _ := env.store.Reviews().ListByWorker(ctx, "W")
		if rs[0].ClientEmail != "A@example.com" || rs[0].ClientName != "Asha" {
			t.Fatalf("snapshot: %+v", rs[0])
		}
	})

	t.Run("all sources fail", func(t *testing.T) {
		env := newTestEnv("W")
		env.identity.profile = nil
		env.identity.err = errors.New("identity backend down")
		if _, err := submit(t, env.svc, &models.Identity{UID: "anon"}, "W", float64(2)); err != nil {
			t.Fatalf("enrichment failure must not abort: %v", err)
		}
		rs, _ := env.store.Reviews().ListByWorker(ctx, "W")
		if rs[0].ClientEmail != "" || rs[0].ClientName != "" || rs[0].ClientID != "anon" {
			t.Fatalf("snapshot: %+v", rs[0])
		}
	})
}

func TestSubmitReviewInvalidatesCacheAndNotifies(t *testing.T) {
	env := newTestEnv("W")
	if _, err := submit(t, env.svc, client("A"), "W", float64(4)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(env.cache.deleted) != 1 || env.cache.deleted[0] != "worker:W" {
		t.Fatalf("cache invalidation: %v", env.cache.deleted)
	}
	if len(env.notifier.calls) != 1 || env.notifier.calls[0].Rating != 4 {
		t.Fatalf("notifier: %+v", env.notifier.calls)
	}
}

func TestSubmitReviewRateLimit(t *testing.T) {
	env := newTestEnv("W")
	limiter := &fakeLimiter{allow: false}
	svc := NewReviewService(ReviewServiceDeps{
		Reviews: env.store.Reviews(), Workers: env.store.Workers(), Limiter: limiter,
	})

	_, err := submit(t, svc, client("A"), "W", float64(4))
	if !apperr.Is(err, apperr.CodeRateLimited) {
		t.Fatalf("want rate limited, got %v", err)
	}
	if n := reviewCount(t, env, "W"); n != 0 {
		t.Fatalf("rate-limited submission wrote %d reviews", n)
	}

	limiter.err = errors.New("redis down")
	if _, err := submit(t, svc, client("A"), "W", float64(4)); err != nil {
		t.Fatalf("limiter failure must fail open: %v", err)
	}
}

func TestReviewRateLimiterWindow(t *testing.T) {
	c := newSpyCache()
	l := NewReviewRateLimiter(c, 2)
	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		got, err := l.Allow(ctx, "A")
		if err != nil || got != want {
			t.Fatalf("call %d: want=%v got=%v err=%v", i, want, got, err)
		}
	}
	if ok, _ := l.Allow(ctx, "B"); !ok {
		t.Fatalf("limits must be per client")
	}
	if ok, _ := NewReviewRateLimiter(c, 0).Allow(ctx, "A"); !ok {
		t.Fatalf("zero limit disables limiting")
	}
}

func ts(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

func TestDedupReviewsKeepsFirst(t *testing.T) {
	now := time.Unix(2000, 0)
	in := []*models.Review{
		{ID: "1", ClientID: "A", Timestamp: ts(100)},
		{ID: "2", ClientID: "A", Timestamp: ts(100)},
		{ID: "3", ClientID: "B", Timestamp: ts(100)},
		{ID: "4", ClientID: "A", Timestamp: ts(101)},
		{ID: "5", ClientID: "A"},
		{ID: "6", ClientID: "A"},
	}
	out := DedupReviews(in, now)
	var ids []string
	for _, r := range out {
		ids = append(ids, r.ID)
	}
	if strings.Join(ids, ",") != "1,3,4,5" {
		t.Fatalf("dedup: got %v", ids)
	}
}

func TestSortReviewsNewestFirst(t *testing.T) {
	now := time.Unix(2000, 0)
	in := []*models.Review{
		{ID: "old", Timestamp: ts(100)},
		{ID: "none"},
		{ID: "new", Timestamp: ts(1500)},
		{ID: "future", Timestamp: ts(3000)},
	}
	SortReviewsNewestFirst(in, now)
	var ids []string
	for _, r := range in {
		ids = append(ids, r.ID)
	}
	if strings.Join(ids, ",") != "future,none,new,old" {
		t.Fatalf("order: %v", ids)
	}
}

func TestListReviews(t *testing.T) {
	env := newTestEnv("W")
	repo := &fixedReviews{reviews: []*models.Review{
		{ID: "1", ClientID: "A", Timestamp: ts(100)},
		{ID: "2", ClientID: "A", Timestamp: ts(100)},
		{ID: "3", ClientID: "B", Timestamp: ts(200)},
	}}
	svc := NewReviewService(ReviewServiceDeps{Reviews: repo, Workers: env.store.Workers()})

	out, err := svc.ListReviews(context.Background(), "W")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "3" || out[1].ID != "1" {
		t.Fatalf("list: %+v", out)
	}

	if _, err := svc.ListReviews(context.Background(), "ghost"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("unknown worker: got %v", err)
	}
	if _, err := svc.ListReviews(context.Background(), " "); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("blank worker id: got %v", err)
	}

	repo.err = errors.New("store down")
	_, err = svc.ListReviews(context.Background(), "W")
	if !apperr.Is(err, apperr.CodeInternal) || apperr.PublicMessage(err) != "Internal Server Error" {
		t.Fatalf("store failure: got %v", err)
	}
}
