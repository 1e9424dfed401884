package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"hunarscan/internal/apperr"
	"hunarscan/internal/models"
	"hunarscan/internal/repositories/memory"
	"hunarscan/internal/validators"
)

func validWorkerRequest() *validators.WorkerCreateRequest {
	return &validators.WorkerCreateRequest{Name: " Ravi ", Trade: "Plumber", Phone: "+91 98765 43210", Location: "Pune"}
}

func TestCreateWorker(t *testing.T) {
	store := memory.NewStore(3)
	svc := NewWorkerService(store.Workers(), nil, time.Minute, "", nil)
	ctx := context.Background()

	w, err := svc.CreateWorker(ctx, client("u1"), validWorkerRequest(), "localhost:3000")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ID != "u1" || w.Name != "Ravi" || w.Email != "u1@example.com" {
		t.Fatalf("worker: %+v", w)
	}
	if w.TrustScore != 0 || w.JobsCount != 0 || w.Skills == nil || len(w.Skills) != 0 {
		t.Fatalf("initial trust summary: %+v", w)
	}
	if w.ProfileURL != "http://localhost:3000/w/u1" {
		t.Fatalf("profile url: %q", w.ProfileURL)
	}

	_, err = svc.CreateWorker(ctx, client("u1"), validWorkerRequest(), "localhost:3000")
	if !apperr.Is(err, apperr.CodeAlreadyExists) {
		t.Fatalf("duplicate: got %v", err)
	}
}

func TestCreateWorkerValidation(t *testing.T) {
	store := memory.NewStore(3)
	svc := NewWorkerService(store.Workers(), nil, time.Minute, "https://hunarscan.in/", nil)
	ctx := context.Background()

	missing := validWorkerRequest()
	missing.Location = "  "
	_, err := svc.CreateWorker(ctx, client("u1"), missing, "")
	if apperr.PublicMessage(err) != "Name, trade, phone, and location are required" {
		t.Fatalf("missing field: got %v", err)
	}

	badPhone := validWorkerRequest()
	badPhone.Phone = "not a phone"
	_, err = svc.CreateWorker(ctx, client("u1"), badPhone, "")
	if !apperr.Is(err, apperr.CodeInvalidArgument) || apperr.PublicMessage(err) != MsgInvalidPhone {
		t.Fatalf("bad phone: got %v", err)
	}

	if _, err := svc.CreateWorker(ctx, nil, validWorkerRequest(), ""); !apperr.Is(err, apperr.CodeUnauthenticated) {
		t.Fatalf("no identity: got %v", err)
	}

	w, err := svc.CreateWorker(ctx, client("u2"), validWorkerRequest(), "ignored.example")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ProfileURL != "https://hunarscan.in/w/u2" {
		t.Fatalf("base url profile link: %q", w.ProfileURL)
	}
}

func TestGetWorkerReadThroughCache(t *testing.T) {
	store := memory.NewStore(3)
	c := newSpyCache()
	svc := NewWorkerService(store.Workers(), c, time.Minute, "", nil)
	ctx := context.Background()

	if _, err := svc.CreateWorker(ctx, client("u1"), validWorkerRequest(), "hunarscan.in"); err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := svc.GetWorker(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := c.data["worker:u1"]; !ok {
		t.Fatalf("worker not cached after read")
	}

	// A cached copy is served even if the store moves on.
	c.data["worker:u1"] = []byte(`{"id":"u1","name":"Cached","trustScore":4.5}`)
	cached, err := svc.GetWorker(ctx, "u1")
	if err != nil || cached.Name != "Cached" || cached.TrustScore != 4.5 {
		t.Fatalf("cache hit: %+v %v (first %+v)", cached, err, first)
	}

	c.getErr = errors.New("redis down")
	fromStore, err := svc.GetWorker(ctx, "u1")
	if err != nil || fromStore.Name != "Ravi" {
		t.Fatalf("cache failure must fall back to the store: %+v %v", fromStore, err)
	}

	if _, err := svc.GetWorker(ctx, "ghost"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("missing worker: got %v", err)
	}
}

func TestSearchWorkers(t *testing.T) {
	store := memory.NewStore(3)
	svc := NewWorkerService(store.Workers(), nil, time.Minute, "", nil)
	ctx := context.Background()

	seed := []*models.Worker{
		{ID: "a", Trade: "Electrician", Location: "Pune", TrustScore: 3.5, JobsCount: 2},
		{ID: "b", Trade: "Plumber", Location: "Pune", TrustScore: 4.8, JobsCount: 10},
		{ID: "c", Trade: "Auto Electrician", Location: "Mumbai", TrustScore: 4.9, JobsCount: 1},
		{ID: "d", Trade: "Electrician", Location: "Pune", TrustScore: 3.5, JobsCount: 7},
	}
	for _, w := range seed {
		if err := store.Workers().Create(ctx, w); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all, err := svc.SearchWorkers(ctx, models.WorkerFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := ids(all); got != "c,b,d,a" {
		t.Fatalf("order: %s", got)
	}

	elec, _ := svc.SearchWorkers(ctx, models.WorkerFilter{Trade: "ELECTRIC", Location: " pune "})
	if got := ids(elec); got != "d,a" {
		t.Fatalf("filter: %s", got)
	}
}

func ids(ws []*models.Worker) string {
	out := ""
	for i, w := range ws {
		if i > 0 {
			out += ","
		}
		out += w.ID
	}
	return out
}

func TestCreateClient(t *testing.T) {
	store := memory.NewStore(3)
	svc := NewClientService(store.Clients(), nil)
	ctx := context.Background()

	c, err := svc.CreateClient(ctx, client("c1"), &validators.ClientCreateRequest{Name: " Asha "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID != "c1" || c.Name != "Asha" || c.Email != "c1@example.com" || c.ReviewsGiven == nil {
		t.Fatalf("client: %+v", c)
	}
	if _, err := svc.CreateClient(ctx, client("c1"), &validators.ClientCreateRequest{Name: "Asha"}); !apperr.Is(err, apperr.CodeAlreadyExists) {
		t.Fatalf("duplicate: got %v", err)
	}
	_, err = svc.CreateClient(ctx, client("c2"), &validators.ClientCreateRequest{Name: ""})
	if apperr.PublicMessage(err) != "Name is required" {
		t.Fatalf("missing name: got %v", err)
	}
	if _, err := svc.CreateClient(ctx, nil, &validators.ClientCreateRequest{Name: "x"}); !apperr.Is(err, apperr.CodeUnauthenticated) {
		t.Fatalf("no identity: got %v", err)
	}
}
