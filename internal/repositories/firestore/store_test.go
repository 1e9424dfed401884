package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hunarscan/internal/repositories/interfaces"
)

func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		code codes.Code
		want error
	}{
		{codes.NotFound, interfaces.ErrNotFound},
		{codes.AlreadyExists, interfaces.ErrAlreadyExists},
		{codes.Aborted, interfaces.ErrTxAborted},
	}
	for _, tc := range cases {
		err := statusError("worker", "w1", status.Error(tc.code, "x"))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v, got %v", tc.code, tc.want, err)
		}
	}

	err := statusError("worker", "w1", status.Error(codes.Unavailable, "down"))
	for _, sentinel := range []error{interfaces.ErrNotFound, interfaces.ErrAlreadyExists, interfaces.ErrTxAborted} {
		if errors.Is(err, sentinel) {
			t.Fatalf("unavailable must not map to %v", sentinel)
		}
	}
}

func TestSubmissionDocID(t *testing.T) {
	a := submissionDocID("order/42")
	if strings.Contains(a, "/") || len(a) != 64 {
		t.Fatalf("invalid document id %q", a)
	}
	if a != submissionDocID("order/42") {
		t.Fatalf("document id must be stable")
	}
	if a == submissionDocID("order/43") {
		t.Fatalf("distinct keys collided")
	}
}

func TestPingResult(t *testing.T) {
	if err := pingResult(nil, iterator.Done); err != nil {
		t.Fatalf("empty collection must be healthy: %v", err)
	}
	if err := pingResult(&firestore.DocumentSnapshot{}, nil); err != nil {
		t.Fatalf("one document must be healthy: %v", err)
	}
	if err := pingResult(nil, status.Error(codes.Unavailable, "down")); err == nil {
		t.Fatalf("unavailable backend reported healthy")
	}
}

func TestPingReportsUnreachableBackend(t *testing.T) {
	// Nothing listens on the discard port; the client dials lazily.
	t.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:9")
	client, err := firestore.NewClient(context.Background(), "hunarscan-test")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := NewStore(client, 1).Ping(ctx); err == nil {
		t.Fatalf("Ping succeeded against an unreachable backend")
	}
}

func TestTransactionErrorMapping(t *testing.T) {
	if err := transactionError(nil, 5); err != nil {
		t.Fatalf("nil: %v", err)
	}

	err := transactionError(status.Error(codes.Aborted, "contention"), 5)
	if !errors.Is(err, interfaces.ErrTxAborted) || !strings.Contains(err.Error(), "5 attempts") {
		t.Fatalf("aborted: %v", err)
	}

	if err := transactionError(status.Error(codes.NotFound, "gone"), 5); !errors.Is(err, interfaces.ErrNotFound) {
		t.Fatalf("not found: %v", err)
	}

	// errors from the transaction body keep their identity
	body := fmt.Errorf("worker w1: %w", interfaces.ErrNotFound)
	if err := transactionError(body, 5); err != body {
		t.Fatalf("body error rewritten: %v", err)
	}
	unavailable := status.Error(codes.Unavailable, "down")
	if err := transactionError(unavailable, 5); err != unavailable {
		t.Fatalf("unavailable rewritten: %v", err)
	}
}
