// Package firestore keeps profiles, statistics and reviews in Cloud Firestore
// using the document layout of the existing web client.
package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hunarscan/internal/repositories/interfaces"
)

const (
	workersCollection     = "workers"
	reviewsSubcollection  = "jobs"
	submissionsCollection = "submissions"
	statsCollection       = "workerStats"
	clientsCollection     = "clients"

	defaultMaxAttempts = 5
)

type Store struct {
	client      *firestore.Client
	maxAttempts int
}

func NewStore(client *firestore.Client, maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &Store{client: client, maxAttempts: maxAttempts}
}

func (s *Store) Reviews() interfaces.ReviewRepository {
	return &reviewRepository{store: s}
}

func (s *Store) Workers() interfaces.WorkerRepository {
	return &workerRepository{store: s}
}

func (s *Store) Clients() interfaces.ClientRepository {
	return &clientRepository{store: s}
}

// Ping reads at most one worker document. An empty collection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	iter := s.client.Collection(workersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	return pingResult(iter.Next())
}

func pingResult(_ *firestore.DocumentSnapshot, err error) error {
	if err == nil || errors.Is(err, iterator.Done) {
		return nil
	}
	return fmt.Errorf("firestore ping: %w", err)
}

func (s *Store) workerDoc(id string) *firestore.DocumentRef {
	return s.client.Collection(workersCollection).Doc(id)
}

func (s *Store) reviewsOf(workerID string) *firestore.CollectionRef {
	return s.workerDoc(workerID).Collection(reviewsSubcollection)
}

func (s *Store) statsDoc(workerID string) *firestore.DocumentRef {
	return s.client.Collection(statsCollection).Doc(workerID)
}

func (s *Store) submissionDoc(workerID, key string) *firestore.DocumentRef {
	return s.workerDoc(workerID).Collection(submissionsCollection).Doc(submissionDocID(key))
}

func (s *Store) clientDoc(id string) *firestore.DocumentRef {
	return s.client.Collection(clientsCollection).Doc(id)
}

// submissionDocID turns a caller-chosen key into a valid document id.
// Keys may contain '/', which Firestore reserves for paths.
func submissionDocID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// statusError maps gRPC status codes returned by Firestore onto repository sentinels.
func statusError(what, id string, err error) error {
	switch status.Code(err) {
	case codes.OK:
		return err
	case codes.NotFound:
		return fmt.Errorf("%s %s: %w", what, id, interfaces.ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s %s: %w", what, id, interfaces.ErrAlreadyExists)
	case codes.Aborted:
		return fmt.Errorf("%s %s: %v: %w", what, id, err, interfaces.ErrTxAborted)
	default:
		return fmt.Errorf("firestore %s %s: %w", what, id, err)
	}
}
