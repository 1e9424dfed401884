// Package mongodb stores profiles, statistics and reviews in MongoDB. Review
// transactions need a replica set.
//
// Review timestamps come from the clock of the instance that writes them, not
// from the database. They are monotonic within one process but can go
// backwards across instances with skewed clocks, so ListByWorker ordering is
// only as good as the deployment's clock sync. The Firestore backend uses
// server timestamps instead.
package mongodb

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hunarscan/internal/models"
	"hunarscan/internal/repositories/interfaces"
	"hunarscan/pkg/database"
)

const (
	labelTransient     = "TransientTransactionError"
	labelUnknownCommit = "UnknownTransactionCommitResult"

	defaultMaxAttempts = 5
	maxCommitAttempts  = 3
)

// errConflict marks a write that lost a race with a concurrent transaction.
var errConflict = errors.New("mongodb: write conflict")

type Store struct {
	db          *database.MongoDB
	maxAttempts int
	now         func() time.Time
	newID       func() string

	// startSession is db.StartSession outside tests.
	startSession func() (mongo.Session, error)

	mu     sync.Mutex
	lastTS time.Time
}

func NewStore(db *database.MongoDB, maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	return &Store{
		db:           db,
		maxAttempts:  maxAttempts,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		startSession: db.StartSession,
	}
}

// reviewTime returns a timestamp strictly after the previous one handed out by
// this process. BSON dates keep milliseconds, so that is the step.
func (s *Store) reviewTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.now().UTC().Truncate(time.Millisecond)
	if !ts.After(s.lastTS) {
		ts = s.lastTS.Add(time.Millisecond)
	}
	s.lastTS = ts
	return ts
}

func (s *Store) Reviews() interfaces.ReviewRepository {
	return &reviewRepository{store: s}
}

func (s *Store) Workers() interfaces.WorkerRepository {
	return &workerRepository{collection: s.db.Collection(database.WorkersCollection), now: s.now}
}

func (s *Store) Clients() interfaces.ClientRepository {
	return &clientRepository{collection: s.db.Collection(database.ClientsCollection), now: s.now}
}

func hasLabel(err error, label string) bool {
	var labeled mongo.LabeledError
	return errors.As(err, &labeled) && labeled.HasErrorLabel(label)
}

// isRetryable reports whether a failed attempt may be run again from scratch.
func isRetryable(err error) bool {
	return errors.Is(err, errConflict) || hasLabel(err, labelTransient)
}

// findError maps a FindOne failure, turning a missing document into ErrNotFound.
func findError(what, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", what, id, interfaces.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// insertError maps an insert failure, turning a duplicate key into ErrAlreadyExists.
func insertError(what, id string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s %s: %w", what, id, interfaces.ErrAlreadyExists)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

// containsFilter matches value as a case-insensitive substring.
func containsFilter(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

func workerSearchFilter(filter models.WorkerFilter) bson.M {
	query := bson.M{}
	if trade := strings.TrimSpace(filter.Trade); trade != "" {
		query["trade"] = containsFilter(trade)
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query["location"] = containsFilter(location)
	}
	return query
}
