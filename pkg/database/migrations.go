package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hunarscan/pkg/logger"
)

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	log        *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Migrator{
		db:         db,
		migrations: Migrations(),
		log:        log.WithField("component", "migrator"),
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range pending(m.migrations, currentVersion) {
		m.log.Infof("Running migration %d: %s", migration.Version, migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}

		m.log.Infof("Migration %d completed successfully", migration.Version)
	}

	return nil
}

// pending returns the migrations newer than current, in order.
func pending(migrations []Migration, current int) []Migration {
	var out []Migration
	for _, migration := range migrations {
		if migration.Version > current {
			out = append(out, migration)
		}
	}
	return out
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(MigrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(MigrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Migrations returns the schema history in version order.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create workers collection with indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db, WorkersCollection, workerIndexes())
			},
		},
		{
			Version:     2,
			Description: "Create reviews collection with indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db, ReviewsCollection, reviewIndexes())
			},
		},
		{
			Version:     3,
			Description: "Create review_submissions collection with unique key index",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db, SubmissionsCollection, submissionIndexes())
			},
		},
		{
			Version:     4,
			Description: "Create clients collection with indexes",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db, ClientsCollection, clientIndexes())
			},
		},
	}
}

func createIndexes(ctx context.Context, db *mongo.Database, collection string, indexes []mongo.IndexModel) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
	return err
}

func workerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "trade", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: 1}}},
		{Keys: bson.D{{Key: "trust_score", Value: -1}, {Key: "jobs_count", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
}

func reviewIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "worker_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	}
}

func submissionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "worker_id", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

func clientIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}
}
