package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gbtravel/pkg/logger"
)

const (
	CollectionUsers           = "users"
	CollectionDestinations    = "destinations"
	CollectionTrips           = "trips"
	CollectionBookings        = "bookings"
	CollectionReviews         = "reviews"
	CollectionPayments        = "payments"
	CollectionInquiries       = "inquiries"
	CollectionOutbox          = "outbox"
	CollectionProcessedEvents = "processed_events"

	migrationsCollection = "migrations"
)

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	logger     *logger.Logger
	migrations []Migration
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		logger:     log,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Reverting migration: %s", migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}
		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

func indexMigration(version int, collection string, build func() []mongo.IndexModel) Migration {
	return Migration{
		Version:     version,
		Description: fmt.Sprintf("Create %s indexes", collection),
		Up: func(ctx context.Context, db *mongo.Database) error {
			_, err := db.Collection(collection).Indexes().CreateMany(ctx, build())
			return err
		},
		Down: func(ctx context.Context, db *mongo.Database) error {
			_, err := db.Collection(collection).Indexes().DropAll(ctx)
			return err
		},
	}
}

func getMigrations() []Migration {
	return []Migration{
		indexMigration(1, CollectionUsers, usersIndexes),
		indexMigration(2, CollectionDestinations, destinationsIndexes),
		indexMigration(3, CollectionTrips, tripsIndexes),
		indexMigration(4, CollectionBookings, bookingsIndexes),
		indexMigration(5, CollectionReviews, reviewsIndexes),
		indexMigration(6, CollectionPayments, paymentsIndexes),
		indexMigration(7, CollectionInquiries, inquiriesIndexes),
		indexMigration(8, CollectionOutbox, outboxIndexes),
		indexMigration(9, CollectionProcessedEvents, processedEventsIndexes),
	}
}

func key(name string, value interface{}) bson.E {
	return bson.E{Key: name, Value: value}
}

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("email", 1)}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{key("role", 1)}},
		{Keys: bson.D{key("created_at", -1)}},
	}
}

func destinationsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("name", 1)}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{key("slug", 1)}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{key("country", 1), key("is_active", 1)}},
		{Keys: bson.D{key("is_featured", 1), key("is_active", 1)}},
		{Keys: bson.D{key("popularity", -1)}},
		{Keys: bson.D{key("name", "text"), key("description", "text"), key("country", "text"), key("tags", "text")}},
	}
}

func tripsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("slug", 1)}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{key("package_id", 1)}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{key("destination", 1), key("status", 1)}},
		{Keys: bson.D{key("price.amount", 1)}},
		{Keys: bson.D{key("rating.average", -1)}},
		{Keys: bson.D{key("available_dates.departure_date", 1)}},
		{Keys: bson.D{key("name", "text"), key("description", "text"), key("tags", "text"), key("highlights", "text")}},
	}
}

func bookingsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("confirmation_code", 1)}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{key("user", 1), key("created_at", -1)}},
		{Keys: bson.D{key("trip", 1)}},
		{Keys: bson.D{key("stripe_session_id", 1)}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{key("stripe_payment_intent_id", 1)}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{key("booking_status", 1), key("payment_status", 1)}},
		{Keys: bson.D{key("selected_date.departure_date", 1)}},
	}
}

func reviewsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("user", 1), key("trip", 1)}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{key("trip", 1), key("status", 1)}},
		{Keys: bson.D{key("created_at", -1)}},
	}
}

func paymentsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("user", 1), key("created_at", -1)}},
		{Keys: bson.D{key("booking", 1)}},
		{Keys: bson.D{key("stripe_payment_intent_id", 1)}},
		{Keys: bson.D{key("status", 1), key("type", 1)}},
	}
}

func inquiriesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("status", 1), key("created_at", -1)}},
		{Keys: bson.D{key("email", 1)}},
	}
}

func outboxIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("status", 1), key("next_attempt_at", 1)}},
	}
}

func processedEventsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{key("processed_at", -1)}},
	}
}
