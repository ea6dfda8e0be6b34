package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type outboxRepository struct {
	collection *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) interfaces.OutboxRepository {
	return &outboxRepository{
		collection: db.Collection(database.CollectionOutbox),
	}
}

func (r *outboxRepository) Insert(ctx context.Context, message *models.OutboxMessage) error {
	now := time.Now()
	message.ID = primitive.NewObjectID()
	message.CreatedAt = now
	message.UpdatedAt = now
	if message.Status == "" {
		message.Status = models.OutboxPending
	}
	if message.NextAttemptAt.IsZero() {
		message.NextAttemptAt = now
	}

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

func (r *outboxRepository) ClaimNext(ctx context.Context, now time.Time) (*models.OutboxMessage, error) {
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}}).
		SetReturnDocument(options.After)

	var message models.OutboxMessage
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"status": models.OutboxPending, "next_attempt_at": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"status": models.OutboxProcessing, "locked_at": now, "updated_at": now}},
		opts,
	).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim notification: %w", err)
	}
	return &message, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.set(ctx, id, bson.M{
		"status":     models.OutboxSent,
		"sent_at":    at,
		"locked_at":  nil,
		"last_error": "",
	})
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id primitive.ObjectID, attempts int, next time.Time, lastError string) error {
	return r.set(ctx, id, bson.M{
		"status":          models.OutboxPending,
		"attempts":        attempts,
		"next_attempt_at": next,
		"locked_at":       nil,
		"last_error":      lastError,
	})
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastError string) error {
	return r.set(ctx, id, bson.M{
		"status":     models.OutboxFailed,
		"attempts":   attempts,
		"locked_at":  nil,
		"last_error": lastError,
	})
}

func (r *outboxRepository) ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"status": models.OutboxProcessing, "locked_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": models.OutboxPending, "locked_at": nil, "updated_at": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale notifications: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *outboxRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields}); err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}
