package interfaces

import (
	"context"
	"time"

	"gbtravel/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OutboxRepository interface {
	Insert(ctx context.Context, message *models.OutboxMessage) error
	// ClaimNext moves one due pending message to processing. It returns nil
	// when nothing is due.
	ClaimNext(ctx context.Context, now time.Time) (*models.OutboxMessage, error)
	MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	MarkRetry(ctx context.Context, id primitive.ObjectID, attempts int, next time.Time, lastError string) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastError string) error
	// ReleaseStale returns processing claims locked before cutoff to pending.
	ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error)
}
