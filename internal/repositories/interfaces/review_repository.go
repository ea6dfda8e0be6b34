package interfaces

import (
	"context"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewFilter struct {
	Trip   *primitive.ObjectID
	User   *primitive.ObjectID
	Status models.ReviewStatus
	Rating int
	Sort   string // recent, rating-high, rating-low, helpful
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	GetByUserAndTrip(ctx context.Context, userID, tripID primitive.ObjectID) (*models.Review, error)
	// Update $sets the given fields; vote counters belong to AddHelpfulVote.
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter *ReviewFilter, params *utils.PaginationParams) ([]*models.Review, int64, error)

	// AddHelpfulVote returns false when userID already voted.
	AddHelpfulVote(ctx context.Context, id, userID primitive.ObjectID) (bool, error)

	// ApprovedSummary aggregates approved reviews of a trip.
	ApprovedSummary(ctx context.Context, tripID primitive.ObjectID) (*models.RatingSummary, error)
}
