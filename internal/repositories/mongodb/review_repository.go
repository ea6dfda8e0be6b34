package mongodb

import (
	"context"
	"fmt"
	"math"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const msgReviewNotFound = "Review not found"

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) interfaces.ReviewRepository {
	return &reviewRepository{
		collection: db.Collection(database.CollectionReviews),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	now := time.Now()
	review.ID = primitive.NewObjectID()
	review.CreatedAt = now
	review.UpdatedAt = now
	if review.VotedBy == nil {
		review.VotedBy = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("You have already reviewed this trip").Wrap(err)
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, translateError(err, msgReviewNotFound, "get review")
	}
	return &review, nil
}

func (r *reviewRepository) GetByUserAndTrip(ctx context.Context, userID, tripID primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"user": userID, "trip": tripID}).Decode(&review); err != nil {
		return nil, translateError(err, msgReviewNotFound, "get review")
	}
	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Review, error) {
	set := bson.M{"updated_at": time.Now()}
	for key, value := range fields {
		set[key] = value
	}
	delete(set, "helpful_votes")
	delete(set, "voted_by")

	var review models.Review
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, afterUpdate()).Decode(&review)
	if err != nil {
		return nil, translateError(err, msgReviewNotFound, "update review")
	}
	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError(msgReviewNotFound)
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context, filter *interfaces.ReviewFilter, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	query := bson.M{}
	sort := bson.D{{Key: "created_at", Value: -1}}

	if filter != nil {
		if filter.Trip != nil {
			query["trip"] = *filter.Trip
		}
		if filter.User != nil {
			query["user"] = *filter.User
		}
		if filter.Status != "" {
			query["status"] = filter.Status
		}
		if filter.Rating > 0 {
			query["rating.overall"] = filter.Rating
		}
		switch filter.Sort {
		case "rating-high":
			sort = bson.D{{Key: "rating.overall", Value: -1}, {Key: "created_at", Value: -1}}
		case "rating-low":
			sort = bson.D{{Key: "rating.overall", Value: 1}, {Key: "created_at", Value: -1}}
		case "helpful":
			sort = bson.D{{Key: "helpful_votes", Value: -1}, {Key: "created_at", Value: -1}}
		}
	}

	return findPage[models.Review](ctx, r.collection, query, sort, params)
}

func (r *reviewRepository) AddHelpfulVote(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "voted_by": bson.M{"$ne": userID}},
		bson.M{
			"$inc":  bson.M{"helpful_votes": 1},
			"$push": bson.M{"voted_by": userID},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to record helpful vote: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *reviewRepository) ApprovedSummary(ctx context.Context, tripID primitive.ObjectID) (*models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"trip": tripID, "status": models.ReviewStatusApproved}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating.overall", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	summary := &models.RatingSummary{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for cursor.Next(ctx) {
		var row struct {
			Rating int `bson:"_id"`
			Count  int `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode rating row: %w", err)
		}
		summary.Distribution[row.Rating] = row.Count
		summary.Count += row.Count
		total += row.Rating * row.Count
	}

	if summary.Count > 0 {
		summary.Average = math.Round(float64(total)/float64(summary.Count)*10) / 10
	}
	return summary, nil
}
