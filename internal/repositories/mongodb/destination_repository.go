package mongodb

import (
	"context"
	"fmt"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const msgDestinationNotFound = "Destination not found"

type destinationRepository struct {
	collection *mongo.Collection
}

func NewDestinationRepository(db *mongo.Database) interfaces.DestinationRepository {
	return &destinationRepository{
		collection: db.Collection(database.CollectionDestinations),
	}
}

func (r *destinationRepository) Create(ctx context.Context, destination *models.Destination) error {
	now := time.Now()
	destination.ID = primitive.NewObjectID()
	destination.CreatedAt = now
	destination.UpdatedAt = now
	destination.Normalize()

	if _, err := r.collection.InsertOne(ctx, destination); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("A destination with this name already exists").Wrap(err)
		}
		return fmt.Errorf("failed to create destination: %w", err)
	}
	return nil
}

func (r *destinationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Destination, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *destinationRepository) GetBySlug(ctx context.Context, slug string) (*models.Destination, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *destinationRepository) findOne(ctx context.Context, filter bson.M) (*models.Destination, error) {
	var destination models.Destination
	if err := r.collection.FindOne(ctx, filter).Decode(&destination); err != nil {
		return nil, translateError(err, msgDestinationNotFound, "get destination")
	}
	return &destination, nil
}

func (r *destinationRepository) Update(ctx context.Context, destination *models.Destination) error {
	destination.UpdatedAt = time.Now()
	destination.Normalize()

	fields, err := setFields(destination, "popularity", "rating")
	if err != nil {
		return err
	}

	update := bson.M{"$set": fields}
	if destination.PrimaryImage == "" {
		update["$unset"] = bson.M{"primary_image": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": destination.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("A destination with this name already exists").Wrap(err)
		}
		return fmt.Errorf("failed to update destination: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError(msgDestinationNotFound)
	}
	return nil
}

func (r *destinationRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check destination: %w", err)
	}
	return count > 0, nil
}

func (r *destinationRepository) List(ctx context.Context, filter *interfaces.DestinationFilter, params *utils.PaginationParams) ([]*models.Destination, int64, error) {
	query := bson.M{"is_active": true}
	sort := bson.D{{Key: "popularity", Value: -1}}

	if filter != nil {
		if filter.Country != "" {
			query["country"] = primitive.Regex{Pattern: "^" + regexpQuote(filter.Country) + "$", Options: "i"}
		}
		if filter.Featured != nil {
			query["is_featured"] = *filter.Featured
		}
		if len(filter.Tags) > 0 {
			query["tags"] = bson.M{"$in": filter.Tags}
		}
		if filter.Search != "" {
			query["$text"] = bson.M{"$search": filter.Search}
		}
		budget := bson.M{}
		if filter.MinBudget != nil {
			budget["$gte"] = *filter.MinBudget
		}
		if filter.MaxBudget != nil {
			budget["$lte"] = *filter.MaxBudget
		}
		if len(budget) > 0 {
			query["average_cost_per_day.mid_range"] = budget
		}
		sort = destinationSort(filter.Sort)
	}

	return findPage[models.Destination](ctx, r.collection, query, sort, params)
}

func destinationSort(sort string) bson.D {
	switch sort {
	case "rating":
		return bson.D{{Key: "rating.average", Value: -1}}
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	case "newest":
		return bson.D{{Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "popularity", Value: -1}}
	}
}

func (r *destinationRepository) Featured(ctx context.Context, limit int64) ([]*models.Destination, error) {
	opts := options.Find().SetSort(bson.D{{Key: "popularity", Value: -1}}).SetLimit(limit)
	return findAll[models.Destination](ctx, r.collection, bson.M{"is_active": true, "is_featured": true}, opts)
}

func (r *destinationRepository) Popular(ctx context.Context, limit int64) ([]*models.Destination, error) {
	opts := options.Find().SetSort(bson.D{{Key: "popularity", Value: -1}, {Key: "rating.average", Value: -1}}).SetLimit(limit)
	return findAll[models.Destination](ctx, r.collection, bson.M{"is_active": true}, opts)
}

func (r *destinationRepository) Countries(ctx context.Context) ([]*models.CountrySummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_active": true}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$country",
			"count": bson.M{"$sum": 1},
			"image": bson.M{"$first": "$primary_image"},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate countries: %w", err)
	}
	defer cursor.Close(ctx)

	countries := make([]*models.CountrySummary, 0)
	if err := cursor.All(ctx, &countries); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	return countries, nil
}

func (r *destinationRepository) IncrementPopularity(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"popularity": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment popularity: %w", err)
	}
	return nil
}

func (r *destinationRepository) AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, addImagePipeline(image))
	if err != nil {
		return fmt.Errorf("failed to add destination image: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError(msgDestinationNotFound)
	}
	return nil
}
