package mongodb

import (
	"context"
	"errors"
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

const msgTripNotFound = "Trip not found"

type tripRepository struct {
	collection *mongo.Collection
}

func NewTripRepository(db *mongo.Database) interfaces.TripRepository {
	return &tripRepository{
		collection: db.Collection(database.CollectionTrips),
	}
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	now := time.Now()
	trip.ID = primitive.NewObjectID()
	trip.CreatedAt = now
	trip.UpdatedAt = now
	trip.Normalize()

	if _, err := r.collection.InsertOne(ctx, trip); err != nil {
		return translateError(err, msgTripNotFound, "create trip")
	}
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *tripRepository) GetBySlug(ctx context.Context, slug string) (*models.Trip, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *tripRepository) GetByPackageID(ctx context.Context, packageID int) (*models.Trip, error) {
	return r.findOne(ctx, bson.M{"package_id": packageID})
}

func (r *tripRepository) findOne(ctx context.Context, filter bson.M) (*models.Trip, error) {
	var trip models.Trip
	if err := r.collection.FindOne(ctx, filter).Decode(&trip); err != nil {
		return nil, translateError(err, msgTripNotFound, "get trip")
	}
	return &trip, nil
}

// counterFields are owned by ReserveSpots, ReleaseSpots and UpdateRating.
var counterFields = []string{"_id", "current_bookings", "rating", "created_at"}

func (r *tripRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M, expectBookings *int) (*models.Trip, error) {
	set := bson.M{"updated_at": time.Now()}
	for key, value := range fields {
		set[key] = value
	}
	for _, key := range counterFields {
		delete(set, key)
	}

	filter := bson.M{"_id": id}
	if expectBookings != nil {
		filter["current_bookings"] = *expectBookings
	}

	var trip models.Trip
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, afterUpdate()).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) && expectBookings != nil {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, fmt.Errorf("failed to update trip: %w", countErr)
		}
		if count > 0 {
			return nil, utils.NewConflictError("Trip bookings changed while saving. Please retry.")
		}
	}
	if err != nil {
		return nil, translateError(err, msgTripNotFound, "update trip")
	}
	return &trip, nil
}

func (r *tripRepository) List(ctx context.Context, filter *interfaces.TripFilter, params *utils.PaginationParams) ([]*models.Trip, int64, error) {
	query := bson.M{"status": models.TripStatusActive}
	sort := bson.D{{Key: "created_at", Value: -1}}

	if filter != nil {
		if filter.Destination != nil {
			query["destination"] = *filter.Destination
		}
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		if len(price) > 0 {
			query["price.amount"] = price
		}
		days := bson.M{}
		if filter.MinDays != nil {
			days["$gte"] = *filter.MinDays
		}
		if filter.MaxDays != nil {
			days["$lte"] = *filter.MaxDays
		}
		if len(days) > 0 {
			query["duration.days"] = days
		}
		if filter.Difficulty != "" {
			query["difficulty_level"] = filter.Difficulty
		}
		if filter.TripType != "" {
			query["trip_type"] = filter.TripType
		}
		if filter.Featured != nil {
			query["is_featured"] = *filter.Featured
		}
		if filter.Search != "" {
			query["$text"] = bson.M{"$search": filter.Search}
		}
		sort = tripSort(filter.Sort)
	}

	return findPage[models.Trip](ctx, r.collection, query, sort, params)
}

func tripSort(sort string) bson.D {
	switch sort {
	case "price-low":
		return bson.D{{Key: "price.amount", Value: 1}}
	case "price-high":
		return bson.D{{Key: "price.amount", Value: -1}}
	case "rating":
		return bson.D{{Key: "rating.average", Value: -1}}
	case "duration":
		return bson.D{{Key: "duration.days", Value: 1}}
	case "popular":
		return bson.D{{Key: "current_bookings", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *tripRepository) Featured(ctx context.Context, limit int64) ([]*models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating.average", Value: -1}}).SetLimit(limit)
	return findAll[models.Trip](ctx, r.collection, bson.M{"status": models.TripStatusActive, "is_featured": true}, opts)
}

func (r *tripRepository) Upcoming(ctx context.Context, from time.Time, limit int64) ([]*models.Trip, error) {
	filter := bson.M{
		"status": models.TripStatusActive,
		"available_dates": bson.M{"$elemMatch": bson.M{
			"departure_date":  bson.M{"$gte": from},
			"spots_available": bson.M{"$gt": 0},
		}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "available_dates.departure_date", Value: 1}}).SetLimit(limit)
	return findAll[models.Trip](ctx, r.collection, filter, opts)
}

func (r *tripRepository) Related(ctx context.Context, trip *models.Trip, limit int64) ([]*models.Trip, error) {
	filter := bson.M{
		"_id":    bson.M{"$ne": trip.ID},
		"status": models.TripStatusActive,
		"$or": bson.A{
			bson.M{"destination": trip.Destination},
			bson.M{"trip_type": trip.TripType},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "rating.average", Value: -1}}).SetLimit(limit)
	return findAll[models.Trip](ctx, r.collection, filter, opts)
}

func (r *tripRepository) ListByDestination(ctx context.Context, destinationID primitive.ObjectID, limit int64) ([]*models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rating.average", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return findAll[models.Trip](ctx, r.collection, bson.M{"destination": destinationID, "status": models.TripStatusActive}, opts)
}

func (r *tripRepository) ReserveSpots(ctx context.Context, id primitive.ObjectID, departure time.Time, n int) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.TripStatusActive,
		"available_dates": bson.M{"$elemMatch": bson.M{
			"departure_date":  departure,
			"spots_available": bson.M{"$gte": n},
		}},
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$current_bookings", n}},
			"$max_capacity",
		}},
	}
	update := bson.M{
		"$inc": bson.M{
			"current_bookings":                     n,
			"available_dates.$[d].spots_available": -n,
		},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"d.departure_date": departure}},
	})

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("failed to reserve spots: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *tripRepository) ReleaseSpots(ctx context.Context, id primitive.ObjectID, departure time.Time, n int) error {
	restored := bson.M{"$add": bson.A{"$$d.spots_available", n}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"current_bookings": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$current_bookings", n}}}},
			"available_dates": bson.M{"$map": bson.M{
				"input": "$available_dates",
				"as":    "d",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$eq": bson.A{"$$d.departure_date", departure}},
					bson.M{"$mergeObjects": bson.A{"$$d", bson.M{
						"spots_available": bson.M{"$min": bson.A{restored, bson.M{"$ifNull": bson.A{"$$d.capacity", restored}}}},
					}}},
					"$$d",
				}},
			}},
			"updated_at": time.Now(),
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to release spots: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError(msgTripNotFound)
	}
	return nil
}

func (r *tripRepository) UpdateRating(ctx context.Context, id primitive.ObjectID, rating models.Rating) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":     rating,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update trip rating: %w", err)
	}
	return nil
}

func (r *tripRepository) AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, addImagePipeline(image))
	if err != nil {
		return fmt.Errorf("failed to add trip image: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError(msgTripNotFound)
	}
	return nil
}
