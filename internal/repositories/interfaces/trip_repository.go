package interfaces

import (
	"context"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripFilter struct {
	Destination *primitive.ObjectID
	MinPrice    *float64
	MaxPrice    *float64
	MinDays     *int
	MaxDays     *int
	Difficulty  models.DifficultyLevel
	TripType    models.TripType
	Featured    *bool
	Search      string
	Sort        string // price-low, price-high, rating, duration, popular, newest
}

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Trip, error)
	GetBySlug(ctx context.Context, slug string) (*models.Trip, error)
	GetByPackageID(ctx context.Context, packageID int) (*models.Trip, error)
	// Update $sets the given fields and returns the stored trip. Booking
	// counters and rating are never written here. A non-nil expectBookings
	// makes the write conditional on current_bookings still holding that
	// value; a miss is a conflict.
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M, expectBookings *int) (*models.Trip, error)

	List(ctx context.Context, filter *TripFilter, params *utils.PaginationParams) ([]*models.Trip, int64, error)
	Featured(ctx context.Context, limit int64) ([]*models.Trip, error)
	Upcoming(ctx context.Context, from time.Time, limit int64) ([]*models.Trip, error)
	Related(ctx context.Context, trip *models.Trip, limit int64) ([]*models.Trip, error)
	ListByDestination(ctx context.Context, destinationID primitive.ObjectID, limit int64) ([]*models.Trip, error)

	// ReserveSpots takes n spots from both the trip and the departure in one
	// conditional update. It returns false when the trip is not active or
	// either counter cannot cover n.
	ReserveSpots(ctx context.Context, id primitive.ObjectID, departure time.Time, n int) (bool, error)
	// ReleaseSpots returns n spots, never pushing a departure above its capacity
	// or the trip's booking count below zero.
	ReleaseSpots(ctx context.Context, id primitive.ObjectID, departure time.Time, n int) error

	UpdateRating(ctx context.Context, id primitive.ObjectID, rating models.Rating) error
	// AddImage appends image; a primary image demotes the previous one.
	AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) error
}
