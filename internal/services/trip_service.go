package services

import (
	"context"
	"fmt"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultFeaturedTrips = 6
	defaultUpcomingTrips = 8
	relatedTripsLimit    = 4
	tripUpdateAttempts   = 3
)

type TripService interface {
	ListTrips(ctx context.Context, filter *interfaces.TripFilter, params *utils.PaginationParams) ([]*models.TripView, int64, error)
	SearchTrips(ctx context.Context, query string, params *utils.PaginationParams) ([]*models.TripView, int64, error)
	GetFeaturedTrips(ctx context.Context, limit int64) ([]*models.TripView, error)
	GetUpcomingTrips(ctx context.Context, limit int64) ([]*models.TripView, error)
	GetTripsByDestination(ctx context.Context, destinationID primitive.ObjectID, params *utils.PaginationParams) ([]*models.TripView, int64, error)
	// GetTrip accepts an ObjectID or a slug.
	GetTrip(ctx context.Context, idOrSlug string) (*TripDetail, error)
	GetAvailability(ctx context.Context, id primitive.ObjectID) (*TripAvailability, error)

	// Admin
	CreateTrip(ctx context.Context, actor Actor, request *TripRequest) (*models.TripView, error)
	UpdateTrip(ctx context.Context, id primitive.ObjectID, request *UpdateTripRequest) (*models.TripView, error)
	DeleteTrip(ctx context.Context, id primitive.ObjectID) error
	AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) (*models.TripView, error)
}

type TripRequest struct {
	PackageID          *int                      `json:"packageId" validate:"omitempty,min=1"`
	Name               string                    `json:"name" validate:"required,max=150"`
	Description        string                    `json:"description" validate:"required,min=100,max=5000"`
	ShortDescription   string                    `json:"shortDescription" validate:"max=300"`
	Destination        string                    `json:"destination" validate:"required,object_id"`
	Duration           models.Duration           `json:"duration" validate:"required"`
	Price              models.Price              `json:"price" validate:"required"`
	AvailableDates     []models.AvailableDate    `json:"availableDates" validate:"omitempty,dive"`
	MaxCapacity        int                       `json:"maxCapacity" validate:"required,min=1"`
	MinTravelers       int                       `json:"minTravelers" validate:"omitempty,min=1"`
	Inclusions         []string                  `json:"inclusions"`
	Exclusions         []string                  `json:"exclusions"`
	Itinerary          []models.ItineraryDay     `json:"itinerary" validate:"omitempty,dive"`
	Guide              *models.Guide             `json:"guide"`
	DifficultyLevel    models.DifficultyLevel    `json:"difficultyLevel" validate:"omitempty,oneof=easy moderate challenging difficult"`
	TripType           models.TripType           `json:"tripType" validate:"omitempty,oneof=adventure cultural relaxation wildlife beach mountain city cruise other"`
	AgeRestrictions    *models.AgeRestrictions   `json:"ageRestrictions"`
	Images             []models.Image            `json:"images" validate:"omitempty,dive"`
	Highlights         []string                  `json:"highlights"`
	Requirements       []string                  `json:"requirements"`
	CancellationPolicy models.CancellationPolicy `json:"cancellationPolicy" validate:"omitempty,oneof=flexible moderate strict non-refundable"`
	Status             models.TripStatus         `json:"status" validate:"omitempty,oneof=draft active paused sold-out cancelled"`
	IsFeatured         bool                      `json:"isFeatured"`
	Tags               []string                  `json:"tags"`
}

// UpdateTripRequest is a partial update: nil fields are left unchanged.
type UpdateTripRequest struct {
	PackageID          *int                       `json:"packageId" validate:"omitempty,min=1"`
	Name               *string                    `json:"name" validate:"omitempty,max=150"`
	Description        *string                    `json:"description" validate:"omitempty,min=100,max=5000"`
	ShortDescription   *string                    `json:"shortDescription" validate:"omitempty,max=300"`
	Destination        *string                    `json:"destination" validate:"omitempty,object_id"`
	Duration           *models.Duration           `json:"duration"`
	Price              *models.Price              `json:"price"`
	AvailableDates     []models.AvailableDate     `json:"availableDates" validate:"omitempty,dive"`
	MaxCapacity        *int                       `json:"maxCapacity" validate:"omitempty,min=1"`
	MinTravelers       *int                       `json:"minTravelers" validate:"omitempty,min=1"`
	Inclusions         []string                   `json:"inclusions"`
	Exclusions         []string                   `json:"exclusions"`
	Itinerary          []models.ItineraryDay      `json:"itinerary" validate:"omitempty,dive"`
	Guide              *models.Guide              `json:"guide"`
	DifficultyLevel    *models.DifficultyLevel    `json:"difficultyLevel" validate:"omitempty,oneof=easy moderate challenging difficult"`
	TripType           *models.TripType           `json:"tripType" validate:"omitempty,oneof=adventure cultural relaxation wildlife beach mountain city cruise other"`
	AgeRestrictions    *models.AgeRestrictions    `json:"ageRestrictions"`
	Images             []models.Image             `json:"images" validate:"omitempty,dive"`
	Highlights         []string                   `json:"highlights"`
	Requirements       []string                   `json:"requirements"`
	CancellationPolicy *models.CancellationPolicy `json:"cancellationPolicy" validate:"omitempty,oneof=flexible moderate strict non-refundable"`
	Status             *models.TripStatus         `json:"status" validate:"omitempty,oneof=draft active paused sold-out cancelled"`
	IsFeatured         *bool                      `json:"isFeatured"`
	Tags               []string                   `json:"tags"`
}

type TripDetail struct {
	Trip         *models.TripView   `json:"trip"`
	RelatedTrips []*models.TripView `json:"relatedTrips"`
}

type TripAvailability struct {
	TripID         primitive.ObjectID     `json:"tripId"`
	AvailableDates []models.AvailableDate `json:"availableDates"`
	SpotsRemaining int                    `json:"spotsRemaining"`
}

type tripService struct {
	tripRepo        interfaces.TripRepository
	destinationRepo interfaces.DestinationRepository
	cache           *catalogCache
	logger          *logger.Logger
	now             func() time.Time
}

func NewTripService(
	tripRepo interfaces.TripRepository,
	destinationRepo interfaces.DestinationRepository,
	cache CacheService,
	logger *logger.Logger,
) TripService {
	return &tripService{
		tripRepo:        tripRepo,
		destinationRepo: destinationRepo,
		cache:           newCatalogCache(cache, logger),
		logger:          logger,
		now:             time.Now,
	}
}

func (s *tripService) ListTrips(ctx context.Context, filter *interfaces.TripFilter, params *utils.PaginationParams) ([]*models.TripView, int64, error) {
	trips, total, err := s.tripRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}
	return models.TripViews(trips), total, nil
}

func (s *tripService) SearchTrips(ctx context.Context, query string, params *utils.PaginationParams) ([]*models.TripView, int64, error) {
	if query == "" {
		return nil, 0, utils.NewBadRequestError("Search query is required")
	}
	return s.ListTrips(ctx, &interfaces.TripFilter{Search: query}, params)
}

func (s *tripService) GetFeaturedTrips(ctx context.Context, limit int64) ([]*models.TripView, error) {
	if limit <= 0 {
		limit = defaultFeaturedTrips
	}

	key := fmt.Sprintf("%s:%d", cacheKeyFeaturedTrips, limit)
	trips, err := cached(ctx, s.cache, key, func() ([]*models.Trip, error) {
		return s.tripRepo.Featured(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return models.TripViews(trips), nil
}

func (s *tripService) GetUpcomingTrips(ctx context.Context, limit int64) ([]*models.TripView, error) {
	if limit <= 0 {
		limit = defaultUpcomingTrips
	}
	trips, err := s.tripRepo.Upcoming(ctx, s.now(), limit)
	if err != nil {
		return nil, err
	}
	return models.TripViews(trips), nil
}

func (s *tripService) GetTripsByDestination(ctx context.Context, destinationID primitive.ObjectID, params *utils.PaginationParams) ([]*models.TripView, int64, error) {
	return s.ListTrips(ctx, &interfaces.TripFilter{Destination: &destinationID}, params)
}

func (s *tripService) GetTrip(ctx context.Context, idOrSlug string) (*TripDetail, error) {
	var (
		trip *models.Trip
		err  error
	)
	if id, parseErr := primitive.ObjectIDFromHex(idOrSlug); parseErr == nil {
		trip, err = s.tripRepo.GetByID(ctx, id)
	} else {
		trip, err = s.tripRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if trip.Status == models.TripStatusCancelled {
		return nil, utils.NewNotFoundError("Trip not found")
	}

	related, err := s.tripRepo.Related(ctx, trip, relatedTripsLimit)
	if err != nil {
		s.logger.WithError(err).WithField("trip_id", trip.ID.Hex()).Warn("Failed to load related trips")
		related = []*models.Trip{}
	}

	return &TripDetail{Trip: trip.View(), RelatedTrips: models.TripViews(related)}, nil
}

func (s *tripService) GetAvailability(ctx context.Context, id primitive.ObjectID) (*TripAvailability, error) {
	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dates := make([]models.AvailableDate, 0, len(trip.AvailableDates))
	for _, date := range trip.AvailableDates {
		if date.DepartureDate.After(now) && date.SpotsAvailable > 0 {
			dates = append(dates, date)
		}
	}

	return &TripAvailability{
		TripID:         trip.ID,
		AvailableDates: dates,
		SpotsRemaining: trip.SpotsRemaining(),
	}, nil
}

func (s *tripService) CreateTrip(ctx context.Context, actor Actor, request *TripRequest) (*models.TripView, error) {
	destinationID, err := s.requireDestination(ctx, request.Destination)
	if err != nil {
		return nil, err
	}

	trip := &models.Trip{
		PackageID:          request.PackageID,
		Name:               request.Name,
		Slug:               utils.Slugify(request.Name),
		Description:        request.Description,
		ShortDescription:   request.ShortDescription,
		Destination:        destinationID,
		Duration:           request.Duration,
		Price:              request.Price,
		AvailableDates:     request.AvailableDates,
		MaxCapacity:        request.MaxCapacity,
		MinTravelers:       request.MinTravelers,
		Inclusions:         request.Inclusions,
		Exclusions:         request.Exclusions,
		Itinerary:          request.Itinerary,
		Guide:              request.Guide,
		DifficultyLevel:    request.DifficultyLevel,
		TripType:           request.TripType,
		AgeRestrictions:    request.AgeRestrictions,
		Images:             request.Images,
		Highlights:         request.Highlights,
		Requirements:       request.Requirements,
		CancellationPolicy: request.CancellationPolicy,
		Status:             request.Status,
		IsFeatured:         request.IsFeatured,
		Tags:               request.Tags,
		CreatedBy:          actor.UserID,
	}
	if err := validateDates(trip.AvailableDates); err != nil {
		return nil, err
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.cache.invalidate(ctx, s.featuredKeys()...)
	s.logger.LogUserAction(actor.UserID, "trip_created", map[string]interface{}{"trip_id": trip.ID.Hex()})
	return trip.View(), nil
}

func (s *tripService) UpdateTrip(ctx context.Context, id primitive.ObjectID, request *UpdateTripRequest) (*models.TripView, error) {
	var destination *primitive.ObjectID
	if request.Destination != nil {
		destinationID, err := s.requireDestination(ctx, *request.Destination)
		if err != nil {
			return nil, err
		}
		destination = &destinationID
	}
	if request.AvailableDates != nil {
		if err := validateDates(request.AvailableDates); err != nil {
			return nil, err
		}
	}

	for attempt := 1; ; attempt++ {
		trip, err := s.tripRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if request.MaxCapacity != nil && *request.MaxCapacity < trip.CurrentBookings {
			return nil, utils.NewBadRequestError("Max capacity cannot be below current bookings (%d)", trip.CurrentBookings)
		}

		keys := request.applyTo(trip)
		if destination != nil {
			trip.Destination = *destination
			keys = append(keys, "destination")
		}
		trip.Normalize()

		fields, err := tripFields(trip, keys)
		if err != nil {
			return nil, err
		}

		// Dates and capacity sit next to the booking counters, so they are
		// only written against the counts they were checked with.
		var expectBookings *int
		if request.AvailableDates != nil || request.MaxCapacity != nil {
			expectBookings = &trip.CurrentBookings
		}

		updated, err := s.tripRepo.Update(ctx, id, fields, expectBookings)
		if err != nil {
			if expectBookings != nil && utils.IsKind(err, utils.KindConflict) && attempt < tripUpdateAttempts {
				continue
			}
			return nil, err
		}

		s.cache.invalidate(ctx, s.featuredKeys()...)
		return updated.View(), nil
	}
}

func (s *tripService) DeleteTrip(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.tripRepo.Update(ctx, id, bson.M{"status": models.TripStatusCancelled}, nil); err != nil {
		return err
	}

	s.cache.invalidate(ctx, s.featuredKeys()...)
	return nil
}

func (s *tripService) AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) (*models.TripView, error) {
	if err := s.tripRepo.AddImage(ctx, id, image); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.invalidate(ctx, s.featuredKeys()...)
	return trip.View(), nil
}

func (s *tripService) requireDestination(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := utils.ParseObjectID(raw, "destination ID")
	if err != nil {
		return primitive.NilObjectID, err
	}

	exists, err := s.destinationRepo.Exists(ctx, id)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !exists {
		return primitive.NilObjectID, utils.NewNotFoundError("Destination not found")
	}
	return id, nil
}

func (s *tripService) featuredKeys() []string {
	return []string{fmt.Sprintf("%s:%d", cacheKeyFeaturedTrips, defaultFeaturedTrips)}
}

func validateDates(dates []models.AvailableDate) error {
	for i, date := range dates {
		if !date.ReturnDate.After(date.DepartureDate) {
			return utils.NewValidationError([]utils.FieldError{{
				Field:   fmt.Sprintf("availableDates[%d].returnDate", i),
				Message: "returnDate must be after departureDate",
			}})
		}
	}
	return nil
}

// applyTo copies the set fields onto trip and returns the stored field names
// it touched, derived fields included.
func (r *UpdateTripRequest) applyTo(trip *models.Trip) []string {
	var keys []string
	if r.PackageID != nil {
		trip.PackageID = r.PackageID
		keys = append(keys, "package_id")
	}
	if r.Name != nil && *r.Name != trip.Name {
		trip.Name = *r.Name
		trip.Slug = utils.Slugify(*r.Name)
		keys = append(keys, "name", "slug")
	}
	if r.Description != nil {
		trip.Description = *r.Description
		if r.ShortDescription == nil {
			trip.ShortDescription = ""
		}
		keys = append(keys, "description", "short_description")
	}
	if r.ShortDescription != nil {
		trip.ShortDescription = *r.ShortDescription
		keys = append(keys, "short_description")
	}
	if r.Duration != nil {
		trip.Duration = *r.Duration
		keys = append(keys, "duration")
	}
	if r.Price != nil {
		trip.Price = *r.Price
		keys = append(keys, "price")
	}
	if r.AvailableDates != nil {
		trip.AvailableDates = r.AvailableDates
		keys = append(keys, "available_dates")
	}
	if r.MaxCapacity != nil {
		trip.MaxCapacity = *r.MaxCapacity
		keys = append(keys, "max_capacity")
	}
	if r.MinTravelers != nil {
		trip.MinTravelers = *r.MinTravelers
		keys = append(keys, "min_travelers")
	}
	if r.Inclusions != nil {
		trip.Inclusions = r.Inclusions
		keys = append(keys, "inclusions")
	}
	if r.Exclusions != nil {
		trip.Exclusions = r.Exclusions
		keys = append(keys, "exclusions")
	}
	if r.Itinerary != nil {
		trip.Itinerary = r.Itinerary
		keys = append(keys, "itinerary")
	}
	if r.Guide != nil {
		trip.Guide = r.Guide
		keys = append(keys, "guide")
	}
	if r.DifficultyLevel != nil {
		trip.DifficultyLevel = *r.DifficultyLevel
		keys = append(keys, "difficulty_level")
	}
	if r.TripType != nil {
		trip.TripType = *r.TripType
		keys = append(keys, "trip_type")
	}
	if r.AgeRestrictions != nil {
		trip.AgeRestrictions = r.AgeRestrictions
		keys = append(keys, "age_restrictions")
	}
	if r.Images != nil {
		trip.Images = r.Images
		keys = append(keys, "images", "primary_image")
	}
	if r.Highlights != nil {
		trip.Highlights = r.Highlights
		keys = append(keys, "highlights")
	}
	if r.Requirements != nil {
		trip.Requirements = r.Requirements
		keys = append(keys, "requirements")
	}
	if r.CancellationPolicy != nil {
		trip.CancellationPolicy = *r.CancellationPolicy
		keys = append(keys, "cancellation_policy")
	}
	if r.Status != nil {
		trip.Status = *r.Status
		keys = append(keys, "status")
	}
	if r.IsFeatured != nil {
		trip.IsFeatured = *r.IsFeatured
		keys = append(keys, "is_featured")
	}
	if r.Tags != nil {
		trip.Tags = r.Tags
		keys = append(keys, "tags")
	}
	return keys
}

// tripFields reads the stored form of the named fields off trip. Fields the
// encoder omits come back as null.
func tripFields(trip *models.Trip, keys []string) (bson.M, error) {
	raw, err := bson.Marshal(trip)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trip: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode trip: %w", err)
	}

	fields := make(bson.M, len(keys))
	for _, key := range keys {
		fields[key] = doc[key]
	}
	return fields, nil
}
