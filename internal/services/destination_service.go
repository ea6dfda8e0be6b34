package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultFeaturedDestinations = 6
	defaultPopularDestinations  = 8
	destinationTripsLimit       = 6
)

type DestinationService interface {
	ListDestinations(ctx context.Context, filter *interfaces.DestinationFilter, params *utils.PaginationParams) ([]*models.Destination, int64, error)
	SearchDestinations(ctx context.Context, filter *interfaces.DestinationFilter, params *utils.PaginationParams) ([]*models.Destination, int64, error)
	GetFeaturedDestinations(ctx context.Context, limit int64) ([]*models.Destination, error)
	GetPopularDestinations(ctx context.Context, limit int64) ([]*models.Destination, error)
	GetCountries(ctx context.Context) ([]*models.CountrySummary, error)
	// GetDestination accepts an ObjectID or a slug and counts the view.
	GetDestination(ctx context.Context, idOrSlug string) (*DestinationDetail, error)

	// Admin
	CreateDestination(ctx context.Context, actor Actor, request *DestinationRequest) (*models.Destination, error)
	UpdateDestination(ctx context.Context, id primitive.ObjectID, request *UpdateDestinationRequest) (*models.Destination, error)
	DeleteDestination(ctx context.Context, id primitive.ObjectID) error
	AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) (*models.Destination, error)
}

type DestinationRequest struct {
	Name              string                  `json:"name" validate:"required,max=100"`
	Description       string                  `json:"description" validate:"required,min=50,max=2000"`
	ShortDescription  string                  `json:"shortDescription" validate:"max=200"`
	Country           string                  `json:"country" validate:"required"`
	Region            string                  `json:"region"`
	City              string                  `json:"city"`
	Coordinates       *models.Coordinates     `json:"coordinates"`
	MainAttractions   []models.Attraction     `json:"mainAttractions"`
	BestTimeToVisit   *models.BestTimeToVisit `json:"bestTimeToVisit"`
	Climate           *models.Climate         `json:"climate"`
	Images            []models.Image          `json:"images" validate:"omitempty,dive"`
	AverageCostPerDay *models.CostPerDay      `json:"averageCostPerDay"`
	VisaRequirements  string                  `json:"visaRequirements"`
	TravelTips        []string                `json:"travelTips"`
	Languages         []string                `json:"languages"`
	Currency          *models.LocalCurrency   `json:"currency"`
	Timezone          string                  `json:"timezone"`
	Tags              []string                `json:"tags"`
	IsFeatured        bool                    `json:"isFeatured"`
}

// UpdateDestinationRequest is a partial update: nil fields are left unchanged.
type UpdateDestinationRequest struct {
	Name              *string                 `json:"name" validate:"omitempty,max=100"`
	Description       *string                 `json:"description" validate:"omitempty,min=50,max=2000"`
	ShortDescription  *string                 `json:"shortDescription" validate:"omitempty,max=200"`
	Country           *string                 `json:"country"`
	Region            *string                 `json:"region"`
	City              *string                 `json:"city"`
	Coordinates       *models.Coordinates     `json:"coordinates"`
	MainAttractions   []models.Attraction     `json:"mainAttractions"`
	BestTimeToVisit   *models.BestTimeToVisit `json:"bestTimeToVisit"`
	Climate           *models.Climate         `json:"climate"`
	Images            []models.Image          `json:"images" validate:"omitempty,dive"`
	AverageCostPerDay *models.CostPerDay      `json:"averageCostPerDay"`
	VisaRequirements  *string                 `json:"visaRequirements"`
	TravelTips        []string                `json:"travelTips"`
	Languages         []string                `json:"languages"`
	Currency          *models.LocalCurrency   `json:"currency"`
	Timezone          *string                 `json:"timezone"`
	Tags              []string                `json:"tags"`
	IsFeatured        *bool                   `json:"isFeatured"`
	IsActive          *bool                   `json:"isActive"`
}

type DestinationDetail struct {
	Destination *models.Destination `json:"destination"`
	Trips       []*models.TripView  `json:"trips"`
}

type destinationService struct {
	destinationRepo interfaces.DestinationRepository
	tripRepo        interfaces.TripRepository
	geocoder        maps.Geocoder
	cache           *catalogCache
	logger          *logger.Logger
}

// NewDestinationService builds the catalog service. geocoder and cache may be nil.
func NewDestinationService(
	destinationRepo interfaces.DestinationRepository,
	tripRepo interfaces.TripRepository,
	geocoder maps.Geocoder,
	cache CacheService,
	logger *logger.Logger,
) DestinationService {
	return &destinationService{
		destinationRepo: destinationRepo,
		tripRepo:        tripRepo,
		geocoder:        geocoder,
		cache:           newCatalogCache(cache, logger),
		logger:          logger,
	}
}

func (s *destinationService) ListDestinations(ctx context.Context, filter *interfaces.DestinationFilter, params *utils.PaginationParams) ([]*models.Destination, int64, error) {
	return s.destinationRepo.List(ctx, filter, params)
}

func (s *destinationService) SearchDestinations(ctx context.Context, filter *interfaces.DestinationFilter, params *utils.PaginationParams) ([]*models.Destination, int64, error) {
	if filter == nil {
		filter = &interfaces.DestinationFilter{}
	}
	if filter.Sort == "" && filter.Search == "" {
		filter.Sort = "popular"
	}
	return s.destinationRepo.List(ctx, filter, params)
}

func (s *destinationService) GetFeaturedDestinations(ctx context.Context, limit int64) ([]*models.Destination, error) {
	if limit <= 0 {
		limit = defaultFeaturedDestinations
	}
	key := fmt.Sprintf("%s:%d", cacheKeyFeaturedDestinations, limit)
	return cached(ctx, s.cache, key, func() ([]*models.Destination, error) {
		return s.destinationRepo.Featured(ctx, limit)
	})
}

func (s *destinationService) GetPopularDestinations(ctx context.Context, limit int64) ([]*models.Destination, error) {
	if limit <= 0 {
		limit = defaultPopularDestinations
	}
	key := fmt.Sprintf("%s:%d", cacheKeyPopularDestinations, limit)
	return cached(ctx, s.cache, key, func() ([]*models.Destination, error) {
		return s.destinationRepo.Popular(ctx, limit)
	})
}

func (s *destinationService) GetCountries(ctx context.Context) ([]*models.CountrySummary, error) {
	return cached(ctx, s.cache, cacheKeyCountries, func() ([]*models.CountrySummary, error) {
		return s.destinationRepo.Countries(ctx)
	})
}

func (s *destinationService) GetDestination(ctx context.Context, idOrSlug string) (*DestinationDetail, error) {
	var (
		destination *models.Destination
		err         error
	)
	if id, parseErr := primitive.ObjectIDFromHex(idOrSlug); parseErr == nil {
		destination, err = s.destinationRepo.GetByID(ctx, id)
	} else {
		destination, err = s.destinationRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if !destination.IsActive {
		return nil, utils.NewNotFoundError("Destination not found")
	}

	if err := s.destinationRepo.IncrementPopularity(ctx, destination.ID); err != nil {
		s.logger.WithError(err).WithField("destination_id", destination.ID.Hex()).Warn("Failed to increment popularity")
	} else {
		destination.Popularity++
	}

	trips, err := s.tripRepo.ListByDestination(ctx, destination.ID, destinationTripsLimit)
	if err != nil {
		return nil, err
	}

	return &DestinationDetail{Destination: destination, Trips: models.TripViews(trips)}, nil
}

func (s *destinationService) CreateDestination(ctx context.Context, actor Actor, request *DestinationRequest) (*models.Destination, error) {
	destination := &models.Destination{
		Name:              request.Name,
		Slug:              utils.Slugify(request.Name),
		Description:       request.Description,
		ShortDescription:  request.ShortDescription,
		Country:           request.Country,
		Region:            request.Region,
		City:              request.City,
		Coordinates:       request.Coordinates,
		MainAttractions:   request.MainAttractions,
		BestTimeToVisit:   request.BestTimeToVisit,
		Climate:           request.Climate,
		Images:            request.Images,
		AverageCostPerDay: request.AverageCostPerDay,
		VisaRequirements:  request.VisaRequirements,
		TravelTips:        request.TravelTips,
		Languages:         request.Languages,
		Currency:          request.Currency,
		Timezone:          request.Timezone,
		Tags:              request.Tags,
		IsFeatured:        request.IsFeatured,
		IsActive:          true,
		CreatedBy:         actor.UserID,
	}

	if destination.Coordinates == nil {
		destination.Coordinates = s.geocode(ctx, destination)
	}

	if err := s.destinationRepo.Create(ctx, destination); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.LogUserAction(actor.UserID, "destination_created", map[string]interface{}{
		"destination_id": destination.ID.Hex(),
	})
	return destination, nil
}

func (s *destinationService) UpdateDestination(ctx context.Context, id primitive.ObjectID, request *UpdateDestinationRequest) (*models.Destination, error) {
	destination, err := s.destinationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	request.applyTo(destination)

	if err := s.destinationRepo.Update(ctx, destination); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return destination, nil
}

func (s *destinationService) DeleteDestination(ctx context.Context, id primitive.ObjectID) error {
	destination, err := s.destinationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	destination.IsActive = false
	if err := s.destinationRepo.Update(ctx, destination); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *destinationService) AddImage(ctx context.Context, id primitive.ObjectID, image models.Image) (*models.Destination, error) {
	if err := s.destinationRepo.AddImage(ctx, id, image); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.destinationRepo.GetByID(ctx, id)
}

// geocode resolves coordinates from the destination's place names. Failures
// only leave the coordinates empty.
func (s *destinationService) geocode(ctx context.Context, destination *models.Destination) *models.Coordinates {
	if s.geocoder == nil {
		return nil
	}

	parts := make([]string, 0, 4)
	for _, p := range []string{destination.Name, destination.City, destination.Region, destination.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.geocoder.Geocode(ctx, strings.Join(parts, ", "))
	if err != nil {
		if !errors.Is(err, maps.ErrNoResults) {
			s.logger.WithError(err).WithField("destination", destination.Name).Warn("Geocoding failed")
		}
		return nil
	}

	return &models.Coordinates{
		Latitude:  result.Coordinates.Latitude,
		Longitude: result.Coordinates.Longitude,
	}
}

func (s *destinationService) invalidate(ctx context.Context) {
	s.cache.invalidate(ctx,
		fmt.Sprintf("%s:%d", cacheKeyFeaturedDestinations, defaultFeaturedDestinations),
		fmt.Sprintf("%s:%d", cacheKeyPopularDestinations, defaultPopularDestinations),
		cacheKeyCountries,
	)
}

func (r *UpdateDestinationRequest) applyTo(d *models.Destination) {
	if r.Name != nil && *r.Name != d.Name {
		d.Name = *r.Name
		d.Slug = utils.Slugify(*r.Name)
	}
	if r.Description != nil {
		d.Description = *r.Description
		if r.ShortDescription == nil {
			d.ShortDescription = ""
		}
	}
	if r.ShortDescription != nil {
		d.ShortDescription = *r.ShortDescription
	}
	if r.Country != nil {
		d.Country = *r.Country
	}
	if r.Region != nil {
		d.Region = *r.Region
	}
	if r.City != nil {
		d.City = *r.City
	}
	if r.Coordinates != nil {
		d.Coordinates = r.Coordinates
	}
	if r.MainAttractions != nil {
		d.MainAttractions = r.MainAttractions
	}
	if r.BestTimeToVisit != nil {
		d.BestTimeToVisit = r.BestTimeToVisit
	}
	if r.Climate != nil {
		d.Climate = r.Climate
	}
	if r.Images != nil {
		d.Images = r.Images
	}
	if r.AverageCostPerDay != nil {
		d.AverageCostPerDay = r.AverageCostPerDay
	}
	if r.VisaRequirements != nil {
		d.VisaRequirements = *r.VisaRequirements
	}
	if r.TravelTips != nil {
		d.TravelTips = r.TravelTips
	}
	if r.Languages != nil {
		d.Languages = r.Languages
	}
	if r.Currency != nil {
		d.Currency = r.Currency
	}
	if r.Timezone != nil {
		d.Timezone = *r.Timezone
	}
	if r.Tags != nil {
		d.Tags = r.Tags
	}
	if r.IsFeatured != nil {
		d.IsFeatured = *r.IsFeatured
	}
	if r.IsActive != nil {
		d.IsActive = *r.IsActive
	}
}
