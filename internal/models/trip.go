package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripStatus string
type CancellationPolicy string
type DifficultyLevel string
type TripType string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusActive    TripStatus = "active"
	TripStatusPaused    TripStatus = "paused"
	TripStatusSoldOut   TripStatus = "sold-out"
	TripStatusCancelled TripStatus = "cancelled"

	PolicyFlexible      CancellationPolicy = "flexible"
	PolicyModerate      CancellationPolicy = "moderate"
	PolicyStrict        CancellationPolicy = "strict"
	PolicyNonRefundable CancellationPolicy = "non-refundable"

	DifficultyEasy        DifficultyLevel = "easy"
	DifficultyModerate    DifficultyLevel = "moderate"
	DifficultyChallenging DifficultyLevel = "challenging"
	DifficultyDifficult   DifficultyLevel = "difficult"

	TripTypeAdventure  TripType = "adventure"
	TripTypeCultural   TripType = "cultural"
	TripTypeRelaxation TripType = "relaxation"
	TripTypeWildlife   TripType = "wildlife"
	TripTypeBeach      TripType = "beach"
	TripTypeMountain   TripType = "mountain"
	TripTypeCity       TripType = "city"
	TripTypeCruise     TripType = "cruise"
	TripTypeOther      TripType = "other"
)

const (
	AvailabilityAvailable  = "available"
	AvailabilityAlmostFull = "almost-full"
	AvailabilitySoldOut    = "sold-out"
)

type Duration struct {
	Days   int `json:"days" bson:"days" validate:"required,min=1"`
	Nights int `json:"nights" bson:"nights" validate:"min=0"`
}

type Price struct {
	Amount             float64 `json:"amount" bson:"amount" validate:"required,gt=0"`
	Currency           string  `json:"currency" bson:"currency" validate:"omitempty,currency_code"`
	PerPerson          bool    `json:"perPerson" bson:"per_person"`
	OriginalPrice      float64 `json:"originalPrice,omitempty" bson:"original_price,omitempty" validate:"omitempty,gt=0"`
	DiscountPercentage int     `json:"discountPercentage,omitempty" bson:"discount_percentage,omitempty"`
}

type AvailableDate struct {
	DepartureDate  time.Time `json:"departureDate" bson:"departure_date" validate:"required"`
	ReturnDate     time.Time `json:"returnDate" bson:"return_date" validate:"required,gtfield=DepartureDate"`
	SpotsAvailable int       `json:"spotsAvailable" bson:"spots_available" validate:"min=0"`
	Capacity       int       `json:"capacity" bson:"capacity"`
	PriceModifier  float64   `json:"priceModifier" bson:"price_modifier"`
}

type Meals struct {
	Breakfast bool `json:"breakfast" bson:"breakfast"`
	Lunch     bool `json:"lunch" bson:"lunch"`
	Dinner    bool `json:"dinner" bson:"dinner"`
}

type ItineraryDay struct {
	Day           int      `json:"day" bson:"day" validate:"required,min=1"`
	Title         string   `json:"title" bson:"title" validate:"required"`
	Description   string   `json:"description,omitempty" bson:"description,omitempty"`
	Activities    []string `json:"activities,omitempty" bson:"activities,omitempty"`
	Meals         Meals    `json:"meals" bson:"meals"`
	Accommodation string   `json:"accommodation,omitempty" bson:"accommodation,omitempty"`
}

type Guide struct {
	Name      string   `json:"name,omitempty" bson:"name,omitempty"`
	Bio       string   `json:"bio,omitempty" bson:"bio,omitempty"`
	Photo     string   `json:"photo,omitempty" bson:"photo,omitempty"`
	Languages []string `json:"languages,omitempty" bson:"languages,omitempty"`
}

type AgeRestrictions struct {
	Min int `json:"min" bson:"min"`
	Max int `json:"max" bson:"max"`
}

type Trip struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PackageID          *int               `json:"packageId,omitempty" bson:"package_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Slug               string             `json:"slug" bson:"slug"`
	Description        string             `json:"description" bson:"description"`
	ShortDescription   string             `json:"shortDescription" bson:"short_description"`
	Destination        primitive.ObjectID `json:"destination" bson:"destination"`
	Duration           Duration           `json:"duration" bson:"duration"`
	Price              Price              `json:"price" bson:"price"`
	AvailableDates     []AvailableDate    `json:"availableDates" bson:"available_dates"`
	MaxCapacity        int                `json:"maxCapacity" bson:"max_capacity"`
	MinTravelers       int                `json:"minTravelers" bson:"min_travelers"`
	CurrentBookings    int                `json:"currentBookings" bson:"current_bookings"`
	Inclusions         []string           `json:"inclusions" bson:"inclusions"`
	Exclusions         []string           `json:"exclusions" bson:"exclusions"`
	Itinerary          []ItineraryDay     `json:"itinerary" bson:"itinerary"`
	Guide              *Guide             `json:"guide,omitempty" bson:"guide,omitempty"`
	DifficultyLevel    DifficultyLevel    `json:"difficultyLevel" bson:"difficulty_level"`
	TripType           TripType           `json:"tripType" bson:"trip_type"`
	AgeRestrictions    *AgeRestrictions   `json:"ageRestrictions,omitempty" bson:"age_restrictions,omitempty"`
	Images             []Image            `json:"images" bson:"images"`
	PrimaryImage       string             `json:"primaryImage,omitempty" bson:"primary_image,omitempty"`
	Highlights         []string           `json:"highlights" bson:"highlights"`
	Requirements       []string           `json:"requirements,omitempty" bson:"requirements,omitempty"`
	CancellationPolicy CancellationPolicy `json:"cancellationPolicy" bson:"cancellation_policy"`
	Rating             Rating             `json:"rating" bson:"rating"`
	Status             TripStatus         `json:"status" bson:"status"`
	IsFeatured         bool               `json:"isFeatured" bson:"is_featured"`
	Tags               []string           `json:"tags" bson:"tags"`
	CreatedBy          primitive.ObjectID `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updated_at"`
}

const tripShortDescriptionLen = 297

func (t *Trip) SpotsRemaining() int {
	if left := t.MaxCapacity - t.CurrentBookings; left > 0 {
		return left
	}
	return 0
}

func (t *Trip) AvailabilityStatus() string {
	if t.SpotsRemaining() == 0 {
		return AvailabilitySoldOut
	}
	if t.MaxCapacity > 0 && float64(t.CurrentBookings)/float64(t.MaxCapacity) >= 0.8 {
		return AvailabilityAlmostFull
	}
	return AvailabilityAvailable
}

// FindDate returns the available date departing exactly at departure.
func (t *Trip) FindDate(departure time.Time) (*AvailableDate, int) {
	for i := range t.AvailableDates {
		if SameInstant(t.AvailableDates[i].DepartureDate, departure) {
			return &t.AvailableDates[i], i
		}
	}
	return nil, -1
}

// Normalize derives slug-independent fields before a save.
func (t *Trip) Normalize() {
	if t.ShortDescription == "" && t.Description != "" {
		t.ShortDescription = Truncate(t.Description, tripShortDescriptionLen)
	}
	t.PrimaryImage = PrimaryImageURL(t.Images)
	if t.Price.Currency == "" {
		t.Price.Currency = "USD"
	}
	if t.Price.OriginalPrice > t.Price.Amount {
		t.Price.DiscountPercentage = int(math.Round((t.Price.OriginalPrice - t.Price.Amount) / t.Price.OriginalPrice * 100))
	} else {
		t.Price.DiscountPercentage = 0
	}
	if t.MinTravelers == 0 {
		t.MinTravelers = 1
	}
	if t.CancellationPolicy == "" {
		t.CancellationPolicy = PolicyModerate
	}
	if t.Status == "" {
		t.Status = TripStatusActive
	}
	if t.DifficultyLevel == "" {
		t.DifficultyLevel = DifficultyModerate
	}
	if t.TripType == "" {
		t.TripType = TripTypeOther
	}
	for i := range t.AvailableDates {
		if t.AvailableDates[i].Capacity < t.AvailableDates[i].SpotsAvailable {
			t.AvailableDates[i].Capacity = t.AvailableDates[i].SpotsAvailable
		}
	}
	if t.AvailableDates == nil {
		t.AvailableDates = []AvailableDate{}
	}
	if t.Images == nil {
		t.Images = []Image{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
}

// TripView adds the computed availability fields to a trip.
type TripView struct {
	*Trip
	SpotsRemaining     int    `json:"spotsRemaining"`
	AvailabilityStatus string `json:"availabilityStatus"`
}

func (t *Trip) View() *TripView {
	return &TripView{
		Trip:               t,
		SpotsRemaining:     t.SpotsRemaining(),
		AvailabilityStatus: t.AvailabilityStatus(),
	}
}

func TripViews(trips []*Trip) []*TripView {
	views := make([]*TripView, len(trips))
	for i, t := range trips {
		views[i] = t.View()
	}
	return views
}
