package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Attraction struct {
	Name        string `json:"name" bson:"name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Type        string `json:"type,omitempty" bson:"type,omitempty"`
}

type BestTimeToVisit struct {
	Months      []string `json:"months,omitempty" bson:"months,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
}

type Climate struct {
	Type               string   `json:"type,omitempty" bson:"type,omitempty"`
	AverageTemperature *Seasons `json:"averageTemperature,omitempty" bson:"average_temperature,omitempty"`
	RainySeasons       []string `json:"rainySeasons,omitempty" bson:"rainy_seasons,omitempty"`
}

type Seasons struct {
	Summer float64 `json:"summer" bson:"summer"`
	Winter float64 `json:"winter" bson:"winter"`
}

type CostPerDay struct {
	Budget   float64 `json:"budget" bson:"budget"`
	MidRange float64 `json:"midRange" bson:"mid_range"`
	Luxury   float64 `json:"luxury" bson:"luxury"`
	Currency string  `json:"currency" bson:"currency"`
}

type LocalCurrency struct {
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
	Code   string `json:"code,omitempty" bson:"code,omitempty"`
	Symbol string `json:"symbol,omitempty" bson:"symbol,omitempty"`
}

type Destination struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name"`
	Slug              string             `json:"slug" bson:"slug"`
	Description       string             `json:"description" bson:"description"`
	ShortDescription  string             `json:"shortDescription" bson:"short_description"`
	Country           string             `json:"country" bson:"country"`
	Region            string             `json:"region,omitempty" bson:"region,omitempty"`
	City              string             `json:"city,omitempty" bson:"city,omitempty"`
	Coordinates       *Coordinates       `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	MainAttractions   []Attraction       `json:"mainAttractions,omitempty" bson:"main_attractions,omitempty"`
	BestTimeToVisit   *BestTimeToVisit   `json:"bestTimeToVisit,omitempty" bson:"best_time_to_visit,omitempty"`
	Climate           *Climate           `json:"climate,omitempty" bson:"climate,omitempty"`
	Images            []Image            `json:"images" bson:"images"`
	PrimaryImage      string             `json:"primaryImage,omitempty" bson:"primary_image,omitempty"`
	AverageCostPerDay *CostPerDay        `json:"averageCostPerDay,omitempty" bson:"average_cost_per_day,omitempty"`
	VisaRequirements  string             `json:"visaRequirements,omitempty" bson:"visa_requirements,omitempty"`
	TravelTips        []string           `json:"travelTips,omitempty" bson:"travel_tips,omitempty"`
	Languages         []string           `json:"languages,omitempty" bson:"languages,omitempty"`
	Currency          *LocalCurrency     `json:"currency,omitempty" bson:"currency,omitempty"`
	Timezone          string             `json:"timezone,omitempty" bson:"timezone,omitempty"`
	Popularity        int64              `json:"popularity" bson:"popularity"`
	Rating            Rating             `json:"rating" bson:"rating"`
	Tags              []string           `json:"tags" bson:"tags"`
	IsFeatured        bool               `json:"isFeatured" bson:"is_featured"`
	IsActive          bool               `json:"isActive" bson:"is_active"`
	CreatedBy         primitive.ObjectID `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updated_at"`
}

const destinationShortDescriptionLen = 197

// Normalize refreshes the fields derived from others before a save.
func (d *Destination) Normalize() {
	if d.ShortDescription == "" && d.Description != "" {
		d.ShortDescription = Truncate(d.Description, destinationShortDescriptionLen)
	}
	d.PrimaryImage = PrimaryImageURL(d.Images)
	if d.Images == nil {
		d.Images = []Image{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
}

type CountrySummary struct {
	Country string `json:"country" bson:"_id"`
	Count   int    `json:"count" bson:"count"`
	Image   string `json:"image,omitempty" bson:"image,omitempty"`
}
