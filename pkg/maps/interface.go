package maps

import (
	"context"
	"errors"
)

var ErrNoResults = errors.New("no geocoding results")

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodeResult, error)
}

type GeocodeResult struct {
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"formatted_address"`
	Coordinates Location `json:"geometry"`
	Types       []string `json:"types"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
