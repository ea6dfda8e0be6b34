package services

import (
	"context"
	"time"

	"gbtravel/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeAvailability = "availability"
	liveRefreshTimeout      = 5 * time.Second
)

// AvailabilityNotifier is told whenever a trip's spot counts change.
type AvailabilityNotifier interface {
	TripAvailabilityChanged(tripID primitive.ObjectID)
}

type roomPublisher interface {
	Subscribers(room string) int
	Publish(room, messageType string, data interface{}) int
}

// LiveAvailability pushes fresh availability to websocket subscribers of a trip.
type LiveAvailability struct {
	hub    roomPublisher
	trips  TripService
	logger *logger.Logger
}

func NewLiveAvailability(hub roomPublisher, trips TripService, log *logger.Logger) *LiveAvailability {
	return &LiveAvailability{hub: hub, trips: trips, logger: log}
}

func TripRoom(tripID primitive.ObjectID) string {
	return "trip:" + tripID.Hex()
}

// TripAvailabilityChanged returns immediately; the refresh runs in the background
// and is skipped when nobody is watching the trip.
func (l *LiveAvailability) TripAvailabilityChanged(tripID primitive.ObjectID) {
	if l.hub.Subscribers(TripRoom(tripID)) == 0 {
		return
	}
	go l.Refresh(tripID)
}

// Refresh loads the trip's availability and publishes it to its room.
func (l *LiveAvailability) Refresh(tripID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), liveRefreshTimeout)
	defer cancel()

	availability, err := l.trips.GetAvailability(ctx, tripID)
	if err != nil {
		l.logger.WithError(err).WithField("trip_id", tripID.Hex()).Warn("Failed to refresh live availability")
		return
	}
	l.hub.Publish(TripRoom(tripID), MessageTypeAvailability, availability)
}
