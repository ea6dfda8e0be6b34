package services

import (
	"context"
	"testing"
	"time"

	"gbtravel/internal/models"
	"gbtravel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTripFixture(t *testing.T, capacity int) (TripService, *fakeTripRepo, *models.Trip) {
	t.Helper()
	trip := newTestTrip(capacity, 30)
	trips := newFakeTripRepo(trip)
	return NewTripService(trips, nil, nil, logger.NewNop()), trips, trip
}

func reserve(t *testing.T, trips *fakeTripRepo, trip *models.Trip, n int) {
	t.Helper()
	ok, err := trips.ReserveSpots(context.Background(), trip.ID, trip.AvailableDates[0].DepartureDate, n)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUpdateTrip_WritesOnlyEditedFields(t *testing.T) {
	service, trips, trip := newTripFixture(t, 10)
	ctx := context.Background()
	reserve(t, trips, trip, 4)
	require.NoError(t, trips.UpdateRating(ctx, trip.ID, models.Rating{Average: 4.5, Count: 2}))

	name := "Hunza and Skardu Explorer"
	price := models.Price{Amount: 150, Currency: "USD", PerPerson: true}
	view, err := service.UpdateTrip(ctx, trip.ID, &UpdateTripRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, name, view.Name)

	require.Len(t, trips.updates, 1)
	fields := trips.updates[0]
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "price")
	for _, key := range []string{"current_bookings", "rating", "available_dates", "max_capacity", "images"} {
		assert.NotContains(t, fields, key)
	}

	stored, err := trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.CurrentBookings)
	assert.Equal(t, 6, stored.AvailableDates[0].SpotsAvailable)
	assert.Equal(t, 4.5, stored.Rating.Average)
	assert.Equal(t, 150.0, stored.Price.Amount)
}

func TestUpdateTrip_RejectsCapacityBelowBookings(t *testing.T) {
	service, trips, trip := newTripFixture(t, 10)
	reserve(t, trips, trip, 6)

	five := 5
	_, err := service.UpdateTrip(context.Background(), trip.ID, &UpdateTripRequest{MaxCapacity: &five})
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))
	assert.Empty(t, trips.updates)

	six := 6
	view, err := service.UpdateTrip(context.Background(), trip.ID, &UpdateTripRequest{MaxCapacity: &six})
	require.NoError(t, err)
	assert.Equal(t, 6, view.MaxCapacity)
	assert.Equal(t, 0, view.SpotsRemaining)
}

func TestUpdateTrip_RechecksCapacityAfterConcurrentBooking(t *testing.T) {
	service, trips, trip := newTripFixture(t, 10)
	reserve(t, trips, trip, 4)

	calls := 0
	trips.beforeUpdate = func() {
		calls++
		if calls == 1 {
			reserve(t, trips, trip, 2)
		}
	}

	five := 5
	_, err := service.UpdateTrip(context.Background(), trip.ID, &UpdateTripRequest{MaxCapacity: &five})
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))
	assert.Contains(t, err.Error(), "(6)")

	stored, _ := trips.GetByID(context.Background(), trip.ID)
	assert.Equal(t, 10, stored.MaxCapacity)
	assert.Equal(t, 6, stored.CurrentBookings)
}

func TestUpdateTrip_DatesRetryAgainstFreshCounts(t *testing.T) {
	service, trips, trip := newTripFixture(t, 10)

	calls := 0
	trips.beforeUpdate = func() {
		calls++
		if calls == 1 {
			reserve(t, trips, trip, 3)
		}
	}

	departure := trip.AvailableDates[0].DepartureDate
	dates := []models.AvailableDate{
		trip.AvailableDates[0],
		{DepartureDate: departure.Add(14 * 24 * time.Hour), ReturnDate: departure.Add(19 * 24 * time.Hour), SpotsAvailable: 10, Capacity: 10},
	}
	view, err := service.UpdateTrip(context.Background(), trip.ID, &UpdateTripRequest{AvailableDates: dates})
	require.NoError(t, err)
	assert.Len(t, view.AvailableDates, 2)
	assert.Equal(t, 3, view.CurrentBookings)
	assert.Len(t, trips.updates, 2)
}

func TestDeleteTrip_OnlyChangesStatus(t *testing.T) {
	service, trips, trip := newTripFixture(t, 10)
	reserve(t, trips, trip, 2)

	require.NoError(t, service.DeleteTrip(context.Background(), trip.ID))
	require.Len(t, trips.updates, 1)
	assert.Equal(t, bson.M{"status": models.TripStatusCancelled}, trips.updates[0])

	stored, _ := trips.GetByID(context.Background(), trip.ID)
	assert.Equal(t, models.TripStatusCancelled, stored.Status)
	assert.Equal(t, 2, stored.CurrentBookings)
}

func TestAddImage_PrimaryDemotesPrevious(t *testing.T) {
	service, trips, trip := newTripFixture(t, 10)
	ctx := context.Background()
	reserve(t, trips, trip, 1)

	_, err := service.AddImage(ctx, trip.ID, models.Image{URL: "https://cdn.example/a.jpg", IsPrimary: true})
	require.NoError(t, err)
	view, err := service.AddImage(ctx, trip.ID, models.Image{URL: "https://cdn.example/b.jpg", IsPrimary: true})
	require.NoError(t, err)

	require.Len(t, view.Images, 2)
	assert.False(t, view.Images[0].IsPrimary)
	assert.True(t, view.Images[1].IsPrimary)
	assert.Equal(t, "https://cdn.example/b.jpg", view.PrimaryImage)
	assert.Equal(t, 1, view.CurrentBookings)
}
