package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingFixture struct {
	service  BookingService
	bookings *fakeBookingRepo
	trips    *fakeTripRepo
	users    *fakeUserRepo
	payments *fakePaymentRepo
	gateway  *fakeGateway
	notes    *fakeNotifications
	live     *fakeNotifier
	trip     *models.Trip
	customer Actor
}

func newBookingFixture(t *testing.T, trip *models.Trip) *bookingFixture {
	t.Helper()

	f := &bookingFixture{
		bookings: newFakeBookingRepo(),
		trips:    newFakeTripRepo(trip),
		users:    newFakeUserRepo(),
		payments: &fakePaymentRepo{},
		gateway:  newFakeGateway(),
		notes:    &fakeNotifications{},
		live:     &fakeNotifier{},
		trip:     trip,
	}

	user := &models.User{FullName: "Amina Khan", Email: "amina@example.com", Role: models.UserRoleCustomer, IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), user))
	f.customer = Actor{UserID: user.ID, Role: models.UserRoleCustomer}

	f.service = NewBookingService(f.bookings, f.trips, f.users, f.payments, f.gateway, f.notes, f.live,
		DirectRunner{}, "https://gbtravel.example", logger.NewNop())
	return f
}

func (f *bookingFixture) request(travelers int) *CreateBookingRequest {
	date := f.trip.AvailableDates[0]
	return &CreateBookingRequest{
		Trip:              TripRef(f.trip.ID.Hex()),
		SelectedDate:      models.SelectedDate{DepartureDate: date.DepartureDate, ReturnDate: date.ReturnDate},
		NumberOfTravelers: travelers,
		Travelers:         []models.Traveler{{FirstName: "Amina", LastName: "Khan"}},
		ContactInfo:       models.ContactInfo{Email: " Amina@Example.com ", Phone: "+923001234567"},
	}
}

// paidBooking stores a confirmed, charged booking for the fixture's trip and
// takes its spots.
func (f *bookingFixture) paidBooking(t *testing.T, travelers int, total float64) *models.Booking {
	t.Helper()
	date := f.trip.AvailableDates[0]
	reserved, err := f.trips.ReserveSpots(context.Background(), f.trip.ID, date.DepartureDate, travelers)
	require.NoError(t, err)
	require.True(t, reserved)

	return f.bookings.put(&models.Booking{
		ConfirmationCode:      utils.GenerateConfirmationCode(),
		User:                  f.customer.UserID,
		Trip:                  f.trip.ID,
		SelectedDate:          models.SelectedDate{DepartureDate: date.DepartureDate, ReturnDate: date.ReturnDate},
		NumberOfTravelers:     travelers,
		ContactInfo:           models.ContactInfo{Email: "amina@example.com"},
		Pricing:               models.Pricing{TotalPrice: total, Currency: "USD"},
		PaymentStatus:         models.PaymentStatusCompleted,
		BookingStatus:         models.BookingStatusConfirmed,
		StripeSessionID:       "cs_test_paid",
		StripePaymentIntentID: "pi_test_paid",
	})
}

func appErrorStatus(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	return appErr.StatusCode()
}

func TestCreateBooking_PricesAndReserves(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))

	response, err := f.service.CreateBooking(context.Background(), f.customer, f.request(2))
	require.NoError(t, err)
	booking := response.Booking

	assert.True(t, strings.HasPrefix(booking.ConfirmationCode, "GB-"))
	assert.Len(t, booking.ConfirmationCode, 11)
	assert.Equal(t, "amina@example.com", booking.ContactInfo.Email)
	assert.Equal(t, models.BookingStatusPending, booking.BookingStatus)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.Nil(t, response.CheckoutSession)

	// 2 x 100 + 10% tax + 25 service fee
	assert.Equal(t, 200.0, booking.Pricing.Subtotal)
	assert.Equal(t, 20.0, booking.Pricing.Taxes)
	assert.Equal(t, 245.0, booking.Pricing.TotalPrice)

	trip, err := f.trips.GetByID(context.Background(), f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, trip.CurrentBookings)
	assert.Equal(t, 8, trip.AvailableDates[0].SpotsAvailable)

	user, err := f.users.GetByID(context.Background(), f.customer.UserID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{booking.ID}, user.BookingHistory)

	assert.Equal(t, []primitive.ObjectID{f.trip.ID}, f.live.changed)
}

func TestCreateBooking_ByPackageID(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	request := f.request(1)
	request.Trip = TripRef("7")

	response, err := f.service.CreateBooking(context.Background(), f.customer, request)
	require.NoError(t, err)
	assert.Equal(t, f.trip.ID, response.Booking.Trip)
}

func TestCreateBooking_UnknownTrip(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))

	for _, ref := range []string{primitive.NewObjectID().Hex(), "999", "not-a-trip"} {
		request := f.request(1)
		request.Trip = TripRef(ref)
		_, err := f.service.CreateBooking(context.Background(), f.customer, request)
		require.Error(t, err, ref)
		assert.Equal(t, 404, appErrorStatus(t, err), ref)
	}
}

func TestCreateBooking_NeverOversells(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(3, 30))

	_, err := f.service.CreateBooking(context.Background(), f.customer, f.request(2))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(context.Background(), f.customer, f.request(2))
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))
	assert.Contains(t, err.Error(), "Only 1 spots available")

	trip, _ := f.trips.GetByID(context.Background(), f.trip.ID)
	assert.Equal(t, 2, trip.CurrentBookings)
	assert.Equal(t, 1, f.bookings.count())
}

func TestCreateBooking_RejectsUnknownDeparture(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	request := f.request(1)
	request.SelectedDate.DepartureDate = request.SelectedDate.DepartureDate.Add(24 * time.Hour)

	_, err := f.service.CreateBooking(context.Background(), f.customer, request)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Selected date is not available")
}

func TestCreateBooking_RejectsInactiveTrip(t *testing.T) {
	trip := newTestTrip(10, 30)
	trip.Status = models.TripStatusPaused
	f := newBookingFixture(t, trip)

	_, err := f.service.CreateBooking(context.Background(), f.customer, f.request(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available for booking")
}

func TestCreateBooking_RetriesConfirmationCodeCollision(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	f.bookings.codeCollisions = 1

	response, err := f.service.CreateBooking(context.Background(), f.customer, f.request(2))
	require.NoError(t, err)
	assert.NotEmpty(t, response.Booking.ConfirmationCode)
	assert.Equal(t, 2, f.bookings.inserts)

	// The failed attempt handed its spots back.
	trip, _ := f.trips.GetByID(context.Background(), f.trip.ID)
	assert.Equal(t, 2, trip.CurrentBookings)
}

func TestCreateBooking_PayNowOpensCheckout(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	request := f.request(1)
	request.PayNow = true

	response, err := f.service.CreateBooking(context.Background(), f.customer, request)
	require.NoError(t, err)
	require.NotNil(t, response.CheckoutSession)
	assert.Equal(t, models.PaymentStatusProcessing, response.Booking.PaymentStatus)

	stored, err := f.bookings.GetByID(context.Background(), response.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, response.CheckoutSession.SessionID, stored.StripeSessionID)
}

func TestCancelBooking_RefundFollowsPolicy(t *testing.T) {
	tests := []struct {
		name   string
		days   int
		refund float64
		status string
	}{
		{"ten days out", 10, 245, RefundOutcomeProcessed},
		{"five days out", 5, 122.5, RefundOutcomeProcessed},
		{"one day out", 1, 0, RefundOutcomeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t, newTestTrip(10, tt.days))
			booking := f.paidBooking(t, 2, 245)

			response, err := f.service.CancelBooking(context.Background(), f.customer, booking.ID, "Change of plans")
			require.NoError(t, err)

			assert.Equal(t, tt.refund, response.RefundAmount)
			assert.Equal(t, tt.status, response.RefundStatus)
			assert.Equal(t, models.BookingStatusCancelled, response.Booking.BookingStatus)

			trip, _ := f.trips.GetByID(context.Background(), f.trip.ID)
			assert.Equal(t, 0, trip.CurrentBookings)
			assert.Equal(t, 10, trip.AvailableDates[0].SpotsAvailable)

			assert.Len(t, f.notes.byTemplate(models.TemplateBookingCancellation), 1)

			if tt.refund > 0 {
				require.Len(t, f.gateway.refunds, 1)
				assert.Equal(t, tt.refund, f.gateway.refunds[0].Amount)
				assert.Equal(t, models.RefundStatusCompleted, response.Booking.Cancellation.RefundStatus)
				assert.Len(t, f.payments.payments, 1)
			} else {
				assert.Empty(t, f.gateway.refunds)
				assert.Equal(t, models.RefundStatusDenied, response.Booking.Cancellation.RefundStatus)
			}
		})
	}
}

func TestCancelBooking_FullRefundMarksRefunded(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 20))
	booking := f.paidBooking(t, 1, 135)

	response, err := f.service.CancelBooking(context.Background(), f.customer, booking.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, response.Booking.PaymentStatus)

	refunds := f.payments.ofType(models.PaymentTypeRefund)
	require.Len(t, refunds, 1)
	assert.Equal(t, "re_test", refunds[0].RefundDetails.StripeRefundID)
}

func TestCancelBooking_RefundFailureKeepsCancellation(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 20))
	f.gateway.refundErr = errors.New("card processor unavailable")
	booking := f.paidBooking(t, 2, 245)

	response, err := f.service.CancelBooking(context.Background(), f.customer, booking.ID, "")
	require.NoError(t, err)

	assert.Equal(t, RefundOutcomeFailed, response.RefundStatus)
	assert.Equal(t, models.BookingStatusCancelled, response.Booking.BookingStatus)
	assert.Equal(t, models.RefundStatusFailed, response.Booking.Cancellation.RefundStatus)
	assert.Empty(t, f.payments.payments)
}

func TestCancelBooking_UnpaidGetsNoRefund(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	created, err := f.service.CreateBooking(context.Background(), f.customer, f.request(2))
	require.NoError(t, err)

	response, err := f.service.CancelBooking(context.Background(), f.customer, created.Booking.ID, "")
	require.NoError(t, err)
	assert.Zero(t, response.RefundAmount)
	assert.Equal(t, RefundOutcomeNone, response.RefundStatus)
	assert.Empty(t, f.gateway.refunds)
}

func TestCancelBooking_Guards(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	booking := f.paidBooking(t, 1, 135)

	stranger := Actor{UserID: primitive.NewObjectID(), Role: models.UserRoleCustomer}
	_, err := f.service.CancelBooking(context.Background(), stranger, booking.ID, "")
	require.Error(t, err)
	assert.Equal(t, 403, appErrorStatus(t, err))

	admin := Actor{UserID: primitive.NewObjectID(), Role: models.UserRoleAdmin}
	_, err = f.service.CancelBooking(context.Background(), admin, booking.ID, "Operator cancelled")
	require.NoError(t, err)

	_, err = f.service.CancelBooking(context.Background(), f.customer, booking.ID, "")
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))
}

func TestGetByConfirmationCode_StrangerSeesSummary(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	booking := f.paidBooking(t, 2, 245)

	full, summary, err := f.service.GetByConfirmationCode(context.Background(), nil, strings.ToLower(booking.ConfirmationCode))
	require.NoError(t, err)
	assert.Nil(t, full)
	require.NotNil(t, summary)
	assert.Equal(t, "Hunza Valley Explorer", summary.TripName)
	assert.Equal(t, 2, summary.NumberOfTravelers)

	full, summary, err = f.service.GetByConfirmationCode(context.Background(), &f.customer, booking.ConfirmationCode)
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, booking.ID, full.ID)
}

func TestUpdateStatus_RefusesCancellation(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))

	_, err := f.service.UpdateStatus(context.Background(), primitive.NewObjectID(), &UpdateBookingStatusRequest{
		BookingStatus: models.BookingStatusCancelled,
	})
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))
}

func TestUpdateStatus_CancelledBookingStaysCancelled(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))
	ctx := context.Background()

	first, err := f.service.CreateBooking(ctx, f.customer, f.request(10))
	require.NoError(t, err)
	_, err = f.service.CancelBooking(ctx, f.customer, first.Booking.ID, "")
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, first.Booking.ID, &UpdateBookingStatusRequest{BookingStatus: models.BookingStatusConfirmed})
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))
	assert.Equal(t, "Cancelled bookings cannot be reinstated", err.Error())

	stored, err := f.bookings.GetByID(ctx, first.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, stored.BookingStatus)

	_, err = f.service.CreateBooking(ctx, f.customer, f.request(10))
	require.NoError(t, err)
	trip, _ := f.trips.GetByID(ctx, f.trip.ID)
	assert.Equal(t, 10, trip.CurrentBookings)
	assert.Equal(t, 0, trip.AvailableDates[0].SpotsAvailable)
}

func TestUpdateStatus_ConfirmsPendingBooking(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))

	created, err := f.service.CreateBooking(context.Background(), f.customer, f.request(2))
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(context.Background(), created.Booking.ID, &UpdateBookingStatusRequest{
		BookingStatus: models.BookingStatusConfirmed,
		InternalNotes: "Paid at the office",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, updated.BookingStatus)
	assert.Equal(t, "Paid at the office", updated.InternalNotes)

	_, err = f.service.UpdateStatus(context.Background(), primitive.NewObjectID(), &UpdateBookingStatusRequest{BookingStatus: models.BookingStatusConfirmed})
	require.Error(t, err)
	assert.Equal(t, 404, appErrorStatus(t, err))
}

func TestCreateBooking_ReturnDateComesFromDeparture(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))

	request := f.request(1)
	request.SelectedDate.ReturnDate = request.SelectedDate.DepartureDate.Add(90 * 24 * time.Hour)

	created, err := f.service.CreateBooking(context.Background(), f.customer, request)
	require.NoError(t, err)
	assert.True(t, created.Booking.SelectedDate.ReturnDate.Equal(f.trip.AvailableDates[0].ReturnDate))
}

func TestGetTicket(t *testing.T) {
	f := newBookingFixture(t, newTestTrip(10, 30))

	pending, err := f.service.CreateBooking(context.Background(), f.customer, f.request(1))
	require.NoError(t, err)
	_, err = f.service.GetTicket(context.Background(), f.customer, pending.Booking.ID)
	require.Error(t, err)
	assert.Equal(t, 400, appErrorStatus(t, err))

	confirmed := f.paidBooking(t, 1, 135)
	ticket, err := f.service.GetTicket(context.Background(), f.customer, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, confirmed.ConfirmationCode, ticket.ConfirmationCode)
	assert.NotEmpty(t, ticket.Image)
}

func TestTripRef_AcceptsStringOrNumber(t *testing.T) {
	var ref TripRef
	require.NoError(t, ref.UnmarshalJSON([]byte(`12`)))
	assert.Equal(t, TripRef("12"), ref)

	require.NoError(t, ref.UnmarshalJSON([]byte(`" 65f0c0ffee00000000000001 "`)))
	assert.Equal(t, TripRef("65f0c0ffee00000000000001"), ref)

	assert.Error(t, ref.UnmarshalJSON([]byte(`{}`)))
}

func TestCalculateRefund(t *testing.T) {
	tests := []struct {
		policy models.CancellationPolicy
		days   int
		want   float64
	}{
		{models.PolicyFlexible, 1, 100},
		{models.PolicyFlexible, 0, 0},
		{models.PolicyModerate, 7, 100},
		{models.PolicyModerate, 3, 50},
		{models.PolicyModerate, 2, 0},
		{models.PolicyStrict, 14, 100},
		{models.PolicyStrict, 7, 50},
		{models.PolicyStrict, 6, 0},
		{models.PolicyNonRefundable, 60, 0},
		{"unknown", 5, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateRefund(tt.days, 100, tt.policy), "%s at %d days", tt.policy, tt.days)
	}
}

func TestCalculateRefund_ModerateOnLargeTotal(t *testing.T) {
	for days, want := range map[int]float64{10: 10000, 5: 5000, 1: 0} {
		assert.Equal(t, want, CalculateRefund(days, 10000, models.PolicyModerate), "%d days", days)
	}
}

func TestDaysUntilDeparture(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysUntilDeparture(now.Add(25*time.Hour), now))
	assert.Equal(t, 1, DaysUntilDeparture(now.Add(time.Hour), now))
	assert.Equal(t, 0, DaysUntilDeparture(now, now))
}
