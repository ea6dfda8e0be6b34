package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const confirmationCodeAttempts = 3

type BookingService interface {
	CreateBooking(ctx context.Context, actor Actor, request *CreateBookingRequest) (*CreateBookingResponse, error)
	GetMyBookings(ctx context.Context, userID primitive.ObjectID, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetBooking(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Booking, error)
	// GetByConfirmationCode returns the full booking to its owner or an admin
	// and a summary to anyone else. actor may be nil.
	GetByConfirmationCode(ctx context.Context, actor *Actor, code string) (*models.Booking, *models.BookingSummary, error)
	CancelBooking(ctx context.Context, actor Actor, id primitive.ObjectID, reason string) (*CancelBookingResponse, error)
	GetTicket(ctx context.Context, actor Actor, id primitive.ObjectID) (*Ticket, error)

	// Admin
	ListBookings(ctx context.Context, filter *interfaces.BookingFilter, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetStats(ctx context.Context) (*models.BookingStats, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, request *UpdateBookingStatusRequest) (*models.Booking, error)
}

// TripRef identifies a trip by ObjectID hex or by its integer package id.
// Both JSON strings and numbers are accepted.
type TripRef string

func (r *TripRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = TripRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("trip must be an id or package number")
	}
	*r = TripRef(n.String())
	return nil
}

type CreateBookingRequest struct {
	Trip              TripRef             `json:"trip" validate:"required"`
	SelectedDate      models.SelectedDate `json:"selectedDate" validate:"required"`
	NumberOfTravelers int                 `json:"numberOfTravelers" validate:"required,min=1,max=50"`
	Travelers         []models.Traveler   `json:"travelers" validate:"omitempty,dive"`
	ContactInfo       models.ContactInfo  `json:"contactInfo" validate:"required"`
	BillingAddress    *models.Address     `json:"billingAddress"`
	AddOns            []models.AddOn      `json:"addOns" validate:"omitempty,dive"`
	SpecialRequests   string              `json:"specialRequests" validate:"max=1000"`
	PayNow            bool                `json:"payNow"`
}

type UpdateBookingStatusRequest struct {
	BookingStatus models.BookingStatus `json:"bookingStatus" validate:"required,oneof=pending confirmed cancelled completed no-show"`
	InternalNotes string               `json:"internalNotes" validate:"max=2000"`
}

type CheckoutSessionInfo struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type CreateBookingResponse struct {
	Booking         *models.Booking      `json:"booking"`
	CheckoutSession *CheckoutSessionInfo `json:"checkoutSession"`
}

const (
	RefundOutcomeProcessed = "processed"
	RefundOutcomeNone      = "no-refund"
	RefundOutcomeFailed    = "failed"
)

type CancelBookingResponse struct {
	Booking      *models.Booking `json:"booking"`
	RefundAmount float64         `json:"refundAmount"`
	RefundStatus string          `json:"refundStatus"`
}

type bookingService struct {
	bookingRepo   interfaces.BookingRepository
	tripRepo      interfaces.TripRepository
	userRepo      interfaces.UserRepository
	paymentRepo   interfaces.PaymentRepository
	gateway       payment.Gateway
	checkout      *checkoutStarter
	notifications NotificationService
	live          AvailabilityNotifier
	tx            TxRunner
	logger        *logger.Logger
	now           func() time.Time
}

func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	tripRepo interfaces.TripRepository,
	userRepo interfaces.UserRepository,
	paymentRepo interfaces.PaymentRepository,
	gateway payment.Gateway,
	notifications NotificationService,
	live AvailabilityNotifier,
	tx TxRunner,
	frontendURL string,
	logger *logger.Logger,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		tripRepo:      tripRepo,
		userRepo:      userRepo,
		paymentRepo:   paymentRepo,
		gateway:       gateway,
		checkout:      &checkoutStarter{gateway: gateway, bookingRepo: bookingRepo, frontendURL: frontendURL},
		notifications: notifications,
		live:          live,
		tx:            tx,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor Actor, request *CreateBookingRequest) (*CreateBookingResponse, error) {
	trip, err := s.resolveTrip(ctx, request.Trip)
	if err != nil {
		return nil, err
	}

	departure := request.SelectedDate.DepartureDate
	n := request.NumberOfTravelers
	if err := checkAvailability(trip, departure, n); err != nil {
		return nil, err
	}
	date, _ := trip.FindDate(departure)

	addOns := make([]models.AddOn, len(request.AddOns))
	for i, addOn := range request.AddOns {
		if addOn.Quantity <= 0 {
			addOn.Quantity = 1
		}
		addOns[i] = addOn
	}

	travelers := request.Travelers
	if travelers == nil {
		travelers = []models.Traveler{}
	}

	contact := request.ContactInfo
	contact.Email = utils.NormalizeEmail(contact.Email)

	booking := &models.Booking{
		User: actor.UserID,
		Trip: trip.ID,
		SelectedDate: models.SelectedDate{
			DepartureDate: date.DepartureDate,
			ReturnDate:    date.ReturnDate,
		},
		NumberOfTravelers: n,
		Travelers:         travelers,
		ContactInfo:       contact,
		BillingAddress:    request.BillingAddress,
		Pricing:           CalculatePricing(trip, date, n, addOns),
		AddOns:            addOns,
		SpecialRequests:   request.SpecialRequests,
		PaymentStatus:     models.PaymentStatusPending,
		BookingStatus:     models.BookingStatusPending,
		Source:            models.BookingSourceWebsite,
	}

	for attempt := 1; ; attempt++ {
		booking.ID = primitive.NilObjectID
		booking.ConfirmationCode = utils.GenerateConfirmationCode()

		err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			return s.reserveAndInsert(ctx, trip.ID, booking)
		})
		if err == nil {
			break
		}
		// A confirmation code collision is the only conflict an insert can hit.
		if utils.IsKind(err, utils.KindConflict) && attempt < confirmationCodeAttempts {
			continue
		}
		return nil, err
	}
	s.availabilityChanged(trip.ID)

	s.logger.LogBookingEvent(booking.ID, "created", map[string]interface{}{
		"trip_id":   trip.ID.Hex(),
		"user_id":   actor.UserID.Hex(),
		"travelers": n,
		"total":     booking.Pricing.TotalPrice,
	})

	response := &CreateBookingResponse{Booking: booking}
	if request.PayNow {
		session, err := s.checkout.start(ctx, booking, trip.Name)
		if err != nil {
			s.logger.WithError(err).WithBookingID(booking.ID).Warn("Failed to create checkout session during booking")
		} else {
			response.CheckoutSession = session
		}
	}

	return response, nil
}

func (s *bookingService) availabilityChanged(tripID primitive.ObjectID) {
	if s.live != nil {
		s.live.TripAvailabilityChanged(tripID)
	}
}

// reserveAndInsert takes the spots, writes the booking and links it to the
// user. Without a transaction the reservation is returned if the insert fails.
func (s *bookingService) reserveAndInsert(ctx context.Context, tripID primitive.ObjectID, booking *models.Booking) error {
	departure := booking.SelectedDate.DepartureDate
	n := booking.NumberOfTravelers

	reserved, err := s.tripRepo.ReserveSpots(ctx, tripID, departure, n)
	if err != nil {
		return err
	}
	if !reserved {
		current, err := s.tripRepo.GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if err := checkAvailability(current, departure, n); err != nil {
			return err
		}
		return utils.NewBadRequestError("Only %d spots available", current.SpotsRemaining())
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if !s.tx.Transactional() {
			if releaseErr := s.tripRepo.ReleaseSpots(ctx, tripID, departure, n); releaseErr != nil {
				s.logger.WithError(releaseErr).WithField("trip_id", tripID.Hex()).Error("Failed to release spots after booking insert failed")
			}
		}
		return err
	}

	if err := s.userRepo.AddBooking(ctx, booking.User, booking.ID); err != nil {
		if s.tx.Transactional() {
			return err
		}
		s.logger.WithError(err).WithBookingID(booking.ID).Warn("Failed to add booking to user history")
	}

	return nil
}

func (s *bookingService) resolveTrip(ctx context.Context, ref TripRef) (*models.Trip, error) {
	raw := string(ref)

	var (
		trip *models.Trip
		err  error
	)
	if id, parseErr := primitive.ObjectIDFromHex(raw); parseErr == nil {
		trip, err = s.tripRepo.GetByID(ctx, id)
	} else if packageID, convErr := strconv.Atoi(raw); convErr == nil {
		trip, err = s.tripRepo.GetByPackageID(ctx, packageID)
	} else {
		return nil, utils.NewNotFoundError("Trip not found")
	}

	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, utils.NewNotFoundError("Trip not found")
		}
		return nil, err
	}
	return trip, nil
}

func (s *bookingService) GetMyBookings(ctx context.Context, userID primitive.ObjectID, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.List(ctx, &interfaces.BookingFilter{User: &userID, BookingStatus: status}, params)
}

func (s *bookingService) GetBooking(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking.User) {
		return nil, utils.NewForbiddenError("Not authorized to view this booking")
	}
	return booking, nil
}

func (s *bookingService) GetByConfirmationCode(ctx context.Context, actor *Actor, code string) (*models.Booking, *models.BookingSummary, error) {
	booking, err := s.bookingRepo.GetByConfirmationCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, nil, err
	}

	if actor != nil && actor.CanAccess(booking.User) {
		return booking, nil, nil
	}

	summary := &models.BookingSummary{
		ConfirmationCode:  booking.ConfirmationCode,
		BookingStatus:     booking.BookingStatus,
		DepartureDate:     booking.SelectedDate.DepartureDate,
		NumberOfTravelers: booking.NumberOfTravelers,
	}
	if trip, err := s.tripRepo.GetByID(ctx, booking.Trip); err == nil {
		summary.TripName = trip.Name
	}
	return nil, summary, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor Actor, id primitive.ObjectID, reason string) (*CancelBookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(booking.User) {
		return nil, utils.NewForbiddenError("Not authorized to cancel this booking")
	}

	now := s.now()
	if !CanCancel(booking, now) {
		return nil, utils.NewBadRequestError("This booking cannot be cancelled")
	}

	policy := models.PolicyModerate
	tripName := ""
	if trip, err := s.tripRepo.GetByID(ctx, booking.Trip); err == nil {
		policy = trip.CancellationPolicy
		tripName = trip.Name
	} else if !utils.IsKind(err, utils.KindNotFound) {
		return nil, err
	}

	charged := booking.PaymentStatus == models.PaymentStatusCompleted && booking.StripePaymentIntentID != ""
	refundAmount := 0.0
	if charged {
		days := DaysUntilDeparture(booking.SelectedDate.DepartureDate, now)
		refundAmount = CalculateRefund(days, booking.Pricing.TotalPrice, policy)
	}

	cancellation := &models.Cancellation{
		IsCancelled:  true,
		CancelledAt:  now,
		CancelledBy:  actor.UserID,
		Reason:       reason,
		RefundAmount: refundAmount,
		RefundStatus: models.RefundStatusDenied,
	}
	if refundAmount > 0 {
		cancellation.RefundStatus = models.RefundStatusProcessing
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		cancelled, err := s.bookingRepo.Cancel(ctx, booking.ID, cancellation)
		if err != nil {
			return err
		}
		if !cancelled {
			return utils.NewBadRequestError("This booking cannot be cancelled")
		}
		return s.tripRepo.ReleaseSpots(ctx, booking.Trip, booking.SelectedDate.DepartureDate, booking.NumberOfTravelers)
	})
	if err != nil {
		return nil, err
	}
	s.availabilityChanged(booking.Trip)

	outcome := RefundOutcomeNone
	if refundAmount > 0 {
		outcome = s.refund(ctx, booking, refundAmount, reason)
	}

	s.logger.LogBookingEvent(booking.ID, "cancelled", map[string]interface{}{
		"cancelled_by":  actor.UserID.Hex(),
		"refund_amount": refundAmount,
		"refund_status": outcome,
	})

	if err := s.notifications.Email(ctx, booking.ContactInfo.Email, models.TemplateBookingCancellation, map[string]string{
		"name":             travelerName(booking),
		"confirmationCode": booking.ConfirmationCode,
		"tripName":         tripName,
		"refundAmount":     formatMoney(refundAmount, booking.Pricing.Currency),
	}); err != nil {
		s.logger.WithError(err).WithBookingID(booking.ID).Warn("Failed to queue cancellation email")
	}

	updated, err := s.bookingRepo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	return &CancelBookingResponse{
		Booking:      updated,
		RefundAmount: refundAmount,
		RefundStatus: outcome,
	}, nil
}

// refund asks the gateway for the money back. A gateway failure leaves the
// cancellation in place with refund status failed for manual follow-up.
func (s *bookingService) refund(ctx context.Context, booking *models.Booking, amount float64, reason string) string {
	log := s.logger.WithBookingID(booking.ID)

	result, err := s.gateway.RefundPayment(ctx, &payment.RefundRequest{
		PaymentIntentID: booking.StripePaymentIntentID,
		Amount:          amount,
		Reason:          "requested_by_customer",
		Metadata: map[string]string{
			"bookingId":        booking.ID.Hex(),
			"confirmationCode": booking.ConfirmationCode,
		},
	})
	if err != nil {
		log.LogSecurityEvent("refund_failed", "high", map[string]interface{}{
			"booking_id":        booking.ID.Hex(),
			"payment_intent_id": booking.StripePaymentIntentID,
			"amount":            amount,
			"error":             err.Error(),
		})
		if updateErr := s.bookingRepo.UpdateRefund(ctx, booking.ID, models.RefundStatusFailed, ""); updateErr != nil {
			log.WithError(updateErr).Error("Failed to record refund failure")
		}
		return RefundOutcomeFailed
	}

	full := amount >= booking.Pricing.TotalPrice
	paymentStatus := models.PaymentStatusPartiallyRefunded
	paymentType := models.PaymentTypePartialRefund
	if full {
		paymentStatus = models.PaymentStatusRefunded
		paymentType = models.PaymentTypeRefund
	}

	now := s.now()
	record := &models.Payment{
		User:                  booking.User,
		Booking:               booking.ID,
		Amount:                amount,
		Currency:              booking.Pricing.Currency,
		PaymentMethod:         models.PaymentMethodCard,
		StripePaymentIntentID: booking.StripePaymentIntentID,
		Status:                models.PaymentRecordSucceeded,
		Type:                  paymentType,
		RefundDetails: &models.RefundDetails{
			RefundAmount:   amount,
			RefundReason:   reason,
			RefundedAt:     now,
			StripeRefundID: result.RefundID,
		},
		ProcessedAt: &now,
	}
	if charge, err := s.paymentRepo.GetChargeByIntentID(ctx, booking.StripePaymentIntentID); err == nil {
		record.RefundDetails.OriginalPaymentID = charge.ID
	}
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		log.WithError(err).Error("Failed to record refund payment")
	}

	if err := s.bookingRepo.UpdateRefund(ctx, booking.ID, models.RefundStatusCompleted, paymentStatus); err != nil {
		log.WithError(err).Error("Failed to record refund completion")
	}

	log.LogPaymentEvent(record.ID, "refunded", amount, booking.Pricing.Currency)
	return RefundOutcomeProcessed
}

func (s *bookingService) ListBookings(ctx context.Context, filter *interfaces.BookingFilter, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.List(ctx, filter, params)
}

func (s *bookingService) GetStats(ctx context.Context) (*models.BookingStats, error) {
	return s.bookingRepo.Stats(ctx, s.now())
}

func (s *bookingService) UpdateStatus(ctx context.Context, id primitive.ObjectID, request *UpdateBookingStatusRequest) (*models.Booking, error) {
	if request.BookingStatus == models.BookingStatusCancelled {
		return nil, utils.NewBadRequestError("Use the cancel endpoint to cancel a booking")
	}

	// Cancelled bookings have already released their spots.
	booking, updated, err := s.bookingRepo.UpdateStatus(ctx, id, request.BookingStatus, request.InternalNotes)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, utils.NewBadRequestError("Cancelled bookings cannot be reinstated")
	}

	s.logger.LogBookingEvent(booking.ID, "status_updated", map[string]interface{}{
		"booking_status": request.BookingStatus,
	})
	return booking, nil
}

// checkoutStarter opens a hosted checkout for the server-computed total and
// records the session on the booking.
type checkoutStarter struct {
	gateway     payment.Gateway
	bookingRepo interfaces.BookingRepository
	frontendURL string
}

func (c *checkoutStarter) start(ctx context.Context, booking *models.Booking, tripName string) (*CheckoutSessionInfo, error) {
	session, err := c.gateway.CreateCheckoutSession(ctx, &payment.CheckoutRequest{
		Amount:        booking.Pricing.TotalPrice,
		Currency:      booking.Pricing.Currency,
		ProductName:   tripName,
		Description:   fmt.Sprintf("%d traveler(s), departing %s", booking.NumberOfTravelers, formatDate(booking.SelectedDate.DepartureDate)),
		CustomerEmail: booking.ContactInfo.Email,
		ReferenceID:   booking.ID.Hex(),
		SuccessURL:    utils.CreatePaymentSuccessURL(c.frontendURL),
		CancelURL:     utils.CreatePaymentCancelURL(c.frontendURL, booking.ID.Hex()),
		Metadata: map[string]string{
			"bookingId":        booking.ID.Hex(),
			"userId":           booking.User.Hex(),
			"confirmationCode": booking.ConfirmationCode,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := c.bookingRepo.SetCheckoutSession(ctx, booking.ID, session.ID); err != nil {
		return nil, err
	}
	booking.StripeSessionID = session.ID
	booking.PaymentStatus = models.PaymentStatusProcessing

	return &CheckoutSessionInfo{SessionID: session.ID, URL: session.URL}, nil
}
