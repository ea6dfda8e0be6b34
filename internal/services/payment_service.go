package services

import (
	"context"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"
	"gbtravel/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventChargeRefunded    = "charge.refunded"
)

type PaymentService interface {
	CreateCheckout(ctx context.Context, actor Actor, bookingID primitive.ObjectID) (*CheckoutSessionInfo, error)
	VerifySession(ctx context.Context, sessionID string) (*VerifyPaymentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)

	GetHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Payment, int64, error)
	GetPayment(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Payment, error)

	// Admin
	ListPayments(ctx context.Context, filter *interfaces.PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error)
	GetStats(ctx context.Context) (*models.PaymentStats, error)
}

type VerifyPaymentResponse struct {
	Booking         *models.Booking `json:"booking"`
	Payment         *models.Payment `json:"payment,omitempty"`
	AlreadyVerified bool            `json:"alreadyVerified"`
}

type WebhookResult struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

type paymentService struct {
	bookingRepo   interfaces.BookingRepository
	tripRepo      interfaces.TripRepository
	paymentRepo   interfaces.PaymentRepository
	eventRepo     interfaces.ProcessedEventRepository
	gateway       payment.Gateway
	checkout      *checkoutStarter
	notifications NotificationService
	tx            TxRunner
	logger        *logger.Logger
	now           func() time.Time
}

func NewPaymentService(
	bookingRepo interfaces.BookingRepository,
	tripRepo interfaces.TripRepository,
	paymentRepo interfaces.PaymentRepository,
	eventRepo interfaces.ProcessedEventRepository,
	gateway payment.Gateway,
	notifications NotificationService,
	tx TxRunner,
	frontendURL string,
	logger *logger.Logger,
) PaymentService {
	return &paymentService{
		bookingRepo:   bookingRepo,
		tripRepo:      tripRepo,
		paymentRepo:   paymentRepo,
		eventRepo:     eventRepo,
		gateway:       gateway,
		checkout:      &checkoutStarter{gateway: gateway, bookingRepo: bookingRepo, frontendURL: frontendURL},
		notifications: notifications,
		tx:            tx,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, actor Actor, bookingID primitive.ObjectID) (*CheckoutSessionInfo, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.User != actor.UserID {
		return nil, utils.NewForbiddenError("Not authorized")
	}
	if booking.PaymentStatus == models.PaymentStatusCompleted {
		return nil, utils.NewBadRequestError("Booking is already paid")
	}
	if booking.BookingStatus == models.BookingStatusCancelled {
		return nil, utils.NewBadRequestError("Cannot pay for a cancelled booking")
	}

	tripName := "GB Travel booking " + booking.ConfirmationCode
	if trip, err := s.tripRepo.GetByID(ctx, booking.Trip); err == nil {
		tripName = trip.Name
	}

	session, err := s.checkout.start(ctx, booking, tripName)
	if err != nil {
		if _, ok := utils.AsAppError(err); ok {
			return nil, err
		}
		return nil, utils.NewInternalError(err)
	}

	s.logger.LogBookingEvent(booking.ID, "checkout_created", map[string]interface{}{"session_id": session.SessionID})
	return session, nil
}

func (s *paymentService) VerifySession(ctx context.Context, sessionID string) (*VerifyPaymentResponse, error) {
	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, utils.NewBadRequestError("Invalid checkout session").Wrap(err)
	}
	if !session.Paid() {
		return nil, utils.NewBadRequestError("Payment not completed")
	}

	var (
		booking *models.Booking
		record  *models.Payment
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		booking, record, err = s.completePayment(ctx, session.ID, session.PaymentIntentID, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	return &VerifyPaymentResponse{
		Booking:         booking,
		Payment:         record,
		AlreadyVerified: record == nil,
	}, nil
}

// completePayment is the single transition from an unpaid booking to a
// confirmed one. Only the caller that flips the booking writes the ledger
// row and queues the confirmation emails; later callers get a nil payment.
func (s *paymentService) completePayment(ctx context.Context, sessionID, intentID, eventID string) (*models.Booking, *models.Payment, error) {
	booking, changed, err := s.bookingRepo.MarkPaid(ctx, sessionID, intentID)
	if err != nil {
		return nil, nil, err
	}
	if !changed {
		return booking, nil, nil
	}

	now := s.now()
	record := &models.Payment{
		User:                  booking.User,
		Booking:               booking.ID,
		Amount:                booking.Pricing.TotalPrice,
		Currency:              booking.Pricing.Currency,
		PaymentMethod:         models.PaymentMethodCard,
		StripeSessionID:       sessionID,
		StripePaymentIntentID: intentID,
		StripeEventID:         eventID,
		Status:                models.PaymentRecordSucceeded,
		Type:                  models.PaymentTypePayment,
		Description:           "Booking " + booking.ConfirmationCode,
		ProcessedAt:           &now,
	}
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		return nil, nil, err
	}

	s.logger.LogPaymentEvent(record.ID, "succeeded", record.Amount, record.Currency)
	if booking.BookingStatus == models.BookingStatusCancelled {
		s.logger.LogSecurityEvent("payment_for_cancelled_booking", "high", map[string]interface{}{
			"booking_id": booking.ID.Hex(),
			"payment_id": record.ID.Hex(),
		})
		return booking, record, nil
	}
	s.queueConfirmation(ctx, booking, record)

	return booking, record, nil
}

func (s *paymentService) queueConfirmation(ctx context.Context, booking *models.Booking, record *models.Payment) {
	tripName := ""
	if trip, err := s.tripRepo.GetByID(ctx, booking.Trip); err == nil {
		tripName = trip.Name
	}

	name := travelerName(booking)
	confirmation := map[string]string{
		"name":             name,
		"confirmationCode": booking.ConfirmationCode,
		"tripName":         tripName,
		"departureDate":    formatDate(booking.SelectedDate.DepartureDate),
		"travelers":        formatInt(booking.NumberOfTravelers),
		"total":            formatMoney(booking.Pricing.TotalPrice, booking.Pricing.Currency),
	}
	receipt := map[string]string{
		"name":             name,
		"confirmationCode": booking.ConfirmationCode,
		"amount":           formatMoney(record.Amount, record.Currency),
		"reference":        record.StripePaymentIntentID,
		"paidAt":           formatDate(*record.ProcessedAt),
	}

	log := s.logger.WithBookingID(booking.ID)
	if err := s.notifications.Email(ctx, booking.ContactInfo.Email, models.TemplateBookingConfirmation, confirmation); err != nil {
		log.WithError(err).Warn("Failed to queue booking confirmation")
	}
	if err := s.notifications.Email(ctx, booking.ContactInfo.Email, models.TemplatePaymentReceipt, receipt); err != nil {
		log.WithError(err).Warn("Failed to queue payment receipt")
	}
	if err := s.notifications.SMS(ctx, booking.ContactInfo.Phone, models.TemplateBookingConfirmation, confirmation); err != nil {
		log.WithError(err).Warn("Failed to queue booking confirmation sms")
	}
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.gateway.ValidateWebhook(ctx, payload, signature)
	if err != nil {
		s.logger.LogSecurityEvent("webhook_signature_invalid", "medium", map[string]interface{}{"error": err.Error()})
		return nil, utils.NewBadRequestError("Webhook Error: %s", err.Error())
	}

	seen, err := s.eventRepo.Exists(ctx, event.EventID)
	if err != nil {
		return nil, err
	}
	if seen {
		return &WebhookResult{Received: true, Duplicate: true}, nil
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.applyEvent(ctx, event); err != nil {
			return err
		}
		return s.eventRepo.Record(ctx, &models.ProcessedEvent{
			ID:          event.EventID,
			Type:        event.EventType,
			ProcessedAt: s.now(),
		})
	})
	if err != nil {
		// Another delivery of the same event recorded it first.
		if utils.IsKind(err, utils.KindConflict) {
			return &WebhookResult{Received: true, Duplicate: true}, nil
		}
		return nil, err
	}

	return &WebhookResult{Received: true}, nil
}

func (s *paymentService) applyEvent(ctx context.Context, event *payment.WebhookEvent) error {
	log := s.logger.WithFields(map[string]interface{}{
		"event_id":   event.EventID,
		"event_type": event.EventType,
	})

	switch event.EventType {
	case EventCheckoutCompleted:
		sessionID := event.Get("id").String()
		_, _, err := s.completePayment(ctx, sessionID, event.Get("payment_intent").String(), event.EventID)
		if utils.IsKind(err, utils.KindNotFound) {
			log.WithField("session_id", sessionID).Warn("No booking for completed checkout session")
			return nil
		}
		return err

	case EventPaymentFailed:
		intentID := event.Get("id").String()
		booking, err := s.bookingRepo.MarkPaymentFailed(ctx, intentID)
		if utils.IsKind(err, utils.KindNotFound) {
			log.WithField("payment_intent_id", intentID).Info("No booking for failed payment intent")
			return nil
		}
		if err != nil {
			return err
		}
		record := &models.Payment{
			User:                  booking.User,
			Booking:               booking.ID,
			Amount:                booking.Pricing.TotalPrice,
			Currency:              booking.Pricing.Currency,
			PaymentMethod:         models.PaymentMethodCard,
			StripePaymentIntentID: intentID,
			StripeEventID:         event.EventID,
			Status:                models.PaymentRecordFailed,
			Type:                  models.PaymentTypePayment,
			FailureReason:         event.Get("last_payment_error.message").String(),
			FailureCode:           event.Get("last_payment_error.code").String(),
		}
		if err := s.paymentRepo.Create(ctx, record); err != nil {
			return err
		}
		s.logger.LogPaymentEvent(record.ID, "failed", record.Amount, record.Currency)
		return nil

	case EventChargeRefunded:
		intentID := event.Get("payment_intent").String()
		status := models.PaymentRecordPartiallyRefunded
		if event.Get("refunded").Bool() {
			status = models.PaymentRecordRefunded
		}
		record, err := s.paymentRepo.UpdateStatusByIntentID(ctx, intentID, status)
		if utils.IsKind(err, utils.KindNotFound) {
			log.WithField("payment_intent_id", intentID).Info("No payment for refunded charge")
			return nil
		}
		if err != nil {
			return err
		}
		s.logger.LogPaymentEvent(record.ID, string(status), record.Amount, record.Currency)
		return nil

	default:
		log.Debug("Unhandled webhook event type")
		return nil
	}
}

func (s *paymentService) GetHistory(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	return s.paymentRepo.List(ctx, &interfaces.PaymentFilter{User: &userID, Type: models.PaymentTypePayment}, params)
}

func (s *paymentService) GetPayment(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Payment, error) {
	record, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(record.User) {
		return nil, utils.NewForbiddenError("Not authorized")
	}
	return record, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *interfaces.PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	return s.paymentRepo.List(ctx, filter, params)
}

func (s *paymentService) GetStats(ctx context.Context) (*models.PaymentStats, error) {
	return s.paymentRepo.Stats(ctx, s.now())
}
