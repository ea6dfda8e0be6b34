package interfaces

import (
	"context"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingFilter struct {
	User          *primitive.ObjectID
	BookingStatus models.BookingStatus
	PaymentStatus models.PaymentStatus
	RefundStatus  models.RefundStatus
}

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error)
	List(ctx context.Context, filter *BookingFilter, params *utils.PaginationParams) ([]*models.Booking, int64, error)

	// Payment state
	SetCheckoutSession(ctx context.Context, id primitive.ObjectID, sessionID string) error
	// MarkPaid moves the booking holding sessionID to completed/confirmed. The
	// bool is false when it was already completed.
	MarkPaid(ctx context.Context, sessionID, intentID string) (*models.Booking, bool, error)
	MarkPaymentFailed(ctx context.Context, intentID string) (*models.Booking, error)

	// Cancel records the cancellation unless the booking is already cancelled.
	Cancel(ctx context.Context, id primitive.ObjectID, cancellation *models.Cancellation) (bool, error)
	UpdateRefund(ctx context.Context, id primitive.ObjectID, refundStatus models.RefundStatus, paymentStatus models.PaymentStatus) error
	// UpdateStatus leaves cancelled bookings alone; the bool is false for them.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus, internalNotes string) (*models.Booking, bool, error)

	FindVerifiedForReview(ctx context.Context, userID, tripID primitive.ObjectID) (*models.Booking, error)
	DueForReminder(ctx context.Context, from, until time.Time, marker string) ([]*models.Booking, error)
	AddReminder(ctx context.Context, id primitive.ObjectID, marker string) error

	Stats(ctx context.Context, now time.Time) (*models.BookingStats, error)
}
