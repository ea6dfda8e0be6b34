package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const msgBookingNotFound = "Booking not found"

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection(database.CollectionBookings),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.ConfirmationCode == "" {
		booking.ConfirmationCode = utils.GenerateConfirmationCode()
	}

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return translateError(err, msgBookingNotFound, "create booking")
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *bookingRepository) GetByConfirmationCode(ctx context.Context, code string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"confirmation_code": code})
}

func (r *bookingRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"stripe_session_id": sessionID})
}

func (r *bookingRepository) GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"stripe_payment_intent_id": intentID})
}

func (r *bookingRepository) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	var booking models.Booking
	if err := r.collection.FindOne(ctx, filter).Decode(&booking); err != nil {
		return nil, translateError(err, msgBookingNotFound, "get booking")
	}
	return &booking, nil
}

func (r *bookingRepository) List(ctx context.Context, filter *interfaces.BookingFilter, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	query := bson.M{}
	if filter != nil {
		if filter.User != nil {
			query["user"] = *filter.User
		}
		if filter.BookingStatus != "" {
			query["booking_status"] = filter.BookingStatus
		}
		if filter.PaymentStatus != "" {
			query["payment_status"] = filter.PaymentStatus
		}
		if filter.RefundStatus != "" {
			query["cancellation.refund_status"] = filter.RefundStatus
		}
	}

	return findPage[models.Booking](ctx, r.collection, query, bson.D{{Key: "created_at", Value: -1}}, params)
}

func (r *bookingRepository) SetCheckoutSession(ctx context.Context, id primitive.ObjectID, sessionID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": bson.M{"$ne": models.PaymentStatusCompleted}},
		bson.M{"$set": bson.M{
			"stripe_session_id": sessionID,
			"payment_status":    models.PaymentStatusProcessing,
			"updated_at":        time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewBadRequestError("Booking is already paid")
	}
	return nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, sessionID, intentID string) (*models.Booking, bool, error) {
	// A booking cancelled while its checkout was open stays cancelled.
	set := bson.M{
		"payment_status": models.PaymentStatusCompleted,
		"booking_status": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$booking_status", models.BookingStatusCancelled}},
			models.BookingStatusCancelled,
			models.BookingStatusConfirmed,
		}},
		"payment_method": string(models.PaymentMethodCard),
		"updated_at":     time.Now(),
	}
	if intentID != "" {
		set["stripe_payment_intent_id"] = intentID
	}

	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"stripe_session_id": sessionID, "payment_status": bson.M{"$ne": models.PaymentStatusCompleted}},
		mongo.Pipeline{{{Key: "$set", Value: set}}},
		afterUpdate(),
	).Decode(&booking)
	if err == nil {
		return &booking, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	existing, err := r.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, intentID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"stripe_payment_intent_id": intentID, "payment_status": bson.M{"$ne": models.PaymentStatusCompleted}},
		bson.M{"$set": bson.M{"payment_status": models.PaymentStatusFailed, "updated_at": time.Now()}},
		afterUpdate(),
	).Decode(&booking)
	if err != nil {
		return nil, translateError(err, msgBookingNotFound, "mark payment failed")
	}
	return &booking, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id primitive.ObjectID, cancellation *models.Cancellation) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "booking_status": bson.M{"$ne": models.BookingStatusCancelled}},
		bson.M{"$set": bson.M{
			"booking_status": models.BookingStatusCancelled,
			"cancellation":   cancellation,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *bookingRepository) UpdateRefund(ctx context.Context, id primitive.ObjectID, refundStatus models.RefundStatus, paymentStatus models.PaymentStatus) error {
	set := bson.M{
		"cancellation.refund_status": refundStatus,
		"updated_at":                 time.Now(),
	}
	if paymentStatus != "" {
		set["payment_status"] = paymentStatus
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("failed to update refund status: %w", err)
	}
	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus, internalNotes string) (*models.Booking, bool, error) {
	set := bson.M{"booking_status": status, "updated_at": time.Now()}
	if internalNotes != "" {
		set["internal_notes"] = internalNotes
	}

	filter := bson.M{"_id": id, "booking_status": bson.M{"$ne": models.BookingStatusCancelled}}

	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, afterUpdate()).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, false, fmt.Errorf("failed to update booking status: %w", countErr)
		}
		if count == 0 {
			return nil, false, utils.NewNotFoundError(msgBookingNotFound)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translateError(err, msgBookingNotFound, "update booking status")
	}
	return &booking, true, nil
}

func (r *bookingRepository) FindVerifiedForReview(ctx context.Context, userID, tripID primitive.ObjectID) (*models.Booking, error) {
	booking, err := r.findOne(ctx, bson.M{
		"user":           userID,
		"trip":           tripID,
		"booking_status": bson.M{"$in": bson.A{models.BookingStatusConfirmed, models.BookingStatusCompleted}},
	})
	if utils.IsKind(err, utils.KindNotFound) {
		return nil, nil
	}
	return booking, err
}

func (r *bookingRepository) DueForReminder(ctx context.Context, from, until time.Time, marker string) ([]*models.Booking, error) {
	filter := bson.M{
		"booking_status":               models.BookingStatusConfirmed,
		"selected_date.departure_date": bson.M{"$gte": from, "$lte": until},
		"reminders_sent":               bson.M{"$ne": marker},
	}
	return findAll[models.Booking](ctx, r.collection, filter, options.Find().SetLimit(500))
}

func (r *bookingRepository) AddReminder(ctx context.Context, id primitive.ObjectID, marker string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"reminders_sent": marker},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}
	return nil
}

func (r *bookingRepository) Stats(ctx context.Context, now time.Time) (*models.BookingStats, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	stats := &models.BookingStats{StatusBreakdown: map[string]int64{}}
	var err error

	if stats.Total, err = r.collection.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if stats.ThisMonth, err = r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": monthStart}}); err != nil {
		return nil, fmt.Errorf("failed to count monthly bookings: %w", err)
	}
	if stats.ThisYear, err = r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": yearStart}}); err != nil {
		return nil, fmt.Errorf("failed to count yearly bookings: %w", err)
	}

	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$booking_status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get booking status breakdown: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode booking stats: %w", err)
		}
		stats.StatusBreakdown[row.ID] = row.Count
	}

	revenue, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"payment_status": models.PaymentStatusCompleted,
			"created_at":     bson.M{"$gte": monthStart},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$pricing.total_price"}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly revenue: %w", err)
	}
	defer revenue.Close(ctx)

	if revenue.Next(ctx) {
		var row struct {
			Total float64 `bson:"total"`
		}
		if err := revenue.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode monthly revenue: %w", err)
		}
		stats.RevenueThisMonth = models.RoundMoney(row.Total)
	}

	return stats, nil
}
