package mongodb

import (
	"context"
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

const msgPaymentNotFound = "Payment not found"

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection(database.CollectionPayments),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	now := time.Now()
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		return nil, translateError(err, msgPaymentNotFound, "get payment")
	}
	return &payment, nil
}

func (r *paymentRepository) GetChargeByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{
		"stripe_payment_intent_id": intentID,
		"type":                     models.PaymentTypePayment,
	}).Decode(&payment)
	if err != nil {
		return nil, translateError(err, msgPaymentNotFound, "get payment by intent")
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatusByIntentID(ctx context.Context, intentID string, status models.PaymentRecordStatus) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"stripe_payment_intent_id": intentID, "type": models.PaymentTypePayment},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
		afterUpdate(),
	).Decode(&payment)
	if err != nil {
		return nil, translateError(err, msgPaymentNotFound, "update payment status")
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *interfaces.PaymentFilter, params *utils.PaginationParams) ([]*models.Payment, int64, error) {
	query := bson.M{}
	if filter != nil {
		if filter.User != nil {
			query["user"] = *filter.User
		}
		if filter.Status != "" {
			query["status"] = filter.Status
		}
		if filter.Type != "" {
			query["type"] = filter.Type
		}
	}

	return findPage[models.Payment](ctx, r.collection, query, bson.D{{Key: "created_at", Value: -1}}, params)
}

// Stats sums succeeded charges. Revenue by month covers the trailing 12 months.
func (r *paymentRepository) Stats(ctx context.Context, now time.Time) (*models.PaymentStats, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	windowStart := monthStart.AddDate(0, -11, 0)

	succeeded := bson.M{"status": models.PaymentRecordSucceeded, "type": models.PaymentTypePayment}

	stats := &models.PaymentStats{RevenueByMonth: []models.MonthlyRevenue{}}
	var err error

	if stats.TotalRevenue, err = r.sum(ctx, succeeded); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = r.sum(ctx, withCreatedSince(succeeded, monthStart)); err != nil {
		return nil, err
	}
	if stats.YearlyRevenue, err = r.sum(ctx, withCreatedSince(succeeded, yearStart)); err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: withCreatedSince(succeeded, windowStart)}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"year": bson.M{"$year": "$created_at"}, "month": bson.M{"$month": "$created_at"}},
			"revenue": bson.M{"$sum": "$amount"},
			"count":   bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":     0,
			"year":    "$_id.year",
			"month":   "$_id.month",
			"revenue": 1,
			"count":   1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue by month: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &stats.RevenueByMonth); err != nil {
		return nil, fmt.Errorf("failed to decode revenue by month: %w", err)
	}

	return stats, nil
}

func (r *paymentRepository) sum(ctx context.Context, match bson.M) (float64, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	defer cursor.Close(ctx)

	var row struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&row); err != nil {
			return 0, fmt.Errorf("failed to decode payment sum: %w", err)
		}
	}
	return models.RoundMoney(row.Total), nil
}

func withCreatedSince(base bson.M, since time.Time) bson.M {
	out := bson.M{"created_at": bson.M{"$gte": since}}
	for k, v := range base {
		out[k] = v
	}
	return out
}

type processedEventRepository struct {
	collection *mongo.Collection
}

func NewProcessedEventRepository(db *mongo.Database) interfaces.ProcessedEventRepository {
	return &processedEventRepository{
		collection: db.Collection(database.CollectionProcessedEvents),
	}
}

func (r *processedEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": eventID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up processed event: %w", err)
	}
	return count > 0, nil
}

func (r *processedEventRepository) Record(ctx context.Context, event *models.ProcessedEvent) error {
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("Event %s already processed", event.ID).Wrap(err)
		}
		return fmt.Errorf("failed to record processed event: %w", err)
	}
	return nil
}
