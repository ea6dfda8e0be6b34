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
)

const msgInquiryNotFound = "Inquiry not found"

type inquiryRepository struct {
	collection *mongo.Collection
}

func NewInquiryRepository(db *mongo.Database) interfaces.InquiryRepository {
	return &inquiryRepository{
		collection: db.Collection(database.CollectionInquiries),
	}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	now := time.Now()
	inquiry.ID = primitive.NewObjectID()
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryStatusNew
	}

	if _, err := r.collection.InsertOne(ctx, inquiry); err != nil {
		return fmt.Errorf("failed to create inquiry: %w", err)
	}
	return nil
}

func (r *inquiryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&inquiry); err != nil {
		return nil, translateError(err, msgInquiryNotFound, "get inquiry")
	}
	return &inquiry, nil
}

func (r *inquiryRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Inquiry, error) {
	updates["updated_at"] = time.Now()

	var inquiry models.Inquiry
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, afterUpdate()).Decode(&inquiry)
	if err != nil {
		return nil, translateError(err, msgInquiryNotFound, "update inquiry")
	}
	return &inquiry, nil
}

func (r *inquiryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete inquiry: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError(msgInquiryNotFound)
	}
	return nil
}

func (r *inquiryRepository) List(ctx context.Context, status models.InquiryStatus, params *utils.PaginationParams) ([]*models.Inquiry, int64, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}
	return findPage[models.Inquiry](ctx, r.collection, query, bson.D{{Key: "created_at", Value: -1}}, params)
}
