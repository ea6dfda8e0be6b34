package interfaces

import (
	"context"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) (*models.Inquiry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, status models.InquiryStatus, params *utils.PaginationParams) ([]*models.Inquiry, int64, error)
}
