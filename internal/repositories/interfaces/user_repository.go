package interfaces

import (
	"context"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFilter struct {
	Role   models.UserRole
	Search string
}

type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error

	// Refresh token storage
	AddRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	// RotateRefreshToken swaps oldToken for newToken atomically. It returns
	// false when oldToken is no longer stored for the user.
	RotateRefreshToken(ctx context.Context, id primitive.ObjectID, oldToken, newToken string) (bool, error)
	RemoveRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error

	// Relations
	AddBooking(ctx context.Context, id, bookingID primitive.ObjectID) error
	AddFavorite(ctx context.Context, id, destinationID primitive.ObjectID) error
	RemoveFavorite(ctx context.Context, id, destinationID primitive.ObjectID) error

	// Listing
	List(ctx context.Context, filter *UserFilter, params *utils.PaginationParams) ([]*models.User, int64, error)
}
