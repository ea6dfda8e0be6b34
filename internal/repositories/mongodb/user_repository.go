package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const msgUserNotFound = "User not found"

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.CollectionUsers),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.Email = utils.NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.RefreshTokens == nil {
		user.RefreshTokens = []string{}
	}
	if user.BookingHistory == nil {
		user.BookingHistory = []primitive.ObjectID{}
	}
	if user.Preferences.FavoriteDestinations == nil {
		user.Preferences.FavoriteDestinations = []primitive.ObjectID{}
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewConflictError("Email already registered").Wrap(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translateError(err, msgUserNotFound, "get user")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": utils.NormalizeEmail(email)}).Decode(&user)
	if err != nil {
		return nil, translateError(err, msgUserNotFound, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	updates["updated_at"] = time.Now()
	return r.updateOne(ctx, id, bson.M{"$set": updates}, "update user")
}

func (r *userRepository) AddRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"refresh_tokens": token},
		"$set":  bson.M{"updated_at": time.Now()},
	}, "store refresh token")
}

// RotateRefreshToken uses a pipeline update so the pull and the push land in
// one write; $pull and $push cannot target the same field in a classic update.
func (r *userRepository) RotateRefreshToken(ctx context.Context, id primitive.ObjectID, oldToken, newToken string) (bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"refresh_tokens": bson.M{"$concatArrays": bson.A{
				bson.M{"$filter": bson.M{
					"input": "$refresh_tokens",
					"cond":  bson.M{"$ne": bson.A{"$$this", oldToken}},
				}},
				bson.A{newToken},
			}},
			"updated_at": time.Now(),
		}}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "refresh_tokens": oldToken}, pipeline)
	if err != nil {
		return false, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return result.MatchedCount == 1, nil
}

func (r *userRepository) RemoveRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"refresh_tokens": token},
		"$set":  bson.M{"updated_at": time.Now()},
	}, "remove refresh token")
}

func (r *userRepository) ClearRefreshTokens(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"refresh_tokens": bson.A{}, "updated_at": time.Now()},
	}, "clear refresh tokens")
}

func (r *userRepository) AddBooking(ctx context.Context, id, bookingID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$push": bson.M{"booking_history": bookingID},
		"$set":  bson.M{"updated_at": time.Now()},
	}, "append booking history")
}

func (r *userRepository) AddFavorite(ctx context.Context, id, destinationID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$addToSet": bson.M{"preferences.favorite_destinations": destinationID},
		"$set":      bson.M{"updated_at": time.Now()},
	}, "add favorite")
}

func (r *userRepository) RemoveFavorite(ctx context.Context, id, destinationID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"preferences.favorite_destinations": destinationID},
		"$set":  bson.M{"updated_at": time.Now()},
	}, "remove favorite")
}

func (r *userRepository) List(ctx context.Context, filter *interfaces.UserFilter, params *utils.PaginationParams) ([]*models.User, int64, error) {
	query := bson.M{}
	if filter != nil {
		if filter.Role != "" {
			query["role"] = filter.Role
		}
		if filter.Search != "" {
			pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
			query["$or"] = bson.A{
				bson.M{"full_name": pattern},
				bson.M{"email": pattern},
			}
		}
	}

	return findPage[models.User](ctx, r.collection, query, bson.D{{Key: "created_at", Value: -1}}, params)
}

func (r *userRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M, op string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translateError(err, msgUserNotFound, op)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError(msgUserNotFound)
	}
	return nil
}
