package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/internal/utils"
	"gbtravel/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, request *UpdateProfileRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, userID primitive.ObjectID) error
	GetBookings(ctx context.Context, userID primitive.ObjectID, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	AddFavorite(ctx context.Context, userID, destinationID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveFavorite(ctx context.Context, userID, destinationID primitive.ObjectID) ([]primitive.ObjectID, error)

	// Admin
	ListUsers(ctx context.Context, filter *interfaces.UserFilter, params *utils.PaginationParams) ([]*models.User, int64, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateRole(ctx context.Context, actor Actor, id primitive.ObjectID, role models.UserRole) (*models.User, error)
	UpdateStatus(ctx context.Context, actor Actor, id primitive.ObjectID, isActive bool) (*models.User, error)
}

type UpdateProfileRequest struct {
	FullName       *string                 `json:"fullName" validate:"omitempty,min=2,max=100"`
	Phone          *string                 `json:"phone" validate:"omitempty,max=20"`
	Address        *models.Address         `json:"address"`
	Bio            *string                 `json:"bio" validate:"omitempty,max=500"`
	ProfilePicture *string                 `json:"profilePicture" validate:"omitempty,url"`
	Preferences    *models.UserPreferences `json:"preferences"`
}

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=customer admin"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type userService struct {
	userRepo        interfaces.UserRepository
	bookingRepo     interfaces.BookingRepository
	destinationRepo interfaces.DestinationRepository
	logger          *logger.Logger
	now             func() time.Time
}

func NewUserService(
	userRepo interfaces.UserRepository,
	bookingRepo interfaces.BookingRepository,
	destinationRepo interfaces.DestinationRepository,
	logger *logger.Logger,
) UserService {
	return &userService{
		userRepo:        userRepo,
		bookingRepo:     bookingRepo,
		destinationRepo: destinationRepo,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, request *UpdateProfileRequest) (*models.User, error) {
	updates := bson.M{}
	if request.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*request.FullName)
	}
	if request.Phone != nil {
		updates["phone"] = strings.TrimSpace(*request.Phone)
	}
	if request.Address != nil {
		updates["address"] = request.Address
	}
	if request.Bio != nil {
		updates["bio"] = *request.Bio
	}
	if request.ProfilePicture != nil {
		updates["profile_picture"] = *request.ProfilePicture
	}
	if request.Preferences != nil {
		prefs := *request.Preferences
		if prefs.FavoriteDestinations == nil {
			prefs.FavoriteDestinations = []primitive.ObjectID{}
		}
		updates["preferences"] = prefs
	}

	if len(updates) > 0 {
		if err := s.userRepo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.userRepo.Update(ctx, userID, bson.M{
		"is_active":      false,
		"email":          fmt.Sprintf("deleted_%d_%s", s.now().Unix(), user.Email),
		"refresh_tokens": bson.A{},
	})
	if err != nil {
		return err
	}

	s.logger.LogUserAction(userID, "account_deleted", nil)
	return nil
}

func (s *userService) GetBookings(ctx context.Context, userID primitive.ObjectID, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.List(ctx, &interfaces.BookingFilter{User: &userID, BookingStatus: status}, params)
}

func (s *userService) AddFavorite(ctx context.Context, userID, destinationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	exists, err := s.destinationRepo.Exists(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewNotFoundError("Destination not found")
	}

	if err := s.userRepo.AddFavorite(ctx, userID, destinationID); err != nil {
		return nil, err
	}
	return s.favorites(ctx, userID)
}

func (s *userService) RemoveFavorite(ctx context.Context, userID, destinationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if err := s.userRepo.RemoveFavorite(ctx, userID, destinationID); err != nil {
		return nil, err
	}
	return s.favorites(ctx, userID)
}

func (s *userService) favorites(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Preferences.FavoriteDestinations == nil {
		return []primitive.ObjectID{}, nil
	}
	return user.Preferences.FavoriteDestinations, nil
}

func (s *userService) ListUsers(ctx context.Context, filter *interfaces.UserFilter, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, filter, params)
}

func (s *userService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, actor Actor, id primitive.ObjectID, role models.UserRole) (*models.User, error) {
	if actor.UserID == id {
		return nil, utils.NewBadRequestError("You cannot change your own role")
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, id, bson.M{"role": role}); err != nil {
		return nil, err
	}

	s.logger.LogSecurityEvent("role_changed", "medium", map[string]interface{}{
		"user_id":  id.Hex(),
		"role":     role,
		"admin_id": actor.UserID.Hex(),
	})
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateStatus(ctx context.Context, actor Actor, id primitive.ObjectID, isActive bool) (*models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updates := bson.M{"is_active": isActive}
	if !isActive {
		updates["refresh_tokens"] = bson.A{}
	}
	if err := s.userRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(actor.UserID, "user_status_changed", map[string]interface{}{
		"user_id":   id.Hex(),
		"is_active": isActive,
	})
	return s.userRepo.GetByID(ctx, id)
}
