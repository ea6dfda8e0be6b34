package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

type BudgetRange struct {
	Min float64 `json:"min" bson:"min"`
	Max float64 `json:"max" bson:"max"`
}

type UserPreferences struct {
	FavoriteDestinations []primitive.ObjectID `json:"favoriteDestinations" bson:"favorite_destinations"`
	BudgetRange          *BudgetRange         `json:"budgetRange,omitempty" bson:"budget_range,omitempty"`
	PreferredTripTypes   []TripType           `json:"preferredTripTypes,omitempty" bson:"preferred_trip_types,omitempty"`
	DietaryRestrictions  []string             `json:"dietaryRestrictions,omitempty" bson:"dietary_restrictions,omitempty"`
}

type User struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	FullName       string               `json:"fullName" bson:"full_name"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"`
	Phone          string               `json:"phone,omitempty" bson:"phone,omitempty"`
	Address        *Address             `json:"address,omitempty" bson:"address,omitempty"`
	ProfilePicture string               `json:"profilePicture,omitempty" bson:"profile_picture,omitempty"`
	Bio            string               `json:"bio,omitempty" bson:"bio,omitempty"`
	Role           UserRole             `json:"role" bson:"role"`
	Preferences    UserPreferences      `json:"preferences" bson:"preferences"`
	BookingHistory []primitive.ObjectID `json:"bookingHistory" bson:"booking_history"`

	IsEmailVerified        bool       `json:"isEmailVerified" bson:"is_email_verified"`
	EmailVerificationToken string     `json:"-" bson:"email_verification_token,omitempty"`
	EmailVerificationExp   *time.Time `json:"-" bson:"email_verification_expires,omitempty"`
	PasswordResetToken     string     `json:"-" bson:"password_reset_token,omitempty"`
	PasswordResetExp       *time.Time `json:"-" bson:"password_reset_expires,omitempty"`
	RefreshTokens          []string   `json:"-" bson:"refresh_tokens"`

	IsActive  bool       `json:"isActive" bson:"is_active"`
	LastLogin *time.Time `json:"lastLogin,omitempty" bson:"last_login,omitempty"`
	CreatedAt time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) HasRefreshToken(token string) bool {
	for _, t := range u.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

// PublicUser is the shape returned by auth endpoints.
type PublicUser struct {
	ID              primitive.ObjectID `json:"id"`
	FullName        string             `json:"fullName"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone,omitempty"`
	Role            UserRole           `json:"role"`
	ProfilePicture  string             `json:"profilePicture,omitempty"`
	IsEmailVerified bool               `json:"isEmailVerified"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		Phone:           u.Phone,
		Role:            u.Role,
		ProfilePicture:  u.ProfilePicture,
		IsEmailVerified: u.IsEmailVerified,
	}
}
