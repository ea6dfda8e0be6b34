package services

import (
	"gbtravel/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID primitive.ObjectID
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.UserRoleAdmin
}

// CanAccess reports whether the actor owns the resource or is an admin.
func (a Actor) CanAccess(owner primitive.ObjectID) bool {
	return a.UserID == owner || a.IsAdmin()
}
