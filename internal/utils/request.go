package utils

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID parses a hex id, returning a 400 AppError naming what was malformed.
func ParseObjectID(raw, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, NewBadRequestError("Invalid %s format", name).Wrap(err)
	}
	return id, nil
}

func ParamObjectID(c *gin.Context, param, name string) (primitive.ObjectID, error) {
	return ParseObjectID(c.Param(param), name)
}

// CurrentUserID returns the authenticated user's id set by the auth middleware.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextRoleKey) == "admin"
}
