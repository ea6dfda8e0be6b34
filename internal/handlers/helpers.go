package handlers

import (
	"net/http"
	"strconv"

	"gbtravel/internal/models"
	"gbtravel/internal/services"
	"gbtravel/internal/utils"

	"github.com/gin-gonic/gin"
)

// actor returns the authenticated caller. Routes using it sit behind AuthRequired.
func actor(c *gin.Context) (services.Actor, bool) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgAuthRequired)
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Role: models.UserRole(c.GetString(utils.ContextRoleKey))}, true
}

// optionalActor returns the caller when OptionalAuth resolved one.
func optionalActor(c *gin.Context) *services.Actor {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return nil
	}
	return &services.Actor{UserID: userID, Role: models.UserRole(c.GetString(utils.ContextRoleKey))}
}

func queryInt(c *gin.Context, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryLimit(c *gin.Context) int64 {
	if v := queryInt(c, "limit"); v != nil && *v > 0 {
		if *v > utils.MaxPageSize {
			return utils.MaxPageSize
		}
		return int64(*v)
	}
	return 0
}

func queryBool(c *gin.Context, key string) *bool {
	switch c.Query(key) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}
