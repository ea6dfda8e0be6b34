package middleware

import (
	"context"
	"net/http"
	"strings"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves an access token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthRequired validates the bearer token and sets the user context.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgNoToken)
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if appErr, ok := utils.AsAppError(err); ok && appErr.Kind == utils.KindUnauthorized {
				utils.ErrorResponse(c, http.StatusUnauthorized, appErr.Message)
				return
			}
			utils.HandleError(c, err)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth sets the user context when a valid token is present and
// carries on anonymously otherwise.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if user, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireRoles allows only the listed roles. It must run after AuthRequired.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(utils.ContextRoleKey)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgAuthRequired)
			return
		}

		for _, allowed := range roles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}
		utils.ErrorResponse(c, http.StatusForbidden, utils.MsgNoPermission)
	}
}

// AdminRequired middleware ensures user is an admin
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(utils.ContextRoleKey); !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.MsgAuthRequired)
			return
		}
		if !utils.IsAdmin(c) {
			utils.ErrorResponse(c, http.StatusForbidden, utils.MsgAdminRequired)
			return
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(utils.ContextUserKey, user)
	c.Set(utils.ContextUserIDKey, user.ID)
	c.Set(utils.ContextRoleKey, string(user.Role))
}

// extractToken reads "Authorization: Bearer <token>".
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}
