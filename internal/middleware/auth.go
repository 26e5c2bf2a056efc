package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/pskladal/staff-shifts-api/internal/constants"
	apierrors "github.com/pskladal/staff-shifts-api/internal/errors"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/services"
)

// RequireAuth checks the session cookie and loads the active user into
// the request context. A missing session, an unknown user, or a
// deactivated account all end the request with 401.
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, _ := session.Get(constants.ContextKeyUserID).(string)
		if userID == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := auth.GetActiveUser(c.Request.Context(), userID)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// RequireRoles allows only users whose app role is in the given set.
// Must run after RequireAuth.
func RequireRoles(roles ...models.AppRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		apierrors.Forbidden(c, "")
		c.Abort()
	}
}

// GetUser retrieves the authenticated user from context.
func GetUser(c *gin.Context) (*models.UserRecord, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.UserRecord)
	return user, ok
}

// GetUserID retrieves the authenticated user's id from context.
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok
}
