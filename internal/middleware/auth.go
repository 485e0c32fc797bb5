package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
	"github.com/taskforge/taskforge/internal/utils"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

const (
	ContextUser  = "user"
	ContextToken = "token"
)

// AuthRequired validates the bearer token, rejects revoked tokens, and loads
// the full user record into the context. Loading the user (rather than
// trusting the claims) means role changes take effect on the next request.
func AuthRequired(db *gorm.DB, revocation *services.RevocationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}
		tokenString := parts[1]

		revoked, err := revocation.IsRevoked(tokenString)
		if err != nil {
			response.ServerError(c, "failed to check token status")
			c.Abort()
			return
		}
		if revoked {
			response.Unauthorized(c, "token revoked")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			response.Unauthorized(c, "invalid token: user not found")
			c.Abort()
			return
		}

		c.Set(ContextUser, &user)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// AdminRequired rejects actors without the global admin role. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			response.Forbidden(c, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the context, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(ContextUser); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentToken returns the raw bearer token from the context.
func CurrentToken(c *gin.Context) string {
	if v, exists := c.Get(ContextToken); exists {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}
