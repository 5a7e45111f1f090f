package middleware

import (
	"net/http"
	"strings"

	"lifeline/internal/models"
	"lifeline/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired validates the bearer token and sets user context
func AuthRequired(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, models.CodeAuth, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, models.CodeAuth, "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, secretKey)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, models.CodeAuth, "Invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)

		c.Next()
	}
}

// AdminRequired ensures the authenticated user holds the admin role
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, models.CodeAuth, "User role not found")
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok || models.UserRole(roleStr) != models.UserRoleAdmin {
			utils.ErrorResponse(c, http.StatusForbidden, models.CodeAuthz, utils.ErrAdminRequired)
			c.Abort()
			return
		}

		c.Next()
	}
}
