package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salt_portal/internal/model"
	"salt_portal/internal/utils"
)

const (
	AuthUserKey = "authUser"
	AuthRoleKey = "authRole"
)

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(AuthUserKey, claims.UserID)
		c.Set(AuthRoleKey, claims.Role)

		c.Next()
	}
}

// AuthUser returns the user id set by JWTAuthMiddleware.
func AuthUser(c *gin.Context) (string, bool) {
	id := c.GetString(AuthUserKey)
	return id, id != ""
}

// AuthRole returns the role set by JWTAuthMiddleware.
func AuthRole(c *gin.Context) (model.Role, bool) {
	v, ok := c.Get(AuthRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(model.Role)
	return role, ok
}
