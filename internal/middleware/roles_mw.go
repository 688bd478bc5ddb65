package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salt_portal/internal/model"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := AuthRole(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Role not found in token, ensure JWT middleware runs first"})
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not have permission to access this resource"})
	}
}

// AdminMiddleware admits both administrator roles.
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleSuperAdmin, model.RoleAdmin)
}
