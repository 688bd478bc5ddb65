package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salt_portal/internal/session"
)

const SessionKey = "session"

// Sessions attaches the browser's session controller. It must run after
// ClientID.
func Sessions(reg *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ClientIDFrom(c)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "client id missing"})
			return
		}
		c.Set(SessionKey, reg.Get(c.Request.Context(), id))
		c.Next()
	}
}

// SessionFrom returns the controller set by Sessions.
func SessionFrom(c *gin.Context) (*session.Controller, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	ctrl, ok := v.(*session.Controller)
	return ctrl, ok && ctrl != nil
}
