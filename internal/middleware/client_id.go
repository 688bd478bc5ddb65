package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salt_portal/internal/logger"
)

// ClientIDConfig configures the browser identity cookie.
type ClientIDConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// ClientID makes sure every request carries a browser id. The id only
// names the browser's credential namespace; it grants nothing by itself.
func ClientID(cfg ClientIDConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "salt_client"
	}
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// Refresh the expiry on every request.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		c.Set(logger.ClientIDKey, id)
		c.Next()
	}
}

// ClientIDFrom returns the id set by ClientID.
func ClientIDFrom(c *gin.Context) string {
	return c.GetString(logger.ClientIDKey)
}
