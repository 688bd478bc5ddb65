package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salt_portal/internal/guard"
	"salt_portal/internal/logger"
	"salt_portal/internal/metrics"
	"salt_portal/internal/session"
)

// SnapshotKey holds the snapshot the guard admitted, for the page handler.
const SnapshotKey = "sessionSnapshot"

// RouteGuard enforces req on the request's session. Loading answers
// 202 with Retry-After so the browser polls; a redirect is a silent 302.
func RouteGuard(req guard.Requirement, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		enforce(c, req, m)
	}
}

// TableGuard looks the request path up in table. Paths without an
// entry are public.
func TableGuard(table *guard.Table, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := table.Lookup(c.Request.URL.Path)
		if errors.Is(err, guard.ErrNoRoute) {
			c.Next()
			return
		}
		enforce(c, req, m)
	}
}

func enforce(c *gin.Context, req guard.Requirement, m *metrics.Metrics) {
	ctrl, ok := SessionFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session middleware not installed"})
		return
	}

	snap := ctrl.Snapshot()
	d := guard.Evaluate(snap, req)
	m.RecordGuard(d.Outcome.String(), d.Reason)

	switch d.Outcome {
	case guard.Loading:
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": "loading"})
	case guard.Redirect:
		logger.FromGin(c).Debug("route guard redirect", zap.String("target", d.Target), zap.String("reason", d.Reason))
		c.Redirect(http.StatusFound, d.Target)
		c.Abort()
	default:
		c.Set(SnapshotKey, snap)
		c.Next()
	}
}

// SnapshotFrom returns the snapshot admitted by the guard.
func SnapshotFrom(c *gin.Context) (session.Snapshot, bool) {
	v, ok := c.Get(SnapshotKey)
	if !ok {
		return session.Snapshot{}, false
	}
	s, ok := v.(session.Snapshot)
	return s, ok
}
