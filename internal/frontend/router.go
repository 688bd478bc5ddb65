package frontend

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"salt_portal/internal/guard"
	"salt_portal/internal/logger"
	"salt_portal/internal/metrics"
	"salt_portal/internal/middleware"
	"salt_portal/internal/session"
)

// Deps are the collaborators of the web front end.
type Deps struct {
	Registry *session.Registry
	Table    *guard.Table
	Data     DataSource
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Cookie   middleware.ClientIDConfig
	Log      *zap.Logger
	// Health checks the storage backend; nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter wires every front end route. Pages go through the table
// guard; paths missing from the table are public.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(logger.Recovery(d.Log), logger.GinMiddleware(d.Log), d.Metrics.GinMiddleware())

	router.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "storage": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": d.Registry.Stats()})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	browser := router.Group("/")
	browser.Use(middleware.ClientID(d.Cookie), middleware.Sessions(d.Registry))

	NewAuthHandler(d.Metrics).RegisterAuthRoutes(browser)

	pages := NewPageHandler(d.Data)
	browser.GET(session.PathHome, pages.Public("home"))
	browser.GET(session.PathUnauthorized, pages.Public("unauthorized"))
	browser.GET("/admin/login", pages.Public("admin-login"))
	browser.GET(session.PathPlans, pages.Plans)

	guarded := browser.Group("/")
	guarded.Use(middleware.TableGuard(d.Table, d.Metrics))
	{
		guarded.GET(session.PathOnboarding, pages.Dashboard("onboarding"))
		guarded.GET("/profile", pages.Dashboard("profile"))
		guarded.GET(session.PathLandownerDashboard, pages.Dashboard("landowner-dashboard"))
		guarded.GET(session.PathSellerDashboard, pages.Dashboard("seller-dashboard"))
		guarded.GET(session.PathLabDashboard, pages.Dashboard("laboratory-dashboard"))
		guarded.GET(session.PathSaltSocietyDashboard, pages.Dashboard("saltsociety-dashboard"))

		guarded.GET(session.PathAdminDashboard, pages.AdminDashboard)
		guarded.GET("/admin/users", pages.AdminUsers)
		guarded.GET("/admin/payments", pages.AdminPayments)
		guarded.GET("/admin/subscriptions", pages.AdminSubscriptions)
		guarded.GET("/admin/audit-logs", pages.AdminAuditLogs)
	}

	return router
}
